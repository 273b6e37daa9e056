// Package registry holds the relational campus dataset: students, courses
// and the enrollments linking them.
package registry

import "time"

// Student is created by the register operation and never mutated afterwards.
type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Course is a pre-seeded catalog entry. EnrolledCount is maintained by the
// store and always matches the number of live enrollments for the course.
type Course struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Instructor    string `json:"instructor"`
	Capacity      int    `json:"capacity"`
	EnrolledCount int    `json:"enrolledCount"`
}

// Remaining returns the number of open seats.
func (c Course) Remaining() int {
	return c.Capacity - c.EnrolledCount
}

// IsFull reports whether no seats remain.
func (c Course) IsFull() bool {
	return c.EnrolledCount >= c.Capacity
}

// Enrollment links one student to one course.
type Enrollment struct {
	StudentID  string    `json:"studentId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// EnrollmentDetail enriches an Enrollment with course info for display.
type EnrollmentDetail struct {
	Enrollment
	CourseName string `json:"courseName"`
	Instructor string `json:"instructor"`
}
