package registry

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrCourseFull      = errors.New("course is full")
	ErrAlreadyEnrolled = errors.New("already enrolled")
	ErrNotEnrolled     = errors.New("not enrolled")
)

type enrollKey struct {
	studentID string
	courseID  string
}

// Store keeps the campus dataset in memory behind a single mutex. Holding
// one lock across the capacity check and the counter update keeps
// EnrolledCount consistent with the enrollment rows under concurrent
// requests.
type Store struct {
	mu          sync.RWMutex
	students    map[string]Student
	byEmail     map[string]string
	courses     map[string]*Course
	courseOrder []string
	enrollments map[enrollKey]Enrollment
	// enrollOrder preserves enrollment time ordering without relying on
	// timestamp resolution.
	enrollOrder []enrollKey
	onChange    func()
}

// NewStore returns a Store preloaded with the supplied course catalog.
func NewStore(catalog []Course) *Store {
	s := &Store{
		students:    make(map[string]Student),
		byEmail:     make(map[string]string),
		courses:     make(map[string]*Course, len(catalog)),
		courseOrder: make([]string, 0, len(catalog)),
		enrollments: make(map[enrollKey]Enrollment),
	}
	for _, c := range catalog {
		course := c
		s.courses[course.ID] = &course
		s.courseOrder = append(s.courseOrder, course.ID)
	}
	return s
}

// SetOnChange registers a hook invoked after every successful mutation of
// course or enrollment state. Used to push snapshots to connected clients.
func (s *Store) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify() {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		go fn()
	}
}

// RegisterStudent creates a student record, or returns the existing one when
// the email is already registered. Repeat registrations never create a
// second row.
func (s *Store) RegisterStudent(name, email string) (Student, bool) {
	email = strings.TrimSpace(strings.ToLower(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byEmail[email]; ok {
		return s.students[id], false
	}

	student := Student{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	s.students[student.ID] = student
	s.byEmail[email] = student.ID
	return student, true
}

// FindStudent looks up a student by identifier.
func (s *Store) FindStudent(id string) (Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	student, ok := s.students[id]
	return student, ok
}

// FindCourse looks up a course by its code.
func (s *Store) FindCourse(id string) (Course, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	course, ok := s.courses[id]
	if !ok {
		return Course{}, false
	}
	return *course, true
}

// ListCourses returns the catalog in seed order.
func (s *Store) ListCourses() []Course {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Course, 0, len(s.courseOrder))
	for _, id := range s.courseOrder {
		out = append(out, *s.courses[id])
	}
	return out
}

// Enroll links a student to a course. Preconditions are checked in order:
// student exists, course exists, course has a seat, student not already
// enrolled. The enrollment row and the course counter are updated under the
// same lock acquisition.
func (s *Store) Enroll(studentID, courseID string) (Enrollment, error) {
	s.mu.Lock()

	if _, ok := s.students[studentID]; !ok {
		s.mu.Unlock()
		return Enrollment{}, ErrStudentNotFound
	}
	course, ok := s.courses[courseID]
	if !ok {
		s.mu.Unlock()
		return Enrollment{}, ErrCourseNotFound
	}
	if course.IsFull() {
		s.mu.Unlock()
		return Enrollment{}, ErrCourseFull
	}
	key := enrollKey{studentID: studentID, courseID: courseID}
	if _, ok := s.enrollments[key]; ok {
		s.mu.Unlock()
		return Enrollment{}, ErrAlreadyEnrolled
	}

	enrollment := Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	s.enrollments[key] = enrollment
	s.enrollOrder = append(s.enrollOrder, key)
	course.EnrolledCount++
	s.mu.Unlock()

	s.notify()
	return enrollment, nil
}

// Drop removes an enrollment and decrements the course counter.
func (s *Store) Drop(studentID, courseID string) error {
	s.mu.Lock()

	key := enrollKey{studentID: studentID, courseID: courseID}
	if _, ok := s.enrollments[key]; !ok {
		s.mu.Unlock()
		return ErrNotEnrolled
	}

	delete(s.enrollments, key)
	for i, k := range s.enrollOrder {
		if k == key {
			s.enrollOrder = append(s.enrollOrder[:i], s.enrollOrder[i+1:]...)
			break
		}
	}
	if course, ok := s.courses[courseID]; ok {
		course.EnrolledCount--
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// EnrollmentsFor returns the student's enrollments joined with course info,
// ordered by enrollment time.
func (s *Store) EnrollmentsFor(studentID string) ([]EnrollmentDetail, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.students[studentID]; !ok {
		return nil, ErrStudentNotFound
	}

	var details []EnrollmentDetail
	for _, key := range s.enrollOrder {
		if key.studentID != studentID {
			continue
		}
		detail := EnrollmentDetail{Enrollment: s.enrollments[key]}
		if course, ok := s.courses[key.courseID]; ok {
			detail.CourseName = course.Name
			detail.Instructor = course.Instructor
		}
		details = append(details, detail)
	}
	return details, nil
}

// EnrolledCourseIDs returns the course codes the student is enrolled in,
// ordered by enrollment time. Unknown students yield an empty slice.
func (s *Store) EnrolledCourseIDs(studentID string) []string {
	details, err := s.EnrollmentsFor(studentID)
	if err != nil {
		return nil
	}

	ids := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.CourseID)
	}
	return ids
}
