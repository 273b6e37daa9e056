package registry_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/coursedesk/backend/internal/model/registry"
)

func seededStore() *registry.Store {
	return registry.NewStore([]registry.Course{
		{ID: "CS101", Name: "Intro to Computer Science", Instructor: "Dr. Moreno", Capacity: 2},
		{ID: "MATH140", Name: "Calculus I", Instructor: "Dr. Raman", Capacity: 3},
	})
}

func TestRegisterStudentIdempotentPerEmail(t *testing.T) {
	store := seededStore()

	first, created := store.RegisterStudent("Alice", "alice@x.edu")
	if !created {
		t.Fatal("expected first registration to create a student")
	}
	if first.ID == "" {
		t.Fatal("expected generated student id")
	}

	second, created := store.RegisterStudent("Alice Again", "ALICE@X.EDU")
	if created {
		t.Fatal("expected repeat registration to reuse the existing student")
	}
	if second.ID != first.ID {
		t.Fatalf("expected same student id, got %s and %s", first.ID, second.ID)
	}
	if second.Name != "Alice" {
		t.Fatalf("expected original record untouched, got name %q", second.Name)
	}
}

func TestEnrollUpdatesCount(t *testing.T) {
	store := seededStore()
	student, _ := store.RegisterStudent("Alice", "alice@x.edu")

	if _, err := store.Enroll(student.ID, "CS101"); err != nil {
		t.Fatalf("Enroll err: %v", err)
	}

	course, _ := store.FindCourse("CS101")
	if course.EnrolledCount != 1 {
		t.Fatalf("expected enrolledCount 1, got %d", course.EnrolledCount)
	}

	details, err := store.EnrollmentsFor(student.ID)
	if err != nil {
		t.Fatalf("EnrollmentsFor err: %v", err)
	}
	if len(details) != 1 || details[0].CourseID != "CS101" {
		t.Fatalf("unexpected enrollments: %+v", details)
	}
}

func TestEnrollPreconditionOrder(t *testing.T) {
	store := seededStore()
	student, _ := store.RegisterStudent("Alice", "alice@x.edu")

	if _, err := store.Enroll("missing", "CS101"); !errors.Is(err, registry.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}
	if _, err := store.Enroll(student.ID, "NOPE999"); !errors.Is(err, registry.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}

	// A missing student must win over a missing course.
	if _, err := store.Enroll("missing", "NOPE999"); !errors.Is(err, registry.ErrStudentNotFound) {
		t.Fatalf("expected ErrStudentNotFound, got %v", err)
	}

	course, _ := store.FindCourse("CS101")
	if course.EnrolledCount != 0 {
		t.Fatalf("failed enrollments must not change counts, got %d", course.EnrolledCount)
	}
}

func TestEnrollRejectsWhenFull(t *testing.T) {
	store := seededStore()
	a, _ := store.RegisterStudent("Alice", "alice@x.edu")
	b, _ := store.RegisterStudent("Bob", "bob@x.edu")
	c, _ := store.RegisterStudent("Carol", "carol@x.edu")

	if _, err := store.Enroll(a.ID, "CS101"); err != nil {
		t.Fatalf("Enroll err: %v", err)
	}
	if _, err := store.Enroll(b.ID, "CS101"); err != nil {
		t.Fatalf("Enroll err: %v", err)
	}

	if _, err := store.Enroll(c.ID, "CS101"); !errors.Is(err, registry.ErrCourseFull) {
		t.Fatalf("expected ErrCourseFull, got %v", err)
	}

	course, _ := store.FindCourse("CS101")
	if course.EnrolledCount != 2 {
		t.Fatalf("rejected enrollment must leave count unchanged, got %d", course.EnrolledCount)
	}
}

func TestEnrollRejectsDuplicate(t *testing.T) {
	store := seededStore()
	student, _ := store.RegisterStudent("Alice", "alice@x.edu")

	if _, err := store.Enroll(student.ID, "CS101"); err != nil {
		t.Fatalf("Enroll err: %v", err)
	}
	if _, err := store.Enroll(student.ID, "CS101"); !errors.Is(err, registry.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}

	course, _ := store.FindCourse("CS101")
	if course.EnrolledCount != 1 {
		t.Fatalf("duplicate enrollment must leave count unchanged, got %d", course.EnrolledCount)
	}
}

func TestDropNonExistentEnrollment(t *testing.T) {
	store := seededStore()
	student, _ := store.RegisterStudent("Alice", "alice@x.edu")

	if err := store.Drop(student.ID, "CS101"); !errors.Is(err, registry.ErrNotEnrolled) {
		t.Fatalf("expected ErrNotEnrolled, got %v", err)
	}

	course, _ := store.FindCourse("CS101")
	if course.EnrolledCount != 0 {
		t.Fatalf("drop of missing enrollment must leave count unchanged, got %d", course.EnrolledCount)
	}
}

func TestEnrollDropSequenceKeepsCountsConsistent(t *testing.T) {
	store := seededStore()
	a, _ := store.RegisterStudent("Alice", "alice@x.edu")
	b, _ := store.RegisterStudent("Bob", "bob@x.edu")

	store.Enroll(a.ID, "MATH140")
	store.Enroll(b.ID, "MATH140")
	store.Drop(a.ID, "MATH140")
	store.Enroll(a.ID, "MATH140")
	store.Drop(b.ID, "MATH140")

	course, _ := store.FindCourse("MATH140")
	if course.EnrolledCount != 1 {
		t.Fatalf("expected enrolledCount 1, got %d", course.EnrolledCount)
	}

	live := 0
	for _, id := range []string{a.ID, b.ID} {
		details, err := store.EnrollmentsFor(id)
		if err != nil {
			t.Fatalf("EnrollmentsFor err: %v", err)
		}
		live += len(details)
	}
	if live != course.EnrolledCount {
		t.Fatalf("enrolledCount %d does not match live enrollments %d", course.EnrolledCount, live)
	}
}

func TestConcurrentEnrollNeverExceedsCapacity(t *testing.T) {
	store := registry.NewStore([]registry.Course{
		{ID: "CS101", Name: "Intro", Instructor: "Dr. Moreno", Capacity: 5},
	})

	const attempts = 50
	ids := make([]string, attempts)
	for i := range ids {
		s, _ := store.RegisterStudent(fmt.Sprintf("Student %d", i), fmt.Sprintf("s%d@x.edu", i))
		ids[i] = s.ID
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			store.Enroll(studentID, "CS101")
		}(id)
	}
	wg.Wait()

	course, _ := store.FindCourse("CS101")
	if course.EnrolledCount != 5 {
		t.Fatalf("expected exactly capacity enrollments, got %d", course.EnrolledCount)
	}

	live := 0
	for _, id := range ids {
		details, _ := store.EnrollmentsFor(id)
		live += len(details)
	}
	if live != 5 {
		t.Fatalf("expected 5 live enrollments, got %d", live)
	}
}

func TestEnrollmentsForOrderedByEnrollTime(t *testing.T) {
	store := registry.NewStore([]registry.Course{
		{ID: "A1", Name: "First", Instructor: "X", Capacity: 5},
		{ID: "B2", Name: "Second", Instructor: "Y", Capacity: 5},
		{ID: "C3", Name: "Third", Instructor: "Z", Capacity: 5},
	})
	student, _ := store.RegisterStudent("Alice", "alice@x.edu")

	for _, courseID := range []string{"B2", "C3", "A1"} {
		if _, err := store.Enroll(student.ID, courseID); err != nil {
			t.Fatalf("Enroll %s err: %v", courseID, err)
		}
	}

	details, err := store.EnrollmentsFor(student.ID)
	if err != nil {
		t.Fatalf("EnrollmentsFor err: %v", err)
	}

	got := make([]string, 0, len(details))
	for _, d := range details {
		got = append(got, d.CourseID)
	}
	want := []string{"B2", "C3", "A1"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, got)
		}
	}
}
