package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/samber/lo"

	"github.com/coursedesk/backend/internal/model/registry"
)

// Operation names exposed to the model.
const (
	opRegisterStudent  = "register_student"
	opListCourses      = "list_courses"
	opEnrollStudent    = "enroll_student"
	opDropCourse       = "drop_course"
	opCheckEnrollments = "check_enrollments"
)

// Binding carries the session-scoped student context through one advisor
// call. A successful (or duplicate) registration binds the student id so the
// transport layer can persist it on the session afterwards.
type Binding struct {
	StudentID string
}

type operation struct {
	name   string
	desc   string
	params map[string]*schema.ParameterInfo
	run    func(ctx context.Context, args map[string]any, b *Binding) string
}

// ToolSet wraps registry mutations and queries as schema-described
// operations. Every outcome is a human-readable string carrying the ids and
// counts the model needs to reference in its reply; validation failures are
// outcomes, never errors.
type ToolSet struct {
	store *registry.Store
	ops   []operation
}

// NewToolSet builds the five advisor operations over the given store.
func NewToolSet(store *registry.Store) *ToolSet {
	t := &ToolSet{store: store}
	t.ops = []operation{
		{
			name: opRegisterStudent,
			desc: "Register a new student by name and email. Returns the student id. Registering an email twice returns the original id instead of creating a duplicate.",
			params: map[string]*schema.ParameterInfo{
				"name": {
					Type:     schema.String,
					Desc:     "Full name of the student",
					Required: true,
				},
				"email": {
					Type:     schema.String,
					Desc:     "Email address of the student; unique per student",
					Required: true,
				},
			},
			run: t.registerStudent,
		},
		{
			name:   opListCourses,
			desc:   "List all courses in the catalog with instructor, enrollment count, and remaining seats.",
			params: map[string]*schema.ParameterInfo{},
			run:    t.listCourses,
		},
		{
			name: opEnrollStudent,
			desc: "Enroll a registered student in a course. Fails when the student or course does not exist, the course is full, or the student is already enrolled.",
			params: map[string]*schema.ParameterInfo{
				"studentId": {
					Type:     schema.String,
					Desc:     "Student id returned by register_student",
					Required: true,
				},
				"courseId": {
					Type:     schema.String,
					Desc:     "Course code, e.g. CS101",
					Required: true,
				},
			},
			run: t.enrollStudent,
		},
		{
			name: opDropCourse,
			desc: "Drop a student's enrollment in a course.",
			params: map[string]*schema.ParameterInfo{
				"studentId": {
					Type:     schema.String,
					Desc:     "Student id returned by register_student",
					Required: true,
				},
				"courseId": {
					Type:     schema.String,
					Desc:     "Course code, e.g. CS101",
					Required: true,
				},
			},
			run: t.dropCourse,
		},
		{
			name: opCheckEnrollments,
			desc: "List the courses a student is currently enrolled in, ordered by enrollment time.",
			params: map[string]*schema.ParameterInfo{
				"studentId": {
					Type:     schema.String,
					Desc:     "Student id returned by register_student",
					Required: true,
				},
			},
			run: t.checkEnrollments,
		},
	}
	return t
}

// Infos renders the operation schemas for model binding.
func (t *ToolSet) Infos() []*schema.ToolInfo {
	return lo.Map(t.ops, func(op operation, _ int) *schema.ToolInfo {
		return &schema.ToolInfo{
			Name:        op.name,
			Desc:        op.desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(op.params),
		}
	})
}

// Dispatch executes one requested invocation. Argument payloads come from an
// untrusted model and are validated here; unknown operations and malformed
// arguments yield outcome strings so the round never aborts.
func (t *ToolSet) Dispatch(ctx context.Context, call schema.ToolCall, b *Binding) string {
	name := call.Function.Name

	var selected *operation
	for i := range t.ops {
		if t.ops[i].name == name {
			selected = &t.ops[i]
			break
		}
	}
	if selected == nil {
		return fmt.Sprintf("unknown operation %q", name)
	}

	args := map[string]any{}
	if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return fmt.Sprintf("invalid arguments for %s: payload is not a JSON object", name)
		}
	}

	return selected.run(ctx, args, b)
}

func (t *ToolSet) registerStudent(_ context.Context, args map[string]any, b *Binding) string {
	name, err := stringArg(args, "name", opRegisterStudent)
	if err != nil {
		return err.Error()
	}
	email, err := stringArg(args, "email", opRegisterStudent)
	if err != nil {
		return err.Error()
	}

	student, created := t.store.RegisterStudent(name, email)
	b.StudentID = student.ID

	if !created {
		return fmt.Sprintf("%s is already registered as %s with student id %s; reusing the existing record.",
			student.Email, student.Name, student.ID)
	}
	return fmt.Sprintf("Registered %s with student id %s (email %s).", student.Name, student.ID, student.Email)
}

func (t *ToolSet) listCourses(_ context.Context, _ map[string]any, _ *Binding) string {
	courses := t.store.ListCourses()
	if len(courses) == 0 {
		return "No courses are available right now."
	}

	lines := lo.Map(courses, func(c registry.Course, _ int) string {
		return fmt.Sprintf("- %s: %s with %s (%d/%d enrolled, %d seats open)",
			c.ID, c.Name, c.Instructor, c.EnrolledCount, c.Capacity, c.Remaining())
	})
	return "Available courses:\n" + strings.Join(lines, "\n")
}

func (t *ToolSet) enrollStudent(_ context.Context, args map[string]any, _ *Binding) string {
	studentID, err := stringArg(args, "studentId", opEnrollStudent)
	if err != nil {
		return err.Error()
	}
	courseID, err := stringArg(args, "courseId", opEnrollStudent)
	if err != nil {
		return err.Error()
	}

	_, enrollErr := t.store.Enroll(studentID, courseID)
	switch {
	case errors.Is(enrollErr, registry.ErrStudentNotFound):
		return fmt.Sprintf("Student %q was not found. Register the student first to get a valid id.", studentID)
	case errors.Is(enrollErr, registry.ErrCourseNotFound):
		return fmt.Sprintf("Course %q was not found. Use %s to see valid course codes.", courseID, opListCourses)
	case errors.Is(enrollErr, registry.ErrCourseFull):
		course, _ := t.store.FindCourse(courseID)
		return fmt.Sprintf("%s is full (%d/%d enrolled); no seats remain.", courseID, course.EnrolledCount, course.Capacity)
	case errors.Is(enrollErr, registry.ErrAlreadyEnrolled):
		course, _ := t.store.FindCourse(courseID)
		return fmt.Sprintf("Student %s is already enrolled in %s; enrollment stays at %d/%d.",
			studentID, courseID, course.EnrolledCount, course.Capacity)
	}

	course, _ := t.store.FindCourse(courseID)
	return fmt.Sprintf("Enrolled student %s in %s (%s). The course now has %d/%d enrolled.",
		studentID, course.ID, course.Name, course.EnrolledCount, course.Capacity)
}

func (t *ToolSet) dropCourse(_ context.Context, args map[string]any, _ *Binding) string {
	studentID, err := stringArg(args, "studentId", opDropCourse)
	if err != nil {
		return err.Error()
	}
	courseID, err := stringArg(args, "courseId", opDropCourse)
	if err != nil {
		return err.Error()
	}

	if dropErr := t.store.Drop(studentID, courseID); errors.Is(dropErr, registry.ErrNotEnrolled) {
		return fmt.Sprintf("Student %s is not enrolled in %s, so there is nothing to drop.", studentID, courseID)
	}

	course, _ := t.store.FindCourse(courseID)
	return fmt.Sprintf("Dropped student %s from %s. The course now has %d/%d enrolled.",
		studentID, courseID, course.EnrolledCount, course.Capacity)
}

func (t *ToolSet) checkEnrollments(_ context.Context, args map[string]any, _ *Binding) string {
	studentID, err := stringArg(args, "studentId", opCheckEnrollments)
	if err != nil {
		return err.Error()
	}

	details, lookupErr := t.store.EnrollmentsFor(studentID)
	if errors.Is(lookupErr, registry.ErrStudentNotFound) {
		return fmt.Sprintf("Student %q was not found.", studentID)
	}
	if len(details) == 0 {
		return fmt.Sprintf("Student %s is not enrolled in any courses.", studentID)
	}

	lines := lo.Map(details, func(d registry.EnrollmentDetail, _ int) string {
		return fmt.Sprintf("- %s: %s with %s (enrolled %s)",
			d.CourseID, d.CourseName, d.Instructor, d.EnrolledAt.Format("2006-01-02 15:04 MST"))
	})
	return fmt.Sprintf("Student %s is enrolled in %d course(s):\n%s", studentID, len(details), strings.Join(lines, "\n"))
}

// stringArg extracts a required non-empty string argument. Missing or
// mistyped values produce the uniform invalid-arguments outcome.
func stringArg(args map[string]any, key, op string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("invalid arguments for %s: missing required %q", op, key)
	}
	value, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("invalid arguments for %s: %q must be a string", op, key)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("invalid arguments for %s: %q must not be empty", op, key)
	}
	return value, nil
}
