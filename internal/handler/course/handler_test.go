package course

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/coursedesk/backend/internal/model/registry"
)

func setupRouter() (*chi.Mux, *registry.Store) {
	store := registry.NewStore(registry.Seed())
	handler := New(store)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func TestListCourses(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var courses []registry.Course
	if err := json.Unmarshal(resp.Body.Bytes(), &courses); err != nil {
		t.Fatalf("decode courses: %v", err)
	}
	if len(courses) != len(registry.Seed()) {
		t.Fatalf("expected %d courses, got %d", len(registry.Seed()), len(courses))
	}
}

func TestGetCourseNotFound(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/courses/NOPE999", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestStudentEnrollments(t *testing.T) {
	r, store := setupRouter()
	student, _ := store.RegisterStudent("Alice", "alice@x.edu")
	store.Enroll(student.ID, "CS101")

	req := httptest.NewRequest(http.MethodGet, "/students/"+student.ID+"/enrollments", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var details []registry.EnrollmentDetail
	if err := json.Unmarshal(resp.Body.Bytes(), &details); err != nil {
		t.Fatalf("decode enrollments: %v", err)
	}
	if len(details) != 1 || details[0].CourseID != "CS101" {
		t.Fatalf("unexpected enrollments: %+v", details)
	}
}

func TestStudentEnrollmentsUnknownStudent(t *testing.T) {
	r, _ := setupRouter()

	req := httptest.NewRequest(http.MethodGet, "/students/missing/enrollments", nil)
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
