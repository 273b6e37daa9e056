package course

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coursedesk/backend/internal/model/registry"
	"github.com/coursedesk/backend/pkg/utils"
)

// Handler exposes read-only catalog and enrollment views.
type Handler struct {
	store *registry.Store
}

// New creates the course handler.
func New(store *registry.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes registers catalog routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/courses", h.handleListCourses)
	r.Get("/courses/{courseID}", h.handleGetCourse)
	r.Get("/students/{studentID}/enrollments", h.handleStudentEnrollments)
}

func (h *Handler) handleListCourses(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, h.store.ListCourses())
}

func (h *Handler) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")

	course, ok := h.store.FindCourse(courseID)
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "course not found")
		return
	}
	utils.RespondJSON(w, http.StatusOK, course)
}

func (h *Handler) handleStudentEnrollments(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	details, err := h.store.EnrollmentsFor(studentID)
	if err != nil {
		if errors.Is(err, registry.ErrStudentNotFound) {
			utils.RespondError(w, http.StatusNotFound, "student not found")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if details == nil {
		details = []registry.EnrollmentDetail{}
	}
	utils.RespondJSON(w, http.StatusOK, details)
}
