package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/application/listing"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// ProgramService reads training programs
type ProgramService interface {
	ListPrograms(ctx context.Context, query string, page, pageSize int) (listing.Page[*entities.TrainingProgram], error)
	GetProgram(ctx context.Context, id string) (*entities.TrainingProgram, error)
}

// EnrollmentService registers trainees for programs
type EnrollmentService interface {
	State(ctx context.Context, user *entities.User, trainingID string) (*services.EnrollmentState, error)
	States(ctx context.Context, user *entities.User, trainingIDs []string) (map[string]*services.EnrollmentState, error)
	Enroll(ctx context.Context, user *entities.User, trainingID string) (*services.EnrollmentResult, error)
}

// ProgramHandler serves the home listing, program pages and enrollment
type ProgramHandler struct {
	programs   ProgramService
	enrollment EnrollmentService
	pageSize   int
}

// NewProgramHandler creates a new program handler
func NewProgramHandler(programs ProgramService, enrollment EnrollmentService, pageSize int) *ProgramHandler {
	return &ProgramHandler{
		programs:   programs,
		enrollment: enrollment,
		pageSize:   pageSize,
	}
}

// ListPrograms handles GET /api/programs?q=&page=
func (h *ProgramHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	page, err := h.programs.ListPrograms(ctx, query, pageParam(r), h.pageSize)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newProgramListing(ctx, query, page, h.enrollment, middleware.CurrentUser(ctx)))
}

// GetProgram handles GET /api/programs/{id}
func (h *ProgramHandler) GetProgram(w http.ResponseWriter, r *http.Request) {
	program, err := h.programs.GetProgram(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newProgramDetail(program))
}

// EnrollmentState handles GET /api/programs/{id}/enrollment
func (h *ProgramHandler) EnrollmentState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	state, err := h.enrollment.State(ctx, middleware.CurrentUser(ctx), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, state)
}

// Enroll handles POST /api/programs/{id}/enroll
func (h *ProgramHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	result, err := h.enrollment.Enroll(ctx, middleware.CurrentUser(ctx), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	message := services.MsgEnrolled
	if result.Status == services.EnrollmentStatusAlreadyEnrolled {
		message = services.MsgAlreadyEnrolled
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":       result.Status,
		"message":      message,
		"registration": result.Registration,
		"enroll":       services.EnrollmentState{CanEnroll: true, Enrolled: true},
	})
}
