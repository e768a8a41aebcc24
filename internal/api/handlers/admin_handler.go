package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/application/listing"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// AdminService is the program management used by the admin dashboard
type AdminService interface {
	ListPrograms(ctx context.Context, query string, page, pageSize int) (listing.Page[*entities.TrainingProgram], error)
	ListTrainers(ctx context.Context) ([]*entities.User, error)
	CreateProgram(ctx context.Context, input services.CreateProgramInput) (*entities.TrainingProgram, error)
}

// AdminHandler serves the admin dashboard
type AdminHandler struct {
	service  AdminService
	pageSize int
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service AdminService, pageSize int) *AdminHandler {
	return &AdminHandler{
		service:  service,
		pageSize: pageSize,
	}
}

// AdminDashboard is the admin program grid with its navigation actions
type AdminDashboard struct {
	ProgramListing
	Welcome string             `json:"welcome"`
	Actions []services.NavLink `json:"actions"`
}

// TrainerOption is one entry of the trainer dropdown
type TrainerOption struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type createProgramRequest struct {
	TrainingArea  string `json:"trainingArea"`
	TrainerID     string `json:"trainerId"`
	Schedule      string `json:"schedule"`
	Venue         string `json:"venue"`
	Prerequisites string `json:"prerequisites"`
}

var adminActions = []services.NavLink{
	{Label: "Logout", Href: "/api/auth/logout", Action: true},
	{Label: "Create Training Program", Href: "/admin/create"},
}

// ListPrograms handles GET /api/admin/programs?q=&page=
func (h *AdminHandler) ListPrograms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query().Get("q")

	page, err := h.service.ListPrograms(ctx, query, pageParam(r), h.pageSize)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AdminDashboard{
		ProgramListing: newProgramListing(ctx, query, page, nil, nil),
		Welcome:        services.Welcome(middleware.CurrentUser(ctx)),
		Actions:        adminActions,
	})
}

// ListTrainers handles GET /api/admin/trainers
func (h *AdminHandler) ListTrainers(w http.ResponseWriter, r *http.Request) {
	trainers, err := h.service.ListTrainers(r.Context())
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	options := make([]TrainerOption, 0, len(trainers))
	for _, t := range trainers {
		options = append(options, TrainerOption{ID: t.ID, Username: t.Username, Email: t.Email})
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"trainers": options,
	})
}

// CreateProgram handles POST /api/admin/programs
func (h *AdminHandler) CreateProgram(w http.ResponseWriter, r *http.Request) {
	var req createProgramRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	program, err := h.service.CreateProgram(r.Context(), services.CreateProgramInput{
		TrainingArea:  req.TrainingArea,
		TrainerID:     req.TrainerID,
		Schedule:      req.Schedule,
		Venue:         req.Venue,
		Prerequisites: req.Prerequisites,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  services.MsgProgramCreated,
		"program":  program,
		"redirect": "/admin",
	})
}
