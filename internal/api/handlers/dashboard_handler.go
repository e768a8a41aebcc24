package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// DashboardService builds the trainee and trainer dashboards
type DashboardService interface {
	Trainee(ctx context.Context, user *entities.User) (*services.TraineeDashboard, error)
	Trainer(ctx context.Context, user *entities.User) (*services.TrainerDashboard, error)
}

// DashboardHandler serves the role dashboards
type DashboardHandler struct {
	service DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// EnrolledProgramView is a program on the trainee dashboard
type EnrolledProgramView struct {
	ID           string    `json:"id"`
	TrainingArea string    `json:"trainingArea"`
	TrainerName  string    `json:"trainerName"`
	Schedule     time.Time `json:"schedule"`
	Venue        string    `json:"venue"`
	Href         string    `json:"href"`
	Upcoming     bool      `json:"upcoming"`
}

// TrainerProgramView is a program on the trainer dashboard
type TrainerProgramView struct {
	ID                string    `json:"id"`
	TrainingArea      string    `json:"trainingArea"`
	Schedule          time.Time `json:"schedule"`
	Venue             string    `json:"venue"`
	Href              string    `json:"href"`
	Trainees          []string  `json:"trainees"`
	NoTraineesMessage string    `json:"noTraineesMessage,omitempty"`
}

// TraineeDashboard handles GET /api/trainee/dashboard
func (h *DashboardHandler) TraineeDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)

	dashboard, err := h.service.Trainee(ctx, user)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	programs := make([]EnrolledProgramView, 0, len(dashboard.Programs))
	for _, p := range dashboard.Programs {
		programs = append(programs, EnrolledProgramView{
			ID:           p.Program.ID,
			TrainingArea: p.Program.TrainingArea,
			TrainerName:  p.Program.TrainerName,
			Schedule:     p.Program.Schedule,
			Venue:        p.Program.Venue,
			Href:         programDetailPrefix + p.Program.ID,
			Upcoming:     p.Upcoming,
		})
	}

	body := map[string]interface{}{
		"welcome":  services.Welcome(user),
		"programs": programs,
	}
	if len(programs) == 0 {
		body["emptyMessage"] = MsgNotEnrolledYet
	}
	respondWithJSON(w, http.StatusOK, body)
}

// TrainerDashboard handles GET /api/trainer/dashboard
func (h *DashboardHandler) TrainerDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.CurrentUser(ctx)

	dashboard, err := h.service.Trainer(ctx, user)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	programs := make([]TrainerProgramView, 0, len(dashboard.Programs))
	for _, p := range dashboard.Programs {
		view := TrainerProgramView{
			ID:           p.Program.ID,
			TrainingArea: p.Program.TrainingArea,
			Schedule:     p.Program.Schedule,
			Venue:        p.Program.Venue,
			Href:         programDetailPrefix + p.Program.ID,
			Trainees:     p.Trainees,
		}
		if len(p.Trainees) == 0 {
			view.NoTraineesMessage = MsgNoTraineesYet
		}
		programs = append(programs, view)
	}

	body := map[string]interface{}{
		"welcome":  services.Welcome(user),
		"programs": programs,
	}
	if len(programs) == 0 {
		body["emptyMessage"] = MsgNoProgramsYet
	}
	respondWithJSON(w, http.StatusOK, body)
}
