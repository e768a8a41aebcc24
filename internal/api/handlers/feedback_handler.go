package handlers

import (
	"context"
	"net/http"

	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// FeedbackService defines the interface for feedback operations
type FeedbackService interface {
	Submit(ctx context.Context, author *entities.User, trainingID string, input services.FeedbackInput) (*entities.Feedback, error)
	List(ctx context.Context, trainingID string) ([]*entities.Feedback, error)
}

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	service FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

type feedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// ListFeedback handles GET /api/programs/{id}/feedback
func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, newFeedbackList(entries))
}

// SubmitFeedback handles POST /api/programs/{id}/feedback
func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, MsgInvalidJSON)
		return
	}

	ctx := r.Context()
	entry, err := h.service.Submit(ctx, middleware.CurrentUser(ctx), r.PathValue("id"), services.FeedbackInput{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":  services.MsgFeedbackSubmitted,
		"feedback": newFeedbackView(entry),
	})
}
