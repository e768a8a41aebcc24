package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/trainingportal/internal/api/handlers"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

func TestFeedbackHandler_ListFeedback(t *testing.T) {
	t.Run("renders labels and trainer marks", func(t *testing.T) {
		svc := new(MockFeedbackService)
		handler := handlers.NewFeedbackHandler(svc)

		submitted := time.Date(2026, 10, 1, 14, 30, 0, 0, time.UTC)
		svc.On("List", mock.Anything, "p1").Return([]*entities.Feedback{
			{ID: "f2", UserID: trainer.ID, Username: "tom", UserType: entities.UserTypeTrainer, Comment: "Welcome all", Rating: 5},
			{ID: "f1", UserID: trainee.ID, Username: "tina", UserType: entities.UserTypeTrainee, Comment: "Great", Rating: 4, SubmittedAt: submitted},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/programs/p1/feedback", nil)
		req.SetPathValue("id", "p1")
		w := httptest.NewRecorder()
		handler.ListFeedback(w, anonymous(req))

		assert.Equal(t, http.StatusOK, w.Code)
		var list handlers.FeedbackList
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Feedback, 2)

		assert.Equal(t, "f2", list.Feedback[0].ID)
		assert.True(t, list.Feedback[0].FromTrainer)
		assert.Equal(t, "Just now", list.Feedback[0].SubmittedAtLabel)
		assert.Nil(t, list.Feedback[0].SubmittedAt)

		assert.False(t, list.Feedback[1].FromTrainer)
		assert.Equal(t, "Oct 1, 2026 2:30 PM UTC", list.Feedback[1].SubmittedAtLabel)
		assert.Empty(t, list.EmptyMessage)
	})

	t.Run("empty", func(t *testing.T) {
		svc := new(MockFeedbackService)
		handler := handlers.NewFeedbackHandler(svc)
		svc.On("List", mock.Anything, "p1").Return([]*entities.Feedback{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/programs/p1/feedback", nil)
		req.SetPathValue("id", "p1")
		w := httptest.NewRecorder()
		handler.ListFeedback(w, anonymous(req))

		var list handlers.FeedbackList
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		assert.Empty(t, list.Feedback)
		assert.Equal(t, handlers.MsgNoFeedbackYet, list.EmptyMessage)
	})
}

func TestFeedbackHandler_SubmitFeedback(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc := new(MockFeedbackService)
		handler := handlers.NewFeedbackHandler(svc)
		input := services.FeedbackInput{Rating: 4, Comment: "Great"}
		svc.On("Submit", mock.Anything, trainee, "p1", input).Return(&entities.Feedback{
			ID: "f1", UserID: trainee.ID, Username: "tina", UserType: entities.UserTypeTrainee, Comment: "Great", Rating: 4,
			SubmittedAt: time.Now(),
		}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/programs/p1/feedback", strings.NewReader(`{"rating":4,"comment":"Great"}`))
		req.SetPathValue("id", "p1")
		w := httptest.NewRecorder()
		handler.SubmitFeedback(w, signedIn(req, trainee))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Feedback submitted!", body["message"])
		svc.AssertExpectations(t)
	})

	t.Run("invalid rating", func(t *testing.T) {
		svc := new(MockFeedbackService)
		handler := handlers.NewFeedbackHandler(svc)
		svc.On("Submit", mock.Anything, trainee, "p1", services.FeedbackInput{Rating: 0, Comment: "Great"}).
			Return(nil, apperrors.NewValidationError(services.MsgInvalidRating))

		req := httptest.NewRequest(http.MethodPost, "/api/programs/p1/feedback", strings.NewReader(`{"rating":0,"comment":"Great"}`))
		req.SetPathValue("id", "p1")
		w := httptest.NewRecorder()
		handler.SubmitFeedback(w, signedIn(req, trainee))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, services.MsgInvalidRating, decodeBody(t, w)["error"])
	})

	t.Run("signed out", func(t *testing.T) {
		svc := new(MockFeedbackService)
		handler := handlers.NewFeedbackHandler(svc)
		svc.On("Submit", mock.Anything, (*entities.User)(nil), "p1", mock.Anything).
			Return(nil, apperrors.NewUnauthorizedError(services.MsgLoginToReview))

		req := httptest.NewRequest(http.MethodPost, "/api/programs/p1/feedback", strings.NewReader(`{"rating":5,"comment":"Hi"}`))
		req.SetPathValue("id", "p1")
		w := httptest.NewRecorder()
		handler.SubmitFeedback(w, anonymous(req))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
