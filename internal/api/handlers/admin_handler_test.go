package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/trainingportal/internal/api/handlers"
	"github.com/zatekoja/trainingportal/internal/application/listing"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

func TestAdminHandler_ListPrograms(t *testing.T) {
	svc := new(MockProgramService)
	handler := handlers.NewAdminHandler(svc, 0)

	all := make([]*entities.TrainingProgram, 0, 12)
	for i := 0; i < 12; i++ {
		all = append(all, program(string(rune('a'+i)), "Area"))
	}
	svc.On("ListPrograms", mock.Anything, "", 1, 0).Return(listing.Paginate(all, 1, 0), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/programs", nil)
	w := httptest.NewRecorder()
	handler.ListPrograms(w, signedIn(req, admin))

	assert.Equal(t, http.StatusOK, w.Code)
	var view handlers.AdminDashboard
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Cards, 12)
	assert.Empty(t, view.PageButtons)
	assert.Equal(t, "Welcome, ada!", view.Welcome)
	for _, card := range view.Cards {
		assert.Nil(t, card.Enroll)
	}

	labels := make([]string, 0, len(view.Actions))
	for _, a := range view.Actions {
		labels = append(labels, a.Label)
	}
	assert.Equal(t, []string{"Logout", "Create Training Program"}, labels)
}

func TestAdminHandler_ListTrainers(t *testing.T) {
	svc := new(MockProgramService)
	handler := handlers.NewAdminHandler(svc, 0)
	svc.On("ListTrainers", mock.Anything).Return([]*entities.User{trainer}, nil)

	w := httptest.NewRecorder()
	handler.ListTrainers(w, signedIn(httptest.NewRequest(http.MethodGet, "/api/admin/trainers", nil), admin))

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Trainers []handlers.TrainerOption `json:"trainers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []handlers.TrainerOption{{ID: "u-trainer", Username: "tom", Email: "tom@example.com"}}, body.Trainers)
}

func TestAdminHandler_CreateProgram(t *testing.T) {
	const payload = `{"trainingArea":"Go","trainerId":"u-trainer","schedule":"2026-11-02T09:00","venue":"Room 1","prerequisites":""}`
	input := services.CreateProgramInput{
		TrainingArea: "Go",
		TrainerID:    "u-trainer",
		Schedule:     "2026-11-02T09:00",
		Venue:        "Room 1",
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockProgramService)
		handler := handlers.NewAdminHandler(svc, 0)
		svc.On("CreateProgram", mock.Anything, input).Return(program("p1", "Go"), nil)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/programs", strings.NewReader(payload))
		w := httptest.NewRecorder()
		handler.CreateProgram(w, signedIn(req, admin))

		assert.Equal(t, http.StatusCreated, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "Training program created!", body["message"])
		assert.Equal(t, "/admin", body["redirect"])
		svc.AssertExpectations(t)
	})

	t.Run("missing fields", func(t *testing.T) {
		svc := new(MockProgramService)
		handler := handlers.NewAdminHandler(svc, 0)
		svc.On("CreateProgram", mock.Anything, mock.Anything).Return(nil, apperrors.NewValidationError(services.MsgFillRequiredFields))

		req := httptest.NewRequest(http.MethodPost, "/api/admin/programs", strings.NewReader(`{"trainingArea":"Go"}`))
		w := httptest.NewRecorder()
		handler.CreateProgram(w, signedIn(req, admin))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please fill in all required fields.", decodeBody(t, w)["error"])
	})

	t.Run("store failure", func(t *testing.T) {
		svc := new(MockProgramService)
		handler := handlers.NewAdminHandler(svc, 0)
		svc.On("CreateProgram", mock.Anything, input).Return(nil, apperrors.NewInternalError(services.MsgCreateProgramFailed, errors.New("boom")))

		req := httptest.NewRequest(http.MethodPost, "/api/admin/programs", strings.NewReader(payload))
		w := httptest.NewRecorder()
		handler.CreateProgram(w, signedIn(req, admin))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to create training.", decodeBody(t, w)["error"])
	})
}
