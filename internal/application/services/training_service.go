package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/trainingportal/internal/application/listing"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

const (
	MsgProgramNotFound      = "Program not found"
	MsgFillRequiredFields   = "Please fill in all required fields."
	MsgInvalidSchedule      = "Please enter a valid schedule."
	MsgUnknownTrainer       = "Please select a trainer."
	MsgProgramCreated       = "Training program created!"
	MsgCreateProgramFailed  = "Failed to create training."
	MsgLoadProgramsFailed   = "Failed to load training programs."
	scheduleDateTimeLocal   = "2006-01-02T15:04"
	scheduleDateTimeSeconds = "2006-01-02T15:04:05"
)

// CreateProgramInput is the create-program form. Schedule is RFC 3339 or the
// datetime-local form.
type CreateProgramInput struct {
	TrainingArea  string
	TrainerID     string
	Schedule      string
	Venue         string
	Prerequisites string
}

// TrainingService handles program listing, lookup and creation
type TrainingService struct {
	trainings repositories.TrainingRepository
	users     repositories.UserRepository
	bus       providers.EventBus
	location  *time.Location
	now       func() time.Time
}

// NewTrainingService creates a new training service
func NewTrainingService(trainings repositories.TrainingRepository, users repositories.UserRepository, bus providers.EventBus) *TrainingService {
	return &TrainingService{
		trainings: trainings,
		users:     users,
		bus:       bus,
		location:  time.UTC,
		now:       time.Now,
	}
}

// ListPrograms reads the whole collection, filters it by training area and
// returns the requested page.
func (s *TrainingService) ListPrograms(ctx context.Context, query string, page, pageSize int) (listing.Page[*entities.TrainingProgram], error) {
	programs, err := s.trainings.List(ctx)
	if err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Failed to list training programs")
		return listing.Page[*entities.TrainingProgram]{}, apperrors.NewInternalError(MsgLoadProgramsFailed, err)
	}

	return listing.Paginate(listing.FilterByArea(programs, query), page, pageSize), nil
}

// GetProgram returns a program by id
func (s *TrainingService) GetProgram(ctx context.Context, id string) (*entities.TrainingProgram, error) {
	program, err := s.trainings.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError(MsgProgramNotFound)
		}
		return nil, err
	}
	return program, nil
}

// ListTrainers returns every user who registered as a trainer
func (s *TrainingService) ListTrainers(ctx context.Context) ([]*entities.User, error) {
	return s.users.ListByType(ctx, entities.UserTypeTrainer)
}

// CreateProgram validates the form, snapshots the trainer's username and
// stores the program.
func (s *TrainingService) CreateProgram(ctx context.Context, input CreateProgramInput) (*entities.TrainingProgram, error) {
	input.TrainingArea = strings.TrimSpace(input.TrainingArea)
	input.TrainerID = strings.TrimSpace(input.TrainerID)
	input.Schedule = strings.TrimSpace(input.Schedule)
	input.Venue = strings.TrimSpace(input.Venue)
	if input.TrainingArea == "" || input.TrainerID == "" || input.Schedule == "" || input.Venue == "" {
		return nil, apperrors.NewValidationError(MsgFillRequiredFields)
	}

	schedule, err := s.parseSchedule(input.Schedule)
	if err != nil {
		return nil, apperrors.NewValidationError(MsgInvalidSchedule)
	}

	trainer, err := s.users.GetByID(ctx, input.TrainerID)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewValidationError(MsgUnknownTrainer)
		}
		return nil, apperrors.NewInternalError(MsgCreateProgramFailed, err)
	}
	if trainer.UserType != entities.UserTypeTrainer {
		return nil, apperrors.NewValidationError(MsgUnknownTrainer)
	}

	program := &entities.TrainingProgram{
		ID:              uuid.New().String(),
		TrainingArea:    input.TrainingArea,
		TrainerID:       trainer.ID,
		TrainerName:     trainer.Username,
		Schedule:        schedule,
		Venue:           input.Venue,
		Prerequisites:   strings.TrimSpace(input.Prerequisites),
		CreatedAt:       s.now().UTC(),
		RegisteredUsers: []string{},
		Feedback:        []string{},
	}

	if err := s.trainings.Create(ctx, program); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Msg("Failed to create training program")
		return nil, apperrors.NewInternalError(MsgCreateProgramFailed, err)
	}

	event := entities.NewEvent(entities.EventTypeTrainingCreated, program.ID, program)
	if err := s.bus.Publish(ctx, providers.EventChannelTrainings, event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("training_id", program.ID).Msg("Failed to publish training created event")
	}

	return program, nil
}

func (s *TrainingService) parseSchedule(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(scheduleDateTimeSeconds, value, s.location); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(scheduleDateTimeLocal, value, s.location)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
