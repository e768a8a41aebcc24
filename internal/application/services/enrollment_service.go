package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
	"golang.org/x/sync/singleflight"
)

const (
	MsgLoginToEnroll     = "Please log in to enroll."
	MsgTraineesOnly      = "Only trainees can enroll in training programs."
	MsgEnrolled          = "Enrolled successfully!"
	MsgAlreadyEnrolled   = "You are already enrolled in this program."
	MsgEnrollmentFailed  = "Enrollment failed. Please try again."
	MsgEnrollStateFailed = "Failed to load enrollment status."
)

// EnrollmentStatus is the outcome of an enroll request
type EnrollmentStatus string

const (
	EnrollmentStatusEnrolled        EnrollmentStatus = "enrolled"
	EnrollmentStatusAlreadyEnrolled EnrollmentStatus = "already_enrolled"
)

// EnrollmentResult is returned by Enroll
type EnrollmentResult struct {
	Status       EnrollmentStatus       `json:"status"`
	Registration *entities.Registration `json:"registration,omitempty"`
}

// EnrollmentState drives the enroll control on a program card
type EnrollmentState struct {
	CanEnroll bool `json:"canEnroll"`
	Enrolled  bool `json:"enrolled"`
}

// EnrollmentService registers trainees for programs.
//
// Concurrent requests for the same trainee and program share one in-flight
// call. The guard is per process; the existence check and the write are not
// atomic at the store.
type EnrollmentService struct {
	registrations repositories.RegistrationRepository
	trainings     repositories.TrainingRepository
	bus           providers.EventBus
	metrics       *observability.Metrics
	inflight      singleflight.Group
	now           func() time.Time
}

// NewEnrollmentService creates a new enrollment service
func NewEnrollmentService(
	registrations repositories.RegistrationRepository,
	trainings repositories.TrainingRepository,
	bus providers.EventBus,
	metrics *observability.Metrics,
) *EnrollmentService {
	return &EnrollmentService{
		registrations: registrations,
		trainings:     trainings,
		bus:           bus,
		metrics:       metrics,
		now:           time.Now,
	}
}

// State reports whether the caller sees an enroll control and whether it is
// already in the enrolled state. Only trainees get the control.
func (s *EnrollmentService) State(ctx context.Context, user *entities.User, trainingID string) (*EnrollmentState, error) {
	if user == nil || user.UserType != entities.UserTypeTrainee {
		return &EnrollmentState{}, nil
	}

	enrolled, err := s.registrations.Exists(ctx, user.ID, trainingID)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgEnrollStateFailed, err)
	}
	return &EnrollmentState{CanEnroll: true, Enrolled: enrolled}, nil
}

// States resolves the enroll control for a page of programs with one read of
// the caller's registrations. Non-trainees get an empty map.
func (s *EnrollmentService) States(ctx context.Context, user *entities.User, trainingIDs []string) (map[string]*EnrollmentState, error) {
	states := make(map[string]*EnrollmentState, len(trainingIDs))
	if user == nil || user.UserType != entities.UserTypeTrainee || len(trainingIDs) == 0 {
		return states, nil
	}

	registrations, err := s.registrations.ListByTrainee(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgEnrollStateFailed, err)
	}
	enrolled := make(map[string]bool, len(registrations))
	for _, r := range registrations {
		enrolled[r.TrainingID] = true
	}

	for _, id := range trainingIDs {
		states[id] = &EnrollmentState{CanEnroll: true, Enrolled: enrolled[id]}
	}
	return states, nil
}

// Enroll registers the trainee for the program unless a registration
// already exists
func (s *EnrollmentService) Enroll(ctx context.Context, user *entities.User, trainingID string) (*EnrollmentResult, error) {
	if user == nil {
		return nil, apperrors.NewUnauthorizedError(MsgLoginToEnroll)
	}
	if user.UserType != entities.UserTypeTrainee {
		return nil, apperrors.NewForbiddenError(MsgTraineesOnly)
	}

	key := user.ID + "|" + trainingID
	// The shared call must not be cut short by whichever caller started it.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		return s.enroll(flightCtx, user.ID, trainingID)
	})
	if shared {
		observability.LoggerFromContext(ctx).Debug().
			Str("trainee_id", user.ID).
			Str("training_id", trainingID).
			Msg("Joined in-flight enrollment")
	}
	if err != nil {
		return nil, err
	}
	return v.(*EnrollmentResult), nil
}

func (s *EnrollmentService) enroll(ctx context.Context, traineeID, trainingID string) (*EnrollmentResult, error) {
	if _, err := s.trainings.GetByID(ctx, trainingID); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError(MsgProgramNotFound)
		}
		return nil, apperrors.NewInternalError(MsgEnrollmentFailed, err)
	}

	exists, err := s.registrations.Exists(ctx, traineeID, trainingID)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgEnrollmentFailed, err)
	}
	if exists {
		return &EnrollmentResult{Status: EnrollmentStatusAlreadyEnrolled}, nil
	}

	registration := &entities.Registration{
		ID:           uuid.New().String(),
		TraineeID:    traineeID,
		TrainingID:   trainingID,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.registrations.Create(ctx, registration); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).
			Str("trainee_id", traineeID).
			Str("training_id", trainingID).
			Msg("Enrollment failed")
		return nil, apperrors.NewInternalError(MsgEnrollmentFailed, err)
	}

	observability.RecordEnrollment(ctx, s.metrics, trainingID)

	event := entities.NewEvent(entities.EventTypeRegistrationCreated, registration.ID, registration)
	if err := s.bus.Publish(ctx, providers.GetEnrollmentChannel(trainingID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("training_id", trainingID).Msg("Failed to publish registration event")
	}

	return &EnrollmentResult{Status: EnrollmentStatusEnrolled, Registration: registration}, nil
}
