package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

const (
	MsgLoginToReview      = "Please log in to leave feedback."
	MsgInvalidRating      = "Please select a rating between 1 and 5."
	MsgEmptyComment       = "Please enter a comment."
	MsgFeedbackSubmitted  = "Feedback submitted!"
	MsgFeedbackFailed     = "Failed to submit feedback."
	MsgLoadFeedbackFailed = "Failed to load feedback."
)

// FeedbackInput is the feedback form
type FeedbackInput struct {
	Rating  int
	Comment string
}

// FeedbackService handles ratings and comments on programs
type FeedbackService struct {
	feedback  repositories.FeedbackRepository
	trainings repositories.TrainingRepository
	bus       providers.EventBus
	metrics   *observability.Metrics
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(
	feedback repositories.FeedbackRepository,
	trainings repositories.TrainingRepository,
	bus providers.EventBus,
	metrics *observability.Metrics,
) *FeedbackService {
	return &FeedbackService{
		feedback:  feedback,
		trainings: trainings,
		bus:       bus,
		metrics:   metrics,
	}
}

// Submit validates and stores feedback from author. The author's username
// and role are copied onto the entry.
func (s *FeedbackService) Submit(ctx context.Context, author *entities.User, trainingID string, input FeedbackInput) (*entities.Feedback, error) {
	if author == nil {
		return nil, apperrors.NewUnauthorizedError(MsgLoginToReview)
	}
	if input.Rating < entities.MinRating || input.Rating > entities.MaxRating {
		return nil, apperrors.NewValidationError(MsgInvalidRating)
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, apperrors.NewValidationError(MsgEmptyComment)
	}

	if _, err := s.trainings.GetByID(ctx, trainingID); err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			return nil, apperrors.NewNotFoundError(MsgProgramNotFound)
		}
		return nil, apperrors.NewInternalError(MsgFeedbackFailed, err)
	}

	entry := &entities.Feedback{
		ID:         uuid.New().String(),
		TrainingID: trainingID,
		UserID:     author.ID,
		Username:   author.Username,
		UserType:   author.UserType,
		Comment:    comment,
		Rating:     input.Rating,
	}
	if err := s.feedback.Create(ctx, entry); err != nil {
		observability.LoggerFromContext(ctx).Error().Err(err).Str("training_id", trainingID).Msg("Failed to store feedback")
		return nil, apperrors.NewInternalError(MsgFeedbackFailed, err)
	}

	observability.RecordFeedback(ctx, s.metrics, entry.Rating)

	event := entities.NewEvent(entities.EventTypeFeedbackCreated, entry.ID, entry)
	if err := s.bus.Publish(ctx, providers.GetFeedbackChannel(trainingID), event); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("training_id", trainingID).Msg("Failed to publish feedback event")
	}

	return entry, nil
}

// List returns the program's feedback newest first
func (s *FeedbackService) List(ctx context.Context, trainingID string) ([]*entities.Feedback, error) {
	entries, err := s.feedback.ListByTraining(ctx, trainingID)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgLoadFeedbackFailed, err)
	}
	return entries, nil
}

// Watch emits the full newest-first list on subscribe and again after every
// feedback write on the program. The channel closes when ctx is done.
//
// Each snapshot is re-read from the store, so a write that lands while a
// snapshot is being built shows up in the next one at the latest.
func (s *FeedbackService) Watch(ctx context.Context, trainingID string) (<-chan []*entities.Feedback, error) {
	events, err := s.bus.Subscribe(ctx, providers.GetFeedbackChannel(trainingID))
	if err != nil {
		return nil, apperrors.NewExternalError("failed to subscribe to feedback", err)
	}

	initial, err := s.List(ctx, trainingID)
	if err != nil {
		return nil, err
	}

	snapshots := make(chan []*entities.Feedback, 1)
	snapshots <- initial

	go func() {
		defer close(snapshots)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if event.Type != entities.EventTypeFeedbackCreated {
					continue
				}
				entries, err := s.List(ctx, trainingID)
				if err != nil {
					observability.LoggerFromContext(ctx).Warn().Err(err).Str("training_id", trainingID).Msg("Failed to refresh feedback snapshot")
					continue
				}
				select {
				case snapshots <- entries:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return snapshots, nil
}
