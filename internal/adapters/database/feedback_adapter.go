package database

import (
	"context"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

// FeedbackAdapter implements feedback persistence in Postgres.
type FeedbackAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewFeedbackAdapter creates a new feedback adapter.
func NewFeedbackAdapter(client *postgres.Client) repositories.FeedbackRepository {
	return &FeedbackAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a feedback record. submitted_at comes from the database
// clock and is written back onto feedback.
func (a *FeedbackAdapter) Create(ctx context.Context, feedback *entities.Feedback) error {
	if feedback == nil {
		return apperrors.NewInternalError("feedback is nil", fmt.Errorf("feedback is nil"))
	}
	defer a.client.Observe(ctx, "feedback.create", time.Now())

	record := goqu.Record{
		"id":           feedback.ID,
		"training_id":  feedback.TrainingID,
		"user_id":      feedback.UserID,
		"username":     feedback.Username,
		"user_type":    string(feedback.UserType),
		"comment":      feedback.Comment,
		"rating":       feedback.Rating,
		"submitted_at": goqu.L("NOW()"),
	}

	query, args, err := a.db.Insert("feedback").
		Rows(record).
		Returning("submitted_at").
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build feedback insert query", err)
	}

	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&feedback.SubmittedAt); err != nil {
		return apperrors.NewInternalError("failed to create feedback", err)
	}

	return nil
}

// ListByTraining returns a program's feedback newest first.
func (a *FeedbackAdapter) ListByTraining(ctx context.Context, trainingID string) ([]*entities.Feedback, error) {
	defer a.client.Observe(ctx, "feedback.list", time.Now())

	query, args, err := a.db.Select(
		"id", "training_id", "user_id", "username", "user_type", "comment", "rating", "submitted_at",
	).From("feedback").
		Where(goqu.Ex{"training_id": trainingID}).
		Order(goqu.I("submitted_at").Desc(), goqu.I("id").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	feedback := []*entities.Feedback{}
	if err := a.client.DBX().SelectContext(ctx, &feedback, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list feedback", err)
	}

	return feedback, nil
}
