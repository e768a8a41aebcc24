package database

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

var registrationColumns = []interface{}{"id", "trainee_id", "training_id", "registered_at"}

// RegistrationAdapter implements the RegistrationRepository interface
type RegistrationAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewRegistrationAdapter creates a new registration adapter
func NewRegistrationAdapter(client *postgres.Client) repositories.RegistrationRepository {
	return &RegistrationAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a registration
func (a *RegistrationAdapter) Create(ctx context.Context, registration *entities.Registration) error {
	defer a.client.Observe(ctx, "registrations.create", time.Now())

	record := goqu.Record{
		"id":            registration.ID,
		"trainee_id":    registration.TraineeID,
		"training_id":   registration.TrainingID,
		"registered_at": registration.RegisteredAt,
	}

	query, args, err := a.db.Insert("registrations").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build registration insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create registration", err)
	}

	return nil
}

// Exists reports whether the trainee is registered for the program
func (a *RegistrationAdapter) Exists(ctx context.Context, traineeID, trainingID string) (bool, error) {
	defer a.client.Observe(ctx, "registrations.exists", time.Now())

	query, args, err := a.db.From("registrations").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{
			"trainee_id":  traineeID,
			"training_id": trainingID,
		}).
		ToSQL()
	if err != nil {
		return false, apperrors.NewInternalError("failed to build query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, apperrors.NewInternalError("failed to check registration", err)
	}

	return count > 0, nil
}

// ListByTrainee retrieves a trainee's registrations
func (a *RegistrationAdapter) ListByTrainee(ctx context.Context, traineeID string) ([]*entities.Registration, error) {
	defer a.client.Observe(ctx, "registrations.list_by_trainee", time.Now())

	return a.selectMany(ctx, a.db.Select(registrationColumns...).
		From("registrations").
		Where(goqu.Ex{"trainee_id": traineeID}).
		Order(goqu.I("registered_at").Asc()))
}

// ListByTrainingIDs retrieves registrations for any of the given programs
func (a *RegistrationAdapter) ListByTrainingIDs(ctx context.Context, trainingIDs []string) ([]*entities.Registration, error) {
	if len(trainingIDs) == 0 {
		return []*entities.Registration{}, nil
	}
	defer a.client.Observe(ctx, "registrations.list_by_trainings", time.Now())

	return a.selectMany(ctx, a.db.Select(registrationColumns...).
		From("registrations").
		Where(goqu.Ex{"training_id": trainingIDs}).
		Order(goqu.I("registered_at").Asc()))
}

func (a *RegistrationAdapter) selectMany(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Registration, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	registrations := []*entities.Registration{}
	if err := a.client.DBX().SelectContext(ctx, &registrations, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list registrations", err)
	}
	return registrations, nil
}
