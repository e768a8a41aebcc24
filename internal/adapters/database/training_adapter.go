package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

var trainingColumns = []interface{}{
	"id", "training_area", "trainer_id", "trainer_name", "schedule", "venue",
	"prerequisites", "created_at", "registered_users", "feedback",
}

type trainingRow struct {
	ID              string         `db:"id"`
	TrainingArea    string         `db:"training_area"`
	TrainerID       string         `db:"trainer_id"`
	TrainerName     string         `db:"trainer_name"`
	Schedule        time.Time      `db:"schedule"`
	Venue           string         `db:"venue"`
	Prerequisites   string         `db:"prerequisites"`
	CreatedAt       time.Time      `db:"created_at"`
	RegisteredUsers pq.StringArray `db:"registered_users"`
	Feedback        pq.StringArray `db:"feedback"`
}

func (r *trainingRow) toEntity() *entities.TrainingProgram {
	return &entities.TrainingProgram{
		ID:              r.ID,
		TrainingArea:    r.TrainingArea,
		TrainerID:       r.TrainerID,
		TrainerName:     r.TrainerName,
		Schedule:        r.Schedule,
		Venue:           r.Venue,
		Prerequisites:   r.Prerequisites,
		CreatedAt:       r.CreatedAt,
		RegisteredUsers: nonNil(r.RegisteredUsers),
		Feedback:        nonNil(r.Feedback),
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// TrainingAdapter implements the TrainingRepository interface
type TrainingAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTrainingAdapter creates a new training adapter
func NewTrainingAdapter(client *postgres.Client) repositories.TrainingRepository {
	return &TrainingAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a training program
func (a *TrainingAdapter) Create(ctx context.Context, program *entities.TrainingProgram) error {
	defer a.client.Observe(ctx, "trainings.create", time.Now())

	record := goqu.Record{
		"id":               program.ID,
		"training_area":    program.TrainingArea,
		"trainer_id":       program.TrainerID,
		"trainer_name":     program.TrainerName,
		"schedule":         program.Schedule,
		"venue":            program.Venue,
		"prerequisites":    program.Prerequisites,
		"created_at":       program.CreatedAt,
		"registered_users": pq.StringArray(nonNil(program.RegisteredUsers)),
		"feedback":         pq.StringArray(nonNil(program.Feedback)),
	}

	query, args, err := a.db.Insert("trainings").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build training insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create training", err)
	}

	return nil
}

// GetByID retrieves a training program by ID
func (a *TrainingAdapter) GetByID(ctx context.Context, id string) (*entities.TrainingProgram, error) {
	defer a.client.Observe(ctx, "trainings.get", time.Now())

	query, args, err := a.db.Select(trainingColumns...).
		From("trainings").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row trainingRow
	if err := a.client.DBX().GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("training not found")
		}
		return nil, apperrors.NewInternalError("failed to get training", err)
	}

	return row.toEntity(), nil
}

// GetByIDs retrieves the programs that exist among ids
func (a *TrainingAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.TrainingProgram, error) {
	if len(ids) == 0 {
		return []*entities.TrainingProgram{}, nil
	}
	defer a.client.Observe(ctx, "trainings.get_many", time.Now())

	return a.selectMany(ctx, a.db.Select(trainingColumns...).
		From("trainings").
		Where(goqu.Ex{"id": ids}))
}

// List retrieves every program in creation order
func (a *TrainingAdapter) List(ctx context.Context) ([]*entities.TrainingProgram, error) {
	defer a.client.Observe(ctx, "trainings.list", time.Now())

	return a.selectMany(ctx, a.db.Select(trainingColumns...).
		From("trainings").
		Order(goqu.I("created_at").Asc(), goqu.I("id").Asc()))
}

// ListByTrainer retrieves the programs assigned to a trainer
func (a *TrainingAdapter) ListByTrainer(ctx context.Context, trainerID string) ([]*entities.TrainingProgram, error) {
	defer a.client.Observe(ctx, "trainings.list_by_trainer", time.Now())

	return a.selectMany(ctx, a.db.Select(trainingColumns...).
		From("trainings").
		Where(goqu.Ex{"trainer_id": trainerID}).
		Order(goqu.I("schedule").Asc()))
}

func (a *TrainingAdapter) selectMany(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.TrainingProgram, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []trainingRow
	if err := a.client.DBX().SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list trainings", err)
	}

	programs := make([]*entities.TrainingProgram, 0, len(rows))
	for i := range rows {
		programs = append(programs, rows[i].toEntity())
	}
	return programs, nil
}
