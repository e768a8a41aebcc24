package repositories

import (
	"context"

	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// TrainingRepository defines the interface for training program operations
type TrainingRepository interface {
	Create(ctx context.Context, program *entities.TrainingProgram) error

	GetByID(ctx context.Context, id string) (*entities.TrainingProgram, error)

	// GetByIDs retrieves the programs that exist among ids
	GetByIDs(ctx context.Context, ids []string) ([]*entities.TrainingProgram, error)

	// List retrieves the whole collection
	List(ctx context.Context) ([]*entities.TrainingProgram, error)

	ListByTrainer(ctx context.Context, trainerID string) ([]*entities.TrainingProgram, error)
}

// RegistrationRepository defines the interface for enrollment records
type RegistrationRepository interface {
	Create(ctx context.Context, registration *entities.Registration) error

	// Exists reports whether the trainee already has a registration for the program
	Exists(ctx context.Context, traineeID, trainingID string) (bool, error)

	ListByTrainee(ctx context.Context, traineeID string) ([]*entities.Registration, error)

	// ListByTrainingIDs retrieves registrations for any of the given programs
	ListByTrainingIDs(ctx context.Context, trainingIDs []string) ([]*entities.Registration, error)
}

// FeedbackRepository defines the interface for feedback operations
type FeedbackRepository interface {
	// Create stores the entry and sets SubmittedAt from the database clock
	Create(ctx context.Context, feedback *entities.Feedback) error

	// ListByTraining returns the program's feedback newest first
	ListByTraining(ctx context.Context, trainingID string) ([]*entities.Feedback, error)
}
