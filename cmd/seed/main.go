package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/zatekoja/trainingportal/internal/adapters/cache"
	"github.com/zatekoja/trainingportal/internal/adapters/database"
	"github.com/zatekoja/trainingportal/internal/adapters/events"
	"github.com/zatekoja/trainingportal/internal/adapters/identity"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/infrastructure/clients/postgres"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
	"github.com/zatekoja/trainingportal/pkg/config"
)

const seedPassword = "password123"

type seedUser struct {
	username string
	email    string
	userType entities.UserType
}

var seedUsers = []seedUser{
	{"admin", "admin@example.com", entities.UserTypeAdmin},
	{"grace", "grace@example.com", entities.UserTypeTrainer},
	{"linus", "linus@example.com", entities.UserTypeTrainer},
	{"ada", "ada@example.com", entities.UserTypeTrainee},
	{"ken", "ken@example.com", entities.UserTypeTrainee},
	{"barbara", "barbara@example.com", entities.UserTypeTrainee},
}

var seedAreas = []string{
	"Go Fundamentals",
	"Concurrency in Go",
	"PostgreSQL Performance",
	"Redis for Application Caching",
	"Observability with OpenTelemetry",
	"Secure Web Sessions",
	"Event-Driven Architecture",
	"Testing Strategies",
	"Docker Basics",
	"Kubernetes Operations",
	"API Design",
	"Incident Response",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger("training-portal-seed", cfg.Server.Env)
	logger := observability.GetLogger()

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := observability.WithLogger(context.Background(), *logger)

	if os.Getenv("RESET_DB") == "true" {
		logger.Info().Msg("RESET_DB=true detected, truncating tables before seeding")
		_, err := pgClient.DB().ExecContext(ctx, `
			TRUNCATE TABLE
				feedback,
				registrations,
				trainings,
				users,
				accounts
			CASCADE
		`)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to reset tables")
		}
	}

	// Sessions created while seeding are throwaway, so they stay in process
	bus := events.NewLocalEventBus()
	defer bus.Close()

	userAdapter := database.NewUserAdapter(pgClient)
	trainingAdapter := database.NewTrainingAdapter(pgClient)
	registrationAdapter := database.NewRegistrationAdapter(pgClient)

	sessions := cache.NewMemoryAdapter()
	defer sessions.Close()

	identityProvider := identity.NewProvider(database.NewAccountAdapter(pgClient), sessions, bus, cfg.Auth)
	authService := services.NewAuthService(identityProvider, userAdapter)
	trainingService := services.NewTrainingService(trainingAdapter, userAdapter, bus)
	enrollmentService := services.NewEnrollmentService(registrationAdapter, trainingAdapter, bus, nil)
	feedbackService := services.NewFeedbackService(database.NewFeedbackAdapter(pgClient), trainingAdapter, bus, nil)

	// 1. Seed users
	var trainers, trainees []*entities.User
	for _, u := range seedUsers {
		user, err := ensureUser(ctx, authService, u)
		if err != nil {
			logger.Error().Err(err).Str("email", u.email).Msg("Failed to seed user")
			continue
		}
		switch user.UserType {
		case entities.UserTypeTrainer:
			trainers = append(trainers, user)
		case entities.UserTypeTrainee:
			trainees = append(trainees, user)
		}
	}
	if len(trainers) == 0 {
		logger.Fatal().Msg("No trainers available, cannot seed programs")
	}

	// 2. Seed programs, one week apart starting next week
	start := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 7).Add(9 * time.Hour)
	var programs []*entities.TrainingProgram
	for i, area := range seedAreas {
		trainer := trainers[i%len(trainers)]
		prerequisites := ""
		if i%3 != 0 {
			prerequisites = "Basic programming experience"
		}
		program, err := trainingService.CreateProgram(ctx, services.CreateProgramInput{
			TrainingArea:  area,
			TrainerID:     trainer.ID,
			Schedule:      start.AddDate(0, 0, 7*i).Format(time.RFC3339),
			Venue:         fmt.Sprintf("Room %d", 100+i),
			Prerequisites: prerequisites,
		})
		if err != nil {
			logger.Error().Err(err).Str("training_area", area).Msg("Failed to create program")
			continue
		}
		programs = append(programs, program)
	}

	// 3. Enroll trainees and leave feedback
	comments := []string{"Clear and practical.", "Good pace, great examples.", "Would recommend to the team."}
	for i, trainee := range trainees {
		for j, program := range programs {
			if (i+j)%2 != 0 {
				continue
			}
			if _, err := enrollmentService.Enroll(ctx, trainee, program.ID); err != nil {
				logger.Error().Err(err).Str("trainee", trainee.Username).Str("training_id", program.ID).Msg("Failed to enroll")
				continue
			}
			if j%4 == 0 {
				_, err := feedbackService.Submit(ctx, trainee, program.ID, services.FeedbackInput{
					Rating:  3 + (i+j)%3,
					Comment: comments[(i+j)%len(comments)],
				})
				if err != nil {
					logger.Error().Err(err).Str("training_id", program.ID).Msg("Failed to submit feedback")
				}
			}
		}
	}

	logger.Info().
		Int("trainers", len(trainers)).
		Int("trainees", len(trainees)).
		Int("programs", len(programs)).
		Msg("Seeding completed successfully")
}

// ensureUser registers u, or signs in when the account already exists
func ensureUser(ctx context.Context, auth *services.AuthService, u seedUser) (*entities.User, error) {
	sessionID := uuid.New().String()
	result, err := auth.Register(ctx, sessionID, services.RegisterInput{
		Username: u.username,
		Email:    u.email,
		Password: seedPassword,
		UserType: u.userType,
	})
	if err != nil {
		result, err = auth.Login(ctx, sessionID, u.email, seedPassword)
		if err != nil {
			return nil, err
		}
	}
	if result.User == nil {
		return nil, fmt.Errorf("account %s has no profile", u.email)
	}
	return result.User, nil
}
