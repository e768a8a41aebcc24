package services

import (
	"context"
	"sort"
	"time"

	"github.com/zatekoja/trainingportal/internal/application/loaders"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/repositories"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

const MsgLoadDashboardFailed = "Failed to load dashboard."

// EnrolledProgram is a program on the trainee dashboard
type EnrolledProgram struct {
	Program  *entities.TrainingProgram
	Upcoming bool
}

// TraineeDashboard lists the caller's enrolled programs by schedule
type TraineeDashboard struct {
	User     *entities.User
	Programs []EnrolledProgram
}

// TrainerProgram is a program on the trainer dashboard with the display
// names of its registered trainees, in registration order
type TrainerProgram struct {
	Program  *entities.TrainingProgram
	Trainees []string
}

// TrainerDashboard lists the caller's programs
type TrainerDashboard struct {
	User     *entities.User
	Programs []TrainerProgram
}

// DashboardService builds the role dashboards
type DashboardService struct {
	trainings     repositories.TrainingRepository
	registrations repositories.RegistrationRepository
	users         repositories.UserRepository
	now           func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	trainings repositories.TrainingRepository,
	registrations repositories.RegistrationRepository,
	users repositories.UserRepository,
) *DashboardService {
	return &DashboardService{
		trainings:     trainings,
		registrations: registrations,
		users:         users,
		now:           time.Now,
	}
}

func (s *DashboardService) loadersFor(ctx context.Context) *loaders.Loaders {
	if l := loaders.For(ctx); l != nil {
		return l
	}
	return loaders.NewLoaders(s.users, s.trainings)
}

// Trainee resolves the caller's registrations to programs in one batch.
// Registrations whose program no longer exists are skipped.
func (s *DashboardService) Trainee(ctx context.Context, user *entities.User) (*TraineeDashboard, error) {
	registrations, err := s.registrations.ListByTrainee(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgLoadDashboardFailed, err)
	}

	ids := make([]string, 0, len(registrations))
	for _, r := range registrations {
		ids = append(ids, r.TrainingID)
	}

	programs, err := loaders.LoadFound(ctx, s.loadersFor(ctx).TrainingLoader, ids)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgLoadDashboardFailed, err)
	}

	sort.SliceStable(programs, func(i, j int) bool {
		return programs[i].Schedule.Before(programs[j].Schedule)
	})

	now := s.now()
	enrolled := make([]EnrolledProgram, 0, len(programs))
	for _, p := range programs {
		enrolled = append(enrolled, EnrolledProgram{Program: p, Upcoming: p.IsUpcoming(now)})
	}

	return &TraineeDashboard{User: user, Programs: enrolled}, nil
}

// Trainer loads the caller's programs, all their registrations in one
// query and the trainees through the user loader. Registrations whose
// trainee no longer exists are skipped.
func (s *DashboardService) Trainer(ctx context.Context, user *entities.User) (*TrainerDashboard, error) {
	programs, err := s.trainings.ListByTrainer(ctx, user.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgLoadDashboardFailed, err)
	}

	programIDs := make([]string, 0, len(programs))
	for _, p := range programs {
		programIDs = append(programIDs, p.ID)
	}

	registrations, err := s.registrations.ListByTrainingIDs(ctx, programIDs)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgLoadDashboardFailed, err)
	}

	byProgram := make(map[string][]string, len(programs))
	traineeIDs := make([]string, 0, len(registrations))
	seen := make(map[string]bool, len(registrations))
	for _, r := range registrations {
		byProgram[r.TrainingID] = append(byProgram[r.TrainingID], r.TraineeID)
		if !seen[r.TraineeID] {
			seen[r.TraineeID] = true
			traineeIDs = append(traineeIDs, r.TraineeID)
		}
	}

	trainees, err := loaders.LoadFound(ctx, s.loadersFor(ctx).UserLoader, traineeIDs)
	if err != nil {
		return nil, apperrors.NewInternalError(MsgLoadDashboardFailed, err)
	}
	names := make(map[string]string, len(trainees))
	for _, t := range trainees {
		names[t.ID] = t.DisplayName()
	}

	result := make([]TrainerProgram, 0, len(programs))
	for _, p := range programs {
		list := []string{}
		for _, id := range byProgram[p.ID] {
			if name, ok := names[id]; ok {
				list = append(list, name)
			}
		}
		result = append(result, TrainerProgram{Program: p, Trainees: list})
	}

	return &TrainerDashboard{User: user, Programs: result}, nil
}
