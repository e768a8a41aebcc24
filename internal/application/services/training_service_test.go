package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/trainingportal/internal/adapters/events"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/domain/providers"
	apperrors "github.com/zatekoja/trainingportal/pkg/errors"
)

func programList(n int) []*entities.TrainingProgram {
	programs := make([]*entities.TrainingProgram, n)
	for i := range programs {
		programs[i] = &entities.TrainingProgram{ID: fmt.Sprintf("p%d", i+1), TrainingArea: fmt.Sprintf("Area %d", i+1)}
	}
	return programs
}

func TestTrainingService_ListPrograms(t *testing.T) {
	ctx := context.Background()
	trainings := new(MockTrainingRepository)
	trainings.On("List", ctx).Return(programList(20), nil)
	service := services.NewTrainingService(trainings, new(MockUserRepository), events.NewLocalEventBus())

	page, err := service.ListPrograms(ctx, "", 1, 9)
	require.NoError(t, err)
	assert.Len(t, page.Items, 9)
	assert.Equal(t, []int{1, 2, 3}, page.PageButtons)

	page, err = service.ListPrograms(ctx, "area 2", 1, 9)
	require.NoError(t, err)
	assert.Len(t, page.Items, 2) // Area 2, Area 20

	page, err = service.ListPrograms(ctx, "zzz", 1, 9)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestTrainingService_ListProgramsFailure(t *testing.T) {
	ctx := context.Background()
	trainings := new(MockTrainingRepository)
	trainings.On("List", ctx).Return(nil, errors.New("connection refused"))
	service := services.NewTrainingService(trainings, new(MockUserRepository), events.NewLocalEventBus())

	_, err := service.ListPrograms(ctx, "", 1, 9)
	requireAppError(t, err, apperrors.ErrorTypeInternal, services.MsgLoadProgramsFailed)
}

func TestTrainingService_GetProgram(t *testing.T) {
	ctx := context.Background()
	trainings := new(MockTrainingRepository)
	trainings.On("GetByID", ctx, "missing").Return(nil, apperrors.NewNotFoundError("training not found"))
	service := services.NewTrainingService(trainings, new(MockUserRepository), events.NewLocalEventBus())

	_, err := service.GetProgram(ctx, "missing")
	requireAppError(t, err, apperrors.ErrorTypeNotFound, services.MsgProgramNotFound)
}

func TestTrainingService_CreateProgram(t *testing.T) {
	ctx := context.Background()
	trainer := &entities.User{ID: "t1", Username: "Grace", UserType: entities.UserTypeTrainer}

	t.Run("required fields", func(t *testing.T) {
		trainings := new(MockTrainingRepository)
		service := services.NewTrainingService(trainings, new(MockUserRepository), events.NewLocalEventBus())

		_, err := service.CreateProgram(ctx, services.CreateProgramInput{TrainingArea: "Cloud", TrainerID: "t1", Schedule: "2026-05-01T09:00"})
		requireAppError(t, err, apperrors.ErrorTypeValidation, services.MsgFillRequiredFields)
		trainings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("snapshots trainer name and announces the program", func(t *testing.T) {
		busCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		bus := events.NewLocalEventBus()
		updates, err := bus.Subscribe(busCtx, providers.EventChannelTrainings)
		require.NoError(t, err)

		trainings := new(MockTrainingRepository)
		users := new(MockUserRepository)
		users.On("GetByID", ctx, "t1").Return(trainer, nil)
		trainings.On("Create", ctx, mock.AnythingOfType("*entities.TrainingProgram")).Return(nil)
		service := services.NewTrainingService(trainings, users, bus)

		program, err := service.CreateProgram(ctx, services.CreateProgramInput{
			TrainingArea: "Cloud", TrainerID: "t1", Schedule: "2026-05-01T09:00", Venue: "Room 4",
		})
		require.NoError(t, err)

		assert.Equal(t, "Grace", program.TrainerName)
		assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), program.Schedule)
		assert.NotNil(t, program.RegisteredUsers)
		assert.Empty(t, program.RegisteredUsers)
		assert.Empty(t, program.Feedback)
		assert.False(t, program.CreatedAt.IsZero())

		select {
		case event := <-updates:
			assert.Equal(t, entities.EventTypeTrainingCreated, event.Type)
			assert.Equal(t, program.ID, event.SubjectID)
		case <-time.After(time.Second):
			t.Fatal("no training created event")
		}
	})

	t.Run("accepts RFC 3339 schedules", func(t *testing.T) {
		trainings := new(MockTrainingRepository)
		users := new(MockUserRepository)
		users.On("GetByID", ctx, "t1").Return(trainer, nil)
		trainings.On("Create", ctx, mock.Anything).Return(nil)
		service := services.NewTrainingService(trainings, users, events.NewLocalEventBus())

		program, err := service.CreateProgram(ctx, services.CreateProgramInput{
			TrainingArea: "Cloud", TrainerID: "t1", Schedule: "2026-05-01T09:00:00+02:00", Venue: "Room 4",
		})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2026, 5, 1, 7, 0, 0, 0, time.UTC), program.Schedule)
	})

	t.Run("invalid schedule", func(t *testing.T) {
		service := services.NewTrainingService(new(MockTrainingRepository), new(MockUserRepository), events.NewLocalEventBus())

		_, err := service.CreateProgram(ctx, services.CreateProgramInput{
			TrainingArea: "Cloud", TrainerID: "t1", Schedule: "next tuesday", Venue: "Room 4",
		})
		requireAppError(t, err, apperrors.ErrorTypeValidation, services.MsgInvalidSchedule)
	})

	t.Run("selected user is not a trainer", func(t *testing.T) {
		users := new(MockUserRepository)
		users.On("GetByID", ctx, "u2").Return(&entities.User{ID: "u2", UserType: entities.UserTypeTrainee}, nil)
		service := services.NewTrainingService(new(MockTrainingRepository), users, events.NewLocalEventBus())

		_, err := service.CreateProgram(ctx, services.CreateProgramInput{
			TrainingArea: "Cloud", TrainerID: "u2", Schedule: "2026-05-01T09:00", Venue: "Room 4",
		})
		requireAppError(t, err, apperrors.ErrorTypeValidation, services.MsgUnknownTrainer)
	})

	t.Run("write failure", func(t *testing.T) {
		trainings := new(MockTrainingRepository)
		users := new(MockUserRepository)
		users.On("GetByID", ctx, "t1").Return(trainer, nil)
		trainings.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))
		service := services.NewTrainingService(trainings, users, events.NewLocalEventBus())

		_, err := service.CreateProgram(ctx, services.CreateProgramInput{
			TrainingArea: "Cloud", TrainerID: "t1", Schedule: "2026-05-01T09:00", Venue: "Room 4",
		})
		requireAppError(t, err, apperrors.ErrorTypeInternal, services.MsgCreateProgramFailed)
		trainings.AssertNumberOfCalls(t, "Create", 1)
	})
}
