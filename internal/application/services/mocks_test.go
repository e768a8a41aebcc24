package services_test

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// Mocks

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) ListByType(ctx context.Context, userType entities.UserType) ([]*entities.User, error) {
	args := m.Called(ctx, userType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

type MockTrainingRepository struct {
	mock.Mock
}

func (m *MockTrainingRepository) Create(ctx context.Context, program *entities.TrainingProgram) error {
	return m.Called(ctx, program).Error(0)
}

func (m *MockTrainingRepository) GetByID(ctx context.Context, id string) (*entities.TrainingProgram, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TrainingProgram), args.Error(1)
}

func (m *MockTrainingRepository) GetByIDs(ctx context.Context, ids []string) ([]*entities.TrainingProgram, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TrainingProgram), args.Error(1)
}

func (m *MockTrainingRepository) List(ctx context.Context) ([]*entities.TrainingProgram, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TrainingProgram), args.Error(1)
}

func (m *MockTrainingRepository) ListByTrainer(ctx context.Context, trainerID string) ([]*entities.TrainingProgram, error) {
	args := m.Called(ctx, trainerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.TrainingProgram), args.Error(1)
}

type MockRegistrationRepository struct {
	mock.Mock
}

func (m *MockRegistrationRepository) Create(ctx context.Context, registration *entities.Registration) error {
	return m.Called(ctx, registration).Error(0)
}

func (m *MockRegistrationRepository) Exists(ctx context.Context, traineeID, trainingID string) (bool, error) {
	args := m.Called(ctx, traineeID, trainingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRegistrationRepository) ListByTrainee(ctx context.Context, traineeID string) ([]*entities.Registration, error) {
	args := m.Called(ctx, traineeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Registration), args.Error(1)
}

func (m *MockRegistrationRepository) ListByTrainingIDs(ctx context.Context, trainingIDs []string) ([]*entities.Registration, error) {
	args := m.Called(ctx, trainingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Registration), args.Error(1)
}

type MockFeedbackRepository struct {
	mock.Mock
}

func (m *MockFeedbackRepository) Create(ctx context.Context, feedback *entities.Feedback) error {
	return m.Called(ctx, feedback).Error(0)
}

func (m *MockFeedbackRepository) ListByTraining(ctx context.Context, trainingID string) ([]*entities.Feedback, error) {
	args := m.Called(ctx, trainingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Feedback), args.Error(1)
}

type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) SignUp(ctx context.Context, sessionID, email, password string) (*entities.Session, string, error) {
	args := m.Called(ctx, sessionID, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entities.Session), args.String(1), args.Error(2)
}

func (m *MockIdentityProvider) SignIn(ctx context.Context, sessionID, email, password string) (*entities.Session, string, error) {
	args := m.Called(ctx, sessionID, email, password)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*entities.Session), args.String(1), args.Error(2)
}

func (m *MockIdentityProvider) SignOut(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockIdentityProvider) Verify(ctx context.Context, token string) (*entities.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Session), args.Error(1)
}

func (m *MockIdentityProvider) CurrentIdentity(ctx context.Context, sessionID string) (*entities.Identity, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Identity), args.Error(1)
}

func (m *MockIdentityProvider) OnAuthStateChanged(ctx context.Context, sessionID string) (<-chan *entities.Identity, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.Identity), args.Error(1)
}
