package handlers_test

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/application/listing"
	"github.com/zatekoja/trainingportal/internal/application/services"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
)

// Mocks

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, sessionID string, input services.RegisterInput) (*services.AuthResult, error) {
	args := m.Called(ctx, sessionID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, sessionID, email, password string) (*services.AuthResult, error) {
	args := m.Called(ctx, sessionID, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type MockProgramService struct {
	mock.Mock
}

func (m *MockProgramService) ListPrograms(ctx context.Context, query string, page, pageSize int) (listing.Page[*entities.TrainingProgram], error) {
	args := m.Called(ctx, query, page, pageSize)
	return args.Get(0).(listing.Page[*entities.TrainingProgram]), args.Error(1)
}

func (m *MockProgramService) GetProgram(ctx context.Context, id string) (*entities.TrainingProgram, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TrainingProgram), args.Error(1)
}

func (m *MockProgramService) ListTrainers(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockProgramService) CreateProgram(ctx context.Context, input services.CreateProgramInput) (*entities.TrainingProgram, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TrainingProgram), args.Error(1)
}

type MockEnrollmentService struct {
	mock.Mock
}

func (m *MockEnrollmentService) State(ctx context.Context, user *entities.User, trainingID string) (*services.EnrollmentState, error) {
	args := m.Called(ctx, user, trainingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EnrollmentState), args.Error(1)
}

func (m *MockEnrollmentService) States(ctx context.Context, user *entities.User, trainingIDs []string) (map[string]*services.EnrollmentState, error) {
	args := m.Called(ctx, user, trainingIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*services.EnrollmentState), args.Error(1)
}

func (m *MockEnrollmentService) Enroll(ctx context.Context, user *entities.User, trainingID string) (*services.EnrollmentResult, error) {
	args := m.Called(ctx, user, trainingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.EnrollmentResult), args.Error(1)
}

type MockFeedbackService struct {
	mock.Mock
}

func (m *MockFeedbackService) Submit(ctx context.Context, author *entities.User, trainingID string, input services.FeedbackInput) (*entities.Feedback, error) {
	args := m.Called(ctx, author, trainingID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Feedback), args.Error(1)
}

func (m *MockFeedbackService) List(ctx context.Context, trainingID string) ([]*entities.Feedback, error) {
	args := m.Called(ctx, trainingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Feedback), args.Error(1)
}

type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) Trainee(ctx context.Context, user *entities.User) (*services.TraineeDashboard, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TraineeDashboard), args.Error(1)
}

func (m *MockDashboardService) Trainer(ctx context.Context, user *entities.User) (*services.TrainerDashboard, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TrainerDashboard), args.Error(1)
}

// Fixtures

var (
	trainee = &entities.User{ID: "u-trainee", Username: "tina", Email: "tina@example.com", UserType: entities.UserTypeTrainee}
	trainer = &entities.User{ID: "u-trainer", Username: "tom", Email: "tom@example.com", UserType: entities.UserTypeTrainer}
	admin   = &entities.User{ID: "u-admin", Username: "ada", Email: "ada@example.com", UserType: entities.UserTypeAdmin}
)

// signedIn attaches a signed-in principal for user to the request
func signedIn(req *http.Request, user *entities.User) *http.Request {
	state := &services.SessionState{
		Identity: &entities.Identity{UID: user.ID, Email: user.Email},
		User:     user,
	}
	ctx := middleware.WithPrincipal(req.Context(), &middleware.Principal{SessionID: "sid-1", State: state})
	return req.WithContext(ctx)
}

// anonymous attaches a signed-out principal to the request
func anonymous(req *http.Request) *http.Request {
	ctx := middleware.WithPrincipal(req.Context(), &middleware.Principal{SessionID: "sid-1", State: &services.SessionState{}})
	return req.WithContext(ctx)
}
