package routes

import (
	"net/http"

	"github.com/zatekoja/trainingportal/internal/api/handlers"
	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	authHandler      *handlers.AuthHandler
	programHandler   *handlers.ProgramHandler
	adminHandler     *handlers.AdminHandler
	feedbackHandler  *handlers.FeedbackHandler
	dashboardHandler *handlers.DashboardHandler

	// sseHandler is nil when streams are served by a separate process
	sseHandler *handlers.SSEHandler

	sessionMiddleware func(http.Handler) http.Handler
	loadersMiddleware func(http.Handler) http.Handler
	metrics           *observability.Metrics
}

// Middlewares are the request-scoped layers applied inside logging and tracing
type Middlewares struct {
	Session func(http.Handler) http.Handler
	Loaders func(http.Handler) http.Handler
}

// NewRouter creates a new router
func NewRouter(
	authHandler *handlers.AuthHandler,
	programHandler *handlers.ProgramHandler,
	adminHandler *handlers.AdminHandler,
	feedbackHandler *handlers.FeedbackHandler,
	dashboardHandler *handlers.DashboardHandler,
	sseHandler *handlers.SSEHandler,
	middlewares Middlewares,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		authHandler:       authHandler,
		programHandler:    programHandler,
		adminHandler:      adminHandler,
		feedbackHandler:   feedbackHandler,
		dashboardHandler:  dashboardHandler,
		sseHandler:        sseHandler,
		sessionMiddleware: middlewares.Session,
		loadersMiddleware: middlewares.Loaders,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.handleHealth()

	// Auth endpoints
	r.mux.HandleFunc("POST /api/auth/register", r.authHandler.Register)
	r.mux.HandleFunc("POST /api/auth/login", r.authHandler.Login)
	r.mux.HandleFunc("POST /api/auth/logout", r.authHandler.Logout)
	r.mux.HandleFunc("GET /api/auth/session", r.authHandler.Session)
	r.mux.HandleFunc("GET /api/nav", r.authHandler.Navigation)

	// Program endpoints
	r.mux.HandleFunc("GET /api/programs", r.programHandler.ListPrograms)
	r.mux.HandleFunc("GET /api/programs/{id}", r.programHandler.GetProgram)
	r.mux.HandleFunc("GET /api/programs/{id}/enrollment", r.programHandler.EnrollmentState)
	r.mux.HandleFunc("POST /api/programs/{id}/enroll", r.programHandler.Enroll)

	// Feedback endpoints
	r.mux.HandleFunc("GET /api/programs/{id}/feedback", r.feedbackHandler.ListFeedback)
	r.mux.HandleFunc("POST /api/programs/{id}/feedback", r.feedbackHandler.SubmitFeedback)

	// Admin endpoints
	r.mux.HandleFunc("GET /api/admin/programs", middleware.RequireRole(r.adminHandler.ListPrograms, entities.UserTypeAdmin))
	r.mux.HandleFunc("GET /api/admin/trainers", middleware.RequireRole(r.adminHandler.ListTrainers, entities.UserTypeAdmin))
	r.mux.HandleFunc("POST /api/admin/programs", middleware.RequireRole(r.adminHandler.CreateProgram, entities.UserTypeAdmin))

	// Dashboards
	r.mux.HandleFunc("GET /api/trainee/dashboard", middleware.RequireRole(r.dashboardHandler.TraineeDashboard, entities.UserTypeTrainee))
	r.mux.HandleFunc("GET /api/trainer/dashboard", middleware.RequireRole(r.dashboardHandler.TrainerDashboard, entities.UserTypeTrainer))

	if r.sseHandler != nil {
		r.handleStreams()
	}

	return r.wrap(r.mux)
}

// SetupStreamRoutes configures only the SSE endpoints
func (r *Router) SetupStreamRoutes() http.Handler {
	r.handleHealth()
	r.handleStreams()
	return r.wrap(r.mux)
}

func (r *Router) handleHealth() {
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})
}

func (r *Router) handleStreams() {
	r.mux.HandleFunc("GET /api/auth/stream", r.sseHandler.StreamAuthState)
	r.mux.HandleFunc("GET /api/programs/{id}/feedback/stream", r.sseHandler.StreamFeedback)
}

// wrap applies middleware in reverse order (last middleware wraps first)
func (r *Router) wrap(mux http.Handler) http.Handler {
	handler := mux
	if r.loadersMiddleware != nil {
		handler = r.loadersMiddleware(handler)
	}
	if r.sessionMiddleware != nil {
		handler = r.sessionMiddleware(handler)
	}
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so preflights never reach the session layer
	handler = middleware.CORSMiddleware(handler)

	return handler
}
