package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zatekoja/trainingportal/internal/api/middleware"
	"github.com/zatekoja/trainingportal/internal/domain/entities"
	"github.com/zatekoja/trainingportal/internal/infrastructure/observability"
)

const (
	defaultHeartbeatInterval = 30 * time.Second

	sseEventConnected = "connected"
	sseEventHeartbeat = "heartbeat"
	sseEventAuthState = "auth_state"
	sseEventSnapshot  = "snapshot"
)

// AuthWatcher streams sign-in state for a client session
type AuthWatcher interface {
	Watch(ctx context.Context, sessionID string) (<-chan *entities.Identity, error)
}

// FeedbackWatcher streams feedback snapshots for a program
type FeedbackWatcher interface {
	Watch(ctx context.Context, trainingID string) (<-chan []*entities.Feedback, error)
}

// SSEHandler handles Server-Sent Events for auth state and feedback updates
type SSEHandler struct {
	auth      AuthWatcher
	feedback  FeedbackWatcher
	heartbeat time.Duration
	metrics   *observability.Metrics
	clients   map[string]int // stream key -> open connections
	mu        sync.RWMutex
}

// NewSSEHandler creates a new SSE handler. A non-positive heartbeat uses 30s.
func NewSSEHandler(auth AuthWatcher, feedback FeedbackWatcher, heartbeat time.Duration, metrics *observability.Metrics) *SSEHandler {
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeatInterval
	}
	return &SSEHandler{
		auth:      auth,
		feedback:  feedback,
		heartbeat: heartbeat,
		metrics:   metrics,
		clients:   make(map[string]int),
	}
}

// StreamAuthState emits the session's current sign-in state and every change after it
// GET /api/auth/stream
func (h *SSEHandler) StreamAuthState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	sessionID := middleware.PrincipalFromContext(r.Context()).SessionID
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session is required")
		return
	}

	states, err := h.auth.Watch(r.Context(), sessionID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	serveStream(h, w, r, flusher, "auth", sseEventAuthState, states, func(identity *entities.Identity) interface{} {
		return map[string]interface{}{"user": identity}
	})
}

// StreamFeedback emits the program's full feedback list on connect and after every new entry
// GET /api/programs/{id}/feedback/stream
func (h *SSEHandler) StreamFeedback(w http.ResponseWriter, r *http.Request) {
	trainingID := r.PathValue("id")
	if trainingID == "" {
		respondWithError(w, http.StatusBadRequest, "training ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	snapshots, err := h.feedback.Watch(r.Context(), trainingID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}

	serveStream(h, w, r, flusher, "feedback:"+trainingID, sseEventSnapshot, snapshots, func(entries []*entities.Feedback) interface{} {
		return newFeedbackList(entries)
	})
}

// serveStream writes each value from source as an SSE event until the client
// disconnects or source closes
func serveStream[T any](h *SSEHandler, w http.ResponseWriter, r *http.Request, flusher http.Flusher, key, eventType string, source <-chan T, render func(T) interface{}) {
	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	h.registerClient(key)
	defer h.unregisterClient(key)

	observability.TrackStream(ctx, h.metrics, eventType, 1)
	defer observability.TrackStream(context.WithoutCancel(ctx), h.metrics, eventType, -1)

	h.sendEvent(w, sseEventConnected, map[string]interface{}{
		"stream":    key,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Str("stream", key).Msg("Client disconnected from stream")
			return
		case <-ticker.C:
			h.sendEvent(w, sseEventHeartbeat, map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case value, ok := <-source:
			if !ok {
				logger.Debug().Str("stream", key).Msg("Stream source closed")
				return
			}
			h.sendEvent(w, eventType, render(value))
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) registerClient(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[key]++
}

func (h *SSEHandler) unregisterClient(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[key]--
	if h.clients[key] <= 0 {
		delete(h.clients, key)
	}
}

// sendEvent sends an SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		observability.GetLogger().Error().Err(err).Str("event", eventType).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients for debugging
func (h *SSEHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, n := range h.clients {
		count += n
	}
	return count
}
