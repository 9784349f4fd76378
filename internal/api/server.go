// Package api provides the REST API and WebSocket server for the project
// flow service.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/FMSoblaci/oblat-project-flow/internal/auth"
	"github.com/FMSoblaci/oblat-project-flow/internal/blob"
	"github.com/FMSoblaci/oblat-project-flow/internal/db"
	flowerrors "github.com/FMSoblaci/oblat-project-flow/internal/errors"
	"github.com/FMSoblaci/oblat-project-flow/internal/events"
)

// DefaultMaxUploadBytes caps attachment uploads when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Server is the project flow API server.
type Server struct {
	addr   string
	origin string
	mux    *http.ServeMux
	logger *slog.Logger

	store     *db.Store
	auth      *auth.Service
	blobs     *blob.Store
	publisher events.Publisher
	wsHandler *WSHandler

	statsCache *statsCache

	maxUploadBytes int64
}

// Config holds server configuration.
type Config struct {
	Addr          string
	AllowedOrigin string
	Logger        *slog.Logger

	Store     *db.Store
	Auth      *auth.Service
	Blobs     *blob.Store
	Publisher events.Publisher

	// StatsTTL is how long computed dashboard counts are cached.
	StatsTTL time.Duration

	// MaxUploadBytes caps a single attachment upload.
	MaxUploadBytes int64
}

// New creates a new API server.
func New(cfg *Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pub := cfg.Publisher
	if pub == nil {
		pub = events.NewMemoryPublisher()
	}

	origin := cfg.AllowedOrigin
	if origin == "" {
		origin = "*"
	}

	statsTTL := cfg.StatsTTL
	if statsTTL <= 0 {
		statsTTL = 5 * time.Second
	}

	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUploadBytes
	}

	s := &Server{
		addr:           cfg.Addr,
		origin:         origin,
		mux:            http.NewServeMux(),
		logger:         logger,
		store:          cfg.Store,
		auth:           cfg.Auth,
		blobs:          cfg.Blobs,
		publisher:      pub,
		statsCache:     newStatsCache(cfg.Store, statsTTL),
		maxUploadBytes: maxUpload,
	}

	s.wsHandler = NewWSHandler(pub, logger)

	s.registerRoutes()
	return s
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", s.origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	// Health check
	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))

	// Auth and profile
	s.mux.HandleFunc("POST /api/auth/signup", cors(s.handleSignUp))
	s.mux.HandleFunc("POST /api/auth/signin", cors(s.handleSignIn))
	s.mux.HandleFunc("POST /api/auth/signout", cors(s.requireAuth(s.handleSignOut)))
	s.mux.HandleFunc("GET /api/auth/session", cors(s.requireAuth(s.handleGetSession)))
	s.mux.HandleFunc("PUT /api/auth/profile", cors(s.requireAuth(s.handleUpdateProfile)))

	// Tasks
	s.mux.HandleFunc("GET /api/tasks", cors(s.requireAuth(s.handleListTasks)))
	s.mux.HandleFunc("POST /api/tasks", cors(s.requireCap(auth.CapCreateTask, s.handleCreateTask)))
	s.mux.HandleFunc("GET /api/tasks/{id}", cors(s.requireAuth(s.handleGetTask)))
	s.mux.HandleFunc("PATCH /api/tasks/{id}", cors(s.requireAuth(s.handleUpdateTask)))
	s.mux.HandleFunc("DELETE /api/tasks/{id}", cors(s.requireAuth(s.handleDeleteTask)))

	// Subtasks
	s.mux.HandleFunc("GET /api/tasks/{id}/subtasks", cors(s.requireAuth(s.handleListSubtasks)))
	s.mux.HandleFunc("POST /api/tasks/{id}/subtasks", cors(s.requireAuth(s.handleCreateSubtask)))
	s.mux.HandleFunc("GET /api/tasks/{id}/progress", cors(s.requireAuth(s.handleGetTaskProgress)))
	s.mux.HandleFunc("PATCH /api/subtasks/{id}", cors(s.requireAuth(s.handleUpdateSubtask)))
	s.mux.HandleFunc("DELETE /api/subtasks/{id}", cors(s.requireAuth(s.handleDeleteSubtask)))

	// Task comments and attachments
	s.mux.HandleFunc("GET /api/tasks/{id}/comments", cors(s.requireAuth(s.handleListComments)))
	s.mux.HandleFunc("POST /api/tasks/{id}/comments", cors(s.requireAuth(s.handleCreateComment)))
	s.mux.HandleFunc("POST /api/tasks/{id}/attachments", cors(s.requireAuth(s.handleUploadAttachment)))

	// Bugs
	s.mux.HandleFunc("GET /api/bugs", cors(s.requireAuth(s.handleListBugs)))
	s.mux.HandleFunc("POST /api/bugs", cors(s.requireAuth(s.handleCreateBug)))
	s.mux.HandleFunc("GET /api/bugs/{id}", cors(s.requireAuth(s.handleGetBug)))
	s.mux.HandleFunc("PATCH /api/bugs/{id}", cors(s.requireAuth(s.handleUpdateBugStatus)))
	s.mux.HandleFunc("GET /api/tasks/{id}/bugs", cors(s.requireAuth(s.handleListTaskBugs)))

	// Milestones
	s.mux.HandleFunc("GET /api/milestones", cors(s.requireAuth(s.handleListMilestones)))
	s.mux.HandleFunc("POST /api/milestones", cors(s.requireAuth(s.handleCreateMilestone)))
	s.mux.HandleFunc("GET /api/milestones/{id}", cors(s.requireAuth(s.handleGetMilestone)))
	s.mux.HandleFunc("PUT /api/milestones/{id}", cors(s.requireAuth(s.handleUpdateMilestone)))
	s.mux.HandleFunc("DELETE /api/milestones/{id}", cors(s.requireAuth(s.handleDeleteMilestone)))

	// Activity feed
	s.mux.HandleFunc("GET /api/activities", cors(s.requireAuth(s.handleListActivities)))

	// Login audit (restricted)
	s.mux.HandleFunc("GET /api/login-logs", cors(s.requireCap(auth.CapViewLoginLogs, s.handleListLoginLogs)))

	// Dashboard stats
	s.mux.HandleFunc("GET /api/stats/dashboard", cors(s.requireAuth(s.handleGetDashboardStats)))
	s.mux.HandleFunc("GET /api/stats/tasks", cors(s.requireAuth(s.handleGetTaskStats)))
	s.mux.HandleFunc("GET /api/stats/bugs", cors(s.requireAuth(s.handleGetBugStats)))
	s.mux.HandleFunc("GET /api/stats/project", cors(s.requireAuth(s.handleGetProjectStats)))
	s.mux.HandleFunc("PUT /api/stats/project", cors(s.requireCap(auth.CapEditStats, s.handleSetProjectStats)))

	// WebSocket for real-time updates
	s.mux.HandleFunc("GET /api/ws", s.requireAuth(s.wsHandler.ServeHTTP))

	// Uploaded attachment files
	if s.blobs != nil {
		s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.blobs.Root()))))
	}
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.mux)
}

// sessionSweepInterval is how often expired session rows are purged while
// the server runs.
const sessionSweepInterval = time.Hour

// StartContext starts the API server with context for graceful shutdown.
func (s *Server) StartContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.mux,
	}

	s.purgeSessions()
	go s.sessionSweep(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
		s.publisher.Close()
	}()

	s.logger.Info("starting API server", "addr", s.addr)
	return server.ListenAndServe()
}

// purgeSessions drops expired session rows. Failures are logged; the
// server keeps serving.
func (s *Server) purgeSessions() {
	if err := s.store.PurgeExpiredSessions(); err != nil {
		s.logger.Warn("purge expired sessions failed", "error", err)
	}
}

// sessionSweep purges expired sessions periodically until ctx is done.
func (s *Server) sessionSweep(ctx context.Context) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.purgeSessions()
		}
	}
}

// Handler returns the root handler (for testing).
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// jsonResponseStatus writes a JSON response with a specific status code.
func (s *Server) jsonResponseStatus(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// jsonError writes a JSON error response.
func (s *Server) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// handleError inspects error type and writes the matching response.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var flowErr *flowerrors.FlowError
	if errors.As(err, &flowErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(flowErr.HTTPStatus())
		json.NewEncoder(w).Encode(map[string]string{
			"error": flowErr.What,
			"code":  string(flowErr.Code),
		})
		return
	}
	s.jsonError(w, err.Error(), http.StatusInternalServerError)
}

// recordActivity appends to the activity trail, logging storage failures
// without failing the request that triggered them.
func (s *Server) recordActivity(a *db.Activity) {
	if err := s.store.RecordActivity(a); err != nil {
		s.logger.Warn("activity record failed", "action", a.Action, "error", err)
	}
}
