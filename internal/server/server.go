package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shahramhal/ai-career-coach/internal/advice"
	"github.com/shahramhal/ai-career-coach/internal/cache"
	"github.com/shahramhal/ai-career-coach/internal/config"
	"github.com/shahramhal/ai-career-coach/internal/db"
	"github.com/shahramhal/ai-career-coach/internal/embedding"
	"github.com/shahramhal/ai-career-coach/internal/mail"
	"github.com/shahramhal/ai-career-coach/internal/queue"
	"github.com/shahramhal/ai-career-coach/internal/server/middleware"
	"github.com/shahramhal/ai-career-coach/internal/server/ratelimit"
	"github.com/shahramhal/ai-career-coach/internal/storage"
	"github.com/shahramhal/ai-career-coach/internal/worker"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	db             *db.DB
	cache          *cache.Cache
	store          storage.Store
	queue          *queue.Queue
	pipeline       *worker.Pipeline
	mailer         mail.Mailer
	embedder       embedding.Embedder
	coach          *advice.Coach
	logger         *zap.Logger
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	userService    *UserService
	authHandler    *AuthHandler
	validator      *validator.Validate
	allowedOrigins []string
}

// Config holds server configuration
type Config struct {
	Port int
}

// New creates a new server instance. All other settings come from the
// environment, following the per-concern config constructors.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (*Server, error) {
	serverConfig, err := config.NewServerConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	database, err := db.Connect(ctx, serverConfig.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisConfig, err := config.NewRedisConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load redis config: %w", err)
	}
	redisCache, err := cache.New(ctx, redisConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	storageConfig, err := config.NewStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	store, err := storage.New(ctx, storageConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	smtpConfig, err := config.NewSMTPConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load smtp config: %w", err)
	}
	mailer := mail.New(smtpConfig, logger)

	s := &Server{
		db:             database,
		cache:          redisCache,
		store:          store,
		mailer:         mailer,
		logger:         logger,
		validator:      validator.New(),
		allowedOrigins: serverConfig.AllowedOrigins,
	}

	s.rateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	s.userService = NewUserService(database, passwordConfig)

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}
	s.jwtService = NewJWTService(jwtConfig)

	s.authHandler = NewAuthHandler(s.userService, s.jwtService, redisCache, mailer, database, logger)

	// Queue-driven parsing when AMQP is configured; synchronous single-shot
	// parsing in the request path otherwise.
	queueConfig, err := config.NewQueueConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load queue config: %w", err)
	}
	if queueConfig.Enabled() {
		q, err := queue.Connect(queueConfig.URL, queueConfig.QueueName, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to queue: %w", err)
		}
		s.queue = q
	} else {
		s.pipeline = worker.New(database, store, 1, logger)
	}

	if serverConfig.GeminiAPIKey != "" {
		embedder, err := embedding.NewGeminiEmbedder(ctx, serverConfig.GeminiAPIKey)
		if err != nil {
			logger.Warn("embedding reranker disabled", zap.Error(err))
		} else {
			s.embedder = embedder
		}
		coach, err := advice.NewCoach(ctx, serverConfig.GeminiAPIKey)
		if err != nil {
			logger.Warn("cv advice disabled", zap.Error(err))
		} else {
			s.coach = coach
		}
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second, // headroom for synchronous CV parsing
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// routes builds the ServeMux. Auth-gated routes are wrapped with the JWT
// middleware; everything else is public.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	authed := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	mux.HandleFunc("GET /health", s.handleHealth)

	// Authentication
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.HandleFunc("POST /auth/refresh", s.authHandler.Refresh)
	mux.HandleFunc("POST /auth/forgot-password", s.authHandler.ForgotPassword)
	mux.HandleFunc("POST /auth/reset-password", s.authHandler.ResetPassword)
	mux.Handle("POST /auth/verify-email", protect(s.authHandler.VerifyEmail))
	mux.Handle("POST /auth/verify-email/request", protect(s.authHandler.RequestVerification))
	mux.Handle("PUT /auth/password", protect(s.authHandler.UpdatePassword))

	// Account
	mux.Handle("GET /users/me", protect(s.handleGetMe))
	mux.Handle("PUT /users/me", protect(s.handleUpdateMe))
	mux.Handle("DELETE /users/me", protect(s.handleDeleteMe))

	// Career profile
	mux.Handle("GET /profile", protect(s.handleGetProfile))
	mux.Handle("PUT /profile", protect(s.handleUpdateProfile))
	mux.Handle("POST /profile/avatar", protect(s.handleUploadAvatar))
	mux.Handle("GET /profile/avatar", protect(s.handleGetAvatar))

	// Job postings: reads are public, writes need an account
	mux.HandleFunc("GET /jobs", s.handleListJobPostings)
	mux.HandleFunc("GET /jobs/{id}", s.handleGetJobPosting)
	mux.Handle("POST /jobs", protect(s.handleCreateJobPosting))
	mux.Handle("PUT /jobs/{id}", protect(s.handleUpdateJobPosting))
	mux.Handle("DELETE /jobs/{id}", protect(s.handleDeleteJobPosting))
	mux.Handle("POST /jobs/ingest", protect(s.handleIngestJobPosting))

	// CVs and parsing
	mux.Handle("POST /cvs", protect(s.handleUploadCV))
	mux.Handle("GET /cvs", protect(s.handleListCVs))
	mux.Handle("GET /cvs/{id}", protect(s.handleGetCV))
	mux.Handle("DELETE /cvs/{id}", protect(s.handleDeleteCV))
	mux.Handle("GET /cvs/{id}/ats", protect(s.handleGetATSReport))
	mux.Handle("POST /cvs/{id}/advice", protect(s.handleCVAdvice))

	// Matching
	mux.Handle("GET /cvs/{id}/matches", protect(s.handleListMatches))
	mux.Handle("GET /cvs/{id}/matches/{job_id}", protect(s.handleMatchOne))

	// Salary prediction mirrors the original public ML endpoint
	mux.HandleFunc("POST /salary/predict", s.handlePredictSalary)

	// Analytics
	mux.Handle("GET /analytics/summary", protect(s.handleAnalyticsSummary))

	return mux
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.embedder != nil {
		_ = s.embedder.Close()
	}
	if s.coach != nil {
		_ = s.coach.Close()
	}
	_ = s.cache.Close()
	s.db.Close()

	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers for the configured origins.
func (s *Server) withCORS(next http.Handler) http.Handler {
	allowAll := len(s.allowedOrigins) == 1 && s.allowedOrigins[0] == "*"

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case allowAll:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && s.originAllowed(origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}

// withRateLimit rejects clients that exceed their per-endpoint budget.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)
		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)

		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds structured request logging.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("remote", r.RemoteAddr))
	})
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps a typed error to its HTTP response.
func (s *Server) serviceError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("internal error", zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// recordEvent appends an analytics event. Failures are logged and never
// surfaced to the client.
func (s *Server) recordEvent(ctx context.Context, userID uuid.UUID, eventType string, payload any) {
	if err := s.db.InsertEvent(ctx, userID, eventType, payload); err != nil {
		s.logger.Warn("failed to record analytics event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is deliberately not
// trusted without a proxy allowlist.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	s.logger.Warn("rate limit exceeded",
		zap.Int("limit", info.Limit),
		zap.Int("remaining", info.Remaining))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
