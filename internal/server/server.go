// Package server provides the HTTP API for the clinic site: the IV drip
// builder, walk-in check-in, the staff queue console, wait times, the
// Health Hub and translations.
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

	"github.com/optimumcare/clinic-site/internal/catalog"
	"github.com/optimumcare/clinic-site/internal/config"
	"github.com/optimumcare/clinic-site/internal/db"
	"github.com/optimumcare/clinic-site/internal/i18n"
	"github.com/optimumcare/clinic-site/internal/queue"
	"github.com/optimumcare/clinic-site/internal/realtime"
	"github.com/optimumcare/clinic-site/internal/server/middleware"
	"github.com/optimumcare/clinic-site/internal/server/ratelimit"
	"go.uber.org/zap"
)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	store       Store
	logger      *zap.Logger
	rateLimiter *ratelimit.Limiter

	catalog    *catalog.Cache
	board      *queue.Board
	queueFeed  *realtime.Feed[queue.Event]
	statusFeed *realtime.Feed[db.ClinicStatus]
	stopBoard  func()
	i18n       *i18n.Bundle

	jwtService   *JWTService
	staffService *StaffService
	authHandler  *AuthHandler

	allowedOrigin   string
	defaultLanguage i18n.Language
	heartbeat       time.Duration
}

// Config holds server configuration
type Config struct {
	Port            int
	DatabaseURL     string
	AllowedOrigin   string
	DefaultLanguage string
	CatalogCacheTTL time.Duration
	Logger          *zap.Logger
}

// New connects to the database and creates a server instance.
func New(ctx context.Context, cfg Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	s, err := NewWithStore(ctx, database, cfg, jwtConfig, passwordConfig)
	if err != nil {
		database.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore creates a server on top of an existing store.
func NewWithStore(ctx context.Context, store Store, cfg Config, jwtConfig *config.JWTConfig, passwordConfig *config.PasswordConfig) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bundle, err := i18n.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	waiting, err := store.ListWaitingPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load patient queue: %w", err)
	}

	lang, ok := i18n.Parse(cfg.DefaultLanguage)
	if !ok {
		lang = i18n.English
	}

	s := &Server{
		store:           store,
		logger:          logger,
		rateLimiter:     ratelimit.NewLimiter(ratelimit.LoadConfig()),
		catalog:         catalog.NewCache(store, cfg.CatalogCacheTTL),
		board:           queue.NewBoard(waiting),
		queueFeed:       realtime.NewFeed[queue.Event](),
		statusFeed:      realtime.NewFeed[db.ClinicStatus](),
		i18n:            bundle,
		allowedOrigin:   cfg.AllowedOrigin,
		defaultLanguage: lang,
		heartbeat:       25 * time.Second,
	}
	s.stopBoard = s.queueFeed.Subscribe(s.board.Apply)

	s.jwtService = NewJWTService(jwtConfig)
	s.staffService = NewStaffService(store, passwordConfig)
	s.authHandler = NewAuthHandler(s.staffService, s.jwtService, logger)

	s.handler = s.withLogging(s.withCORS(s.withRateLimit(s.routes())))
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: SSE streams stay open.
		IdleTimeout: 60 * time.Second,
	}

	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	validator := s.jwtService.AsTokenValidator()
	staff := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(validator)(h)
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(validator)(middleware.RequireRole("admin")(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// IV builder
	mux.HandleFunc("GET /iv/catalog", s.handleIVCatalog)
	mux.HandleFunc("POST /iv/quote", s.handleIVQuote)

	// Walk-in check-in and wait time
	mux.HandleFunc("POST /check-in", s.handleCheckIn)
	mux.HandleFunc("GET /wait-time", s.handleGetWaitTime)
	mux.HandleFunc("GET /wait-time/stream", s.handleWaitTimeStream)

	// Public content
	mux.HandleFunc("GET /articles", s.handleListArticles)
	mux.HandleFunc("GET /articles/{slug}", s.handleGetArticle)
	mux.HandleFunc("GET /testimonials", s.handleListTestimonials)
	mux.HandleFunc("GET /i18n/{lang}", s.handleTranslations)

	// Staff
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("GET /admin/me", staff(s.authHandler.Me))
	mux.Handle("PUT /admin/password", staff(s.authHandler.UpdatePassword))
	mux.Handle("GET /admin/queue", staff(s.handleListQueue))
	mux.Handle("GET /admin/queue/stream", staff(s.handleQueueStream))
	mux.Handle("POST /admin/queue/{id}/seen", staff(s.handleMarkSeen))
	mux.Handle("DELETE /admin/queue/{id}", staff(s.handleRemovePatient))

	// Admin only
	mux.Handle("PUT /admin/wait-time", admin(s.handleUpdateWaitTime))
	mux.Handle("POST /admin/articles", admin(s.handleCreateArticle))
	mux.Handle("POST /admin/catalog/refresh", admin(s.handleRefreshCatalog))

	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening for requests and blocks until SIGINT or SIGTERM.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-stop:
	case err := <-errCh:
		s.Close()
		return fmt.Errorf("server error: %w", err)
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.Close()
	s.logger.Info("server stopped")
	return nil
}

// Close releases the rate limiter, queue subscription and store.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.stopBoard != nil {
		s.stopBoard()
	}
	s.store.Close()
}

// withCORS adds CORS headers for the public site origin
func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := s.allowedOrigin
	if origin == "" {
		origin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		if origin != "*" {
			w.Header().Set("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(extractClientID(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging logs each request with its status and duration
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
			zap.String("remote", r.RemoteAddr),
		)
	})
}

// handleHealth reports whether the database is reachable
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// language picks the response language from ?lang=, Accept-Language, then the server default.
func (s *Server) language(r *http.Request) i18n.Language {
	if lang, ok := i18n.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language")); ok {
		return lang
	}
	return s.defaultLanguage
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	writeJSON(w, s.logger, status, data)
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	writeError(w, s.logger, status, message)
}

// failResponse maps err to a status; server errors are logged and hidden from the client.
func (s *Server) failResponse(w http.ResponseWriter, msg string, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
		s.errorResponse(w, status, "internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]string{"error": message})
}

// extractClientID uses the IP from RemoteAddr. Forwarded headers are not
// trusted since the server may be exposed directly.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.logger.Warn("rate limit exceeded",
		zap.String("client", extractClientID(r)),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
