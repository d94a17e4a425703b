package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pubzy/giveaways/internal/api/auth"
	"github.com/pubzy/giveaways/internal/api/handler"
	"github.com/pubzy/giveaways/internal/cache"
	"github.com/pubzy/giveaways/internal/config"
	"github.com/pubzy/giveaways/internal/gravatar"
	"github.com/pubzy/giveaways/internal/scheduler"
	"github.com/pubzy/giveaways/internal/storage"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	cfg       *config.Config
	ginEngine *gin.Engine
	storage   *storage.Storage

	authProvider *auth.Provider
	cache        *cache.Store
	scheduler    *scheduler.Scheduler
	notifier     handler.Notifier
}

// Option configures optional server dependencies.
type Option func(*Server)

// WithCache exposes the lookup cache on the admin endpoints.
func WithCache(s *cache.Store) Option {
	return func(srv *Server) { srv.cache = s }
}

// WithScheduler exposes the background jobs on the admin endpoints.
func WithScheduler(s *scheduler.Scheduler) Option {
	return func(srv *Server) { srv.scheduler = s }
}

// WithNotifier enables emails triggered by requests.
func WithNotifier(n handler.Notifier) Option {
	return func(srv *Server) { srv.notifier = n }
}

func New(cfg *config.Config, st *storage.Storage, debug bool, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if st == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:          cfg,
		ginEngine:    gin.New(),
		storage:      st,
		authProvider: auth.New(st, gravatar.New(cfg.Gravatar), cfg.SecureCookies),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.ginEngine.Use(gin.Recovery(), requestID(), requestLogger(), gzip.Gzip(gzip.DefaultCompression))
	s.setupSession()
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupSession() {
	store := cookie.NewStore([]byte(s.cfg.SessionKey))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	s.ginEngine.Use(sessions.Sessions(s.cfg.SessionName, store))
}

func (s *Server) setupRoutes() {
	h := handler.New(s.storage, s.notifier)
	admin := handler.NewAdmin(s.storage, s.cache, s.scheduler)

	s.ginEngine.GET("/healthz", handler.Healthz)

	api := s.ginEngine.Group("/api")

	api.POST("/entries", h.CreateEntry)
	api.GET("/entries/count", h.EntryCount)
	api.GET("/users/count", h.UserCount)
	api.GET("/giveaways", h.ListGiveaways)
	api.GET("/giveaways/:id", h.GetGiveaway)
	api.GET("/leaderboard", h.Leaderboard)
	api.GET("/updates", h.Updates)
	api.GET("/videos", h.Videos)

	authGroup := api.Group("/auth")
	authGroup.POST("/signup", s.authProvider.Signup)
	authGroup.POST("/login", s.authProvider.Login)
	authGroup.POST("/logout", s.authProvider.Logout)
	authGroup.GET("/user", s.authProvider.RequireAuth(), s.authProvider.User)

	protected := api.Group("")
	protected.Use(s.authProvider.RequireAuth())
	protected.POST("/giveaways/:id/enter", h.EnterGiveaway)
	protected.GET("/user/entries", h.UserEntries)

	adminGroup := api.Group("")
	adminGroup.Use(s.authProvider.RequireAuth(), s.authProvider.RequireAdmin())
	adminGroup.GET("/giveaways/admin", h.ListAllGiveaways)
	adminGroup.POST("/giveaways", h.CreateGiveaway)
	adminGroup.PUT("/giveaways/:id", h.UpdateGiveaway)
	adminGroup.DELETE("/giveaways/:id", h.DeleteGiveaway)
	adminGroup.GET("/giveaway-entries/admin", h.AllGiveawayEntries)
	adminGroup.POST("/leaderboard", h.AddLeaderboardEntry)
	adminGroup.GET("/admin/health", admin.Health)
	adminGroup.GET("/admin/jobs", admin.Jobs)
	adminGroup.POST("/admin/jobs/:id/run", admin.RunJob)
	adminGroup.POST("/admin/cache/clear", admin.ClearCache)
}

// Handler returns the configured router.
func (s *Server) Handler() http.Handler {
	return s.ginEngine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.ginEngine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down API server: %w", err)
	}
	return nil
}
