// Package server exposes the tracker over a JSON HTTP API built on gin.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"budgettracker/internal/auth"
	"budgettracker/internal/config"
	"budgettracker/internal/logging"
	"budgettracker/internal/tracker"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// Server routes API requests to the tracker service.
type Server struct {
	cfg    *config.Config
	svc    *tracker.Service
	issuer *auth.Issuer
	logger *slog.Logger
	engine *gin.Engine
}

// New builds the router. cfg supplies the API prefix, cookie settings,
// CORS origin and optional static directory.
func New(cfg *config.Config, svc *tracker.Service, issuer *auth.Issuer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	registerJSONFieldNames()
	s := &Server{cfg: cfg, svc: svc, issuer: issuer, logger: logger, engine: gin.New()}
	s.engine.Use(logging.Middleware(logger), gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered", "panic", rec, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}))
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.engine
	r.GET("/healthz", s.healthHandler)

	api := r.Group(s.cfg.APIPrefix)
	api.POST("/auth/signup", s.signupHandler)
	api.POST("/auth/login", s.loginHandler)
	api.POST("/auth/logout", s.logoutHandler)

	authGroup := api.Group("")
	authGroup.Use(s.authMiddleware())
	authGroup.GET("/auth/me", s.meHandler)

	authGroup.GET("/categories", s.listCategoriesHandler)
	authGroup.POST("/categories", s.createCategoryHandler)
	authGroup.PUT("/categories/:id", s.updateCategoryHandler)
	authGroup.DELETE("/categories/:id", s.deleteCategoryHandler)

	authGroup.GET("/budgets", s.listBudgetsHandler)
	authGroup.POST("/budgets", s.upsertBudgetHandler)
	authGroup.DELETE("/budgets/:id", s.deleteBudgetHandler)

	authGroup.GET("/expenses", s.listExpensesHandler)
	authGroup.GET("/expenses/range", s.rangeExpensesHandler)
	authGroup.POST("/expenses", s.createExpenseHandler)
	authGroup.GET("/expenses/:id", s.getExpenseHandler)
	authGroup.PUT("/expenses/:id", s.updateExpenseHandler)
	authGroup.DELETE("/expenses/:id", s.deleteExpenseHandler)

	authGroup.GET("/reports/summary", s.summaryHandler)

	r.NoRoute(s.noRouteHandler)
}

// Handler returns the router wrapped with CORS for the configured frontend.
func (s *Server) Handler() http.Handler {
	if s.cfg.FrontendOrigin == "" {
		return s.engine
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.FrontendOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(s.engine)
}

// HTTPServer returns an http.Server listening on addr with conservative timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        s.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
}

func (s *Server) healthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.svc.Store().Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// noRouteHandler serves the single page app for unknown GET paths outside the
// API when a static directory is configured.
func (s *Server) noRouteHandler(c *gin.Context) {
	p := c.Request.URL.Path
	isAPI := s.cfg.APIPrefix != "" && (p == s.cfg.APIPrefix || strings.HasPrefix(p, s.cfg.APIPrefix+"/"))
	if s.cfg.StaticDir == "" || isAPI || (c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}
	clean := path.Clean("/" + p)
	// http.ServeFile refuses paths that still carry dot segments
	c.Request.URL.Path = clean
	file := filepath.Join(s.cfg.StaticDir, filepath.FromSlash(clean))
	if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
		c.File(file)
		return
	}
	c.File(filepath.Join(s.cfg.StaticDir, "index.html"))
}
