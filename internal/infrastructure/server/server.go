package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/taskboard/core/internal/adapters/http"
	"github.com/taskboard/core/internal/application/services"
	"github.com/taskboard/core/internal/infrastructure/config"
	"github.com/taskboard/core/internal/infrastructure/database"
	"github.com/taskboard/core/internal/infrastructure/logger"
	"github.com/taskboard/core/internal/infrastructure/metrics"
	"github.com/taskboard/core/internal/ports"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	db      *database.DB
	metrics *metrics.Metrics
}

// Services bundles the application services the server exposes.
type Services struct {
	Tasks    *services.TaskService
	Workflow *services.WorkflowService
	Tags     *services.TagService
	Projects *services.ProjectService
	Updates  *services.UpdateService
	Presets  *services.PresetService
	Users    *services.UserService
	Audit    *services.AuditService
}

// NewServices wires the full service graph on top of a repository bundle.
func NewServices(repos ports.Repositories, cfg *config.Config, appLogger *logger.Logger) *Services {
	authz := services.NewAuthzService(repos.Users, cfg.Auth.AllowedEmails, appLogger)
	audit := services.NewAuditService(repos.Audit, repos.Users, authz, appLogger, nil)
	return &Services{
		Tasks:    services.NewTaskService(repos, audit, authz, cfg.Sweep, appLogger, nil),
		Workflow: services.NewWorkflowService(repos, audit, authz, appLogger, nil),
		Tags:     services.NewTagService(repos, audit, authz, appLogger, nil),
		Projects: services.NewProjectService(repos, audit, authz, appLogger, nil),
		Updates:  services.NewUpdateService(repos, audit, authz, appLogger, nil),
		Presets:  services.NewPresetService(repos, authz, appLogger, nil),
		Users:    services.NewUserService(repos, audit, authz, appLogger, nil),
		Audit:    audit,
	}
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, svcs *Services, m *metrics.Metrics, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	e.Validator = &CustomValidator{validator: validator.New()}
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	taskHandler := httpHandlers.NewTaskHandler(svcs.Tasks, appLogger)
	workflowHandler := httpHandlers.NewWorkflowHandler(svcs.Workflow, appLogger)
	tagHandler := httpHandlers.NewTagHandler(svcs.Tags, appLogger)
	projectHandler := httpHandlers.NewProjectHandler(svcs.Projects, appLogger)
	updateHandler := httpHandlers.NewUpdateHandler(svcs.Updates, appLogger)
	presetHandler := httpHandlers.NewPresetHandler(svcs.Presets, appLogger)
	userHandler := httpHandlers.NewUserHandler(svcs.Users, appLogger)
	auditHandler := httpHandlers.NewAuditHandler(svcs.Audit, appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		db:      db,
		metrics: m,
	}

	server.setupMiddleware()
	server.setupRoutes(taskHandler, workflowHandler, tagHandler, projectHandler,
		updateHandler, presetHandler, userHandler, auditHandler, svcs.Users)

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(
	taskHandler *httpHandlers.TaskHandler,
	workflowHandler *httpHandlers.WorkflowHandler,
	tagHandler *httpHandlers.TagHandler,
	projectHandler *httpHandlers.ProjectHandler,
	updateHandler *httpHandlers.UpdateHandler,
	presetHandler *httpHandlers.PresetHandler,
	userHandler *httpHandlers.UserHandler,
	auditHandler *httpHandlers.AuditHandler,
	userService *services.UserService,
) {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Every API route goes through identity resolution; anonymous requests
	// pass through with no identity and read endpoints degrade to empty
	// results in the service layer.
	v1 := s.echo.Group("/api/v1", s.identityMiddleware(userService))

	taskGroup := v1.Group("/tasks")
	taskGroup.POST("/query", taskHandler.QueryTasks)
	taskGroup.POST("", taskHandler.CreateTask)
	taskGroup.GET("/:id", taskHandler.GetTask)
	taskGroup.PATCH("/:id", taskHandler.UpdateTask)
	taskGroup.DELETE("/:id", taskHandler.DeleteTask)
	taskGroup.POST("/:id/archive", taskHandler.ArchiveTask)
	taskGroup.POST("/:id/unarchive", taskHandler.UnarchiveTask)
	taskGroup.GET("/:id/updates", updateHandler.ListForTask)

	stateGroup := v1.Group("/states")
	stateGroup.GET("", workflowHandler.ListStates)
	stateGroup.POST("", workflowHandler.CreateState)
	stateGroup.PATCH("/:id", workflowHandler.UpdateState)
	stateGroup.DELETE("/:id", workflowHandler.DeleteState)
	stateGroup.POST("/reorder", workflowHandler.ReorderStates)

	priorityGroup := v1.Group("/priorities")
	priorityGroup.GET("", workflowHandler.ListPriorities)
	priorityGroup.POST("", workflowHandler.CreatePriority)
	priorityGroup.PATCH("/:id", workflowHandler.UpdatePriority)
	priorityGroup.DELETE("/:id", workflowHandler.DeletePriority)
	priorityGroup.POST("/reorder", workflowHandler.ReorderPriorities)

	tagGroup := v1.Group("/tags")
	tagGroup.GET("", tagHandler.ListTags)
	tagGroup.POST("", tagHandler.CreateTag)
	tagGroup.PATCH("/:id", tagHandler.UpdateTag)
	tagGroup.DELETE("/:id", tagHandler.DeleteTag)

	projectGroup := v1.Group("/projects")
	projectGroup.GET("", projectHandler.ListProjects)
	projectGroup.POST("", projectHandler.CreateProject)
	projectGroup.GET("/:id", projectHandler.GetProject)
	projectGroup.PATCH("/:id", projectHandler.UpdateProject)
	projectGroup.POST("/:id/archive", projectHandler.ArchiveProject)
	projectGroup.POST("/:id/unarchive", projectHandler.UnarchiveProject)

	updateGroup := v1.Group("/updates")
	updateGroup.POST("", updateHandler.CreateUpdate)
	updateGroup.DELETE("/:id", updateHandler.DeleteUpdate)

	presetGroup := v1.Group("/presets")
	presetGroup.GET("", presetHandler.ListPresets)
	presetGroup.POST("", presetHandler.CreatePreset)
	presetGroup.PATCH("/:id", presetHandler.UpdatePreset)
	presetGroup.DELETE("/:id", presetHandler.DeletePreset)

	userGroup := v1.Group("/users")
	userGroup.GET("", userHandler.ListUsers)
	userGroup.GET("/me", userHandler.GetCurrentUser)

	auditGroup := v1.Group("/audit")
	auditGroup.GET("", auditHandler.ListEntries)
	auditGroup.GET("/:type/:id", auditHandler.ListForEntity)
}

// setupMetrics registers the request middleware and the /metrics endpoint on
// the application registry.
func (s *Server) setupMetrics() {
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			s.metrics.RequestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			s.metrics.RequestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	metricsHandler := promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// identityMiddleware resolves the caller's identity from a Bearer token. A
// missing Authorization header is not an error: the request proceeds
// anonymously and the service layer degrades reads to empty results. A
// present but invalid token is rejected.
func (s *Server) identityMiddleware(userService *services.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return next(c)
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			email, name, err := s.parseToken(parts[1])
			if err != nil {
				s.logger.Warnw("Invalid token", "error", err, "ip", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			// Provision on first sign-in; later requests resolve the same row.
			userID, err := userService.EnsureUser(c.Request().Context(), email, name)
			if err != nil {
				s.logger.Errorw("Failed to resolve user", "error", err, "email", email)
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve user")
			}

			ctx := services.WithIdentity(c.Request().Context(), userID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// parseToken verifies the signature and issuer and extracts the identity
// claims.
func (s *Server) parseToken(tokenString string) (email string, name *string, err error) {
	claims := jwt.MapClaims{}
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if s.config.Auth.JWTIssuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.config.Auth.JWTIssuer))
	}

	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.config.Auth.JWTSecret), nil
	}, parserOpts...)
	if err != nil {
		return "", nil, err
	}

	emailClaim, _ := claims["email"].(string)
	if emailClaim == "" {
		return "", nil, fmt.Errorf("token carries no email claim")
	}
	if nameClaim, ok := claims["name"].(string); ok && nameClaim != "" {
		name = &nameClaim
	}
	return emailClaim, name, nil
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": e.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
