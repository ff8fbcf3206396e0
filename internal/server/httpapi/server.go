// Package httpapi exposes the directory and the collection store over HTTP
// using echo.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/logging"
	"github.com/dmitrijs2005/litmgmt/internal/server/auth"
	"github.com/dmitrijs2005/litmgmt/internal/server/collections"
	"github.com/dmitrijs2005/litmgmt/internal/server/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type HTTPServer struct {
	address         string
	shutdownTimeout time.Duration
	users           *users.Directory
	store           *collections.Store
	tokens          *auth.Issuer
	logger          logging.Logger
	echo            *echo.Echo
}

func NewHTTPServer(address string, shutdownTimeout time.Duration, l logging.Logger,
	dir *users.Directory, store *collections.Store, tokens *auth.Issuer) *HTTPServer {
	s := &HTTPServer{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		users:           dir,
		store:           store,
		tokens:          tokens,
		logger:          l.With("module", "http_server"),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler
	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	s.echo = e
	s.registerRoutes()
	return s
}

func (s *HTTPServer) registerRoutes() {
	e := s.echo

	e.GET("/healthz", s.health)

	api := e.Group("/api")
	api.POST("/register", s.register)
	api.POST("/login", s.login)
	api.POST("/logout", s.logout)
	api.GET("/descriptions", s.listDescriptions)

	cols := api.Group("/collections", s.requireSession)
	cols.GET("", s.listCollections)
	cols.POST("", s.createCollection)
	cols.GET("/:col", s.getCollection)
	cols.PUT("/:col", s.renameCollection)
	cols.DELETE("/:col", s.deleteCollection)
	cols.GET("/:col/entries", s.listEntries)
	cols.POST("/:col/entries", s.createEntry)
	cols.GET("/:col/entries/:entry", s.getEntry)
	cols.PUT("/:col/entries/:entry", s.updateEntry)
	cols.DELETE("/:col/entries/:entry", s.deleteEntry)
	cols.PUT("/:col/entries/:entry/fields", s.setFields)
}

// Handler exposes the router, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully. It returns
// only after in-flight requests have finished or the shutdown timeout hit.
func (s *HTTPServer) Run(ctx context.Context) error {
	stopped := make(chan error, 1)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- s.echo.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := s.echo.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}

func (s *HTTPServer) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}
			s.logger.Debug(c.Request().Context(), "request", args...)
			return nil
		},
	})
}

func (s *HTTPServer) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
