// Package echoapi serves the eox-nelp HTTP API.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/nelc/eoxnelp/core"
	"github.com/nelc/eoxnelp/core/certificate"
	"github.com/nelc/eoxnelp/core/program"
	"github.com/nelc/eoxnelp/core/progress"
	"github.com/nelc/eoxnelp/core/registration"
	"github.com/nelc/eoxnelp/core/user"
)

const apiPrefix = "/eox-nelp"

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		UserSvc    *user.Service
		ProgramSvc *program.Service
		Registry   *registration.Registry
		Validate   *validator.Validate
		Translator ut.Translator

		// optional, their endpoints answer 501 when nil
		Certificates *certificate.Receiver
		Progress     *progress.Dispatcher

		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.RequestID())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	root := s.app.Group(apiPrefix)
	root.GET("/eox-info", info(conf))

	api := root.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerProgramsAPI(api.Group("/programs/v1", jwt), s.deps)
	registerEventsAPI(api.Group("/events/v1", jwt), s.deps)
	registerRegistrationAPI(api.Group("/registration/v1"), s.deps)
}

// Start blocks serving requests, listener failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

type infoResponse struct {
	Version string `json:"version"`
	Name    string `json:"name"`
	Git     string `json:"git"`
}

func info(conf *core.Config) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, infoResponse{Version: conf.Version, Name: conf.AppName, Git: conf.Build})
	}
}
