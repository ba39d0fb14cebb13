// Package server exposes reading order reconstruction over HTTP.
package server

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/histpath/readingorder/internal/jobs"
	"github.com/histpath/readingorder/layout"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultBodyLimitMB caps uploaded detection files.
const DefaultBodyLimitMB = 50

// Options configures a Server.
type Options struct {
	// Strategy is used when a request does not override it.
	Strategy layout.StrategyConfig

	NormalizeText bool
	BodyLimitMB   int
	Logger        zerolog.Logger
}

// Server routes requests to the reading order pipeline and the job runner.
type Server struct {
	app       *fiber.App
	store     jobs.Store
	runner    *jobs.Runner
	validator *validator.Validate
	options   Options
	log       zerolog.Logger
}

// NewFiber creates the fiber app with JSON handled by json-iterator.
func NewFiber(bodyLimitMB int) *fiber.App {
	if bodyLimitMB <= 0 {
		bodyLimitMB = DefaultBodyLimitMB
	}
	return fiber.New(fiber.Config{
		AppName:               "histpath",
		BodyLimit:             bodyLimitMB * 1024 * 1024,
		StrictRouting:         true,
		CaseSensitive:         true,
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          fiberErrorHandler,
	})
}

// New builds a server. Jobs submitted over HTTP are recorded in store and
// executed by runner.
func New(store jobs.Store, runner *jobs.Runner, opts Options) *Server {
	s := &Server{
		app:       NewFiber(opts.BodyLimitMB),
		store:     store,
		runner:    runner,
		validator: validator.New(),
		options:   opts,
		log:       opts.Logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(newRequestIDMiddleware())
	s.app.Use(newLoggingMiddleware(s.log))

	s.app.Get("/health", s.health)

	api := s.app.Group("/api/v1")
	api.Post("/reading-order", s.order)
	api.Post("/jobs", s.submitJob)
	api.Get("/jobs/:id", s.getJob)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Msg("HTTP server listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting requests and waits for submitted jobs.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.app.ShutdownWithContext(ctx)

	done := make(chan struct{})
	go func() {
		s.runner.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("Shutdown deadline reached with jobs still running")
	}
	return err
}
