// Package dashboard serves the WattWise dashboard API: live ticker, model
// predictions, the daily forecast with advice and its chart, recent store
// readings and Prometheus metrics.
package dashboard

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ezoic/wattwise/advice"
	"github.com/ezoic/wattwise/forecast"
	"github.com/ezoic/wattwise/pkg/log"
	"github.com/ezoic/wattwise/store"
)

// ServiceName is reported by /health.
const ServiceName = "wattwise"

// Deps are the collaborators of a Server. Model and Store may be nil, in
// which case the routes needing them answer 503.
type Deps struct {
	Model   *forecast.Handle
	Store   store.Store
	Advisor *advice.Advisor

	// Source feeds the live ticker. Defaults to a clock-seeded PCG.
	Source rand.Source
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Registry receives the dashboard metrics. Defaults to a fresh registry.
	Registry *prometheus.Registry
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// Server is the dashboard HTTP server.
type Server struct {
	app     *fiber.App
	deps    Deps
	metrics *Metrics
	logger  log.Logger

	srcMu sync.Mutex
}

// New builds the fiber app and registers every route.
func New(deps Deps) *Server {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if deps.Source == nil {
		// G404: Using math/rand for the simulated ticker (not cryptographic purposes)
		deps.Source = rand.NewPCG(uint64(time.Now().UnixNano()), 0)
	}
	if deps.Advisor == nil {
		deps.Advisor = advice.NewAdvisor(nil)
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		deps:    deps,
		metrics: NewMetrics(deps.Registry),
		logger:  log.GetLoggerWithName("dashboard"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               ServiceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          30 * time.Second,
		ErrorHandler:          errorHandler,
	})

	if deps.AccessLog {
		s.app.Use(logger.New())
	}
	s.app.Use(recover.New())
	s.app.Use(s.observe)

	s.app.Get("/health", s.health)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))
	s.registerRoutes()

	return s
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	s.logger.Info("Dashboard listening", "addr", addr)
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders every error as {"error": true, "message": ...}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status":       "ok",
		"service":      ServiceName,
		"model_loaded": s.deps.Model != nil,
		"store":        s.deps.Store != nil,
	}
	if s.deps.Model != nil {
		status["model_source"] = s.deps.Model.Source()
		status["model_loaded_at"] = s.deps.Model.LoadedAt()
	}
	return c.JSON(status)
}

// observe records request latency per route.
func (s *Server) observe(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.metrics.Latency.WithLabelValues(c.Route().Path).Observe(time.Since(start).Seconds())
	return err
}

// ticker draws one live ticker. The shared source is not safe for
// concurrent use.
func (s *Server) ticker(loc forecast.Location) forecast.Ticker {
	s.srcMu.Lock()
	defer s.srcMu.Unlock()
	return forecast.NewTicker(s.deps.Source, loc, s.deps.Clock())
}
