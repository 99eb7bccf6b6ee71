// Package api exposes the two feed snapshots over HTTP. Handlers only
// read the in-memory state; they never trigger an upstream call.
package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/patrickford1/cta-tracker/internal/arrivals/bus"
	"github.com/patrickford1/cta-tracker/internal/arrivals/cache"
	"github.com/patrickford1/cta-tracker/internal/arrivals/rail"
	"github.com/patrickford1/cta-tracker/internal/common/logger"
)

// Source provides the current snapshot per feed.
type Source interface {
	Trains() cache.Snapshot[rail.Arrival]
	Buses() cache.Snapshot[bus.Prediction]
}

type Server struct {
	app    *fiber.App
	source Source
	logger logger.Logger
}

func NewServer(source Source, log logger.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "cta-tracker",
		DisableStartupMessage: true,
	})

	s := &Server{app: app, source: source, logger: log}

	app.Get("/healthz", s.health)

	apiGroup := app.Group("/api")
	apiGroup.Get("/departures", s.trainDepartures)
	apiGroup.Get("/bus", s.busDepartures)

	return s
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP API listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// A feed that has never completed a successful cycle and currently
// holds an error is reported as upstream unavailability. Otherwise the
// snapshot is served as-is, stale data and latest error included.
func (s *Server) trainDepartures(c *fiber.Ctx) error {
	snap := s.source.Trains()
	if !snap.Ready() {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"detail": *snap.Error})
	}
	return c.JSON(snap)
}

func (s *Server) busDepartures(c *fiber.Ctx) error {
	snap := s.source.Buses()
	if !snap.Ready() {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"detail": *snap.Error})
	}
	return c.JSON(snap)
}
