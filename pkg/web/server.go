// Package web serves the operator dashboard: a REST surface mirroring
// the serial command protocol and a websocket stream of telemetry.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/patkersoxton-bit/armen/internal/log"
	"github.com/patkersoxton-bit/armen/pkg/hub"
	"github.com/patkersoxton-bit/armen/pkg/protocol"
)

// Server is the dashboard HTTP/websocket server.
type Server struct {
	app    *fiber.App
	listen string

	ctrl ControlPort

	telemetryHub *hub.Hub
}

// NewServer builds the server around a controller port.
func NewServer(listen string, ctrl ControlPort) *Server {
	s := &Server{
		listen:       listen,
		ctrl:         ctrl,
		telemetryHub: hub.New("telemetry"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "armen dashboard",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/state", s.handleState)
	api.Get("/animations", s.handleAnimations)
	api.Post("/command", s.handleCommand)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/telemetry", websocket.New(s.handleTelemetryWS))

	s.app = app
	return s
}

// Start runs the hub and the listener. Blocks.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", s.listen)
	go s.telemetryHub.Run()
	return s.app.Listen(s.listen)
}

// StartAsync runs the server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server failed", "err", err)
		}
	}()
}

// PublishTelemetry fans a snapshot out to connected dashboards. Wired
// to the controller's OnTelemetry hook; never blocks.
func (s *Server) PublishTelemetry(t protocol.Telemetry) {
	if err := s.telemetryHub.BroadcastJSON(t); err != nil {
		log.Debug("telemetry broadcast failed", "err", err)
	}
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) handleTelemetryWS(conn *websocket.Conn) {
	client := hub.NewClient(s.telemetryHub, conn)
	client.Run()
}
