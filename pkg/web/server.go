// Package web serves the live tour dashboard.
package web

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-docent/pkg/catalog"
	"github.com/teslashibe/go-docent/pkg/hub"
	"github.com/teslashibe/go-docent/pkg/movement"
	"github.com/teslashibe/go-docent/pkg/record"
	"github.com/teslashibe/go-docent/pkg/tour"
)

//go:embed static/index.html
var indexHTML []byte

const maxTranscript = 200

// TranscriptEntry is one spoken or heard line.
type TranscriptEntry struct {
	Time time.Time `json:"time"`
	Role string    `json:"role"` // visitor, guide
	Text string    `json:"text"`
	Act  string    `json:"act,omitempty"`
}

// Config wires the dashboard to the rest of the app. Only Port is required.
type Config struct {
	Port     int
	Catalog  *catalog.Catalog
	Records  record.Store
	Movement func() movement.GatewayStats
	Logger   *slog.Logger
}

// Server is the dashboard.
type Server struct {
	app    *fiber.App
	cfg    Config
	events *hub.Hub
	logger *slog.Logger

	mu         sync.RWMutex
	status     tour.Status
	transcript []TranscriptEntry
}

// NewServer builds the routes. Nothing listens until Start.
func NewServer(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Records == nil {
		cfg.Records = record.Nop{}
	}
	s := &Server{
		cfg:        cfg,
		events:     hub.New("events", cfg.Logger),
		logger:     cfg.Logger.With("component", "web"),
		transcript: make([]TranscriptEntry, 0, maxTranscript),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Docent Dashboard",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/", func(c *fiber.Ctx) error {
		c.Type("html")
		return c.Send(indexHTML)
	})

	api := app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/status", s.handleStatus)
	api.Get("/catalog", s.handleCatalog)
	api.Get("/transcript", s.handleTranscript)
	api.Get("/records", s.handleListRecords)
	api.Get("/records/:id", s.handleGetRecord)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Hub returns the event hub.
func (s *Server) Hub() *hub.Hub { return s.events }

// Start runs the hub and listens on the configured port until Shutdown.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("web: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the hub and serves on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go s.events.Run(ctx)
	s.logger.Info("dashboard listening", "url", "http://"+ln.Addr().String())
	return s.app.Listener(ln)
}

// StartAsync starts the server in a goroutine and logs a failure.
func (s *Server) StartAsync(ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			s.logger.Error("dashboard stopped", "error", err)
		}
	}()
}

// Observe is a tour.Observer: it records the transcript, tracks status and
// forwards the event to websocket clients.
func (s *Server) Observe(ev tour.Event) {
	s.mu.Lock()
	if ev.SessionID != s.status.SessionID {
		s.status = tour.Status{SessionID: ev.SessionID, StartedAt: ev.Time}
		s.transcript = s.transcript[:0]
	}
	s.status.State = ev.State
	s.status.Session = ev.Session
	s.status.UpdatedAt = ev.Time
	if ev.Reason != "" {
		s.status.Reason = ev.Reason
	}

	switch ev.Kind {
	case tour.EventSaid:
		s.appendLocked(TranscriptEntry{Time: ev.Time, Role: "guide", Text: ev.Text})
	case tour.EventHeard:
		s.appendLocked(TranscriptEntry{Time: ev.Time, Role: "visitor", Text: ev.Text, Act: ev.Act})
	}
	s.mu.Unlock()

	if err := s.events.BroadcastJSON(ev); err != nil {
		s.logger.Warn("encode event", "error", err)
	}
}

func (s *Server) appendLocked(e TranscriptEntry) {
	s.transcript = append(s.transcript, e)
	if len(s.transcript) > maxTranscript {
		s.transcript = s.transcript[1:]
	}
}

// Shutdown stops the HTTP server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
