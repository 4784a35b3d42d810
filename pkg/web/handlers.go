package web

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/teslashibe/go-docent/pkg/catalog"
	"github.com/teslashibe/go-docent/pkg/hub"
	"github.com/teslashibe/go-docent/pkg/movement"
	"github.com/teslashibe/go-docent/pkg/record"
	"github.com/teslashibe/go-docent/pkg/tour"
)

// StatusResponse is the body of GET /api/status.
type StatusResponse struct {
	Tour     tour.Status            `json:"tour"`
	Movement *movement.GatewayStats `json:"movement,omitempty"`
	Clients  int                    `json:"clients"`

	// DroppedEvents counts live events discarded because the feed fell behind.
	DroppedEvents int64 `json:"dropped_events"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "ok",
		"clients":        s.events.ClientCount(),
		"dropped_events": s.events.Dropped(),
	})
}

func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.statusResponse())
}

func (s *Server) statusResponse() StatusResponse {
	s.mu.RLock()
	resp := StatusResponse{
		Tour:          s.status,
		Clients:       s.events.ClientCount(),
		DroppedEvents: s.events.Dropped(),
	}
	s.mu.RUnlock()

	if resp.Tour.Session.Upcoming == nil {
		resp.Tour.Session.Upcoming = []string{}
	}
	if resp.Tour.Session.Visited == nil {
		resp.Tour.Session.Visited = []string{}
	}
	if s.cfg.Movement != nil {
		st := s.cfg.Movement()
		resp.Movement = &st
	}
	return resp
}

func (s *Server) handleCatalog(c *fiber.Ctx) error {
	if s.cfg.Catalog == nil {
		return c.JSON([]catalog.Exhibit{})
	}
	return c.JSON(s.cfg.Catalog.Exhibits())
}

func (s *Server) handleTranscript(c *fiber.Ctx) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TranscriptEntry, len(s.transcript))
	copy(out, s.transcript)
	return c.JSON(out)
}

func (s *Server) handleListRecords(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	recs, err := s.cfg.Records.List(c.UserContext(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if recs == nil {
		recs = []*record.Record{}
	}
	return c.JSON(recs)
}

func (s *Server) handleGetRecord(c *fiber.Ctx) error {
	rec, err := s.cfg.Records.Get(c.UserContext(), c.Params("id"))
	if errors.Is(err, record.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "record not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

// handleEventsWS sends the current status, then every tour event.
func (s *Server) handleEventsWS(conn *websocket.Conn) {
	status := s.statusResponse().Tour
	snapshot, err := json.Marshal(tour.Event{
		Kind:      tour.EventState,
		SessionID: status.SessionID,
		State:     status.State,
		Session:   status.Session,
		Reason:    status.Reason,
		Time:      status.UpdatedAt,
	})
	if err != nil {
		s.logger.Warn("encode snapshot", "error", err)
		return
	}

	client, ok := hub.NewClient(s.events, conn, hub.NewJSONMessage(snapshot))
	if !ok {
		return
	}
	client.Run()
}
