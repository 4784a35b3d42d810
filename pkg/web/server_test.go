package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-docent/pkg/catalog"
	"github.com/teslashibe/go-docent/pkg/movement"
	"github.com/teslashibe/go-docent/pkg/record"
	"github.com/teslashibe/go-docent/pkg/tour"
)

func event(kind tour.EventKind, state tour.State, text string) tour.Event {
	return tour.Event{
		Kind:      kind,
		SessionID: "s-1",
		State:     state,
		Text:      text,
		Session:   tour.Snapshot{ID: "s-1", Current: "Comet Room", Upcoming: []string{"Bone Hall"}, Visited: []string{"Comet Room"}},
		Time:      time.Now(),
	}
}

func getJSON(t *testing.T, s *Server, path string, v any) int {
	t.Helper()
	resp, err := s.App().Test(httptest.NewRequest("GET", path, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if v != nil {
		require.NoError(t, json.Unmarshal(body, v), string(body))
	}
	return resp.StatusCode
}

func TestAPI(t *testing.T) {
	store, err := record.NewJSONStore(t.TempDir())
	require.NoError(t, err)
	rec := record.New("s-1")
	rec.Reason = "visitor_ended"
	require.NoError(t, store.Save(context.Background(), rec))

	s := NewServer(Config{
		Catalog: catalog.Default(),
		Records: store,
		Movement: func() movement.GatewayStats {
			return movement.GatewayStats{Dispatched: 2, LastDestination: "Comet Room"}
		},
	})

	t.Run("health", func(t *testing.T) {
		var body struct {
			Status        string `json:"status"`
			Clients       int    `json:"clients"`
			DroppedEvents int64  `json:"dropped_events"`
		}
		assert.Equal(t, 200, getJSON(t, s, "/api/health", &body))
		assert.Equal(t, "ok", body.Status)
		assert.Zero(t, body.Clients)
		assert.Zero(t, body.DroppedEvents)
	})

	t.Run("catalog", func(t *testing.T) {
		var exhibits []catalog.Exhibit
		assert.Equal(t, 200, getJSON(t, s, "/api/catalog", &exhibits))
		assert.Len(t, exhibits, catalog.Default().Len())
	})

	t.Run("status follows events", func(t *testing.T) {
		s.Observe(event(tour.EventSaid, tour.StateAtExhibit, "Here we are!"))
		s.Observe(event(tour.EventHeard, tour.StateAtExhibit, "how old is it?"))

		var body struct {
			Tour struct {
				SessionID string        `json:"session_id"`
				State     string        `json:"state"`
				Session   tour.Snapshot `json:"session"`
			} `json:"tour"`
			Movement movement.GatewayStats `json:"movement"`
		}
		assert.Equal(t, 200, getJSON(t, s, "/api/status", &body))
		assert.Equal(t, "s-1", body.Tour.SessionID)
		assert.Equal(t, "AT_EXHIBIT_QA", body.Tour.State)
		assert.Equal(t, "Comet Room", body.Tour.Session.Current)
		assert.Equal(t, int64(2), body.Movement.Dispatched)
	})

	t.Run("transcript", func(t *testing.T) {
		var entries []TranscriptEntry
		assert.Equal(t, 200, getJSON(t, s, "/api/transcript", &entries))
		require.Len(t, entries, 2)
		assert.Equal(t, "guide", entries[0].Role)
		assert.Equal(t, "visitor", entries[1].Role)
		assert.Equal(t, "how old is it?", entries[1].Text)

		next := event(tour.EventSaid, tour.StateGreeting, "Hey!")
		next.SessionID = "s-2"
		s.Observe(next)
		assert.Equal(t, 200, getJSON(t, s, "/api/transcript", &entries))
		assert.Len(t, entries, 1, "a new session starts a fresh transcript")
	})

	t.Run("records", func(t *testing.T) {
		var list []record.Record
		assert.Equal(t, 200, getJSON(t, s, "/api/records?limit=5", &list))
		require.Len(t, list, 1)
		assert.Equal(t, "s-1", list[0].SessionID)

		var one record.Record
		assert.Equal(t, 200, getJSON(t, s, "/api/records/s-1", &one))
		assert.Equal(t, "visitor_ended", one.Reason)

		assert.Equal(t, 404, getJSON(t, s, "/api/records/nope", nil))
	})

	t.Run("index page", func(t *testing.T) {
		resp, err := s.App().Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	})

	t.Run("ws requires upgrade", func(t *testing.T) {
		assert.Equal(t, 426, getJSON(t, s, "/ws/events", nil))
	})
}

func TestEmptyRecords(t *testing.T) {
	s := NewServer(Config{})
	var list []record.Record
	assert.Equal(t, 200, getJSON(t, s, "/api/records", &list))
	assert.Empty(t, list)
	assert.Equal(t, 404, getJSON(t, s, "/api/records/x", nil))
}

func TestStatusReportsDroppedEvents(t *testing.T) {
	s := NewServer(Config{})

	// Nothing drains the feed until Serve runs, so the queue overflows.
	for i := 0; i < 300; i++ {
		s.Observe(event(tour.EventSaid, tour.StateAtExhibit, "line"))
	}

	var body StatusResponse
	assert.Equal(t, 200, getJSON(t, s, "/api/status", &body))
	assert.Positive(t, body.DroppedEvents)
	assert.Equal(t, s.Hub().Dropped(), body.DroppedEvents)
}

func TestEventsWebSocket(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := NewServer(Config{Catalog: catalog.Default()})
	s.Observe(event(tour.EventState, tour.StateEnRoute, ""))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go s.Serve(ctx, ln)
	defer s.Shutdown()

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws/events", nil)
	require.NoError(t, err)
	defer ws.Close()
	ws.SetReadDeadline(time.Now().Add(3 * time.Second))

	var snap tour.Event
	require.NoError(t, ws.ReadJSON(&snap))
	assert.Equal(t, tour.EventState, snap.Kind)
	assert.Equal(t, "s-1", snap.SessionID)

	assert.Equal(t, tour.StateEnRoute, snap.State)
	assert.Equal(t, "Comet Room", snap.Session.Current)

	s.Observe(event(tour.EventSaid, tour.StateAtExhibit, "Here we are!"))

	var said tour.Event
	require.NoError(t, ws.ReadJSON(&said))
	assert.Equal(t, tour.EventSaid, said.Kind)
	assert.Equal(t, "Here we are!", said.Text)
	assert.Equal(t, 1, s.Hub().ClientCount())
}
