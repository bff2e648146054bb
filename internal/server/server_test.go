package server

import (
	"fightschool-server/internal/catalog"
	"fightschool-server/internal/config"
	"fightschool-server/internal/domain"
	"fightschool-server/internal/engine"
	"fightschool-server/internal/infrastructure/storage"
	"fightschool-server/internal/network"
	"fightschool-server/pkg/api"
	"fightschool-server/pkg/logger"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestMain(m *testing.M) {
	logger.Init()
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func newTestServer(t *testing.T, debug bool) (*Server, *engine.GameService) {
	t.Helper()
	cat := catalog.NewMemory()
	cat.PutFight(domain.Fight{
		ID:        "f1",
		Questions: []domain.Question{{ID: "q1", Body: "2+2?", Answer: "4", Choices: []string{"3", "4"}}},
		Enemies:   []domain.EnemyTemplate{{ID: "slime", Name: "Slime"}},
	})

	hub := network.NewHub(10 * time.Millisecond)
	svc := engine.NewService(engine.NewConfig(), hub, cat, storage.NewMemory())
	t.Cleanup(func() {
		for _, s := range svc.Sessions() {
			svc.Cleanup(s.ID, "test over")
		}
	})
	return New(svc, config.ServerConfig{Addr: ":0", Debug: debug}), svc
}

func TestHealthAndVersion(t *testing.T) {
	srv, _ := newTestServer(t, false)
	router := srv.Router()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("/health = %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"service":"fightschool-server"`) {
		t.Errorf("/version = %d %s", rec.Code, rec.Body.String())
	}
}

func TestDebugRoutesRequireDebugFlag(t *testing.T) {
	srv, _ := newTestServer(t, false)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/sessions", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("debug disabled: status = %d, want 404", rec.Code)
	}

	srv, _ = newTestServer(t, true)
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/sessions/NOPE99", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session: status = %d, want 404", rec.Code)
	}
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) api.ServerMessage {
	t.Helper()
	var msg api.ServerMessage
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestWebSocket_HostCreatesSession(t *testing.T) {
	srv, svc := newTestServer(t, false)
	conn := dial(t, srv)

	if err := conn.WriteJSON(api.ClientCommand{Type: "host", Payload: []byte(`{"fightId":"f1"}`)}); err != nil {
		t.Fatal(err)
	}

	msg := read(t, conn)
	if msg.Type != api.MsgSessionCreated || msg.State == nil {
		t.Fatalf("got %+v, want session_created with state", msg)
	}
	if len(msg.SessionID) != 6 || msg.State.Phase != "waiting" {
		t.Errorf("session %q in phase %q", msg.SessionID, msg.State.Phase)
	}
	if svc.Lookup(msg.SessionID) == nil {
		t.Error("session should be registered")
	}
}

func TestWebSocket_UnknownFightReturnsError(t *testing.T) {
	srv, svc := newTestServer(t, false)
	conn := dial(t, srv)

	if err := conn.WriteJSON(api.ClientCommand{Type: "host", Payload: []byte(`{"fightId":"missing"}`)}); err != nil {
		t.Fatal(err)
	}

	msg := read(t, conn)
	if msg.Type != api.MsgError || !strings.Contains(msg.Error, "fight not found") {
		t.Errorf("got %+v, want fight not found error", msg)
	}
	if len(svc.Sessions()) != 0 {
		t.Error("no session should be created")
	}
}
