package endpoints_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"remote-support-backend/internal/api"
	"remote-support-backend/internal/api/router"
	internaljwt "remote-support-backend/internal/jwt"
	"remote-support-backend/internal/queue"
	"remote-support-backend/internal/relay"

	"github.com/gorilla/websocket"
)

func startRelayServer(t *testing.T, requireToken bool) (*httptest.Server, *internaljwt.Issuer) {
	t.Helper()

	rl := relay.New(relay.Config{
		SweepInterval:       time.Hour,
		InactivityThreshold: time.Hour,
		Handler:             relay.HandlerConfig{AllowedOrigins: []string{"*"}},
	}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	rl.Start(ctx)

	issuer := internaljwt.NewIssuer("test-secret", time.Hour)
	qm := queue.NewRequestQueueManager(16, 4, nil)
	server := api.NewAPIServer(":0", qm, api.Options{
		Relay:        rl.Handler,
		Tokens:       issuer,
		RequireToken: requireToken,
	},
		router.RelayRoutes("/ws", "/api"),
		router.UtilsRoutes("/api"),
	)

	srv := httptest.NewServer(server.Routes())
	t.Cleanup(func() {
		srv.Close()
		cancel()
		rl.Wait()
		qm.Shutdown()
	})
	return srv, issuer
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func joinFrame(code, role string) []byte {
	b, _ := json.Marshal(map[string]any{
		"type": "join-room",
		"data": map[string]string{"code": code, "role": role},
	})
	return b
}

func readType(t *testing.T, conn *websocket.Conn) (string, map[string]any) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var env struct {
		Type string         `json:"type"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return env.Type, env.Data
}

func TestRelayRoutesWithoutToken(t *testing.T) {
	srv, _ := startRelayServer(t, false)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/control"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, joinFrame("ABC1", "host")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ, _ := readType(t, conn); typ != "room-joined" {
		t.Fatalf("type = %q, want room-joined", typ)
	}

	resp, err := http.Get(srv.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("get rooms: %v", err)
	}
	defer resp.Body.Close()
	var rooms []relay.RoomRes
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decode rooms: %v", err)
	}
	if len(rooms) != 1 || rooms[0].Room.Code != "ABC1" || rooms[0].Channel != relay.ChannelControl {
		t.Fatalf("rooms = %+v", rooms)
	}

	health, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", health.StatusCode)
	}
}

func TestRelayRoutesRequireToken(t *testing.T) {
	srv, issuer := startRelayServer(t, true)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/screen"), nil)
	if err == nil {
		t.Fatal("expected dial without token to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}

	token, err := issuer.CreateToken("ABC1")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/screen?token="+token), nil)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, joinFrame("OTHER", "client")); err != nil {
		t.Fatalf("write: %v", err)
	}
	typ, data := readType(t, conn)
	if typ != "error" {
		t.Fatalf("joining a foreign room: type = %q, want error (%v)", typ, data)
	}

	if err := conn.WriteMessage(websocket.TextMessage, joinFrame("ABC1", "client")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ, _ := readType(t, conn); typ != "room-joined" {
		t.Fatalf("type = %q, want room-joined", typ)
	}
}
