package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"crystalrun/protocol"
)

func TestHandleWSJoinsDefaultRoom(t *testing.T) {
	m := newTestManager(t)
	// 握手协程可能在测试结束后才写日志
	Log = zap.NewNop().Sugar()

	srv := httptest.NewServer(http.HandlerFunc(m.HandleWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?player=alice&name=Alice"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer ws.Close()

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	env, err := protocol.DecodeEnvelope(b)
	if err != nil || env.T != protocol.MsgWelcome {
		t.Fatalf("first message = %+v, %v", env, err)
	}
	wel, err := protocol.DecodePayload[protocol.Welcome](env)
	if err != nil || wel.PlayerID != "alice" || wel.RunID == "" {
		t.Fatalf("welcome = %+v, %v", wel, err)
	}

	if _, ok := m.Room(DefaultRoom); !ok {
		t.Fatalf("player without ?room= should land in %q", DefaultRoom)
	}
}

func TestHandleWSRequiresPlayer(t *testing.T) {
	m := newTestManager(t)
	rec := httptest.NewRecorder()
	m.HandleWS(rec, httptest.NewRequest(http.MethodGet, "/ws", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
