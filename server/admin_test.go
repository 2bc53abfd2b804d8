package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"crystalrun/config"
	"crystalrun/leaderboard"
)

func newTestManager(t *testing.T) *RoomManager {
	t.Helper()
	Log = zaptest.NewLogger(t).Sugar()
	cfg := config.Default()
	cfg.Leaderboard = filepath.Join(t.TempDir(), "leaderboard.json")
	m := NewRoomManager(cfg, leaderboard.NewFileStore(cfg.Leaderboard))
	t.Cleanup(func() {
		m.Stop()
		Log = zap.NewNop().Sugar()
	})
	return m
}

func TestAdminConfigGetAndPost(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	m.HandleAdminConfig(rec, httptest.NewRequest(http.MethodGet, "/admin/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET status = %d", rec.Code)
	}
	var cur config.RoomConfig
	if err := json.NewDecoder(rec.Body).Decode(&cur); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cur.BroadcastMs != 50 {
		t.Fatalf("broadcastMs = %d, want 50", cur.BroadcastMs)
	}

	body := `{"speed":{"base":0.25,"max":0.5,"growth":0.0001},"broadcastMs":80}`
	rec = httptest.NewRecorder()
	m.HandleAdminConfig(rec, httptest.NewRequest(http.MethodPost, "/admin/config", strings.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("POST status = %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&cur); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cur.Speed.Base != 0.25 || cur.Speed.Max != 0.5 || cur.BroadcastMs != 80 {
		t.Fatalf("updated config = %+v", cur)
	}
}

func TestAdminConfigRejectsBadCurve(t *testing.T) {
	m := newTestManager(t)
	rec := httptest.NewRecorder()
	body := `{"speed":{"base":0.5,"max":0.1}}`
	m.HandleAdminConfig(rec, httptest.NewRequest(http.MethodPost, "/admin/config", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	m.HandleAdminConfig(rec, httptest.NewRequest(http.MethodDelete, "/admin/config", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestMetricsUnknownRoom(t *testing.T) {
	m := newTestManager(t)
	rec := httptest.NewRecorder()
	m.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics?room=nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	m.GetOrCreateRoom(DefaultRoom)
	rec = httptest.NewRecorder()
	m.HandleMetrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	var payload struct {
		Room    string         `json:"room"`
		Metrics map[string]any `json:"metrics"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Room != DefaultRoom {
		t.Fatalf("room = %q", payload.Room)
	}
	if _, ok := payload.Metrics["frames"]; !ok {
		t.Fatalf("metrics missing frames: %v", payload.Metrics)
	}
}

func TestLeaderboardEndpoints(t *testing.T) {
	m := newTestManager(t)

	rec := httptest.NewRecorder()
	m.HandleLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("empty leaderboard body = %q", rec.Body.String())
	}

	if _, err := m.Store().Submit(leaderboard.Entry{Username: "Alice", Score: 120, Distance: 300, Timestamp: 1}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rec = httptest.NewRecorder()
	m.HandleLeaderboard(rec, httptest.NewRequest(http.MethodGet, "/leaderboard", nil))
	var list []leaderboard.Entry
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].Username != "Alice" {
		t.Fatalf("leaderboard = %+v", list)
	}

	m.GetOrCreateRoom(DefaultRoom)
	rec = httptest.NewRecorder()
	m.HandleOnline(rec, httptest.NewRequest(http.MethodGet, "/leaderboard/online", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Fatalf("online = %d %q", rec.Code, rec.Body.String())
	}
}
