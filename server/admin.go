package server

import (
	"encoding/json"
	"net/http"
	"time"

	"crystalrun/config"
	"crystalrun/leaderboard"
	"crystalrun/sim"
)

const queryTimeout = 2 * time.Second

func roomParam(r *http.Request) string {
	if id := r.URL.Query().Get("room"); id != "" {
		return id
	}
	return DefaultRoom
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// ask 把带回复通道的命令投递到房间循环，等待结果
func ask[T any](room *Room, build func(chan<- T) any) (T, bool) {
	reply := make(chan T, 1)
	var zero T
	if !room.Post(build(reply)) {
		return zero, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-time.After(queryTimeout):
		return zero, false
	}
}

// HandleAdminConfig 提供房间配置的读取与更新（热更新速度曲线与广播间隔）
// GET /admin/config?room=room-1  返回当前配置
// POST /admin/config?room=room-1 以 JSON 载荷更新部分字段
func (m *RoomManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	room := m.GetOrCreateRoom(roomParam(r))

	type body struct {
		Speed       *sim.SpeedCurve `json:"speed,omitempty"`
		BroadcastMs *int            `json:"broadcastMs,omitempty"`
	}

	var upd ConfigUpdate
	switch r.Method {
	case http.MethodGet:
	case http.MethodPost:
		var b body
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if b.Speed != nil && (b.Speed.Base < 0 || b.Speed.Max < b.Speed.Base || b.Speed.Growth < 0) {
			http.Error(w, "invalid speed curve", http.StatusBadRequest)
			return
		}
		if b.BroadcastMs != nil && *b.BroadcastMs < 0 {
			http.Error(w, "invalid broadcastMs", http.StatusBadRequest)
			return
		}
		upd.Speed, upd.BroadcastMs = b.Speed, b.BroadcastMs
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cur, ok := ask(room, func(reply chan<- config.RoomConfig) any {
		upd.Reply = reply
		return upd
	})
	if !ok {
		http.Error(w, "room busy", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, cur)
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=room-1
func (m *RoomManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	id := roomParam(r)
	room, ok := m.Room(id)
	if !ok {
		http.Error(w, "unknown room", http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]any{
		"room":    id,
		"metrics": room.metrics.Snapshot(),
	})
}

// HandleLeaderboard 持久化排行榜
// GET /leaderboard
func (m *RoomManager) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	list, err := m.store.Load()
	if err != nil {
		Log.Errorf("load leaderboard: %v", err)
		http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []leaderboard.Entry{}
	}
	writeJSON(w, list)
}

// HandleOnline 房间内实时排名（本地参与者 + 外部快照）
// GET /leaderboard/online?room=room-1
func (m *RoomManager) HandleOnline(w http.ResponseWriter, r *http.Request) {
	room, ok := m.Room(roomParam(r))
	if !ok {
		writeJSON(w, []leaderboard.Entry{})
		return
	}
	list, ok := ask(room, func(reply chan<- []leaderboard.Entry) any {
		return OnlineQuery{Reply: reply}
	})
	if !ok {
		http.Error(w, "room busy", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, list)
}
