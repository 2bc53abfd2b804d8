package server

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"crystalrun/protocol"
	"crystalrun/sim"
)

var (
	ErrConnClosed = errors.New("server: connection closed")
	ErrQueueFull  = errors.New("server: send queue full")
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// Conn 房间向客户端发送数据的最小接口（测试中可替换）
type Conn interface {
	Send([]byte) error
	Close() error
}

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
		done: make(chan struct{}),
	}
}

// Send 将要发送的消息压入队列（非阻塞，满则丢弃并返回错误，防止阻塞房间循环）
func (c *ClientConn) Send(b []byte) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close 关闭底层连接，写协程随之退出；可重复调用
func (c *ClientConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		err = c.ws.Close()
	})
	return err
}

// writePump 独立协程，负责从 send 队列写出到 WS，并定期 ping
func (c *ClientConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer c.Close()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				Log.Debugf("write failed: %v", err)
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 读取客户端消息，转换为房间命令
func (c *ClientConn) readPump(room *Room, playerID PlayerID) {
	defer c.Close()
	// 读泵退出时，通知房间在循环中移除该玩家
	defer room.RequestLeave(playerID, c)
	c.ws.SetReadLimit(1 << 20) // 1MB
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error { return c.ws.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		env, err := protocol.DecodeEnvelope(payload)
		if err != nil {
			Log.Debugf("bad envelope from %s: %v", playerID, err)
			continue
		}
		switch env.T {
		case protocol.MsgInput:
			in, err := protocol.DecodePayload[protocol.Input](env)
			if err != nil {
				continue
			}
			action, ok := sim.ParseAction(strings.ToLower(in.Action))
			if !ok {
				room.metrics.InputsRejected.Inc()
				continue
			}
			room.OnInput(Input{PlayerID: playerID, Action: action})
		case protocol.MsgControl:
			ctl, err := protocol.DecodePayload[protocol.Control](env)
			if err != nil {
				continue
			}
			room.Post(Control{PlayerID: playerID, Op: strings.ToLower(ctl.Op)})
		case protocol.MsgSnapshot:
			snap, err := protocol.DecodePayload[protocol.PeerSnapshot](env)
			if err != nil {
				continue
			}
			room.Post(RemoteSnapshot{From: playerID, Snapshot: snap})
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?room=room-1&player=alice&name=Alice
func (m *RoomManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomID := r.URL.Query().Get("room")
	if roomID == "" {
		roomID = DefaultRoom
	}
	playerID := r.URL.Query().Get("player")
	if playerID == "" {
		http.Error(w, "missing player query", http.StatusBadRequest)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = playerID
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnf("upgrade error: %v", err)
		return
	}

	room := m.GetOrCreateRoom(roomID)
	client := NewClientConn(ws)
	go client.writePump()

	reply := make(chan protocol.Welcome, 1)
	if !room.Post(Join{PlayerID: PlayerID(playerID), Name: name, Conn: client, Reply: reply}) {
		_ = client.Close()
		return
	}
	select {
	case wel := <-reply:
		if wel.RunID == "" {
			_ = client.Close()
			return
		}
		Log.Infof("joined: room=%s player=%s run=%s", roomID, playerID, wel.RunID)
	case <-time.After(2 * time.Second):
		Log.Warnf("join timeout: room=%s player=%s", roomID, playerID)
		_ = client.Close()
		return
	}
	go client.readPump(room, PlayerID(playerID))
}
