package server

import (
	"sync"

	"crystalrun/config"
	"crystalrun/leaderboard"
)

// DefaultRoom 未指定房间时使用
const DefaultRoom = "room-1"

// RoomManager 管理多个房间的生命周期，所有房间共用一个排行榜存储
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   config.Config
	store leaderboard.Store
}

func NewRoomManager(cfg config.Config, store leaderboard.Store) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		cfg:   cfg,
		store: store,
	}
}

// GetOrCreateRoom 获取或创建房间，并确保开始 Tick
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	if id == "" {
		id = DefaultRoom
	}
	m.mu.RLock()
	r, ok := m.rooms[id]
	m.mu.RUnlock()
	if ok {
		return r
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok = m.rooms[id]; !ok {
		r = NewRoom(id, m.cfg, m.store)
		m.rooms[id] = r
		r.StartTicker()
	}
	return r
}

// Room 只查询，不创建
func (m *RoomManager) Room(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

func (m *RoomManager) Store() leaderboard.Store { return m.store }

// Stop 停止所有房间，返回时所有对局结果均已落盘
func (m *RoomManager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.rooms {
		r.Stop()
		delete(m.rooms, id)
	}
}
