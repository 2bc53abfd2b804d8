package protocol

import "crystalrun/sim"

// 服务端下行消息

type Welcome struct {
	PlayerID string `json:"playerId"`
	RunID    string `json:"runId"`
	Seed     uint64 `json:"seed"`
	TickHz   int    `json:"tickHz"`
}

// PeerSnapshot 其他参与者的位置快照，仅用于显示
type PeerSnapshot struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Lane     int     `json:"lane"`
	Motion   string  `json:"motion"`
	Health   int     `json:"health"`
	Score    int     `json:"score"`
	Crystals int     `json:"crystals"`
	Distance float64 `json:"distance"`
	Over     bool    `json:"over"`
	Remote   bool    `json:"remote,omitempty"`
}

type State struct {
	Self     *sim.Snapshot    `json:"self,omitempty"`
	Entities []sim.EntityView `json:"entities,omitempty"`
	Peers    []PeerSnapshot   `json:"peers"`
}

type Event struct {
	Kind    string `json:"kind"`
	Health  int    `json:"health,omitempty"`
	Powerup string `json:"powerup,omitempty"`
}

const (
	EventHealth  = "health"
	EventPowerup = "powerup"
	EventShield  = "shield"
)

type LeaderboardEntry struct {
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Distance  int    `json:"distance"`
	Timestamp int64  `json:"timestamp"`
}

type GameOver struct {
	Ledger sim.Ledger         `json:"ledger"`
	Board  []LeaderboardEntry `json:"board,omitempty"`
}

type Error struct {
	Message string `json:"message"`
}
