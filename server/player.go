package server

import (
	"github.com/oklog/ulid/v2"
	"github.com/zeebo/xxh3"
	"go.uber.org/zap"

	"crystalrun/config"
	"crystalrun/leaderboard"
	"crystalrun/protocol"
	"crystalrun/replay"
	"crystalrun/sim"
)

// PlayerID 表示玩家唯一标识
type PlayerID string

// Run 一名参与者的一局：本地权威引擎 + 录像 + 定时加分
type Run struct {
	ID     ulid.ULID
	Player PlayerID
	Name   string
	Conn   Conn

	rec     *replay.Recorder
	trickle *Trickle

	pending  []protocol.Event
	over     bool
	finished bool
	final    sim.Ledger
}

// newRun 由 ULID 派生种子，同一 run 可通过录像完整复现
func newRun(player PlayerID, name string, conn Conn, simCfg sim.Config, roomCfg config.RoomConfig) (*Run, error) {
	run := &Run{
		ID:      ulid.Make(),
		Player:  player,
		Name:    name,
		Conn:    conn,
		trickle: NewTrickle(roomCfg.TrickleInterval(), roomCfg.TricklePts),
	}
	simCfg.Seed = xxh3.HashString(run.ID.String())
	simCfg.Logger = Log.Desugar().With(zapRun(run.ID, player)...)

	e, err := sim.New(simCfg, sim.ObserverFuncs{
		OnHealthChanged: func(h int) {
			run.pending = append(run.pending, protocol.Event{Kind: protocol.EventHealth, Health: h})
		},
		OnPowerupCollected: func(k sim.PowerupKind) {
			run.pending = append(run.pending, protocol.Event{Kind: protocol.EventPowerup, Powerup: k.String()})
		},
		OnShieldAbsorbed: func() {
			run.pending = append(run.pending, protocol.Event{Kind: protocol.EventShield})
		},
		OnGameOver: func(final sim.Ledger) {
			run.over = true
			run.final = final
		},
	})
	if err != nil {
		return nil, err
	}
	run.rec = replay.NewRecorder(e)
	return run, nil
}

func zapRun(id ulid.ULID, player PlayerID) []zap.Field {
	return []zap.Field{zap.String("run", id.String()), zap.String("player", string(player))}
}

func (run *Run) Engine() *sim.Engine { return run.rec.Engine() }

// Pause 引擎与定时加分在同一次调用中切换
func (run *Run) Pause() {
	run.Engine().Pause()
	run.trickle.Pause()
}

func (run *Run) Resume() {
	run.Engine().Resume()
	run.trickle.Resume()
}

func (run *Run) Entry() leaderboard.Entry {
	l := run.Engine().Ledger()
	return leaderboard.Entry{
		Username:  run.Name,
		Score:     l.Score,
		Distance:  int(l.Distance),
		Timestamp: int64(run.ID.Time()),
	}
}

func (run *Run) PeerSnapshot() protocol.PeerSnapshot {
	e := run.Engine()
	p := e.Player()
	l := e.Ledger()
	return protocol.PeerSnapshot{
		ID:       string(run.Player),
		Name:     run.Name,
		X:        p.Position.X(),
		Y:        p.Position.Y(),
		Lane:     p.Lane,
		Motion:   p.Motion.String(),
		Health:   p.Health,
		Score:    l.Score,
		Crystals: l.Crystals,
		Distance: l.Distance,
		Over:     e.Over(),
	}
}

func (run *Run) Welcome() protocol.Welcome {
	return protocol.Welcome{
		PlayerID: string(run.Player),
		RunID:    run.ID.String(),
		Seed:     run.Engine().Seed(),
		TickHz:   protocol.SimTickHz,
	}
}
