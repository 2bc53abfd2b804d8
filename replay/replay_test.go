package replay

import (
	"bytes"
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap/zaptest"

	"crystalrun/sim"
)

func TestReplayReproducesRun(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.Seed = 99
	cfg.Logger = zaptest.NewLogger(t)
	e, err := sim.New(cfg, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	rec := NewRecorder(e)

	script := []sim.Action{sim.ActionRight, sim.ActionJump, sim.ActionLeft, sim.ActionLeft, sim.ActionSlide, sim.ActionUsePowerup}
	for frame := 0; frame < 1500 && !e.Over(); frame++ {
		if frame%25 == 0 {
			rec.Apply(script[(frame/25)%len(script)])
		}
		if frame%6 == 0 {
			rec.AddTrickle(1)
		}
		if frame == 700 {
			rec.SetSpeedCurve(sim.SpeedCurve{Base: 0.3, Max: 0.5, Growth: 0.0001})
		}
		e.Advance(1.0 / 60)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, rec.Finish()); err != nil {
		t.Fatalf("encode: %v", err)
	}
	r, err := Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	played, err := Play(cfg, r)
	if err != nil {
		t.Fatalf("play: %v", err)
	}
	if played.Ledger() != e.Ledger() || r.Final != e.Ledger() {
		t.Fatalf("ledger diverged: live=%+v replay=%+v recorded=%+v", e.Ledger(), played.Ledger(), r.Final)
	}
	if played.Player() != e.Player() || played.Tick() != e.Tick() {
		t.Fatalf("player diverged: live=%+v replay=%+v", e.Player(), played.Player())
	}
}

func TestRecorderSkipsRejectedInputs(t *testing.T) {
	e, err := sim.New(sim.DefaultConfig(), nil)
	if err != nil {
		t.Fatal(err)
	}
	rec := NewRecorder(e)
	rec.Apply(sim.ActionUsePowerup)
	rec.Apply(sim.ActionLeft)
	rec.Apply(sim.ActionLeft)
	if got := len(rec.Finish().Inputs); got != 1 {
		t.Fatalf("expected only the accepted input recorded, got %d", got)
	}
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	b, err := msgpack.Marshal(&Replay{Version: 42})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(bytes.NewReader(b)); !errors.Is(err, ErrVersion) {
		t.Fatalf("expected ErrVersion, got %v", err)
	}
}
