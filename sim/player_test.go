package sim

import "testing"

func TestMoveClampsToOuterLanes(t *testing.T) {
	p := NewPlayer()
	if !p.Move(-1) {
		t.Fatalf("expected move left accepted")
	}
	if p.Move(-1) {
		t.Fatalf("move past left lane must be a no-op")
	}
	p.Move(1)
	p.Move(1)
	if p.Move(1) {
		t.Fatalf("move past right lane must be a no-op")
	}
	if p.TargetLane != MaxLane {
		t.Fatalf("target lane: got=%d want=%d", p.TargetLane, MaxLane)
	}
}

func TestLaneConvergesAndStaysExact(t *testing.T) {
	p := NewPlayer()
	p.Move(1)
	want := LaneWidth
	settledAt := -1
	for i := 0; i < 200; i++ {
		p.Integrate(DefaultTickSize)
		if p.Settled && settledAt < 0 {
			settledAt = i
		}
		if settledAt >= 0 && p.Position.X() != want {
			t.Fatalf("tick %d: lane drifted after snap: x=%v", i, p.Position.X())
		}
	}
	if settledAt < 0 {
		t.Fatalf("lane never settled")
	}
	if p.Lane != 1 {
		t.Fatalf("current lane: got=%d want=1", p.Lane)
	}
}

func TestJumpArcLandsAndRearms(t *testing.T) {
	p := NewPlayer()
	if !p.Jump() {
		t.Fatalf("jump rejected on ground")
	}
	if p.Jump() || p.Slide() {
		t.Fatalf("jump/slide accepted while airborne")
	}
	peak := 0.0
	for i := 0; i < 120 && p.Motion == Jumping; i++ {
		p.Integrate(DefaultTickSize)
		if p.Position.Y() > peak {
			peak = p.Position.Y()
		}
	}
	if p.Motion != Running || p.Position.Y() != 0 || p.VelocityY != 0 {
		t.Fatalf("expected grounded running, got motion=%s y=%v vy=%v", p.Motion, p.Position.Y(), p.VelocityY)
	}
	if peak <= CollisionRadius {
		t.Fatalf("jump apex %v does not clear collision radius", peak)
	}
	if !p.Jump() {
		t.Fatalf("jump rejected after landing")
	}
}

func TestSlideAutoClears(t *testing.T) {
	p := NewPlayer()
	if !p.Slide() {
		t.Fatalf("slide rejected")
	}
	for i := 0; i < SlideTicks-1; i++ {
		p.Integrate(DefaultTickSize)
	}
	if p.Motion != Sliding {
		t.Fatalf("slide ended early: %s", p.Motion)
	}
	p.Integrate(DefaultTickSize)
	if p.Motion != Running {
		t.Fatalf("slide did not auto-clear: %s", p.Motion)
	}
}

func TestShieldAbsorbsExactlyOneHit(t *testing.T) {
	p := NewPlayer()
	var fx Effects
	fx.Start(EffectShield, 0, ShieldTicks)

	if got := p.Hit(&fx); got != HitAbsorbed {
		t.Fatalf("expected absorbed, got %v", got)
	}
	if p.Health != StartHealth || fx.Active(EffectShield) {
		t.Fatalf("shield hit: health=%d shield=%v", p.Health, fx.Active(EffectShield))
	}
	if got := p.Hit(&fx); got != HitDamaged || p.Health != StartHealth-1 {
		t.Fatalf("second hit should damage: result=%v health=%d", got, p.Health)
	}
}

func TestStumblingBlocksInputAndHits(t *testing.T) {
	p := NewPlayer()
	var fx Effects
	p.Hit(&fx)
	if p.Motion != Stumbling {
		t.Fatalf("expected stumbling, got %s", p.Motion)
	}
	if p.Move(-1) || p.Jump() || p.Slide() {
		t.Fatalf("input accepted while stumbling")
	}
	if got := p.Hit(&fx); got != HitIgnored || p.Health != StartHealth-1 {
		t.Fatalf("hit while stumbling: result=%v health=%d", got, p.Health)
	}

	recovered := false
	for i := 0; i < StumbleTicks; i++ {
		recovered = p.Integrate(DefaultTickSize) || recovered
	}
	if !recovered || p.Motion != Running {
		t.Fatalf("expected recovery after %d ticks, motion=%s", StumbleTicks, p.Motion)
	}
}

func TestDeathIsTerminal(t *testing.T) {
	p := NewPlayer()
	var fx Effects
	p.Health = 1
	if got := p.Hit(&fx); got != HitFatal || p.Motion != Dead {
		t.Fatalf("expected fatal hit, got %v motion=%s", got, p.Motion)
	}
	fx.Start(EffectShield, 0, ShieldTicks)
	if got := p.Hit(&fx); got != HitIgnored {
		t.Fatalf("hit after death: %v", got)
	}
	if !fx.Active(EffectShield) {
		t.Fatalf("shield consumed after death")
	}
	if p.Move(1) || p.Jump() {
		t.Fatalf("input accepted after death")
	}
}
