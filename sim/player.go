package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MotionState 互斥的运动状态
type MotionState uint8

const (
	Running MotionState = iota
	Jumping
	Sliding
	Stumbling
	Dead
)

func (m MotionState) String() string {
	switch m {
	case Running:
		return "running"
	case Jumping:
		return "jumping"
	case Sliding:
		return "sliding"
	case Stumbling:
		return "stumbling"
	case Dead:
		return "dead"
	default:
		return "unknown"
	}
}

// PlayerState 玩家状态；横向是位置缓动，只有竖直方向有速度
type PlayerState struct {
	Position   mgl64.Vec3  `json:"pos"`
	VelocityY  float64     `json:"vy"`
	Lane       int         `json:"lane"`
	TargetLane int         `json:"targetLane"`
	Settled    bool        `json:"settled"`
	Health     int         `json:"health"`
	Motion     MotionState `json:"motion"`
	Banked     PowerupKind `json:"banked"`

	SlideLeft   int `json:"-"`
	StumbleLeft int `json:"-"`
}

// HitResult 一次受击的处理结果
type HitResult uint8

const (
	HitIgnored HitResult = iota
	HitAbsorbed
	HitDamaged
	HitFatal
)

// Player 横向车道状态机 + 竖直跳跃积分 + 互斥运动状态
type Player struct {
	PlayerState
}

func NewPlayer() *Player {
	return &Player{PlayerState: PlayerState{Health: StartHealth, Settled: true}}
}

func (p *Player) canSteer() bool {
	return p.Motion != Dead && p.Motion != Stumbling
}

// canAct 跳跃/下滑只在落地奔跑时接受
func (p *Player) canAct() bool {
	return p.Motion == Running && p.Position.Y() == 0
}

// Move 改变目标车道（-1 左，+1 右），越界时钳制；返回目标是否改变
func (p *Player) Move(dir int) bool {
	if !p.canSteer() {
		return false
	}
	target := p.TargetLane + dir
	if target < MinLane {
		target = MinLane
	}
	if target > MaxLane {
		target = MaxLane
	}
	if target == p.TargetLane {
		return false
	}
	p.TargetLane = target
	p.Settled = false
	return true
}

func (p *Player) Jump() bool {
	if !p.canAct() {
		return false
	}
	p.Motion = Jumping
	p.VelocityY = JumpImpulse
	return true
}

func (p *Player) Slide() bool {
	if !p.canAct() {
		return false
	}
	p.Motion = Sliding
	p.SlideLeft = SlideTicks
	return true
}

// Integrate 推进一个 Tick；返回本 Tick 是否结束了踉跄（需要进入恢复期）
func (p *Player) Integrate(dt float64) (recovered bool) {
	if p.Motion == Dead {
		return false
	}
	p.integrateLane(dt)
	p.integrateVertical(dt)

	switch p.Motion {
	case Sliding:
		p.SlideLeft--
		if p.SlideLeft <= 0 {
			p.SlideLeft = 0
			p.Motion = Running
		}
	case Stumbling:
		p.StumbleLeft--
		if p.StumbleLeft <= 0 {
			p.StumbleLeft = 0
			p.Motion = Running
			recovered = true
		}
	}
	return recovered
}

// integrateLane 向目标车道缓动，足够接近时精确吸附
func (p *Player) integrateLane(dt float64) {
	if p.Settled {
		return
	}
	target := float64(p.TargetLane) * LaneWidth
	x := p.Position.X()
	x += (target - x) * math.Min(1, LaneEaseGain*dt)
	if math.Abs(target-x) < LaneSnapEps {
		x = target
		p.Lane = p.TargetLane
		p.Settled = true
	}
	p.Position[0] = x
}

func (p *Player) integrateVertical(dt float64) {
	if p.Position.Y() == 0 && p.VelocityY == 0 {
		return
	}
	p.Position[1] += p.VelocityY * dt
	p.VelocityY -= Gravity * dt
	if p.Position.Y() <= 0 {
		p.Position[1] = 0
		p.VelocityY = 0
		if p.Motion == Jumping {
			p.Motion = Running
		}
	}
}

// Hit 受击：护盾优先吸收；否则非踉跄状态扣一点生命并进入踉跄，生命归零即死亡
func (p *Player) Hit(fx *Effects) HitResult {
	if p.Motion == Dead {
		return HitIgnored
	}
	if fx.Consume(EffectShield) {
		return HitAbsorbed
	}
	if p.Motion == Stumbling {
		return HitIgnored
	}

	p.Health--
	if p.Health <= 0 {
		p.Health = 0
		p.Motion = Dead
		p.VelocityY = 0
		p.SlideLeft = 0
		return HitFatal
	}
	p.Motion = Stumbling
	p.SlideLeft = 0
	p.StumbleLeft = StumbleTicks
	fx.Consume(EffectStumbleRecovery)
	return HitDamaged
}

// Bank 存入拾取的道具，覆盖未使用的旧道具
func (p *Player) Bank(k PowerupKind) {
	p.Banked = k
}

// TakeBanked 取出并清空道具槽
func (p *Player) TakeBanked() PowerupKind {
	k := p.Banked
	p.Banked = PowerupNone
	return k
}

// SpeedMultiplier 运动状态带来的速度倍率
func (p *Player) SpeedMultiplier() float64 {
	switch p.Motion {
	case Stumbling:
		return StumblePenalty
	case Dead:
		return 0
	default:
		return 1
	}
}
