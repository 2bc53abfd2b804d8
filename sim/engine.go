package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
)

var (
	ErrNoPowerup = errors.New("sim: no powerup banked")
	ErrInactive  = errors.New("sim: game paused or over")
)

// Action 外部输入
type Action uint8

const (
	ActionLeft Action = iota + 1
	ActionRight
	ActionJump
	ActionSlide
	ActionUsePowerup
)

var actionNames = map[Action]string{
	ActionLeft:       "left",
	ActionRight:      "right",
	ActionJump:       "jump",
	ActionSlide:      "slide",
	ActionUsePowerup: "powerup",
}

func (a Action) String() string {
	if s, ok := actionNames[a]; ok {
		return s
	}
	return "none"
}

// ParseAction 未知输入返回 false
func ParseAction(s string) (Action, bool) {
	for a, name := range actionNames {
		if name == s {
			return a, true
		}
	}
	return 0, false
}

// Snapshot 某一时刻的只读状态，供渲染与多人广播
type Snapshot struct {
	Tick       uint64          `json:"tick"`
	Player     PlayerState     `json:"player"`
	Ledger     Ledger          `json:"ledger"`
	Speed      float64         `json:"speed"`
	Multiplier float64         `json:"multiplier"`
	Effects    []ActiveEffect  `json:"effects"`
	Report     CollisionReport `json:"report"`
	Paused     bool            `json:"paused"`
	Over       bool            `json:"over"`
}

// Engine 一局游戏的全部模拟状态，由调用方持有，不存在进程级全局状态
// 所有方法须在同一个 goroutine 内调用
type Engine struct {
	cfg      Config
	log      *zap.Logger
	obs      Observer
	clock    *Clock
	track    *Track
	player   *Player
	fx       Effects
	detector *Detector
	ledger   Ledger
	report   CollisionReport
	speed    SpeedCurve

	tick   uint64
	over   bool
	events []event
}

// New 创建引擎；只有参数无效时返回错误
func New(cfg Config, obs Observer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if obs == nil {
		obs = ObserverFuncs{}
	}

	// 玩法随机数按种子确定，可回放；装饰随机数不参与逻辑
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	cosmetic := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	e := &Engine{
		cfg:      cfg,
		log:      cfg.Logger,
		obs:      obs,
		clock:    NewClock(cfg.TickSize, cfg.MaxFrame),
		player:   NewPlayer(),
		detector: NewDetector(cfg.CollisionRadius, cfg.MagnetRadius, cfg.Logger),
		speed:    cfg.Speed,
	}
	e.track = NewTrack(cfg, rng, cosmetic, cfg.Logger)
	return e, nil
}

// Advance 输入一帧的真实耗时，执行 0..n 个固定 Tick，返回实际执行数（帧内结束后不再计数）
func (e *Engine) Advance(elapsed float64) int {
	if e.over {
		return 0
	}
	before := e.tick
	e.clock.Update(elapsed, e.step)
	return int(e.tick - before)
}

// Step 直接执行一个 Tick（回放与测试使用），暂停或结束时忽略
func (e *Engine) Step() {
	if e.over || e.clock.Paused() {
		return
	}
	e.step()
}

// step 一个 Tick：玩家积分 → 赛道推进 → 碰撞 → 结算 → 效果衰减 → 派发事件
func (e *Engine) step() {
	if e.over {
		return
	}
	e.tick++
	dt := e.cfg.TickSize

	if e.player.Integrate(dt) {
		e.fx.Start(EffectStumbleRecovery, e.tick, RecoveryTicks)
	}

	speed := e.Speed()
	e.track.Advance(dt * ForwardFactor * speed)
	e.ledger.onTimeElapsed(dt, speed)

	e.report = e.detector.Detect(e.track, e.player.Position, e.fx.Active(EffectMagnet))
	e.apply(e.report)

	// 效果在本 Tick 生效之后才衰减：N Tick 的效果覆盖 N 次推进
	for _, k := range e.fx.Update() {
		e.log.Debug("effect expired", zap.Stringer("effect", k), zap.Uint64("tick", e.tick))
	}
	e.flush()
}

func (e *Engine) apply(r CollisionReport) {
	if r.Crystals > 0 {
		e.ledger.onCrystalsCollected(r.Crystals)
	}
	if r.Powerup != PowerupNone {
		e.player.Bank(r.Powerup)
		e.events = append(e.events, event{kind: evPowerupCollected, powerup: r.Powerup})
	}
	if r.ObstacleHit {
		e.hit()
	}
}

func (e *Engine) hit() {
	switch e.player.Hit(&e.fx) {
	case HitAbsorbed:
		e.events = append(e.events, event{kind: evShieldAbsorbed})
		e.log.Debug("shield absorbed hit", zap.Uint64("tick", e.tick))
	case HitDamaged:
		e.events = append(e.events, event{kind: evHealthChanged, health: e.player.Health})
	case HitFatal:
		e.over = true
		e.events = append(e.events,
			event{kind: evHealthChanged, health: e.player.Health},
			event{kind: evGameOver, ledger: e.ledger},
		)
		e.log.Info("game over",
			zap.Uint64("tick", e.tick), zap.Int("score", e.ledger.Score), zap.Float64("distance", e.ledger.Distance))
	}
}

func (e *Engine) flush() {
	if len(e.events) == 0 {
		return
	}
	evs := e.events
	e.events = nil
	dispatch(e.obs, evs)
}

func (e *Engine) active() bool {
	return !e.over && !e.clock.Paused()
}

// Apply 应用一个输入，无效或被拒绝时返回 false（从不报错）
func (e *Engine) Apply(a Action) bool {
	switch a {
	case ActionLeft:
		return e.MoveLeft()
	case ActionRight:
		return e.MoveRight()
	case ActionJump:
		return e.Jump()
	case ActionSlide:
		return e.Slide()
	case ActionUsePowerup:
		_, err := e.UsePowerup()
		return err == nil
	default:
		return false
	}
}

func (e *Engine) MoveLeft() bool  { return e.active() && e.player.Move(-1) }
func (e *Engine) MoveRight() bool { return e.active() && e.player.Move(1) }
func (e *Engine) Jump() bool      { return e.active() && e.player.Jump() }
func (e *Engine) Slide() bool     { return e.active() && e.player.Slide() }

// UsePowerup 消耗道具槽并启动对应效果；槽位为空时返回 ErrNoPowerup
func (e *Engine) UsePowerup() (PowerupKind, error) {
	if !e.active() {
		return PowerupNone, ErrInactive
	}
	if e.player.Banked == PowerupNone {
		return PowerupNone, ErrNoPowerup
	}
	k := e.player.TakeBanked()
	kind, ticks, ok := powerupEffect(k)
	if !ok {
		return PowerupNone, fmt.Errorf("sim: unknown powerup %d", k)
	}
	e.fx.Start(kind, e.tick, ticks)
	return k, nil
}

// AddTrickle 外部定时加分（挂在固定步长循环之外），暂停或结束时无效
func (e *Engine) AddTrickle(points int) bool {
	if !e.active() {
		return false
	}
	e.ledger.addScore(points)
	return true
}

// Pause 冻结累加器；Resume 丢弃暂停期间的时间，不补 Tick
func (e *Engine) Pause()  { e.clock.Pause() }
func (e *Engine) Resume() { e.clock.Resume() }

func (e *Engine) Paused() bool { return e.clock.Paused() }
func (e *Engine) Over() bool   { return e.over }
func (e *Engine) Tick() uint64 { return e.tick }

func (e *Engine) SetSpeedCurve(c SpeedCurve) { e.speed = c }
func (e *Engine) SpeedCurve() SpeedCurve     { return e.speed }

// Speed 当前有效速度 = 分数曲线 × 效果倍率 × 运动状态倍率
func (e *Engine) Speed() float64 {
	if e.over {
		return 0
	}
	return e.speed.Speed(e.ledger.Score) * e.SpeedMultiplier()
}

func (e *Engine) SpeedMultiplier() float64 {
	return e.fx.SpeedMultiplier() * e.player.SpeedMultiplier()
}

func (e *Engine) Player() PlayerState              { return e.player.PlayerState }
func (e *Engine) Ledger() Ledger                   { return e.ledger }
func (e *Engine) CollisionReport() CollisionReport { return e.report }
func (e *Engine) ActiveEffects() []ActiveEffect    { return e.fx.List() }
func (e *Engine) EffectActive(k EffectKind) bool   { return e.fx.Active(k) }
func (e *Engine) ChunkCount() int                  { return e.track.Len() }
func (e *Engine) Seed() uint64                     { return e.cfg.Seed }
func (e *Engine) Config() Config                   { return e.cfg }

// VisibleEntities 活跃 chunk 内全部实体（含已消耗标记），仅供渲染
func (e *Engine) VisibleEntities() []EntityView {
	var out []EntityView
	e.track.Each(func(c *Chunk) {
		for i := range c.Entities {
			en := &c.Entities[i]
			out = append(out, EntityView{
				ChunkID:  c.ID,
				Index:    i,
				Kind:     en.Kind,
				Powerup:  en.Powerup,
				Position: en.Position(c.Offset),
				Hitbox:   en.Hitbox,
				Consumed: en.Consumed,
				Phase:    en.Phase,
			})
		}
	})
	return out
}

func (e *Engine) Snapshot() Snapshot {
	return Snapshot{
		Tick:       e.tick,
		Player:     e.player.PlayerState,
		Ledger:     e.ledger,
		Speed:      e.Speed(),
		Multiplier: e.SpeedMultiplier(),
		Effects:    e.fx.List(),
		Report:     e.report,
		Paused:     e.clock.Paused(),
		Over:       e.over,
	}
}
