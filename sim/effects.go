package sim

// EffectKind 计时效果类型
type EffectKind uint8

const (
	EffectShield EffectKind = iota
	EffectSpeedBoost
	EffectMagnet
	EffectStumbleRecovery
	effectKindCount
)

func (k EffectKind) String() string {
	switch k {
	case EffectShield:
		return "shield"
	case EffectSpeedBoost:
		return "speedBoost"
	case EffectMagnet:
		return "magnet"
	case EffectStumbleRecovery:
		return "stumbleRecovery"
	default:
		return "unknown"
	}
}

// ActiveEffect 一个正在生效的效果，时长以 Tick 计
type ActiveEffect struct {
	Kind      EffectKind `json:"kind"`
	StartTick uint64     `json:"start"`
	Duration  int        `json:"duration"`
	Remaining int        `json:"remaining"`
}

// Effects 每种效果至多一个实例；重复获得只重置计时，不叠加
// 与运动状态（跑/跳/滑/踉跄）相互独立
type Effects struct {
	slots [effectKindCount]ActiveEffect
	live  [effectKindCount]bool
}

// Start 开始或重置某效果
func (fx *Effects) Start(kind EffectKind, now uint64, duration int) {
	fx.slots[kind] = ActiveEffect{Kind: kind, StartTick: now, Duration: duration, Remaining: duration}
	fx.live[kind] = true
}

func (fx *Effects) Active(kind EffectKind) bool { return fx.live[kind] }

// Consume 立即结束某效果，返回它此前是否生效（护盾吸收一次伤害即失效）
func (fx *Effects) Consume(kind EffectKind) bool {
	if !fx.live[kind] {
		return false
	}
	fx.live[kind] = false
	fx.slots[kind] = ActiveEffect{}
	return true
}

// Update 每 Tick 倒计时一次，返回本 Tick 到期的效果
func (fx *Effects) Update() []EffectKind {
	var expired []EffectKind
	for k := EffectKind(0); k < effectKindCount; k++ {
		if !fx.live[k] {
			continue
		}
		fx.slots[k].Remaining--
		if fx.slots[k].Remaining <= 0 {
			fx.live[k] = false
			fx.slots[k] = ActiveEffect{}
			expired = append(expired, k)
		}
	}
	return expired
}

// SpeedMultiplier 由当前效果推导的速度倍率；效果到期后自然恢复
func (fx *Effects) SpeedMultiplier() float64 {
	m := 1.0
	if fx.live[EffectSpeedBoost] {
		m *= SpeedBoostMult
	}
	if fx.live[EffectStumbleRecovery] {
		m *= RecoveryPenalty
	}
	return m
}

// List 当前生效的效果（只读副本）
func (fx *Effects) List() []ActiveEffect {
	out := make([]ActiveEffect, 0, effectKindCount)
	for k := EffectKind(0); k < effectKindCount; k++ {
		if fx.live[k] {
			out = append(out, fx.slots[k])
		}
	}
	return out
}

// Reset 清空全部效果
func (fx *Effects) Reset() {
	*fx = Effects{}
}

func powerupEffect(k PowerupKind) (EffectKind, int, bool) {
	switch k {
	case PowerupShield:
		return EffectShield, ShieldTicks, true
	case PowerupMagnet:
		return EffectMagnet, MagnetTicks, true
	case PowerupSpeed:
		return EffectSpeedBoost, SpeedBoostTicks, true
	default:
		return 0, 0, false
	}
}
