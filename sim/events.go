package sim

// Observer 模拟事件的订阅者；回调在 Tick 完成之后统一派发，回调内可安全读取引擎状态
type Observer interface {
	HealthChanged(health int)
	GameOver(final Ledger)
	PowerupCollected(kind PowerupKind)
	ShieldAbsorbed()
}

// ObserverFuncs 以函数字段实现 Observer，未设置的回调忽略
type ObserverFuncs struct {
	OnHealthChanged    func(health int)
	OnGameOver         func(final Ledger)
	OnPowerupCollected func(kind PowerupKind)
	OnShieldAbsorbed   func()
}

func (o ObserverFuncs) HealthChanged(health int) {
	if o.OnHealthChanged != nil {
		o.OnHealthChanged(health)
	}
}

func (o ObserverFuncs) GameOver(final Ledger) {
	if o.OnGameOver != nil {
		o.OnGameOver(final)
	}
}

func (o ObserverFuncs) PowerupCollected(kind PowerupKind) {
	if o.OnPowerupCollected != nil {
		o.OnPowerupCollected(kind)
	}
}

func (o ObserverFuncs) ShieldAbsorbed() {
	if o.OnShieldAbsorbed != nil {
		o.OnShieldAbsorbed()
	}
}

type eventKind uint8

const (
	evHealthChanged eventKind = iota
	evGameOver
	evPowerupCollected
	evShieldAbsorbed
)

type event struct {
	kind    eventKind
	health  int
	powerup PowerupKind
	ledger  Ledger
}

func dispatch(obs Observer, events []event) {
	for _, ev := range events {
		switch ev.kind {
		case evHealthChanged:
			obs.HealthChanged(ev.health)
		case evGameOver:
			obs.GameOver(ev.ledger)
		case evPowerupCollected:
			obs.PowerupCollected(ev.powerup)
		case evShieldAbsorbed:
			obs.ShieldAbsorbed()
		}
	}
}
