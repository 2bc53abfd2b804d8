package sim

// Ledger 分数/水晶/距离，全部由模拟事件推导，对外只读
type Ledger struct {
	Score    int     `json:"score"`
	Crystals int     `json:"crystals"`
	Distance float64 `json:"distance"`
}

func (l *Ledger) onCrystalsCollected(n int) {
	if n <= 0 {
		return
	}
	l.Score += n * CrystalScore
	l.Crystals += n
}

// onTimeElapsed speed 为本 Tick 的有效速度
func (l *Ledger) onTimeElapsed(dt, speed float64) {
	if dt <= 0 || speed <= 0 {
		return
	}
	l.Distance += dt * ForwardFactor * speed
}

func (l *Ledger) addScore(points int) {
	if points > 0 {
		l.Score += points
	}
}
