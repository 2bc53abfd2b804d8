package server

import "time"

// Trickle 按真实时间定时加分，独立于固定步长循环
// 与对局暂停同一时刻切换；恢复时丢弃暂停期间的时间，不补发
type Trickle struct {
	interval time.Duration
	points   int
	acc      time.Duration
	paused   bool
}

func NewTrickle(interval time.Duration, points int) *Trickle {
	return &Trickle{interval: interval, points: points}
}

// Advance 累计真实耗时，返回应加的分数
func (t *Trickle) Advance(elapsed time.Duration) int {
	if t.paused || t.interval <= 0 || elapsed <= 0 {
		return 0
	}
	t.acc += elapsed
	n := int(t.acc / t.interval)
	t.acc -= time.Duration(n) * t.interval
	return n * t.points
}

func (t *Trickle) Pause() {
	t.paused = true
	t.acc = 0
}

func (t *Trickle) Resume() {
	t.paused = false
	t.acc = 0
}

func (t *Trickle) Paused() bool { return t.paused }
