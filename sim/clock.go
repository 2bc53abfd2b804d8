package sim

// Clock 固定步长累加器：把外部帧时间切成整数个 Tick
// 暂停时冻结累加器，恢复时丢弃暂停期间的时间（不补帧）
type Clock struct {
	step     float64
	maxFrame float64
	acc      float64
	paused   bool
	ticks    uint64
}

func NewClock(step, maxFrame float64) *Clock {
	return &Clock{step: step, maxFrame: maxFrame}
}

// Update 累计 elapsed 并执行所有完整的 Tick，返回本次执行的 Tick 数（可能为 0）
func (c *Clock) Update(elapsed float64, tick func()) int {
	if c.paused {
		return 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > c.maxFrame {
		elapsed = c.maxFrame
	}
	c.acc += elapsed

	n := 0
	for c.acc >= c.step {
		tick()
		c.acc -= c.step
		c.ticks++
		n++
	}
	return n
}

func (c *Clock) Pause() {
	c.paused = true
	c.acc = 0
}

func (c *Clock) Resume() {
	c.paused = false
	c.acc = 0
}

func (c *Clock) Paused() bool { return c.paused }

func (c *Clock) Step() float64 { return c.step }

// Ticks 累计执行过的 Tick 数
func (c *Clock) Ticks() uint64 { return c.ticks }

// Alpha 余量占一个 Tick 的比例，供渲染插值
func (c *Clock) Alpha() float64 { return c.acc / c.step }
