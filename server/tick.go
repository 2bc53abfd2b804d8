package server

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// StartTicker 启动房间循环（单协程推进世界）
// 帧率只决定多久喂一次时钟，模拟本身始终以固定步长 Tick
func (r *Room) StartTicker() {
	if r.tickerStarted {
		return
	}
	r.tickerStarted = true
	go func() {
		defer close(r.done)
		defer sentry.Recover()
		ticker := time.NewTicker(r.cfg.FrameInterval())
		defer ticker.Stop()
		for {
			select {
			case <-r.quit:
				r.shutdown()
				return
			case cmd := <-r.inbox:
				r.handleCommand(cmd)
			case now := <-ticker.C:
				// 核心循环：处理命令 → 推进模拟 → 广播结果
				r.ProcessInputs()
				r.frame(now)
			}
		}
	}()
}
