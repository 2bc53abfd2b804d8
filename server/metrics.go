package server

import (
	"go.uber.org/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	Frames          atomic.Int64 // 帧循环次数
	Ticks           atomic.Int64 // 所有参与者累计执行的模拟 Tick
	InputsAccepted  atomic.Int64 // 被引擎接受的输入
	InputsRejected  atomic.Int64 // 无效或被拒绝的输入（暂停/结束/不可执行）
	InboxFull       atomic.Int64 // 因收件箱满被丢弃的命令
	Broadcasts      atomic.Int64 // 实际发出的广播轮次
	SendFailures    atomic.Int64 // 单个连接发送失败
	RemoteSnapshots atomic.Int64 // 收到的外部快照
	StoreFailures   atomic.Int64 // 排行榜或录像落盘失败
	GamesOver       atomic.Int64 // 结束的对局
	TotalFrameNs    atomic.Int64 // 帧循环累计耗时（纳秒）
}

func (m *RoomMetrics) AddFrame(ns int64, ticks int) {
	m.Frames.Inc()
	m.Ticks.Add(int64(ticks))
	m.TotalFrameNs.Add(ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	frames := m.Frames.Load()
	total := m.TotalFrameNs.Load()
	var avgMs float64
	if frames > 0 {
		avgMs = float64(total) / float64(frames) / 1e6
	}
	return map[string]any{
		"frames":           frames,
		"ticks":            m.Ticks.Load(),
		"inputs_accepted":  m.InputsAccepted.Load(),
		"inputs_rejected":  m.InputsRejected.Load(),
		"inbox_full":       m.InboxFull.Load(),
		"broadcasts":       m.Broadcasts.Load(),
		"send_failures":    m.SendFailures.Load(),
		"remote_snapshots": m.RemoteSnapshots.Load(),
		"store_failures":   m.StoreFailures.Load(),
		"games_over":       m.GamesOver.Load(),
		"avg_frame_ms":     avgMs,
	}
}
