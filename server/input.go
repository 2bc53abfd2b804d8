package server

import (
	"crystalrun/config"
	"crystalrun/leaderboard"
	"crystalrun/protocol"
	"crystalrun/sim"
)

// 房间收件箱命令：网络/HTTP 协程只投递命令，由房间循环在 Tick 之间串行处理

// Join 玩家加入（或重连替换连接）
type Join struct {
	PlayerID PlayerID
	Name     string
	Conn     Conn
	Reply    chan<- protocol.Welcome
}

// Leave 连接断开；Conn 非空时只有仍是该玩家当前连接才生效（重连后旧连接的离开被忽略）
type Leave struct {
	PlayerID PlayerID
	Conn     Conn
}

// Input 客户端输入（意图），在下一帧前应用到该玩家的引擎
type Input struct {
	PlayerID PlayerID
	Action   sim.Action
}

// Control 暂停/恢复/重开
type Control struct {
	PlayerID PlayerID
	Op       string
}

// RemoteSnapshot 外部参与者上报的位置快照，只做显示
type RemoteSnapshot struct {
	From     PlayerID
	Snapshot protocol.PeerSnapshot
}

// ConfigUpdate 热更新房间参数，nil 字段保持不变
type ConfigUpdate struct {
	Speed       *sim.SpeedCurve
	BroadcastMs *int
	Reply       chan<- config.RoomConfig
}

// OnlineQuery 查询房间内实时排名
type OnlineQuery struct {
	Reply chan<- []leaderboard.Entry
}
