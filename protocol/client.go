package protocol

// 客户端上行消息

type Hello struct {
	V    int    `json:"v"`
	Name string `json:"name,omitempty"`
}

// Input 动作名：left/right/jump/slide/powerup
type Input struct {
	Action string `json:"action"`
	Seq    int64  `json:"seq,omitempty"`
}

// Control 会话控制：pause/resume/restart
type Control struct {
	Op string `json:"op"`
}

const (
	OpPause   = "pause"
	OpResume  = "resume"
	OpRestart = "restart"
)
