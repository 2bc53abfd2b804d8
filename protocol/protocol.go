package protocol

import (
	"encoding/json"
)

const (
	MsgHello    = "hello"
	MsgInput    = "input"
	MsgControl  = "control"
	MsgSnapshot = "snapshot"

	MsgWelcome  = "welcome"
	MsgState    = "state"
	MsgEvent    = "event"
	MsgGameOver = "gameover"
	MsgError    = "error"
)

const (
	SimTickHz      = 60
	FrameHz        = 60
	BroadcastMinMs = 50
)

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"`
}
