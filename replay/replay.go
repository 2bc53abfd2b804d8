package replay

import (
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"crystalrun/sim"
)

const Version = 1

var ErrVersion = errors.New("replay: unsupported version")

// Input 一条按 Tick 打点的外部输入：动作、定时加分或速度曲线变更，三者取其一
type Input struct {
	Tick    uint64          `msgpack:"t"`
	Action  sim.Action      `msgpack:"a,omitempty"`
	Trickle int             `msgpack:"s,omitempty"`
	Curve   *sim.SpeedCurve `msgpack:"c,omitempty"`
}

// Replay 种子 + 输入序列即可完整复现一局
type Replay struct {
	Version  int            `msgpack:"v"`
	Seed     uint64         `msgpack:"seed"`
	TickSize float64        `msgpack:"dt"`
	Curve    sim.SpeedCurve `msgpack:"curve"`
	Ticks    uint64         `msgpack:"ticks"`
	Inputs   []Input        `msgpack:"inputs"`
	Final    sim.Ledger     `msgpack:"final"`
}

// Recorder 包装引擎，记录所有被接受的输入
type Recorder struct {
	e *sim.Engine
	r Replay
}

func NewRecorder(e *sim.Engine) *Recorder {
	return &Recorder{
		e: e,
		r: Replay{
			Version:  Version,
			Seed:     e.Seed(),
			TickSize: e.Config().TickSize,
			Curve:    e.SpeedCurve(),
		},
	}
}

func (rec *Recorder) Engine() *sim.Engine { return rec.e }

func (rec *Recorder) Apply(a sim.Action) bool {
	if !rec.e.Apply(a) {
		return false
	}
	rec.r.Inputs = append(rec.r.Inputs, Input{Tick: rec.e.Tick(), Action: a})
	return true
}

func (rec *Recorder) AddTrickle(points int) bool {
	if !rec.e.AddTrickle(points) {
		return false
	}
	rec.r.Inputs = append(rec.r.Inputs, Input{Tick: rec.e.Tick(), Trickle: points})
	return true
}

func (rec *Recorder) SetSpeedCurve(c sim.SpeedCurve) {
	rec.e.SetSpeedCurve(c)
	rec.r.Inputs = append(rec.r.Inputs, Input{Tick: rec.e.Tick(), Curve: &c})
}

// Finish 返回当前为止的录像（可多次调用）
func (rec *Recorder) Finish() Replay {
	out := rec.r
	out.Inputs = append([]Input(nil), rec.r.Inputs...)
	out.Ticks = rec.e.Tick()
	out.Final = rec.e.Ledger()
	return out
}

func Encode(w io.Writer, r Replay) error {
	if err := msgpack.NewEncoder(w).Encode(&r); err != nil {
		return fmt.Errorf("replay: encode: %w", err)
	}
	return nil
}

func Decode(rd io.Reader) (Replay, error) {
	var r Replay
	if err := msgpack.NewDecoder(rd).Decode(&r); err != nil {
		return Replay{}, fmt.Errorf("replay: decode: %w", err)
	}
	if r.Version != Version {
		return Replay{}, fmt.Errorf("%w: %d", ErrVersion, r.Version)
	}
	return r, nil
}

// Play 用录像的种子与输入重建引擎并推进到录制结束时的 Tick
func Play(cfg sim.Config, r Replay) (*sim.Engine, error) {
	cfg.Seed = r.Seed
	cfg.TickSize = r.TickSize
	cfg.Speed = r.Curve
	e, err := sim.New(cfg, nil)
	if err != nil {
		return nil, err
	}

	i := 0
	apply := func() {
		for i < len(r.Inputs) && r.Inputs[i].Tick == e.Tick() {
			in := r.Inputs[i]
			switch {
			case in.Curve != nil:
				e.SetSpeedCurve(*in.Curve)
			case in.Trickle > 0:
				e.AddTrickle(in.Trickle)
			default:
				e.Apply(in.Action)
			}
			i++
		}
	}
	for e.Tick() < r.Ticks && !e.Over() {
		apply()
		e.Step()
	}
	apply()
	return e, nil
}
