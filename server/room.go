package server

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"golang.org/x/time/rate"

	"crystalrun/config"
	"crystalrun/leaderboard"
	"crystalrun/protocol"
	"crystalrun/replay"
	"crystalrun/sim"
)

// Room 房间：每位参与者各自持有本地权威的模拟，房间只负责推进、转发与广播
// 所有状态只在房间循环协程中读写
type Room struct {
	ID string

	runs   map[PlayerID]*Run
	remote map[string]protocol.PeerSnapshot
	inbox  chan any
	quit   chan struct{}
	done   chan struct{} // 循环协程退出时关闭

	cfg       config.RoomConfig
	simCfg    sim.Config
	limiter   *rate.Limiter
	metrics   *RoomMetrics
	store     leaderboard.Store
	replayDir string

	last          time.Time
	tickerStarted bool
	stopOnce      sync.Once
	persisting    sync.WaitGroup
}

// NewRoom 创建房间，初始化数据结构
func NewRoom(id string, cfg config.Config, store leaderboard.Store) *Room {
	return &Room{
		ID:        id,
		runs:      make(map[PlayerID]*Run),
		remote:    make(map[string]protocol.PeerSnapshot),
		inbox:     make(chan any, cfg.Room.InboxSize), // 足够缓冲，避免网络读阻塞影响循环
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
		cfg:       cfg.Room,
		simCfg:    cfg.SimConfig(),
		limiter:   rate.NewLimiter(broadcastLimit(cfg.Room.BroadcastInterval()), 1),
		metrics:   &RoomMetrics{},
		store:     store,
		replayDir: cfg.ReplayDir,
	}
}

func broadcastLimit(d time.Duration) rate.Limit {
	if d <= 0 {
		return rate.Inf
	}
	return rate.Every(d)
}

func (r *Room) Metrics() *RoomMetrics { return r.metrics }

// Post 非阻塞投递命令；收件箱满时丢弃，保证循环准时
func (r *Room) Post(cmd any) bool {
	select {
	case r.inbox <- cmd:
		return true
	default:
		r.metrics.InboxFull.Inc()
		return false
	}
}

// OnInput 入站输入（不立即改变状态），仅记录意图，由房间循环应用
func (r *Room) OnInput(in Input) {
	r.Post(in)
}

// RequestLeave 请求在房间循环中移除玩家；离开必须送达，因此阻塞投递
func (r *Room) RequestLeave(pid PlayerID, conn Conn) {
	select {
	case r.inbox <- Leave{PlayerID: pid, Conn: conn}:
	case <-r.quit:
	}
}

// Stop 结束房间循环，并等待已触发的排行榜/录像落盘完成后返回
func (r *Room) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
	if r.tickerStarted {
		<-r.done
	}
	// 循环已退出，不会再有新的落盘任务
	r.persisting.Wait()
}

// ProcessInputs 处理当前帧前的所有命令（非阻塞 drain）
func (r *Room) ProcessInputs() {
	for {
		select {
		case cmd := <-r.inbox:
			r.handleCommand(cmd)
		default:
			return
		}
	}
}

func (r *Room) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		r.join(c)
	case Leave:
		if run, ok := r.runs[c.PlayerID]; ok && c.Conn != nil && run.Conn != c.Conn {
			Log.Debugf("room %s: stale leave for %s ignored", r.ID, c.PlayerID)
			return
		}
		r.leave(c.PlayerID)
	case Input:
		run, ok := r.runs[c.PlayerID]
		if ok && run.rec.Apply(c.Action) {
			r.metrics.InputsAccepted.Inc()
		} else {
			r.metrics.InputsRejected.Inc()
		}
	case Control:
		r.control(c)
	case RemoteSnapshot:
		snap := c.Snapshot
		snap.Remote = true
		if snap.ID == "" {
			snap.ID = string(c.From)
		}
		r.remote[string(c.From)+"/"+snap.ID] = snap
		r.metrics.RemoteSnapshots.Inc()
	case ConfigUpdate:
		r.updateConfig(c)
	case OnlineQuery:
		c.Reply <- r.online()
	default:
		Log.Warnf("room %s: unknown command %T", r.ID, cmd)
	}
}

func (r *Room) join(c Join) {
	if run, ok := r.runs[c.PlayerID]; ok {
		// 重连：沿用当前对局，替换连接
		if run.Conn != nil && run.Conn != c.Conn {
			_ = run.Conn.Close()
		}
		run.Conn = c.Conn
		r.sendTo(run, protocol.MsgWelcome, run.Welcome())
		c.Reply <- run.Welcome()
		return
	}
	run, err := newRun(c.PlayerID, c.Name, c.Conn, r.simCfg, r.cfg)
	if err != nil {
		Log.Errorf("room %s: create run for %s: %v", r.ID, c.PlayerID, err)
		c.Reply <- protocol.Welcome{}
		return
	}
	r.runs[c.PlayerID] = run
	r.sendTo(run, protocol.MsgWelcome, run.Welcome())
	c.Reply <- run.Welcome()
}

// leave 将玩家移出房间
func (r *Room) leave(pid PlayerID) {
	if run, ok := r.runs[pid]; ok {
		if run.Conn != nil {
			_ = run.Conn.Close()
		}
		delete(r.runs, pid)
	}
	prefix := string(pid) + "/"
	for k := range r.remote {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			delete(r.remote, k)
		}
	}
}

func (r *Room) control(c Control) {
	run, ok := r.runs[c.PlayerID]
	if !ok {
		return
	}
	switch c.Op {
	case protocol.OpPause:
		run.Pause()
	case protocol.OpResume:
		run.Resume()
	case protocol.OpRestart:
		fresh, err := newRun(run.Player, run.Name, run.Conn, r.simCfg, r.cfg)
		if err != nil {
			Log.Errorf("room %s: restart %s: %v", r.ID, c.PlayerID, err)
			return
		}
		r.runs[c.PlayerID] = fresh
		r.sendTo(fresh, protocol.MsgWelcome, fresh.Welcome())
	default:
		r.sendTo(run, protocol.MsgError, protocol.Error{Message: "unknown control op " + c.Op})
	}
}

func (r *Room) updateConfig(c ConfigUpdate) {
	if c.Speed != nil {
		r.cfg.Speed = *c.Speed
		r.simCfg.Speed = *c.Speed
		for _, run := range r.runs {
			run.rec.SetSpeedCurve(*c.Speed)
		}
	}
	if c.BroadcastMs != nil && *c.BroadcastMs >= 0 {
		r.cfg.BroadcastMs = *c.BroadcastMs
		r.limiter.SetLimit(broadcastLimit(r.cfg.BroadcastInterval()))
	}
	Log.Infof("config updated: room=%s speed=%+v broadcastMs=%d", r.ID, r.cfg.Speed, r.cfg.BroadcastMs)
	if c.Reply != nil {
		c.Reply <- r.cfg
	}
}

// frame 一帧：按真实耗时推进每个参与者的模拟与定时加分，然后限频广播
func (r *Room) frame(now time.Time) {
	start := time.Now()
	var elapsed time.Duration
	if !r.last.IsZero() {
		elapsed = now.Sub(r.last)
	}
	r.last = now

	ticks := 0
	for _, run := range r.runs {
		ticks += run.Engine().Advance(elapsed.Seconds())
		if pts := run.trickle.Advance(elapsed); pts > 0 {
			run.rec.AddTrickle(pts)
		}
		r.flushRun(run)
	}

	if r.limiter.AllowN(now, 1) {
		r.Broadcast()
	}
	r.metrics.AddFrame(time.Since(start).Nanoseconds(), ticks)
}

// flushRun 发送本帧积累的事件；对局结束时异步落盘
func (r *Room) flushRun(run *Run) {
	for _, ev := range run.pending {
		r.sendTo(run, protocol.MsgEvent, ev)
	}
	run.pending = run.pending[:0]

	if !run.over || run.finished {
		return
	}
	run.finished = true
	r.metrics.GamesOver.Inc()
	Log.Infof("game over: room=%s player=%s run=%s score=%d distance=%.1f",
		r.ID, run.Player, run.ID, run.final.Score, run.final.Distance)

	r.persisting.Add(1)
	go r.persist(run.ID.String(), run.Conn, run.Entry(), run.final, run.rec.Finish())
}

// persist 排行榜与录像写入；失败只上报，不影响任何模拟状态
func (r *Room) persist(runID string, conn Conn, entry leaderboard.Entry, final sim.Ledger, rep replay.Replay) {
	defer r.persisting.Done()
	defer sentry.Recover()

	msg := protocol.GameOver{Ledger: final}
	if r.store != nil {
		board, err := r.store.Submit(entry)
		if err != nil {
			r.reportFailure(runID, fmt.Errorf("leaderboard submit: %w", err))
		}
		for _, e := range board {
			msg.Board = append(msg.Board, protocol.LeaderboardEntry(e))
		}
	}
	if r.replayDir != "" {
		if err := writeReplay(filepath.Join(r.replayDir, runID+".replay"), rep); err != nil {
			r.reportFailure(runID, err)
		}
	}
	if conn == nil {
		return
	}
	if b, err := protocol.Encode(protocol.MsgGameOver, msg); err == nil {
		if err := conn.Send(b); err != nil {
			r.metrics.SendFailures.Inc()
		}
	}
}

func (r *Room) reportFailure(runID string, err error) {
	r.metrics.StoreFailures.Inc()
	Log.Errorf("room %s run %s: %v", r.ID, runID, err)
	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("room", r.ID)
		scope.SetTag("run", runID)
	})
	hub.CaptureException(err)
}

func writeReplay(path string, rep replay.Replay) error {
	var buf bytes.Buffer
	if err := replay.Encode(&buf, rep); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write replay %s: %w", path, err)
	}
	return nil
}

// Broadcast 将所有参与者与外部快照广播给每位玩家（每人额外收到自己的完整状态）
func (r *Room) Broadcast() {
	peers := r.peerSnapshots()
	var closed []PlayerID
	for id, run := range r.runs {
		if run.Conn == nil {
			continue
		}
		snap := run.Engine().Snapshot()
		st := protocol.State{Self: &snap, Peers: make([]protocol.PeerSnapshot, 0, len(peers))}
		for _, p := range peers {
			if !p.Remote && p.ID == string(id) {
				continue
			}
			st.Peers = append(st.Peers, p)
		}
		if r.cfg.SendEntities {
			st.Entities = run.Engine().VisibleEntities()
		}
		if err := r.sendTo(run, protocol.MsgState, st); errors.Is(err, ErrConnClosed) {
			closed = append(closed, id)
		}
	}
	for _, id := range closed {
		r.leave(id)
	}
	r.metrics.Broadcasts.Inc()
}

func (r *Room) peerSnapshots() []protocol.PeerSnapshot {
	out := make([]protocol.PeerSnapshot, 0, len(r.runs)+len(r.remote))
	for _, run := range r.runs {
		out = append(out, run.PeerSnapshot())
	}
	for _, snap := range r.remote {
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// online 实时排名：本房间的参与者 + 外部快照
func (r *Room) online() []leaderboard.Entry {
	entries := make([]leaderboard.Entry, 0, len(r.runs)+len(r.remote))
	for _, run := range r.runs {
		entries = append(entries, run.Entry())
	}
	for _, snap := range r.remote {
		entries = append(entries, leaderboard.Entry{Username: snap.Name, Score: snap.Score, Distance: int(snap.Distance)})
	}
	return leaderboard.Online(entries)
}

func (r *Room) sendTo(run *Run, t string, payload any) error {
	if run.Conn == nil {
		return nil
	}
	b, err := protocol.Encode(t, payload)
	if err != nil {
		Log.Errorf("encode %s: %v", t, err)
		return err
	}
	if err := run.Conn.Send(b); err != nil {
		r.metrics.SendFailures.Inc()
		return err
	}
	return nil
}

func (r *Room) shutdown() {
	for id := range r.runs {
		r.leave(id)
	}
}
