package sim

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

// newQuietEngine 不生成任何实体的引擎，便于脚本化放置
func newQuietEngine(t *testing.T, obs Observer) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Spawn.Chance = 0
	cfg.Logger = zaptest.NewLogger(t)
	e, err := New(cfg, obs)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

// place 在世界坐标 z 处、指定车道放置实体
func place(t *testing.T, e *Engine, en Entity, z float64) {
	t.Helper()
	var placed bool
	e.track.Each(func(c *Chunk) {
		if placed || z < c.Offset || z >= c.Trailing() {
			return
		}
		en.Z = z - c.Offset
		c.Entities = append(c.Entities, en)
		placed = true
	})
	if !placed {
		t.Fatalf("no active chunk covers z=%v", z)
	}
}

func steps(e *Engine, n int) {
	for i := 0; i < n; i++ {
		e.Step()
	}
}
