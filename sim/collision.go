package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// CollisionReport 单个 Tick 的碰撞结果，每 Tick 重新生成
type CollisionReport struct {
	ObstacleHit bool        `json:"obstacleHit"`
	Crystals    int         `json:"crystals"`
	Powerup     PowerupKind `json:"powerup,omitempty"`
}

// Detector 玩家与活跃 chunk 内实体的距离判定
type Detector struct {
	Radius       float64
	MagnetRadius float64
	log          *zap.Logger
}

func NewDetector(radius, magnetRadius float64, log *zap.Logger) *Detector {
	return &Detector{Radius: radius, MagnetRadius: magnetRadius, log: log}
}

// Detect 扫描全部未消耗实体；拾取类与被撞到的障碍物立即标记 Consumed
// 同一 Tick 内水晶累加，障碍物只报告一次
func (d *Detector) Detect(t *Track, pos mgl64.Vec3, magnet bool) CollisionReport {
	var r CollisionReport
	t.Each(func(c *Chunk) {
		for i := range c.Entities {
			e := &c.Entities[i]
			dist := pos.Sub(e.Position(c.Offset)).Len()
			if e.Consumed {
				if dist < d.Radius {
					d.log.Debug("consumed entity in range ignored",
						zap.Uint64("chunk", c.ID), zap.Int("index", i), zap.Stringer("kind", e.Kind))
				}
				continue
			}

			switch e.Kind {
			case KindObstacle:
				if dist < d.Radius {
					e.Consumed = true
					r.ObstacleHit = true
				}
			case KindCollectible:
				if dist < d.Radius || (magnet && dist < d.MagnetRadius) {
					e.Consumed = true
					r.Crystals += e.Value
				}
			case KindPowerup:
				if dist < d.Radius {
					e.Consumed = true
					r.Powerup = e.Powerup
				}
			default:
				d.log.Warn("unknown entity kind", zap.Uint8("kind", uint8(e.Kind)))
			}
		}
	})
	return r
}
