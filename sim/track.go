package sim

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/elliotchance/orderedmap/v2"
	"go.uber.org/zap"
)

var ErrChunkUnderflow = errors.New("sim: retiring chunk would drop below minimum")

// Chunk 一段固定长度的赛道，流式加载与实体归属的基本单位
type Chunk struct {
	ID       uint64
	Offset   float64 // 起点相对玩家的纵向位置
	Length   float64
	Width    float64
	Entities []Entity
}

// Trailing 尾端位置
func (c *Chunk) Trailing() float64 { return c.Offset + c.Length }

// Track 有序 chunk 队列：前方生成，身后回收
type Track struct {
	cfg      Config
	chunks   *orderedmap.OrderedMap[uint64, *Chunk]
	nextID   uint64
	rng      *rand.Rand
	cosmetic *rand.Rand
	log      *zap.Logger

	generated int
	retired   int
}

// NewTrack 生成初始的 MinChunks 个 chunk，前 SafeChunks 个留空
func NewTrack(cfg Config, rng, cosmetic *rand.Rand, log *zap.Logger) *Track {
	t := &Track{
		cfg:      cfg,
		chunks:   orderedmap.NewOrderedMap[uint64, *Chunk](),
		rng:      rng,
		cosmetic: cosmetic,
		log:      log,
	}
	offset := 0.0
	for i := 0; i < cfg.MinChunks; i++ {
		c := t.newChunk(offset, i >= cfg.SafeChunks)
		t.chunks.Set(c.ID, c)
		offset = c.Trailing()
	}
	return t
}

// Advance 所有 chunk 后移 shift；最旧的 chunk 完全落后一个 chunk 长度以上时先追加再回收
func (t *Track) Advance(shift float64) int {
	for el := t.chunks.Front(); el != nil; el = el.Next() {
		el.Value.Offset -= shift
	}

	retired := 0
	for {
		oldest := t.chunks.Front()
		if oldest == nil || oldest.Value.Trailing() >= -oldest.Value.Length {
			break
		}
		newest := t.chunks.Back().Value
		c := t.newChunk(newest.Trailing(), true)
		t.chunks.Set(c.ID, c)
		if err := t.retire(oldest.Key); err != nil {
			t.log.Error("chunk retire failed", zap.Uint64("chunk", oldest.Key), zap.Error(err))
			break
		}
		retired++
	}
	return retired
}

func (t *Track) retire(id uint64) error {
	if t.chunks.Len() <= t.cfg.MinChunks {
		return fmt.Errorf("%w: active=%d min=%d", ErrChunkUnderflow, t.chunks.Len(), t.cfg.MinChunks)
	}
	c, ok := t.chunks.Get(id)
	if !ok {
		return fmt.Errorf("sim: chunk %d not active", id)
	}
	c.Entities = nil
	t.chunks.Delete(id)
	t.retired++
	return nil
}

// Len 当前活跃 chunk 数
func (t *Track) Len() int { return t.chunks.Len() }

// Each 按从旧到新遍历活跃 chunk
func (t *Track) Each(fn func(c *Chunk)) {
	for el := t.chunks.Front(); el != nil; el = el.Next() {
		fn(el.Value)
	}
}

// Chunk 按 id 查找活跃 chunk
func (t *Track) Chunk(id uint64) (*Chunk, bool) {
	return t.chunks.Get(id)
}

// Stats 累计生成与回收的 chunk 数
func (t *Track) Stats() (generated, retired int) { return t.generated, t.retired }

func (t *Track) newChunk(offset float64, populate bool) *Chunk {
	t.nextID++
	c := &Chunk{
		ID:     t.nextID,
		Offset: offset,
		Length: t.cfg.ChunkLength,
		Width:  LaneCount * LaneWidth,
	}
	if populate {
		t.populate(c)
	}
	t.generated++
	return c
}

// populate 每个槽位只抽一次随机数：r < Chance 时生成，r/Chance 按权重决定类别
func (t *Track) populate(c *Chunk) {
	p := t.cfg.Spawn
	total := p.Obstacle + p.Collectible + p.Powerup
	for z := t.cfg.SlotSpacing / 2; z < c.Length; z += t.cfg.SlotSpacing {
		r := t.rng.Float64()
		if r >= p.Chance {
			continue
		}
		u := r / p.Chance * total

		e := Entity{
			Lane:  t.rng.IntN(LaneCount) + MinLane,
			Z:     z,
			Phase: t.cosmetic.Float64(),
		}
		switch {
		case u < p.Obstacle:
			e.Kind = KindObstacle
			e.Hitbox = Hitbox{W: 1.5, H: 1, D: 1}
		case u < p.Obstacle+p.Collectible:
			e.Kind = KindCollectible
			e.Value = 1
		default:
			e.Kind = KindPowerup
			e.Powerup = powerupKinds[t.rng.IntN(len(powerupKinds))]
		}
		c.Entities = append(c.Entities, e)
	}
}
