package sim

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("sim: invalid config")

// SpeedCurve 由分数推导基础速度：min(Max, Base + score*Growth)
type SpeedCurve struct {
	Base   float64 `json:"base" toml:"base"`
	Max    float64 `json:"max" toml:"max"`
	Growth float64 `json:"growth" toml:"growth"`
}

func (c SpeedCurve) Speed(score int) float64 {
	return math.Min(c.Max, c.Base+float64(score)*c.Growth)
}

// SpawnPolicy 每个纵向槽位的生成策略（一次随机数同时决定「是否生成」与「生成何种」）
type SpawnPolicy struct {
	Chance      float64
	Obstacle    float64
	Collectible float64
	Powerup     float64
}

// Config 单局模拟的全部可调参数
type Config struct {
	TickSize    float64
	MaxFrame    float64
	ChunkLength float64
	SlotSpacing float64
	MinChunks   int
	SafeChunks  int

	Spawn SpawnPolicy
	Speed SpeedCurve

	CollisionRadius float64
	MagnetRadius    float64

	// Seed 仅驱动玩法随机（生成策略），装饰性随机数另起
	Seed uint64

	Logger *zap.Logger
}

// DefaultConfig 默认调参
func DefaultConfig() Config {
	return Config{
		TickSize:    DefaultTickSize,
		MaxFrame:    MaxFrameTime,
		ChunkLength: ChunkLength,
		SlotSpacing: SlotSpacing,
		MinChunks:   MinActiveChunks,
		SafeChunks:  SafeChunks,
		Spawn: SpawnPolicy{
			Chance:      SpawnChance,
			Obstacle:    ObstacleWeight,
			Collectible: CollectibleWeight,
			Powerup:     PowerupWeight,
		},
		Speed: SpeedCurve{
			Base:   BaseSpeed,
			Max:    MaxSpeed,
			Growth: SpeedGrowth,
		},
		CollisionRadius: CollisionRadius,
		MagnetRadius:    MagnetRadius,
	}
}

// Validate 仅检查会导致初始化无法继续的参数
func (c Config) Validate() error {
	switch {
	case c.TickSize <= 0:
		return fmt.Errorf("%w: tick size %v", ErrInvalidConfig, c.TickSize)
	case c.MaxFrame < c.TickSize:
		return fmt.Errorf("%w: max frame %v below tick size", ErrInvalidConfig, c.MaxFrame)
	case c.ChunkLength <= 0 || c.SlotSpacing <= 0:
		return fmt.Errorf("%w: chunk length %v slot spacing %v", ErrInvalidConfig, c.ChunkLength, c.SlotSpacing)
	case c.MinChunks < 1:
		return fmt.Errorf("%w: min chunks %d", ErrInvalidConfig, c.MinChunks)
	case c.Spawn.Chance < 0 || c.Spawn.Chance > 1:
		return fmt.Errorf("%w: spawn chance %v", ErrInvalidConfig, c.Spawn.Chance)
	case c.Spawn.Obstacle+c.Spawn.Collectible+c.Spawn.Powerup <= 0:
		return fmt.Errorf("%w: spawn weights sum to zero", ErrInvalidConfig)
	case c.CollisionRadius <= 0:
		return fmt.Errorf("%w: collision radius %v", ErrInvalidConfig, c.CollisionRadius)
	}
	return nil
}
