package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"crystalrun/sim"
)

var ErrInvalid = errors.New("config: invalid")

// LogConfig 日志滚动策略（lumberjack）
type LogConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Level      string `toml:"level"`
	Format     string `toml:"format"` // console | json
	Stderr     bool   `toml:"stderr"`
}

// RoomConfig 房间循环参数，时间单位为毫秒
type RoomConfig struct {
	FrameHz      int            `toml:"frame_hz" json:"frameHz"`
	BroadcastMs  int            `toml:"broadcast_ms" json:"broadcastMs"`
	TrickleMs    int            `toml:"trickle_ms" json:"trickleMs"`
	TricklePts   int            `toml:"trickle_points" json:"tricklePoints"`
	InboxSize    int            `toml:"inbox_size" json:"inboxSize"`
	SendEntities bool           `toml:"send_entities" json:"sendEntities"`
	Speed        sim.SpeedCurve `toml:"speed" json:"speed"`
	SpawnChance  float64        `toml:"spawn_chance" json:"spawnChance"`
}

func (r RoomConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(r.FrameHz)
}

func (r RoomConfig) BroadcastInterval() time.Duration {
	return time.Duration(r.BroadcastMs) * time.Millisecond
}

func (r RoomConfig) TrickleInterval() time.Duration {
	return time.Duration(r.TrickleMs) * time.Millisecond
}

type Config struct {
	Addr        string     `toml:"addr"`
	Log         LogConfig  `toml:"log"`
	Leaderboard string     `toml:"leaderboard"`
	ReplayDir   string     `toml:"replay_dir"`
	SentryDSN   string     `toml:"sentry_dsn"`
	StatsView   string     `toml:"statsview"`
	Room        RoomConfig `toml:"room"`
}

// Default 生产默认值
func Default() Config {
	return Config{
		Addr: ":8080",
		Log: LogConfig{
			File:       "app.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Level:      "debug",
			Format:     "console",
		},
		Leaderboard: "leaderboard.json",
		Room: RoomConfig{
			FrameHz:      60,
			BroadcastMs:  50,
			TrickleMs:    100,
			TricklePts:   1,
			InboxSize:    256,
			SendEntities: true,
			Speed: sim.SpeedCurve{
				Base:   sim.BaseSpeed,
				Max:    sim.MaxSpeed,
				Growth: sim.SpeedGrowth,
			},
			SpawnChance: sim.SpawnChance,
		},
	}
}

// Load 默认值 → TOML 文件（可选）→ .env → 环境变量
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("config: load .env: %w", err)
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

func applyEnv(cfg *Config) {
	set := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	set("RUNNER_ADDR", &cfg.Addr)
	set("RUNNER_LOG_FILE", &cfg.Log.File)
	set("RUNNER_LEADERBOARD", &cfg.Leaderboard)
	set("RUNNER_REPLAY_DIR", &cfg.ReplayDir)
	set("SENTRY_DSN", &cfg.SentryDSN)
	set("RUNNER_STATSVIEW", &cfg.StatsView)
}

func (c Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: empty addr", ErrInvalid)
	case c.Room.FrameHz <= 0:
		return fmt.Errorf("%w: frame_hz %d", ErrInvalid, c.Room.FrameHz)
	case c.Room.BroadcastMs < 0 || c.Room.TrickleMs <= 0:
		return fmt.Errorf("%w: broadcast_ms %d trickle_ms %d", ErrInvalid, c.Room.BroadcastMs, c.Room.TrickleMs)
	case c.Room.InboxSize <= 0:
		return fmt.Errorf("%w: inbox_size %d", ErrInvalid, c.Room.InboxSize)
	case c.Room.Speed.Max < c.Room.Speed.Base:
		return fmt.Errorf("%w: speed max %v below base %v", ErrInvalid, c.Room.Speed.Max, c.Room.Speed.Base)
	}
	return nil
}

// SimConfig 由房间配置派生单局模拟参数
func (c Config) SimConfig() sim.Config {
	s := sim.DefaultConfig()
	s.Speed = c.Room.Speed
	s.Spawn.Chance = c.Room.SpawnChance
	return s
}
