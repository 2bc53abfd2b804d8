package sim

import "github.com/go-gl/mathgl/mgl64"

// EntityKind 实体类别（tagged union 的标签）
type EntityKind uint8

const (
	KindObstacle EntityKind = iota
	KindCollectible
	KindPowerup
)

func (k EntityKind) String() string {
	switch k {
	case KindObstacle:
		return "obstacle"
	case KindCollectible:
		return "collectible"
	case KindPowerup:
		return "powerup"
	default:
		return "unknown"
	}
}

// PowerupKind 道具类型，PowerupNone 表示空槽位
type PowerupKind uint8

const (
	PowerupNone PowerupKind = iota
	PowerupShield
	PowerupMagnet
	PowerupSpeed
)

var powerupKinds = [...]PowerupKind{PowerupShield, PowerupMagnet, PowerupSpeed}

func (k PowerupKind) String() string {
	switch k {
	case PowerupShield:
		return "shield"
	case PowerupMagnet:
		return "magnet"
	case PowerupSpeed:
		return "speed"
	default:
		return "none"
	}
}

// Hitbox 障碍物包围盒尺寸（仅供渲染与调试，判定使用距离阈值）
type Hitbox struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
	D float64 `json:"d"`
}

// Entity 隶属于唯一一个 Chunk，随 Chunk 一起销毁
// 被拾取的实体只标记 Consumed，不从切片中移除，避免遍历时下标失效
type Entity struct {
	Kind     EntityKind
	Lane     int
	Z        float64 // chunk 内的纵向位置
	Hitbox   Hitbox  // KindObstacle
	Value    int     // KindCollectible
	Powerup  PowerupKind
	Consumed bool

	// Phase 装饰用相位（漂浮/旋转），玩法逻辑从不读取
	Phase float64
}

// Position 实体的世界坐标（玩家恒在 z=0）
func (e *Entity) Position(chunkOffset float64) mgl64.Vec3 {
	return mgl64.Vec3{float64(e.Lane) * LaneWidth, 0, chunkOffset + e.Z}
}

// EntityView 渲染层只读视图
type EntityView struct {
	ChunkID  uint64      `json:"chunk"`
	Index    int         `json:"index"`
	Kind     EntityKind  `json:"kind"`
	Powerup  PowerupKind `json:"powerup,omitempty"`
	Position mgl64.Vec3  `json:"pos"`
	Hitbox   Hitbox      `json:"hitbox"`
	Consumed bool        `json:"consumed"`
	Phase    float64     `json:"phase"`
}
