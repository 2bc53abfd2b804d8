package sim

// 模拟调参常量（单位：世界单位 / 秒；时长一律按 Tick 计数）
const (
	TickRate        = 60
	DefaultTickSize = 1.0 / TickRate
	MaxFrameTime    = 0.1 // 单次 Update 最多累计 0.1s，防止卡顿后追帧风暴

	LaneCount     = 3
	MinLane       = -1
	MaxLane       = 1
	LaneWidth     = 2.5
	LaneEaseGain  = 12.0 // 横向缓动增益（每秒）
	LaneSnapEps   = 0.01
	ForwardFactor = 60.0 // speed 为「每 1/60 秒前进的单位」

	JumpImpulse   = 10.0
	Gravity       = 25.0
	SlideTicks    = 36 // 0.6s
	StumbleTicks  = 60 // 1.0s
	RecoveryTicks = 30 // 0.5s
	StartHealth   = 3

	StumblePenalty  = 0.5
	RecoveryPenalty = 0.75

	// 效果时长：激活后恰好覆盖这么多次 Tick 推进
	ShieldTicks     = 600 // 10s
	SpeedBoostTicks = 300 // 5s
	MagnetTicks     = 480 // 8s
	SpeedBoostMult  = 1.5

	ChunkLength     = 20.0
	SlotSpacing     = 4.0
	MinActiveChunks = 5
	SafeChunks      = 1 // 开局前若干 chunk 不放置实体

	SpawnChance       = 0.7
	ObstacleWeight    = 0.60
	CollectibleWeight = 0.35
	PowerupWeight     = 0.05

	CollisionRadius = 1.2
	MagnetRadius    = 6.0
	CrystalScore    = 10

	BaseSpeed   = 0.2
	MaxSpeed    = 0.6
	SpeedGrowth = 0.00005
)
