package protocol

import "encoding/json"

// Envelope used on the presentation feed.
type MsgEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// APIResponse wraps every REST reply from the game server.
type APIResponse[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

// ================= REST requests =================

type LoginRequest struct {
	DeviceID string `json:"device_id"`
	Version  string `json:"version,omitempty"`
}

// UserRequest is the body of idle start/finish, level up and evolve.
type UserRequest struct {
	UserID int64 `json:"user_id"`
}

type UpgradeRequest struct {
	UserID      int64  `json:"user_id"`
	UpgradeType string `json:"upgrade_type"` // "attack", "speed", "hp_regain"
}

// ================= REST responses =================

type LoginResponse struct {
	User      User   `json:"user"`
	IsNewUser bool   `json:"is_new_user"`
	Token     string `json:"token,omitempty"`
}

type GameStateResponse struct {
	User    User    `json:"user"`
	Enemies []Enemy `json:"enemies"`
}

type IdleStartResponse struct {
	User      User   `json:"user"`
	StartedAt string `json:"started_at"`
}

type IdleFinishResponse struct {
	User        User  `json:"user"`
	ExpGained   int64 `json:"exp_gained"`
	IdleMinutes int   `json:"idle_minutes"`
}

type LevelUpResponse struct {
	User      User `json:"user"`
	LeveledUp bool `json:"leveled_up"`
	NewLevel  int  `json:"new_level"`
}

type UpgradeResponse struct {
	User        User   `json:"user"`
	UpgradeType string `json:"upgrade_type"`
}

type EvolveResponse struct {
	User           User `json:"user"`
	EvolutionStage int  `json:"evolution_stage"`
}

// ================= Feed: C -> S =================

type StartBattle struct{}
type StopBattle struct{}
type StartIdle struct{}
type FinishIdle struct{}
type LevelUp struct{}
type Evolve struct{}
type Refresh struct{}

type Upgrade struct {
	Kind string `json:"kind"`
}

// ================= Feed: S -> C =================

type EnemyView struct {
	Name      string  `json:"name"`
	MaxHP     float64 `json:"maxHp"`
	Attack    float64 `json:"attack"`
	ExpReward int64   `json:"expReward"`
}

type BattleSnapshot struct {
	Running     bool      `json:"running"`
	Ready       bool      `json:"ready"`
	PlayerHP    float64   `json:"playerHp"`
	PlayerMaxHP float64   `json:"playerMaxHp"`
	EnemyIndex  int       `json:"enemyIndex"`
	EnemyHP     float64   `json:"enemyHp"`
	EnemyMaxHP  float64   `json:"enemyMaxHp"`
	Enemy       EnemyView `json:"enemy"`
	AttackPower float64   `json:"attackPower"`
	AttackSpeed float64   `json:"attackSpeed"`
	HPRegen     float64   `json:"hpRegen"`
	Tick        int64     `json:"tick"`
}

type EnemyDefeated struct {
	Enemy     EnemyView `json:"enemy"`
	ExpReward int64     `json:"expReward"`
	NextIndex int       `json:"nextIndex"`
}

type PlayerDied struct {
	KilledBy  EnemyView `json:"killedBy"`
	NextIndex int       `json:"nextIndex"`
}

type BattleStarted struct{}
type BattleStopped struct{}

type ProgressionView struct {
	Level                  int     `json:"level"`
	Exp                    int64   `json:"exp"`
	RequiredExp            int64   `json:"requiredExp"`
	AttackPower            float64 `json:"attackPower"`
	AttackSpeed            float64 `json:"attackSpeed"`
	HPRegen                float64 `json:"hpRegen"`
	AttackUp               int     `json:"attackUp"`
	SpeedUp                int     `json:"speedUp"`
	HPRegenUp              int     `json:"hpRegenUp"`
	EvolutionStage         int     `json:"evolutionStage"`
	AvailablePoints        int     `json:"availablePoints"`
	RequiredEvolutionLevel int     `json:"requiredEvolutionLevel"`
	IsIdle                 bool    `json:"isIdle"`
	CanStartIdle           bool    `json:"canStartIdle"`
	CanFinishIdle          bool    `json:"canFinishIdle"`
	CanLevelUp             bool    `json:"canLevelUp"`
	CanUpgrade             bool    `json:"canUpgrade"`
	CanEvolve              bool    `json:"canEvolve"`
}

type Notification struct {
	Message string `json:"message"`
	Level   string `json:"level"` // "info" | "warn"
}

type ErrorMsg struct {
	Message string `json:"message"`
}

// StateView is the body of GET /state on the feed server.
type StateView struct {
	Battle      BattleSnapshot   `json:"battle"`
	Progression *ProgressionView `json:"progression,omitempty"`
}
