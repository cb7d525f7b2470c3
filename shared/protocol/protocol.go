package protocol

// User is the authoritative player record as the game server returns it.
type User struct {
	UserID         int64  `json:"user_id"`
	DeviceID       string `json:"device_id,omitempty"`
	Level          int    `json:"level"`
	Exp            int64  `json:"exp"`
	AttackUp       int    `json:"attack_up"`
	SpeedUp        int    `json:"speed_up"`
	HPRegenUp      int    `json:"hp_regen_up"`
	EvolutionStage int    `json:"evolution_stage"`
	IsIdle         bool   `json:"is_idle"`
	IdleStartedAt  string `json:"idle_started_at,omitempty"`
}

// Enemy is one entry of the roster handed out with the game state.
type Enemy struct {
	ID        int64   `json:"enemy_id,omitempty"`
	Name      string  `json:"name"`
	HP        float64 `json:"hp"`
	Attack    float64 `json:"attack"`
	ExpReward int64   `json:"exp_reward"`
}
