package battle

import (
	"github.com/RihoKanda/Abandoned/client/internal/game/progression"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

// State is the mutable battle record. Only the engine writes it.
type State struct {
	EnemyIndex  int
	EnemyHP     float64
	PlayerHP    float64
	PlayerMaxHP float64
	Active      bool
}

// Snapshot is a read-only copy handed to presentation.
type Snapshot struct {
	State
	Ready bool
	Enemy Enemy
	Stats progression.Stats
	Tick  int64
}

func (s Snapshot) Message() protocol.BattleSnapshot {
	return protocol.BattleSnapshot{
		Running:     s.Active,
		Ready:       s.Ready,
		PlayerHP:    s.PlayerHP,
		PlayerMaxHP: s.PlayerMaxHP,
		EnemyIndex:  s.EnemyIndex,
		EnemyHP:     s.EnemyHP,
		EnemyMaxHP:  s.Enemy.MaxHP,
		Enemy:       s.Enemy.View(),
		AttackPower: s.Stats.AttackPower,
		AttackSpeed: s.Stats.AttackSpeed,
		HPRegen:     s.Stats.HPRegen,
		Tick:        s.Tick,
	}
}

// Regenerate heals by perTick without passing maxHP.
func Regenerate(hp, maxHP, perTick float64) float64 {
	return clampHP(hp+perTick, maxHP)
}

func clampHP(hp, maxHP float64) float64 {
	if hp > maxHP {
		return maxHP
	}
	if hp < 0 {
		return 0
	}
	return hp
}
