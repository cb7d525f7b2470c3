// Package progression holds the player's progression record and the pure
// arithmetic derived from it: combat stats, experience thresholds, the upgrade
// budget and evolution gates. Nothing in here sleeps or talks to the network.
package progression

import (
	"github.com/RihoKanda/Abandoned/shared/game/types"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

// Model is the local copy of the authoritative user record.
type Model struct {
	UserID          int64
	Level           int
	Experience      int64
	AttackUpgrades  int
	SpeedUpgrades   int
	HPRegenUpgrades int
	EvolutionStage  int
	IsIdle          bool
}

// FromUser builds a Model from a server snapshot, clamping anything out of
// range so the invariants hold no matter what the wire said.
func FromUser(u protocol.User) Model {
	return Model{
		UserID:          u.UserID,
		Level:           atLeast(u.Level, 1),
		Experience:      max(u.Exp, 0),
		AttackUpgrades:  atLeast(u.AttackUp, 0),
		SpeedUpgrades:   atLeast(u.SpeedUp, 0),
		HPRegenUpgrades: atLeast(u.HPRegenUp, 0),
		EvolutionStage:  atLeast(u.EvolutionStage, 0),
		IsIdle:          u.IsIdle,
	}
}

func atLeast(v, floor int) int {
	if v < floor {
		return floor
	}
	return v
}

// UsedUpgrades is the number of points already spent.
func (m Model) UsedUpgrades() int {
	return m.AttackUpgrades + m.SpeedUpgrades + m.HPRegenUpgrades
}

// Upgrades returns the counter for one kind.
func (m Model) Upgrades(kind types.UpgradeKind) int {
	switch kind {
	case types.UpgradeAttack:
		return m.AttackUpgrades
	case types.UpgradeSpeed:
		return m.SpeedUpgrades
	case types.UpgradeHPRegain:
		return m.HPRegenUpgrades
	}
	return 0
}

func (m Model) AttackPower() float64           { return AttackPower(m.AttackUpgrades) }
func (m Model) AttackSpeedMultiplier() float64 { return AttackSpeedMultiplier(m.SpeedUpgrades) }
func (m Model) HPRegenPerTick() float64        { return HPRegenPerTick(m.HPRegenUpgrades) }

func (m Model) Stats() Stats {
	return Stats{
		AttackPower: m.AttackPower(),
		AttackSpeed: m.AttackSpeedMultiplier(),
		HPRegen:     m.HPRegenPerTick(),
	}
}

func (m Model) RequiredExperience() int64 { return RequiredExperience(m.Level) }

func (m Model) AvailableUpgradePoints() int {
	return AvailableUpgradePoints(m.Level, m.UsedUpgrades())
}

func (m Model) RequiredEvolutionLevel() int {
	return RequiredLevelForNextEvolution(m.EvolutionStage)
}
