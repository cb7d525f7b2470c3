package progression

import "github.com/RihoKanda/Abandoned/shared/protocol"

// View flattens a Model into what a status screen shows, including which
// actions are currently allowed.
func (m Model) View() protocol.ProgressionView {
	return protocol.ProgressionView{
		Level:                  m.Level,
		Exp:                    m.Experience,
		RequiredExp:            m.RequiredExperience(),
		AttackPower:            m.AttackPower(),
		AttackSpeed:            m.AttackSpeedMultiplier(),
		HPRegen:                m.HPRegenPerTick(),
		AttackUp:               m.AttackUpgrades,
		SpeedUp:                m.SpeedUpgrades,
		HPRegenUp:              m.HPRegenUpgrades,
		EvolutionStage:         m.EvolutionStage,
		AvailablePoints:        m.AvailableUpgradePoints(),
		RequiredEvolutionLevel: m.RequiredEvolutionLevel(),
		IsIdle:                 m.IsIdle,
		CanStartIdle:           !m.IsIdle,
		CanFinishIdle:          m.IsIdle,
		CanLevelUp:             m.CanLevelUp(),
		CanUpgrade:             m.CanUpgrade(),
		CanEvolve:              m.CanEvolve(),
	}
}
