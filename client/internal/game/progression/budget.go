package progression

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientExperience = errors.New("not enough experience")
	ErrNoUpgradePoints        = errors.New("no upgrade points available")
	ErrEvolutionLevelNotMet   = errors.New("evolution level not reached")
)

// MaxUpgrades is the total upgrade budget granted up to and including level:
// one point per level, two on every fifth level.
func MaxUpgrades(level int) int {
	count := 0
	for i := 1; i <= level; i++ {
		if i%5 == 0 {
			count += 2
		} else {
			count++
		}
	}
	return count
}

// AvailableUpgradePoints is the exact unspent budget. It is only negative when
// a snapshot violates the budget invariant.
func AvailableUpgradePoints(level, used int) int {
	return MaxUpgrades(level) - used
}

func (m Model) CanLevelUp() bool { return m.Experience >= m.RequiredExperience() }
func (m Model) CanUpgrade() bool { return m.AvailableUpgradePoints() > 0 }
func (m Model) CanEvolve() bool  { return m.Level >= m.RequiredEvolutionLevel() }

// CheckLevelUp reports why a level up would be refused, or nil.
func (m Model) CheckLevelUp() error {
	if !m.CanLevelUp() {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientExperience, m.Experience, m.RequiredExperience())
	}
	return nil
}

func (m Model) CheckUpgrade() error {
	if !m.CanUpgrade() {
		return fmt.Errorf("%w: %d of %d spent", ErrNoUpgradePoints, m.UsedUpgrades(), MaxUpgrades(m.Level))
	}
	return nil
}

func (m Model) CheckEvolve() error {
	if !m.CanEvolve() {
		return fmt.Errorf("%w: level %d, need %d", ErrEvolutionLevelNotMet, m.Level, m.RequiredEvolutionLevel())
	}
	return nil
}
