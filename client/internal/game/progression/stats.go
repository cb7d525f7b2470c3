package progression

const (
	BaseAttack = 10.0
	BaseSpeed  = 1.0
	BaseRegen  = 1.0

	// Every upgrade point adds 10% of the base value.
	UpgradeStep = 0.1

	ExpPerLevel        = 100
	LevelsPerEvolution = 10
)

// Stats is the combat view of a Model.
type Stats struct {
	AttackPower float64
	AttackSpeed float64 // divisor of the nominal attack interval
	HPRegen     float64 // HP restored per regeneration tick
}

// NoStats is what the battle sees before any user is loaded: no damage, no
// regen, nominal speed.
var NoStats = Stats{AttackPower: 0, AttackSpeed: BaseSpeed, HPRegen: 0}

func AttackPower(attackUpgrades int) float64 {
	return BaseAttack * (1 + float64(attackUpgrades)*UpgradeStep)
}

func AttackSpeedMultiplier(speedUpgrades int) float64 {
	return BaseSpeed * (1 + float64(speedUpgrades)*UpgradeStep)
}

func HPRegenPerTick(hpRegenUpgrades int) float64 {
	return BaseRegen * (1 + float64(hpRegenUpgrades)*UpgradeStep)
}

// RequiredExperience is the experience needed to level up from level.
func RequiredExperience(level int) int64 {
	return int64(level) * ExpPerLevel
}

// RequiredLevelForNextEvolution is the level gate for leaving stage.
func RequiredLevelForNextEvolution(stage int) int {
	return (stage + 1) * LevelsPerEvolution
}
