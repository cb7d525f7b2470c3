package types

import "fmt"

// UpgradeKind names the stat an upgrade point is spent on. The string values are
// the ones the game server expects in upgrade_type.
type UpgradeKind string

const (
	UpgradeAttack   UpgradeKind = "attack"
	UpgradeSpeed    UpgradeKind = "speed"
	UpgradeHPRegain UpgradeKind = "hp_regain"
)

// UpgradeKinds lists every kind in display order.
var UpgradeKinds = []UpgradeKind{UpgradeAttack, UpgradeSpeed, UpgradeHPRegain}

func (k UpgradeKind) Valid() bool {
	switch k {
	case UpgradeAttack, UpgradeSpeed, UpgradeHPRegain:
		return true
	default:
		return false
	}
}

// Label is the short human name used in notifications.
func (k UpgradeKind) Label() string {
	switch k {
	case UpgradeAttack:
		return "Attack"
	case UpgradeSpeed:
		return "Attack speed"
	case UpgradeHPRegain:
		return "HP regen"
	default:
		return "Ability"
	}
}

// ParseUpgradeKind accepts the wire names plus a couple of loose spellings
// people type on the command line.
func ParseUpgradeKind(s string) (UpgradeKind, error) {
	switch s {
	case "attack", "atk":
		return UpgradeAttack, nil
	case "speed", "spd":
		return UpgradeSpeed, nil
	case "hp_regain", "hp_regen", "regen", "hp":
		return UpgradeHPRegain, nil
	}
	return "", fmt.Errorf("unknown upgrade kind %q", s)
}
