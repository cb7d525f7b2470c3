// Package balance carries the battle timing knobs. Stat formulas are fixed in
// progression because the server enforces the same numbers; only pacing lives
// here.
package balance

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAttackInterval = time.Second
	DefaultRegenInterval  = time.Second
	DefaultPostEventPause = time.Second
	DefaultPlayerMaxHP    = 100.0
)

// Tuning is the battle pacing used by the engine.
type Tuning struct {
	AttackInterval time.Duration `yaml:"attack_interval"`
	RegenInterval  time.Duration `yaml:"hp_regain_interval"`
	PostEventPause time.Duration `yaml:"post_event_pause"`
	PlayerMaxHP    float64       `yaml:"player_max_hp"`
}

func Default() Tuning {
	return Tuning{
		AttackInterval: DefaultAttackInterval,
		RegenInterval:  DefaultRegenInterval,
		PostEventPause: DefaultPostEventPause,
		PlayerMaxHP:    DefaultPlayerMaxHP,
	}
}

// Load reads a YAML override on top of the defaults. An empty path or a
// missing file yields the defaults.
//
//	attack_interval: 800ms
//	hp_regain_interval: 1s
//	player_max_hp: 120
func Load(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("read balance file: %w", err)
	}
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Default(), fmt.Errorf("decode balance file: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Default(), err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.AttackInterval <= 0:
		return fmt.Errorf("attack_interval must be positive, got %s", t.AttackInterval)
	case t.RegenInterval <= 0:
		return fmt.Errorf("hp_regain_interval must be positive, got %s", t.RegenInterval)
	case t.PostEventPause < 0:
		return fmt.Errorf("post_event_pause must not be negative, got %s", t.PostEventPause)
	case t.PlayerMaxHP <= 0:
		return fmt.Errorf("player_max_hp must be positive, got %v", t.PlayerMaxHP)
	}
	return nil
}
