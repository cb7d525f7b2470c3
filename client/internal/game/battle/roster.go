package battle

import (
	"errors"

	"github.com/RihoKanda/Abandoned/shared/protocol"
)

var ErrEmptyRoster = errors.New("battle: enemy roster is empty")

// Enemy is one immutable roster entry.
type Enemy struct {
	Name      string
	MaxHP     float64
	Attack    float64
	ExpReward int64
}

func EnemyFromWire(e protocol.Enemy) Enemy {
	return Enemy{Name: e.Name, MaxHP: e.HP, Attack: e.Attack, ExpReward: e.ExpReward}
}

func (e Enemy) View() protocol.EnemyView {
	return protocol.EnemyView{Name: e.Name, MaxHP: e.MaxHP, Attack: e.Attack, ExpReward: e.ExpReward}
}

// Roster is the ordered enemy list of a session. It loops forever going
// forward and stops at the first entry going back.
type Roster struct {
	enemies []Enemy
}

func NewRoster(enemies []Enemy) Roster {
	return Roster{enemies: append([]Enemy(nil), enemies...)}
}

func RosterFromWire(in []protocol.Enemy) Roster {
	out := make([]Enemy, 0, len(in))
	for _, e := range in {
		out = append(out, EnemyFromWire(e))
	}
	return Roster{enemies: out}
}

func (r Roster) Len() int { return len(r.enemies) }

// Current returns the enemy at index. Indexes past the end wrap to the first
// entry, the same way Advance does.
func (r Roster) Current(index int) (Enemy, error) {
	if len(r.enemies) == 0 {
		return Enemy{}, ErrEmptyRoster
	}
	if index < 0 || index >= len(r.enemies) {
		index = 0
	}
	return r.enemies[index], nil
}

// Advance is the index after from, wrapping to 0 past the end.
func (r Roster) Advance(from int) int {
	next := from + 1
	if next >= len(r.enemies) || next < 0 {
		return 0
	}
	return next
}

// Retreat is the index before from, never below 0.
func (r Roster) Retreat(from int) int {
	if from-1 < 0 {
		return 0
	}
	return from - 1
}
