// Package battle runs the automatic fight: an attack exchange and an HP
// regeneration process ticking side by side against a looping enemy roster.
package battle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/RihoKanda/Abandoned/client/internal/game/balance"
	"github.com/RihoKanda/Abandoned/client/internal/game/progression"
	"github.com/RihoKanda/Abandoned/client/internal/metrics"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

// Progression is the slice of the player record the battle needs: stats to
// read every cycle and a place to credit experience.
type Progression interface {
	Stats() progression.Stats
	AddExperience(n int64)
}

// Broadcaster receives battle events. It is called outside the engine lock
// from the loop goroutines and must not block.
type Broadcaster func(eventType string, event any)

type event struct {
	typ  string
	data any
}

type Engine struct {
	tuning    balance.Tuning
	prog      Progression
	log       zerolog.Logger
	broadcast Broadcaster

	mu     sync.Mutex
	roster Roster
	state  State
	ready  chan struct{}
	gen    uint64
	cancel context.CancelFunc
	done   chan struct{}
	tick   int64

	attackLoops atomic.Int32
	regenLoops  atomic.Int32
}

func NewEngine(t balance.Tuning, prog Progression, log zerolog.Logger) *Engine {
	done := make(chan struct{})
	close(done)
	return &Engine{
		tuning: t,
		prog:   prog,
		log:    log,
		state: State{
			PlayerHP:    t.PlayerMaxHP,
			PlayerMaxHP: t.PlayerMaxHP,
		},
		ready: make(chan struct{}),
		done:  done,
	}
}

// SetBroadcaster wires the presentation sink. Call before Start.
func (e *Engine) SetBroadcaster(b Broadcaster) {
	e.mu.Lock()
	e.broadcast = b
	e.mu.Unlock()
}

// SetRoster loads the enemy list of a fresh game state. The fight restarts at
// the first enemy with full HP; player HP is kept.
func (e *Engine) SetRoster(enemies []Enemy) {
	e.mu.Lock()
	e.roster = NewRoster(enemies)
	var events []event
	if e.roster.Len() > 0 {
		e.loadEnemyLocked(0)
		select {
		case <-e.ready:
		default:
			close(e.ready)
		}
	} else {
		e.state.EnemyIndex, e.state.EnemyHP = 0, 0
		select {
		case <-e.ready:
			e.ready = make(chan struct{})
		default:
		}
	}
	events = append(events, event{"BattleSnapshot", e.snapshotLocked().Message()})
	b := e.broadcast
	e.mu.Unlock()

	e.log.Info().Int("enemies", len(enemies)).Msg("roster loaded")
	emit(b, events)
}

// Ready is closed once a non-empty roster is loaded.
func (e *Engine) Ready() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Start enters Running and launches the attack and regeneration processes.
// Starting a running engine does nothing. The loops also end when ctx does.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	if e.state.Active {
		e.mu.Unlock()
		return nil
	}
	if e.roster.Len() == 0 {
		e.mu.Unlock()
		return ErrEmptyRoster
	}

	e.gen++
	gen := e.gen
	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	done := make(chan struct{})
	e.state.Active = true
	e.cancel = cancel
	e.done = done

	e.attackLoops.Add(1)
	e.regenLoops.Add(1)
	g.Go(func() error { return e.attackLoop(gctx, gen) })
	g.Go(func() error { return e.regenLoop(gctx, gen) })
	go func() {
		_ = g.Wait()
		cancel()
		e.mu.Lock()
		if e.gen == gen && e.state.Active {
			e.state.Active = false
			e.cancel = nil
			metrics.BattleRunning.Set(0)
		}
		e.mu.Unlock()
		close(done)
	}()

	events := []event{
		{"BattleStarted", protocol.BattleStarted{}},
		{"BattleSnapshot", e.snapshotLocked().Message()},
	}
	b := e.broadcast
	e.mu.Unlock()

	metrics.BattleRunning.Set(1)
	e.log.Info().Msg("battle started")
	emit(b, events)
	return nil
}

// StartWhenReady waits for a non-empty roster, then starts.
func (e *Engine) StartWhenReady(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.Ready():
		}
		err := e.Start(ctx)
		if !errors.Is(err, ErrEmptyRoster) {
			return err
		}
	}
}

// Stop returns to Idle. Pending waits are cancelled and no cycle mutates the
// state after Stop returns.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.state.Active {
		e.mu.Unlock()
		return
	}
	e.state.Active = false
	e.gen++
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	events := []event{
		{"BattleStopped", protocol.BattleStopped{}},
		{"BattleSnapshot", e.snapshotLocked().Message()},
	}
	b := e.broadcast
	e.mu.Unlock()

	metrics.BattleRunning.Set(0)
	e.log.Info().Msg("battle stopped")
	emit(b, events)
}

// Done is closed when the goroutines of the latest run have exited.
func (e *Engine) Done() <-chan struct{} {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Active
}

// RefreshPlayerStats re-reads the progression stats and pushes a snapshot.
// Call it after the progression model was replaced.
func (e *Engine) RefreshPlayerStats() {
	e.mu.Lock()
	snap := e.snapshotLocked()
	b := e.broadcast
	e.mu.Unlock()

	e.log.Debug().
		Float64("attack", snap.Stats.AttackPower).
		Float64("speed", snap.Stats.AttackSpeed).
		Float64("regen", snap.Stats.HPRegen).
		Msg("player stats refreshed")
	emit(b, []event{{"BattleSnapshot", snap.Message()}})
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) PlayerHP() float64    { return e.Snapshot().PlayerHP }
func (e *Engine) PlayerMaxHP() float64 { return e.Snapshot().PlayerMaxHP }
func (e *Engine) EnemyHP() float64     { return e.Snapshot().EnemyHP }
func (e *Engine) EnemyMaxHP() float64  { return e.Snapshot().Enemy.MaxHP }

// CurrentEnemy reports false until a roster is loaded.
func (e *Engine) CurrentEnemy() (Enemy, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	en, err := e.roster.Current(e.state.EnemyIndex)
	return en, err == nil
}

// ---------------------------------------------------------------------------
// periodic processes

func (e *Engine) attackLoop(ctx context.Context, gen uint64) error {
	defer e.attackLoops.Add(-1)
	for {
		pause, ok := e.attackCycle(gen)
		if !ok {
			return nil
		}
		if !sleep(ctx, pause+e.attackPeriod()) {
			return nil
		}
	}
}

func (e *Engine) regenLoop(ctx context.Context, gen uint64) error {
	defer e.regenLoops.Add(-1)
	for {
		if !sleep(ctx, e.tuning.RegenInterval) {
			return nil
		}
		if !e.regenCycle(gen) {
			return nil
		}
	}
}

// attackPeriod is the nominal interval shortened by the current speed
// multiplier, read fresh so mid-battle upgrades apply on the next cycle.
func (e *Engine) attackPeriod() time.Duration {
	speed := e.prog.Stats().AttackSpeed
	if speed <= 0 {
		return e.tuning.AttackInterval
	}
	return time.Duration(float64(e.tuning.AttackInterval) / speed)
}

// attackCycle is one attack exchange. It returns the extra pause to insert
// after a defeat or death, and false once the run it belongs to is over.
func (e *Engine) attackCycle(gen uint64) (time.Duration, bool) {
	e.mu.Lock()
	if !e.currentLocked(gen) {
		e.mu.Unlock()
		return 0, false
	}
	idx := e.state.EnemyIndex
	enemy, err := e.roster.Current(idx)
	if err != nil {
		e.mu.Unlock()
		return 0, true
	}

	stats := e.prog.Stats()
	e.tick++
	var pause time.Duration
	var events []event

	e.state.EnemyHP = clampHP(e.state.EnemyHP-stats.AttackPower, enemy.MaxHP)
	e.log.Debug().Float64("damage", stats.AttackPower).Float64("enemy_hp", e.state.EnemyHP).Msg("player attack")

	if e.state.EnemyHP <= 0 {
		// defeated enemies do not strike back
		e.prog.AddExperience(enemy.ExpReward)
		next := e.roster.Advance(idx)
		e.loadEnemyLocked(next)
		pause = e.tuning.PostEventPause
		events = append(events, event{"EnemyDefeated", protocol.EnemyDefeated{
			Enemy:     enemy.View(),
			ExpReward: enemy.ExpReward,
			NextIndex: next,
		}})
		metrics.EnemiesDefeated.WithLabelValues(enemy.Name).Inc()
		metrics.ExperienceGained.Add(float64(max(enemy.ExpReward, 0)))
		e.log.Info().Str("enemy", enemy.Name).Int64("exp", enemy.ExpReward).Msg("enemy defeated")
	} else {
		e.state.PlayerHP = clampHP(e.state.PlayerHP-enemy.Attack, e.state.PlayerMaxHP)
		e.log.Debug().Float64("damage", enemy.Attack).Float64("player_hp", e.state.PlayerHP).Msg("enemy attack")

		if e.state.PlayerHP <= 0 {
			e.state.PlayerHP = e.state.PlayerMaxHP
			next := e.roster.Retreat(idx)
			e.loadEnemyLocked(next)
			pause = e.tuning.PostEventPause
			events = append(events, event{"PlayerDied", protocol.PlayerDied{
				KilledBy:  enemy.View(),
				NextIndex: next,
			}})
			metrics.PlayerDeaths.WithLabelValues(enemy.Name).Inc()
			e.log.Info().Str("enemy", enemy.Name).Msg("player died, falling back")
		}
	}

	events = append(events, event{"BattleSnapshot", e.snapshotLocked().Message()})
	b := e.broadcast
	e.mu.Unlock()

	metrics.BattleCycles.WithLabelValues("attack").Inc()
	emit(b, events)
	return pause, true
}

// regenCycle heals the player by one tick, clamped to max HP.
func (e *Engine) regenCycle(gen uint64) bool {
	e.mu.Lock()
	if !e.currentLocked(gen) {
		e.mu.Unlock()
		return false
	}
	e.tick++
	e.state.PlayerHP = Regenerate(e.state.PlayerHP, e.state.PlayerMaxHP, e.prog.Stats().HPRegen)
	snap := e.snapshotLocked()
	b := e.broadcast
	e.mu.Unlock()

	metrics.BattleCycles.WithLabelValues("regen").Inc()
	emit(b, []event{{"BattleSnapshot", snap.Message()}})
	return true
}

func (e *Engine) currentLocked(gen uint64) bool {
	return e.state.Active && e.gen == gen
}

func (e *Engine) loadEnemyLocked(index int) {
	en, err := e.roster.Current(index)
	if err != nil {
		return
	}
	if index < 0 || index >= e.roster.Len() {
		index = 0
	}
	e.state.EnemyIndex = index
	e.state.EnemyHP = en.MaxHP
	e.log.Debug().Str("enemy", en.Name).Float64("hp", en.MaxHP).Int("index", index).Msg("new enemy")
}

func (e *Engine) snapshotLocked() Snapshot {
	en, err := e.roster.Current(e.state.EnemyIndex)
	return Snapshot{
		State: e.state,
		Ready: err == nil,
		Enemy: en,
		Stats: e.prog.Stats(),
		Tick:  e.tick,
	}
}

func emit(b Broadcaster, events []event) {
	if b == nil {
		return
	}
	for _, ev := range events {
		b(ev.typ, ev.data)
	}
}

// sleep waits d or until ctx ends; false means the wait was cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
