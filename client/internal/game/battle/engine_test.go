package battle

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RihoKanda/Abandoned/client/internal/game/balance"
	"github.com/RihoKanda/Abandoned/client/internal/game/progression"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

// fakeProgression is a test implementation of the Progression interface
type fakeProgression struct {
	mu    sync.Mutex
	stats progression.Stats
	exp   int64
}

func (p *fakeProgression) Stats() progression.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *fakeProgression) AddExperience(n int64) {
	p.mu.Lock()
	p.exp += n
	p.mu.Unlock()
}

func (p *fakeProgression) Exp() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exp
}

// recorder collects broadcast events without ever blocking the engine.
type recorder struct {
	mu     sync.Mutex
	events []string
	snaps  chan protocol.BattleSnapshot
}

func newRecorder() *recorder {
	return &recorder{snaps: make(chan protocol.BattleSnapshot, 256)}
}

func (r *recorder) broadcast(eventType string, ev any) {
	r.mu.Lock()
	r.events = append(r.events, eventType)
	r.mu.Unlock()
	if s, ok := ev.(protocol.BattleSnapshot); ok {
		select {
		case r.snaps <- s:
		default:
		}
	}
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == eventType {
			n++
		}
	}
	return n
}

// waitTick blocks until a snapshot with at least the given tick arrives.
func (r *recorder) waitTick(t *testing.T, tick int64) protocol.BattleSnapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-r.snaps:
			if s.Tick >= tick {
				return s
			}
		case <-deadline:
			t.Fatalf("no snapshot with tick >= %d", tick)
		}
	}
}

func slowTuning() balance.Tuning {
	t := balance.Default()
	t.AttackInterval = time.Hour
	t.RegenInterval = time.Hour
	return t
}

func testRoster() []Enemy {
	return []Enemy{
		{Name: "Slime", MaxHP: 20, Attack: 10, ExpReward: 5},
		{Name: "Goblin", MaxHP: 50, Attack: 10, ExpReward: 7},
		{Name: "Orc", MaxHP: 80, Attack: 10, ExpReward: 12},
	}
}

func newTestEngine(t *testing.T, tuning balance.Tuning, stats progression.Stats) (*Engine, *fakeProgression, *recorder) {
	t.Helper()
	p := &fakeProgression{stats: stats}
	e := NewEngine(tuning, p, zerolog.Nop())
	rec := newRecorder()
	e.SetBroadcaster(rec.broadcast)
	return e, p, rec
}

// arm marks the engine running without launching the loops so cycles can be
// driven by hand.
func (e *Engine) arm() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state.Active = true
	e.gen++
	return e.gen
}

func (e *Engine) setState(fn func(s *State)) {
	e.mu.Lock()
	fn(&e.state)
	e.mu.Unlock()
}

func TestRosterNavigation(t *testing.T) {
	r := NewRoster(testRoster())
	assert.Equal(t, 1, r.Advance(0))
	assert.Equal(t, 0, r.Advance(2), "advance past the last entry wraps")
	assert.Equal(t, 0, r.Advance(7))
	assert.Equal(t, 1, r.Retreat(2))
	assert.Equal(t, 0, r.Retreat(0), "retreat never wraps backwards")

	en, err := r.Current(1)
	require.NoError(t, err)
	assert.Equal(t, "Goblin", en.Name)

	_, err = NewRoster(nil).Current(0)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestRosterFromWire(t *testing.T) {
	r := RosterFromWire([]protocol.Enemy{{Name: "Bat", HP: 12, Attack: 3, ExpReward: 2}})
	require.Equal(t, 1, r.Len())
	en, _ := r.Current(0)
	assert.Equal(t, Enemy{Name: "Bat", MaxHP: 12, Attack: 3, ExpReward: 2}, en)
}

func TestEnemyDefeatedSkipsRetaliation(t *testing.T) {
	e, p, rec := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 10, AttackSpeed: 1, HPRegen: 1})
	e.SetRoster(testRoster())
	gen := e.arm()
	e.setState(func(s *State) { s.EnemyHP = 5 })

	pause, ok := e.attackCycle(gen)
	require.True(t, ok)

	s := e.Snapshot()
	assert.Equal(t, 1, s.EnemyIndex)
	assert.Equal(t, 50.0, s.EnemyHP, "next enemy starts at full HP")
	assert.Equal(t, 100.0, s.PlayerHP, "defeated enemy must not hit back")
	assert.Equal(t, int64(5), p.Exp())
	assert.Equal(t, balance.DefaultPostEventPause, pause)
	assert.Equal(t, 1, rec.count("EnemyDefeated"))
}

func TestEnemySurvivesAndRetaliates(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 10, AttackSpeed: 1})
	e.SetRoster(testRoster())
	gen := e.arm()

	pause, ok := e.attackCycle(gen)
	require.True(t, ok)
	assert.Zero(t, pause)

	s := e.Snapshot()
	assert.Equal(t, 0, s.EnemyIndex)
	assert.Equal(t, 10.0, s.EnemyHP)
	assert.Equal(t, 90.0, s.PlayerHP)
}

func TestPlayerDeathRetreats(t *testing.T) {
	e, _, rec := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 1, AttackSpeed: 1})
	e.SetRoster(testRoster())
	gen := e.arm()
	e.setState(func(s *State) {
		s.EnemyIndex = 2
		s.EnemyHP = 80
		s.PlayerHP = 3
	})

	pause, ok := e.attackCycle(gen)
	require.True(t, ok)

	s := e.Snapshot()
	assert.Equal(t, s.PlayerMaxHP, s.PlayerHP)
	assert.Equal(t, 1, s.EnemyIndex)
	assert.Equal(t, 50.0, s.EnemyHP)
	assert.Equal(t, balance.DefaultPostEventPause, pause)
	assert.Equal(t, 1, rec.count("PlayerDied"))
}

func TestPlayerDeathAtFirstEnemyStaysAtZero(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 1, AttackSpeed: 1})
	e.SetRoster(testRoster())
	gen := e.arm()
	e.setState(func(s *State) { s.PlayerHP = 3; s.EnemyHP = 7 })

	_, ok := e.attackCycle(gen)
	require.True(t, ok)

	s := e.Snapshot()
	assert.Equal(t, 0, s.EnemyIndex)
	assert.Equal(t, 20.0, s.EnemyHP, "enemy HP resets even when the index stays")
	assert.Equal(t, 100.0, s.PlayerHP)
}

func TestDefeatingLastEnemyWraps(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 100, AttackSpeed: 1})
	e.SetRoster(testRoster())
	gen := e.arm()
	e.setState(func(s *State) { s.EnemyIndex = 2; s.EnemyHP = 80 })

	_, ok := e.attackCycle(gen)
	require.True(t, ok)
	assert.Equal(t, 0, e.Snapshot().EnemyIndex)
	assert.Equal(t, 20.0, e.Snapshot().EnemyHP)
}

func TestRegenerationClamps(t *testing.T) {
	assert.Equal(t, 100.0, Regenerate(95, 100, 10))
	assert.Equal(t, 96.0, Regenerate(95, 100, 1))

	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackSpeed: 1, HPRegen: 10})
	e.SetRoster(testRoster())
	gen := e.arm()
	e.setState(func(s *State) { s.PlayerHP = 95 })

	require.True(t, e.regenCycle(gen))
	assert.Equal(t, 100.0, e.PlayerHP())
	require.True(t, e.regenCycle(gen))
	assert.Equal(t, 100.0, e.PlayerHP())
}

func TestStaleCycleDoesNothing(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 10, AttackSpeed: 1, HPRegen: 1})
	e.SetRoster(testRoster())
	gen := e.arm()
	e.arm() // a newer run supersedes gen

	_, ok := e.attackCycle(gen)
	assert.False(t, ok)
	assert.False(t, e.regenCycle(gen))
	assert.Equal(t, 20.0, e.EnemyHP())
}

func TestStartWithEmptyRoster(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 10, AttackSpeed: 1})

	err := e.Start(context.Background())
	assert.ErrorIs(t, err, ErrEmptyRoster)
	assert.False(t, e.Running())

	e.SetRoster(nil)
	assert.ErrorIs(t, e.Start(context.Background()), ErrEmptyRoster)
	_, ok := e.CurrentEnemy()
	assert.False(t, ok)
}

func TestStartIsIdempotent(t *testing.T) {
	e, _, rec := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 1, AttackSpeed: 1})
	e.SetRoster(testRoster())

	require.NoError(t, e.Start(context.Background()))
	require.NoError(t, e.Start(context.Background()))
	assert.True(t, e.Running())
	assert.Equal(t, int32(1), e.attackLoops.Load())
	assert.Equal(t, int32(1), e.regenLoops.Load())
	assert.Equal(t, 1, rec.count("BattleStarted"))

	e.Stop()
	e.Stop()
	<-e.Done()
	assert.False(t, e.Running())
	assert.Equal(t, int32(0), e.attackLoops.Load())
	assert.Equal(t, int32(0), e.regenLoops.Load())
	assert.Equal(t, 1, rec.count("BattleStopped"))
}

func TestStopThenRestartKeepsState(t *testing.T) {
	e, _, rec := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 10, AttackSpeed: 1})
	e.SetRoster([]Enemy{{Name: "Wall", MaxHP: 100, Attack: 1, ExpReward: 1}})

	require.NoError(t, e.Start(context.Background()))
	first := rec.waitTick(t, 1)
	assert.Equal(t, 90.0, first.EnemyHP)

	e.Stop()
	<-e.Done()
	stopped := e.Snapshot()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, stopped, e.Snapshot())
	assert.Equal(t, 90.0, stopped.EnemyHP)
	assert.Equal(t, 99.0, stopped.PlayerHP)

	require.NoError(t, e.Start(context.Background()))
	second := rec.waitTick(t, 2)
	assert.Equal(t, 80.0, second.EnemyHP, "restart continues from the stopped state")
	assert.Equal(t, 98.0, second.PlayerHP)
	e.Stop()
	<-e.Done()
}

func TestStartWhenReadyWaitsForRoster(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 1, AttackSpeed: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- e.StartWhenReady(ctx) }()

	time.Sleep(20 * time.Millisecond)
	assert.False(t, e.Running())

	e.SetRoster(testRoster())
	require.NoError(t, <-errCh)
	assert.True(t, e.Running())
	e.Stop()
	<-e.Done()
}

func TestStartWhenReadyHonoursContext(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, e.StartWhenReady(ctx), context.DeadlineExceeded)
}

func TestLoopsRunAndStopWithParentContext(t *testing.T) {
	tuning := balance.Tuning{
		AttackInterval: 2 * time.Millisecond,
		RegenInterval:  2 * time.Millisecond,
		PostEventPause: time.Millisecond,
		PlayerMaxHP:    100,
	}
	e, p, rec := newTestEngine(t, tuning, progression.Stats{AttackPower: 25, AttackSpeed: 2, HPRegen: 1})
	e.SetRoster(testRoster())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, e.Start(ctx))

	require.Eventually(t, func() bool { return rec.count("EnemyDefeated") >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Greater(t, p.Exp(), int64(0))

	cancel()
	<-e.Done()
	assert.False(t, e.Running())
}

func TestAttackPeriodUsesSpeed(t *testing.T) {
	e, p, _ := newTestEngine(t, balance.Default(), progression.Stats{AttackSpeed: 2})
	assert.Equal(t, 500*time.Millisecond, e.attackPeriod())

	p.mu.Lock()
	p.stats.AttackSpeed = 0
	p.mu.Unlock()
	assert.Equal(t, time.Second, e.attackPeriod())
}

func TestSetRosterResetsFight(t *testing.T) {
	e, _, _ := newTestEngine(t, slowTuning(), progression.Stats{AttackPower: 1, AttackSpeed: 1})
	e.SetRoster(testRoster())
	e.setState(func(s *State) { s.EnemyIndex = 2; s.EnemyHP = 3; s.PlayerHP = 40 })

	e.SetRoster(testRoster()[1:])
	s := e.Snapshot()
	assert.Equal(t, 0, s.EnemyIndex)
	assert.Equal(t, 50.0, s.EnemyHP)
	assert.Equal(t, 40.0, s.PlayerHP)

	select {
	case <-e.Ready():
	default:
		t.Fatal("ready should be closed")
	}

	e.SetRoster(nil)
	select {
	case <-e.Ready():
		t.Fatal("ready should reopen for an empty roster")
	default:
	}
}
