package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/RihoKanda/Abandoned/client/internal/game/battle"
	"github.com/RihoKanda/Abandoned/client/internal/game/progression"
	"github.com/RihoKanda/Abandoned/shared/game/types"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

var (
	ErrNotLoggedIn = errors.New("not logged in")
	ErrAlreadyIdle = errors.New("idle mode already running")
	ErrNotIdle     = errors.New("idle mode is not running")
)

// Gateway is the game server as the session sees it. api.Client implements it.
type Gateway interface {
	Login(ctx context.Context, deviceID string) (protocol.LoginResponse, error)
	GetGameState(ctx context.Context, userID int64) (protocol.GameStateResponse, error)
	StartIdle(ctx context.Context, userID int64) (protocol.IdleStartResponse, error)
	FinishIdle(ctx context.Context, userID int64) (protocol.IdleFinishResponse, error)
	LevelUp(ctx context.Context, userID int64) (protocol.LevelUpResponse, error)
	Upgrade(ctx context.Context, userID int64, kind types.UpgradeKind) (protocol.UpgradeResponse, error)
	Evolve(ctx context.Context, userID int64) (protocol.EvolveResponse, error)
}

// Battle is the part of battle.Engine the session drives.
type Battle interface {
	SetRoster(enemies []battle.Enemy)
	RefreshPlayerStats()
}

// Session ties one logged in player to the gateway, the progression store and
// the battle. Player actions are checked locally before any remote call and
// the store is only replaced after a successful response.
type Session struct {
	gw     Gateway
	store  *progression.Store
	battle Battle
	log    zerolog.Logger

	opMu sync.Mutex // one remote action at a time

	mu        sync.Mutex
	userID    int64
	loggedIn  bool
	broadcast func(eventType string, event any)
}

func NewSession(gw Gateway, store *progression.Store, b Battle, log zerolog.Logger) *Session {
	return &Session{gw: gw, store: store, battle: b, log: log}
}

// SetBroadcaster wires the presentation sink for Progression and Notification
// events.
func (s *Session) SetBroadcaster(fn func(eventType string, event any)) {
	s.mu.Lock()
	s.broadcast = fn
	s.mu.Unlock()
}

func (s *Session) UserID() (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID, s.loggedIn
}

// View is the current progression for display; false before the first
// snapshot arrived.
func (s *Session) View() (protocol.ProgressionView, bool) {
	m, ok := s.store.Snapshot()
	if !ok {
		return protocol.ProgressionView{}, false
	}
	return m.View(), true
}

// Login authenticates by device id and loads the game state.
func (s *Session) Login(ctx context.Context, deviceID string) (protocol.LoginResponse, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.log.Info().Str("device_id", deviceID).Msg("logging in")
	res, err := s.gw.Login(ctx, deviceID)
	if err != nil {
		s.log.Error().Err(err).Msg("login failed")
		return res, fmt.Errorf("login: %w", err)
	}

	s.mu.Lock()
	s.userID = res.User.UserID
	s.loggedIn = true
	s.mu.Unlock()

	s.apply(res.User)
	s.log.Info().Int64("user_id", res.User.UserID).Int("level", res.User.Level).Msg("logged in")
	if res.IsNewUser {
		s.log.Info().Msg("new user created")
	}

	if err := s.loadGameState(ctx, res.User.UserID); err != nil {
		return res, err
	}
	return res, nil
}

// LoadGameState fetches the player record and the enemy roster.
func (s *Session) LoadGameState(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	id, err := s.requireUser()
	if err != nil {
		return err
	}
	return s.loadGameState(ctx, id)
}

func (s *Session) loadGameState(ctx context.Context, userID int64) error {
	res, err := s.gw.GetGameState(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Msg("load game state failed")
		return fmt.Errorf("load game state: %w", err)
	}

	enemies := make([]battle.Enemy, 0, len(res.Enemies))
	for _, e := range res.Enemies {
		enemies = append(enemies, battle.EnemyFromWire(e))
	}
	s.apply(res.User)
	s.battle.SetRoster(enemies)
	s.log.Info().Int("level", res.User.Level).Int("enemies", len(enemies)).Msg("game state loaded")
	return nil
}

func (s *Session) StartIdle(ctx context.Context) (protocol.IdleStartResponse, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	m, err := s.current()
	if err != nil {
		return protocol.IdleStartResponse{}, err
	}
	if m.IsIdle {
		s.notify("Idle mode is already running", "warn")
		return protocol.IdleStartResponse{}, ErrAlreadyIdle
	}

	res, err := s.gw.StartIdle(ctx, m.UserID)
	if err != nil {
		return res, s.failed("start idle", err)
	}
	s.apply(res.User)
	s.log.Info().Str("started_at", res.StartedAt).Msg("idle started")
	s.notify("Idle started", "info")
	return res, nil
}

func (s *Session) FinishIdle(ctx context.Context) (protocol.IdleFinishResponse, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	m, err := s.current()
	if err != nil {
		return protocol.IdleFinishResponse{}, err
	}
	if !m.IsIdle {
		s.notify("Idle mode is not running", "warn")
		return protocol.IdleFinishResponse{}, ErrNotIdle
	}

	res, err := s.gw.FinishIdle(ctx, m.UserID)
	if err != nil {
		return res, s.failed("finish idle", err)
	}
	s.apply(res.User)
	s.log.Info().Int64("exp", res.ExpGained).Int("minutes", res.IdleMinutes).Msg("idle finished")
	s.notify(fmt.Sprintf("Idle finished: +%d exp (%d min)", res.ExpGained, res.IdleMinutes), "info")
	return res, nil
}

// LevelUp asks the server to spend experience on a level. A response with
// leveled_up=false is not an error.
func (s *Session) LevelUp(ctx context.Context) (protocol.LevelUpResponse, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	m, err := s.current()
	if err != nil {
		return protocol.LevelUpResponse{}, err
	}
	if err := m.CheckLevelUp(); err != nil {
		s.notify("Not enough experience", "warn")
		return protocol.LevelUpResponse{}, err
	}

	res, err := s.gw.LevelUp(ctx, m.UserID)
	if err != nil {
		return res, s.failed("level up", err)
	}
	s.apply(res.User)
	if res.LeveledUp {
		s.log.Info().Int("level", res.NewLevel).Msg("level up")
		s.notify(fmt.Sprintf("Level up! Lv.%d", res.NewLevel), "info")
	} else {
		s.notify("Not enough experience", "warn")
	}
	return res, nil
}

func (s *Session) Upgrade(ctx context.Context, kind types.UpgradeKind) (protocol.UpgradeResponse, error) {
	if !kind.Valid() {
		return protocol.UpgradeResponse{}, fmt.Errorf("upgrade: unknown kind %q", kind)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	m, err := s.current()
	if err != nil {
		return protocol.UpgradeResponse{}, err
	}
	if err := m.CheckUpgrade(); err != nil {
		s.notify("No upgrade points available", "warn")
		return protocol.UpgradeResponse{}, err
	}

	res, err := s.gw.Upgrade(ctx, m.UserID, kind)
	if err != nil {
		return res, s.failed("upgrade", err)
	}
	s.apply(res.User)
	s.log.Info().Str("kind", string(kind)).Msg("upgraded")
	s.notify(kind.Label()+" upgraded", "info")
	return res, nil
}

func (s *Session) Evolve(ctx context.Context) (protocol.EvolveResponse, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	m, err := s.current()
	if err != nil {
		return protocol.EvolveResponse{}, err
	}
	if err := m.CheckEvolve(); err != nil {
		s.notify(fmt.Sprintf("Evolution requires Lv.%d", m.RequiredEvolutionLevel()), "warn")
		return protocol.EvolveResponse{}, err
	}

	res, err := s.gw.Evolve(ctx, m.UserID)
	if err != nil {
		return res, s.failed("evolve", err)
	}
	s.apply(res.User)
	s.log.Info().Int("stage", res.EvolutionStage).Msg("evolved")
	s.notify(fmt.Sprintf("Evolved! Stage %d", res.EvolutionStage), "info")
	return res, nil
}

// ---------------------------------------------------------------------------

func (s *Session) requireUser() (int64, error) {
	id, ok := s.UserID()
	if !ok {
		return 0, ErrNotLoggedIn
	}
	return id, nil
}

// current is the model the local checks run against.
func (s *Session) current() (progression.Model, error) {
	if _, err := s.requireUser(); err != nil {
		return progression.Model{}, err
	}
	m, ok := s.store.Snapshot()
	if !ok {
		return progression.Model{}, ErrNotLoggedIn
	}
	return m, nil
}

// apply replaces the model with the server's record and lets the battle pick
// up the new stats.
func (s *Session) apply(u protocol.User) {
	m := progression.FromUser(u)
	s.store.Replace(m)
	s.battle.RefreshPlayerStats()
	s.publish("Progression", m.View())
}

func (s *Session) failed(action string, err error) error {
	s.log.Error().Err(err).Str("action", action).Msg("gateway call failed")
	return fmt.Errorf("%s: %w", action, err)
}

func (s *Session) notify(msg, level string) {
	s.publish("Notification", protocol.Notification{Message: msg, Level: level})
}

func (s *Session) publish(eventType string, ev any) {
	s.mu.Lock()
	b := s.broadcast
	s.mu.Unlock()
	if b != nil {
		b(eventType, ev)
	}
}
