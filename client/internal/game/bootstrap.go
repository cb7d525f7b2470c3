package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/RihoKanda/Abandoned/client/internal/api"
	"github.com/RihoKanda/Abandoned/client/internal/game/balance"
	"github.com/RihoKanda/Abandoned/client/internal/game/battle"
	"github.com/RihoKanda/Abandoned/client/internal/game/progression"
	"github.com/RihoKanda/Abandoned/client/internal/netcfg"
	"github.com/RihoKanda/Abandoned/client/internal/observability"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

// App is one wired client: config, gateway, progression, battle and session.
type App struct {
	Config  netcfg.Config
	Log     zerolog.Logger
	Store   *progression.Store
	Engine  *battle.Engine
	Client  *api.Client
	Session *Session
}

// New wires the client from cfg. newLogger builds the per-component loggers.
func New(cfg netcfg.Config, newLogger func(level, component string) zerolog.Logger) (*App, error) {
	if newLogger == nil {
		newLogger = observability.NewLogger
	}
	tuning, err := balance.Load(cfg.BalanceFile)
	if err != nil {
		return nil, fmt.Errorf("load balance: %w", err)
	}

	store := progression.NewStore()
	engine := battle.NewEngine(tuning, store, newLogger(cfg.LogLevel, "battle"))
	tokens := api.NewTokenStore(ConfigPath(cfg.Profile, "token"))
	client := api.NewClient(cfg.APIBase, cfg.RequestTimeout, tokens, newLogger(cfg.LogLevel, "api"))
	session := NewSession(client, store, engine, newLogger(cfg.LogLevel, "session"))

	return &App{
		Config:  cfg,
		Log:     newLogger(cfg.LogLevel, protocol.GameName),
		Store:   store,
		Engine:  engine,
		Client:  client,
		Session: session,
	}, nil
}

// SetBroadcaster routes battle and session events to one sink.
func (a *App) SetBroadcaster(fn func(eventType string, event any)) {
	a.Engine.SetBroadcaster(fn)
	a.Session.SetBroadcaster(fn)
}

// Login resolves the device id and logs in, which also loads the game state.
func (a *App) Login(ctx context.Context) (protocol.LoginResponse, error) {
	deviceID, err := DeviceID(a.Config, ConfigPath(a.Config.Profile, "device_id"))
	if err != nil {
		return protocol.LoginResponse{}, err
	}
	return a.Session.Login(ctx, deviceID)
}
