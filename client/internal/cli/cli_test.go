package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RihoKanda/Abandoned/client/internal/game/progression"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

// gameServer is a minimal stand in for the REST backend.
type gameServer struct {
	mu       sync.Mutex
	user     protocol.User
	upgrades []string
}

func (s *gameServer) handler() http.Handler {
	reply := func(w http.ResponseWriter, data any) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}
	mux := http.NewServeMux()
	mux.HandleFunc(protocol.PathLogin, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		reply(w, protocol.LoginResponse{User: s.user})
	})
	mux.HandleFunc(protocol.PathGameState, func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		reply(w, protocol.GameStateResponse{User: s.user, Enemies: []protocol.Enemy{{Name: "Slime", HP: 20, Attack: 2, ExpReward: 5}}})
	})
	mux.HandleFunc(protocol.PathUpgrade, func(w http.ResponseWriter, r *http.Request) {
		var req protocol.UpgradeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.upgrades = append(s.upgrades, req.UpgradeType)
		s.user.AttackUp++
		reply(w, protocol.UpgradeResponse{User: s.user, UpgradeType: req.UpgradeType})
	})
	return mux
}

func TestStatusPrintsProgression(t *testing.T) {
	gs := &gameServer{user: protocol.User{UserID: 3, Level: 5, Exp: 120, AttackUp: 2}}
	srv := httptest.NewServer(gs.handler())
	defer srv.Close()

	var out bytes.Buffer
	o := &options{apiBase: srv.URL, out: &out}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ABANDONED_LOG_LEVEL", "error")

	cmd := newStatusCommand(o)
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.RunE(cmd, nil))

	s := out.String()
	assert.Contains(t, s, "Level           5")
	assert.Contains(t, s, "120 / 500")
	assert.Contains(t, s, "Upgrade points  4")
}

func TestUpgradeCommand(t *testing.T) {
	gs := &gameServer{user: protocol.User{UserID: 3, Level: 5}}
	srv := httptest.NewServer(gs.handler())
	defer srv.Close()

	var out bytes.Buffer
	o := &options{apiBase: srv.URL, out: &out}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ABANDONED_LOG_LEVEL", "error")

	cmd := newUpgradeCommand(o)
	cmd.SetContext(context.Background())
	require.NoError(t, cmd.RunE(cmd, []string{"atk"}))
	assert.Equal(t, []string{"attack"}, gs.upgrades)
	assert.Contains(t, out.String(), "Attack upgraded")

	err := cmd.RunE(cmd, []string{"luck"})
	assert.ErrorContains(t, err, "unknown upgrade kind")
}

func TestLevelUpGatedBeforeServer(t *testing.T) {
	gs := &gameServer{user: protocol.User{UserID: 3, Level: 2, Exp: 10}}
	srv := httptest.NewServer(gs.handler())
	defer srv.Close()

	var out bytes.Buffer
	o := &options{apiBase: srv.URL, out: &out}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ABANDONED_LOG_LEVEL", "error")

	cmd := newLevelUpCommand(o)
	cmd.SetContext(context.Background())
	err := cmd.RunE(cmd, nil)
	assert.ErrorIs(t, err, progression.ErrInsufficientExperience)
	assert.Contains(t, out.String(), "Not enough experience")
}

func TestRootCommandTree(t *testing.T) {
	root := NewRootCommand()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"play", "status", "levelup", "upgrade", "evolve", "idle", "watch"} {
		assert.True(t, names[want], want)
	}
}

func TestParseSend(t *testing.T) {
	typ, payload := parseSend("Upgrade:speed")
	assert.Equal(t, "Upgrade", typ)
	assert.Equal(t, protocol.Upgrade{Kind: "speed"}, payload)

	typ, _ = parseSend("LevelUp")
	assert.Equal(t, "LevelUp", typ)
}

func TestPrintEvent(t *testing.T) {
	var out bytes.Buffer
	data, _ := json.Marshal(protocol.EnemyDefeated{Enemy: protocol.EnemyView{Name: "Slime"}, ExpReward: 5})
	printEvent(&out, protocol.MsgEnvelope{Type: "EnemyDefeated", Data: data}, false)

	data, _ = json.Marshal(protocol.BattleSnapshot{Tick: 3})
	printEvent(&out, protocol.MsgEnvelope{Type: "BattleSnapshot", Data: data}, false)

	assert.Equal(t, "Slime defeated, +5 exp\n", out.String())
}
