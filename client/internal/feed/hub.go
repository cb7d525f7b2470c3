// Package feed pushes battle and progression events to presentation clients
// over a websocket and turns their button presses into session actions.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/RihoKanda/Abandoned/client/internal/game/battle"
	"github.com/RihoKanda/Abandoned/client/internal/metrics"
	"github.com/RihoKanda/Abandoned/shared/game/types"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

const (
	sendBuffer   = 64
	writeTimeout = 10 * time.Second
	maxMessage   = 4096
)

// Actions is what a feed client may ask of the session.
type Actions interface {
	LoadGameState(ctx context.Context) error
	StartIdle(ctx context.Context) (protocol.IdleStartResponse, error)
	FinishIdle(ctx context.Context) (protocol.IdleFinishResponse, error)
	LevelUp(ctx context.Context) (protocol.LevelUpResponse, error)
	Upgrade(ctx context.Context, kind types.UpgradeKind) (protocol.UpgradeResponse, error)
	Evolve(ctx context.Context) (protocol.EvolveResponse, error)
	View() (protocol.ProgressionView, bool)
}

// Battle is the engine control surface.
type Battle interface {
	Start(ctx context.Context) error
	Stop()
	Snapshot() battle.Snapshot
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	ctx     context.Context // lifetime of battles started from the feed
	actions Actions
	battle  Battle
	log     zerolog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

func NewHub(ctx context.Context, actions Actions, b Battle, log zerolog.Logger) *Hub {
	return &Hub{
		ctx:     ctx,
		actions: actions,
		battle:  b,
		log:     log,
		clients: map[*client]struct{}{},
	}
}

// Broadcast fans an event out to every client. Clients whose buffer is full
// miss the message; the caller never blocks.
func (h *Hub) Broadcast(eventType string, event any) {
	out, err := encode(eventType, event)
	if err != nil {
		h.log.Error().Err(err).Str("type", eventType).Msg("encode event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.enqueueLocked(c, out)
	}
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// State is the latest battle snapshot plus the progression view.
func (h *Hub) State() protocol.StateView {
	sv := protocol.StateView{Battle: h.battle.Snapshot().Message()}
	if v, ok := h.actions.View(); ok {
		sv.Progression = &v
	}
	return sv
}

// HandleWS serves one connection until it closes.
func (h *Hub) HandleWS(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.FeedClients.Set(float64(n))
	h.log.Info().Str("remote", conn.RemoteAddr().String()).Int("clients", n).Msg("feed client connected")

	go c.writer()

	st := h.State()
	h.sendJSON(c, "BattleSnapshot", st.Battle)
	if st.Progression != nil {
		h.sendJSON(c, "Progression", *st.Progression)
	}
	c.reader(h)
}

// Close drops every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
	metrics.FeedClients.Set(0)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.FeedClients.Set(float64(n))
	h.log.Info().Int("clients", n).Msg("feed client disconnected")
}

func (c *client) reader(h *Hub) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("feed read")
			}
			return
		}

		var env protocol.MsgEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			h.sendJSON(c, "Error", protocol.ErrorMsg{Message: "malformed message"})
			continue
		}
		h.log.Debug().Str("type", env.Type).Msg("feed command")

		if err := h.dispatch(env); err != nil {
			h.sendJSON(c, "Error", protocol.ErrorMsg{Message: err.Error()})
		}
	}
}

var errUnknownCommand = errors.New("unknown message type")

func (h *Hub) dispatch(env protocol.MsgEnvelope) error {
	ctx := h.ctx
	switch env.Type {

	// ---------- Battle ----------
	case "StartBattle":
		return h.battle.Start(ctx)

	case "StopBattle":
		h.battle.Stop()
		return nil

	// ---------- Progression ----------
	case "StartIdle":
		_, err := h.actions.StartIdle(ctx)
		return err

	case "FinishIdle":
		_, err := h.actions.FinishIdle(ctx)
		return err

	case "LevelUp":
		_, err := h.actions.LevelUp(ctx)
		return err

	case "Upgrade":
		var msg protocol.Upgrade
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return err
		}
		kind, err := types.ParseUpgradeKind(msg.Kind)
		if err != nil {
			return err
		}
		_, err = h.actions.Upgrade(ctx, kind)
		return err

	case "Evolve":
		_, err := h.actions.Evolve(ctx)
		return err

	case "Refresh":
		return h.actions.LoadGameState(ctx)

	default:
		return fmt.Errorf("%w: %s", errUnknownCommand, env.Type)
	}
}

func (c *client) writer() {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""), time.Now().Add(time.Second))
}

func (h *Hub) sendJSON(c *client, typ string, v any) {
	out, err := encode(typ, v)
	if err != nil {
		h.log.Error().Err(err).Str("type", typ).Msg("encode event")
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.enqueueLocked(c, out)
	}
}

func (h *Hub) enqueueLocked(c *client, out []byte) {
	select {
	case c.send <- out:
	default:
		metrics.FeedDropped.Inc()
	}
}

func encode(typ string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(protocol.MsgEnvelope{Type: typ, Data: b})
}
