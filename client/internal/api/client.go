// Package api is the HTTP client of the game server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/RihoKanda/Abandoned/client/internal/metrics"
	"github.com/RihoKanda/Abandoned/shared/game/types"
	"github.com/RihoKanda/Abandoned/shared/protocol"
)

type Client struct {
	base   string
	http   *http.Client
	tokens *TokenStore
	log    zerolog.Logger
}

// NewClient talks to base (e.g. http://localhost:8080). tokens may be nil.
func NewClient(base string, timeout time.Duration, tokens *TokenStore, log zerolog.Logger) *Client {
	if tokens == nil {
		tokens = NewTokenStore("")
	}
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: timeout},
		tokens: tokens,
		log:    log,
	}
}

func (c *Client) Login(ctx context.Context, deviceID string) (protocol.LoginResponse, error) {
	req := protocol.LoginRequest{DeviceID: deviceID, Version: protocol.GameVersion}
	res, err := postJSON[protocol.LoginRequest, protocol.LoginResponse](ctx, c, protocol.PathLogin, req)
	if err != nil {
		return res, err
	}
	if res.Token != "" {
		if err := c.tokens.Set(res.Token); err != nil {
			c.log.Warn().Err(err).Msg("persist session token")
		}
	}
	return res, nil
}

func (c *Client) GetGameState(ctx context.Context, userID int64) (protocol.GameStateResponse, error) {
	path := protocol.PathGameState + "?user_id=" + url.QueryEscape(strconv.FormatInt(userID, 10))
	return getJSON[protocol.GameStateResponse](ctx, c, path)
}

func (c *Client) StartIdle(ctx context.Context, userID int64) (protocol.IdleStartResponse, error) {
	return postJSON[protocol.UserRequest, protocol.IdleStartResponse](ctx, c, protocol.PathIdleStart, protocol.UserRequest{UserID: userID})
}

func (c *Client) FinishIdle(ctx context.Context, userID int64) (protocol.IdleFinishResponse, error) {
	return postJSON[protocol.UserRequest, protocol.IdleFinishResponse](ctx, c, protocol.PathIdleEnd, protocol.UserRequest{UserID: userID})
}

func (c *Client) LevelUp(ctx context.Context, userID int64) (protocol.LevelUpResponse, error) {
	return postJSON[protocol.UserRequest, protocol.LevelUpResponse](ctx, c, protocol.PathLevelUp, protocol.UserRequest{UserID: userID})
}

func (c *Client) Upgrade(ctx context.Context, userID int64, kind types.UpgradeKind) (protocol.UpgradeResponse, error) {
	if !kind.Valid() {
		return protocol.UpgradeResponse{}, fmt.Errorf("upgrade: unknown kind %q", kind)
	}
	req := protocol.UpgradeRequest{UserID: userID, UpgradeType: string(kind)}
	return postJSON[protocol.UpgradeRequest, protocol.UpgradeResponse](ctx, c, protocol.PathUpgrade, req)
}

func (c *Client) Evolve(ctx context.Context, userID int64) (protocol.EvolveResponse, error) {
	return postJSON[protocol.UserRequest, protocol.EvolveResponse](ctx, c, protocol.PathEvolve, protocol.UserRequest{UserID: userID})
}

// getJSON performs a GET request and unwraps the response envelope
func getJSON[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return zero, &NetworkError{Endpoint: path, Err: err}
	}
	return do[T](c, req, endpointName(path))
}

// postJSON performs a POST request with a JSON body and unwraps the response envelope
func postJSON[Req any, Res any](ctx context.Context, c *Client, path string, body Req) (Res, error) {
	var zero Res
	payload, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("encode %s: %w", path, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return zero, &NetworkError{Endpoint: path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	return do[Res](c, req, path)
}

func do[T any](c *Client, req *http.Request, endpoint string) (res T, err error) {
	start := time.Now()
	defer func() {
		metrics.GatewayRequests.WithLabelValues(endpoint, outcome(err)).Observe(time.Since(start).Seconds())
		ev := c.log.Debug()
		if err != nil {
			ev = c.log.Warn().Err(err)
		}
		ev.Str("endpoint", endpoint).Dur("took", time.Since(start)).Msg("gateway call")
	}()

	req.Header.Set("Accept", "application/json")
	if token := c.tokens.Get(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return res, &NetworkError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return res, &NetworkError{Endpoint: endpoint, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return res, &NetworkError{Endpoint: endpoint, Status: resp.StatusCode, Err: errors.New(strings.TrimSpace(string(body)))}
	}

	var env protocol.APIResponse[T]
	if err := json.Unmarshal(body, &env); err != nil {
		return res, &ParseError{Endpoint: endpoint, Err: err}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "request failed"
		}
		return res, &RemoteError{Endpoint: endpoint, Message: msg}
	}
	return env.Data, nil
}

func endpointName(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		return path[:i]
	}
	return path
}

func outcome(err error) string {
	var (
		netErr    *NetworkError
		parseErr  *ParseError
		remoteErr *RemoteError
	)
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &netErr):
		return "network"
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &remoteErr):
		return "remote"
	default:
		return "error"
	}
}
