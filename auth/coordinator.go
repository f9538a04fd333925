package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrRefreshExhausted is returned once the refresh circuit has opened: the
// platform rejected the refresh token (or the refresh failed outright) and
// every authenticated call fails fast until the user logs in again.
var ErrRefreshExhausted = errors.New("token refresh exhausted; please login again")

// refreshTimeout bounds the refresh transport call, which runs detached
// from any single caller's context.
const refreshTimeout = 15 * time.Second

// State enumerates the coordinator's refresh lifecycle.
type State int

const (
	StateIdle State = iota
	StateRefreshing
	StateCircuitOpen
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	case StateCircuitOpen:
		return "circuit_open"
	default:
		return "unknown"
	}
}

// refreshFlight carries the outcome of one refresh cycle. Fields are written
// before done is closed and never after, so waiters read them lock-free.
type refreshFlight struct {
	done   chan struct{}
	access string
	err    error
}

// Coordinator serializes token refreshes: no matter how many requests hit a
// 401 at once, at most one refresh is in flight, every waiter shares its
// outcome, and a failed refresh opens a circuit that stays open until the
// next login resets it.
type Coordinator struct {
	Store     *TokenStore
	Refresher TokenRefresher

	// OnAuthFailure, when set, is invoked exactly once each time the
	// circuit opens. The CLI uses it to tell the user to log in again.
	OnAuthFailure func()

	mu       sync.Mutex
	state    State
	inflight *refreshFlight
	now      func() time.Time
}

// NewCoordinator is the constructor for the refresh coordinator.
func NewCoordinator(store *TokenStore, refresher TokenRefresher) *Coordinator {
	return &Coordinator{
		Store:     store,
		Refresher: refresher,
		now:       time.Now,
	}
}

// State returns the coordinator's current lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Refresh returns a fresh access token. If a refresh is already in flight it
// joins it; if the circuit is open it fails immediately without touching the
// network. Cancelling ctx abandons only this caller's wait, never the shared
// refresh itself.
func (c *Coordinator) Refresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	switch c.state {
	case StateCircuitOpen:
		c.mu.Unlock()
		return "", ErrRefreshExhausted

	case StateRefreshing:
		flight := c.inflight
		c.mu.Unlock()
		select {
		case <-flight.done:
			return flight.access, flight.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	// Idle: this caller becomes the refresher.
	flight := &refreshFlight{done: make(chan struct{})}
	c.state = StateRefreshing
	c.inflight = flight
	c.mu.Unlock()

	log.Info().Msg("Access token expired or rejected, refreshing...")
	access, err := c.runRefresh(ctx)

	var fire func()
	c.mu.Lock()
	flight.access = access
	if err != nil {
		log.Error().Err(err).Msg("Token refresh failed; circuit opened.")
		flight.err = ErrRefreshExhausted
		c.state = StateCircuitOpen
		fire = c.OnAuthFailure
	} else {
		c.state = StateIdle
	}
	c.inflight = nil
	close(flight.done)
	c.mu.Unlock()

	if err != nil {
		if clearErr := c.Store.ClearAuthData(context.Background()); clearErr != nil {
			log.Error().Err(clearErr).Msg("Failed to clear auth data after refresh failure.")
		}
		if fire != nil {
			fire()
		}
	}
	return flight.access, flight.err
}

// Reset closes a tripped circuit after a fresh login or a logout. A refresh
// already in flight settles on its own and is left alone.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateRefreshing {
		return
	}
	c.state = StateIdle
}

func (c *Coordinator) runRefresh(callerCtx context.Context) (string, error) {
	refreshValue, ok := c.Store.RefreshTokenValue()
	if !ok {
		return "", fmt.Errorf("no refresh token available; please login first")
	}

	// The refresh outlives any single caller: a cancelled caller must not
	// kill the refresh its siblings are waiting on.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(callerCtx), refreshTimeout)
	defer cancel()

	access, newRefresh, expiresIn, err := c.Refresher.PerformTokenRefresh(ctx, refreshValue)
	if err != nil {
		return "", fmt.Errorf("failed to perform token refresh: %w", err)
	}

	expiresAt := c.now().Add(time.Duration(expiresIn) * time.Second)
	if newRefresh != "" && newRefresh != refreshValue {
		err = c.Store.RotateTokens(ctx, access, newRefresh, expiresAt)
	} else {
		err = c.Store.UpdateAccessToken(ctx, access, expiresAt)
	}
	if err != nil {
		return "", fmt.Errorf("failed to save refreshed token: %w", err)
	}

	log.Info().Msg("Token refreshed and saved successfully.")
	return access, nil
}
