// Package likeclient implements the client-side half of the like protocol:
// an optimistic state machine that flips the displayed state immediately,
// coalesces rapid clicks with a trailing debounce, and reconciles against
// server responses while discarding stale ones. It is independent of any UI
// framework; render updates and errors are delivered through callbacks.
package likeclient

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiescence window before a request is sent. N
// clicks inside the window collapse into at most one round-trip carrying the
// trailing desired state.
const DefaultDebounce = 300 * time.Millisecond

// State is the displayed like state for one target.
type State struct {
	IsLiked    bool
	LikesCount int64
}

// ToggleFunc issues the network call carrying the desired final state and
// returns the server's authoritative view.
type ToggleFunc func(ctx context.Context, finalIsLiked bool) (State, error)

// Coordinator is the per-target state machine. It has two states: Idle (the
// displayed state mirrors server truth) and OptimisticPending (at least one
// click has not been confirmed yet). All methods are safe for concurrent use.
type Coordinator struct {
	toggle   ToggleFunc
	debounce time.Duration
	onChange func(State)
	onError  func(error)

	mu       sync.Mutex
	state    State
	snapshot State // pre-toggle state restored on failure
	pending  bool
	intent   bool   // the user's most recent desired boolean
	seq      uint64 // bumped on every click; responses from older cycles are stale
	timer    *time.Timer
	closed   bool
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDebounce overrides the debounce window.
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) { c.debounce = d }
}

// WithOnChange registers a callback invoked with every displayed-state
// change. The callback runs with the coordinator's lock held and must not
// call back into it.
func WithOnChange(fn func(State)) Option {
	return func(c *Coordinator) { c.onChange = fn }
}

// WithOnError registers a callback invoked when a request fails and the
// optimistic state has been rolled back.
func WithOnError(fn func(error)) Option {
	return func(c *Coordinator) { c.onError = fn }
}

// New creates a Coordinator starting from the server-provided initial state.
func New(initial State, toggle ToggleFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		toggle:   toggle,
		debounce: DefaultDebounce,
		state:    initial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the currently displayed state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Click records one user toggle: the displayed state inverts immediately and
// the debounce timer restarts. Later clicks inside the window supersede
// earlier ones; only the trailing state is ever sent.
func (c *Coordinator) Click() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if !c.pending {
		c.snapshot = c.state
		c.pending = true
	}

	c.state.IsLiked = !c.state.IsLiked
	if c.state.IsLiked {
		c.state.LikesCount++
	} else {
		c.state.LikesCount--
	}
	c.intent = c.state.IsLiked
	c.seq++
	c.notifyChange(c.state)

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
}

// fire runs when the debounce window elapses with no further clicks.
func (c *Coordinator) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	sentSeq := c.seq
	sentIntent := c.intent
	snapshot := c.snapshot
	c.timer = nil
	c.mu.Unlock()

	result, err := c.toggle(context.Background(), sentIntent)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.seq != sentSeq {
		// A newer click superseded this cycle; its own debounce cycle is
		// authoritative and this response is discarded as stale.
		return
	}

	if err != nil {
		c.state = snapshot
		c.pending = false
		c.notifyChange(c.state)
		if c.onError != nil {
			c.onError(err)
		}
		return
	}

	// Adopt server truth, discarding any drift in the optimistic estimate.
	c.state = result
	c.pending = false
	c.notifyChange(c.state)
}

// Close cancels any pending debounce timer. No request is sent after Close;
// a response already in flight is dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) notifyChange(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
