package likeclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 20 * time.Millisecond

// settle waits long enough for a debounce window plus response handling.
func settle() {
	time.Sleep(8 * testDebounce)
}

func TestRapidClicksCollapseIntoOneRequest(t *testing.T) {
	var calls int32
	toggle := func(ctx context.Context, finalIsLiked bool) (State, error) {
		atomic.AddInt32(&calls, 1)
		count := int64(3)
		if finalIsLiked {
			count = 4
		}
		return State{IsLiked: finalIsLiked, LikesCount: count}, nil
	}

	c := New(State{IsLiked: false, LikesCount: 3}, toggle, WithDebounce(testDebounce))
	defer c.Close()

	// Five clicks inside the debounce window: trailing intent is "liked".
	for i := 0; i < 5; i++ {
		c.Click()
	}
	settle()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	assert.Equal(t, State{IsLiked: true, LikesCount: 4}, c.State())
}

func TestTrailingIntentWins(t *testing.T) {
	var mu sync.Mutex
	var sent []bool
	toggle := func(ctx context.Context, finalIsLiked bool) (State, error) {
		mu.Lock()
		sent = append(sent, finalIsLiked)
		mu.Unlock()
		return State{IsLiked: finalIsLiked, LikesCount: 0}, nil
	}

	c := New(State{}, toggle, WithDebounce(testDebounce))
	defer c.Close()

	c.Click() // intent: true
	time.Sleep(testDebounce / 2)
	c.Click() // supersedes before the timer fires: intent false
	settle()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 1)
	assert.False(t, sent[0])
	assert.False(t, c.State().IsLiked)
}

func TestStaleResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	var mu sync.Mutex
	var sent []bool
	toggle := func(ctx context.Context, finalIsLiked bool) (State, error) {
		mu.Lock()
		first := len(sent) == 0
		sent = append(sent, finalIsLiked)
		mu.Unlock()
		if first {
			<-release // hold the first response in flight
		}
		count := int64(0)
		if finalIsLiked {
			count = 1
		}
		return State{IsLiked: finalIsLiked, LikesCount: count}, nil
	}

	c := New(State{IsLiked: false, LikesCount: 0}, toggle, WithDebounce(testDebounce))
	defer c.Close()

	c.Click() // intent: true
	time.Sleep(2 * testDebounce)

	// The true-request is now in flight. Click again: intent flips to false.
	c.Click()
	close(release)
	settle()

	// The first (true) response must not flip the UI back; the newer intent
	// is authoritative.
	assert.False(t, c.State().IsLiked)
	assert.EqualValues(t, 0, c.State().LikesCount)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, sent, 2)
	assert.True(t, sent[0])
	assert.False(t, sent[1])
}

func TestFailureRollsBackOptimisticState(t *testing.T) {
	errCh := make(chan error, 1)
	toggle := func(ctx context.Context, finalIsLiked bool) (State, error) {
		return State{}, errors.New("store unavailable")
	}

	initial := State{IsLiked: false, LikesCount: 3}
	c := New(initial, toggle,
		WithDebounce(testDebounce),
		WithOnError(func(err error) { errCh <- err }),
	)
	defer c.Close()

	c.Click()
	// Optimistic flip is visible immediately.
	assert.Equal(t, State{IsLiked: true, LikesCount: 4}, c.State())

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("expected an error callback")
	}

	assert.Equal(t, initial, c.State(), "failed toggle must restore the pre-toggle state")
}

func TestCloseCancelsPendingRequest(t *testing.T) {
	var calls int32
	toggle := func(ctx context.Context, finalIsLiked bool) (State, error) {
		atomic.AddInt32(&calls, 1)
		return State{IsLiked: finalIsLiked}, nil
	}

	c := New(State{}, toggle, WithDebounce(testDebounce))
	c.Click()
	c.Close()
	settle()

	assert.EqualValues(t, 0, atomic.LoadInt32(&calls), "no request may be sent after teardown")
}

func TestClickAfterCloseIsIgnored(t *testing.T) {
	c := New(State{IsLiked: false, LikesCount: 1}, func(ctx context.Context, finalIsLiked bool) (State, error) {
		return State{}, nil
	}, WithDebounce(testDebounce))
	c.Close()

	c.Click()
	assert.Equal(t, State{IsLiked: false, LikesCount: 1}, c.State())
}

func TestOnChangeObservesOptimisticThenServerState(t *testing.T) {
	var mu sync.Mutex
	var states []State
	toggle := func(ctx context.Context, finalIsLiked bool) (State, error) {
		// Server reports a higher count than the optimistic estimate
		// because other users liked meanwhile.
		return State{IsLiked: finalIsLiked, LikesCount: 10}, nil
	}

	c := New(State{IsLiked: false, LikesCount: 3}, toggle,
		WithDebounce(testDebounce),
		WithOnChange(func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}),
	)
	defer c.Close()

	c.Click()
	settle()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.Equal(t, State{IsLiked: true, LikesCount: 4}, states[0], "optimistic estimate")
	assert.Equal(t, State{IsLiked: true, LikesCount: 10}, states[1], "server truth adopted")
}
