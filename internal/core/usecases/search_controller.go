package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/AlsakaSoftware/Ijar-sub000/internal/core/domain"
)

// SearchEventKind discriminates events emitted by the SearchController.
type SearchEventKind string

const (
	// SearchPending is emitted when the debounce timer fires, before the
	// resolver is called.
	SearchPending SearchEventKind = "pending"
	// SearchCleared is emitted when the input becomes empty.
	SearchCleared SearchEventKind = "cleared"
	// SearchSettled carries the resolver outcome.
	SearchSettled SearchEventKind = "settled"
)

// SearchEvent is one state change of a live search.
type SearchEvent struct {
	Kind    SearchEventKind       `json:"kind"`
	Outcome domain.GeocodeOutcome `json:"outcome,omitempty"`
}

// SearchController debounces live-typed input in front of a Resolver.
// Each input change restarts the delay timer; a superseded timer is
// cancelled outright and never calls the resolver. At most one resolution
// is in flight per controller, and only the outcome of the most recent
// input is ever emitted. Events go to a single subscriber via Events().
type SearchController struct {
	resolver Resolver
	delay    time.Duration
	events   chan SearchEvent

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewSearchController creates a controller with the given debounce delay.
func NewSearchController(resolver Resolver, delay time.Duration) *SearchController {
	return &SearchController{
		resolver: resolver,
		delay:    delay,
		events:   make(chan SearchEvent, 16),
	}
}

// Events returns the subscriber channel. The subscriber must drain it;
// the channel is closed by Close.
func (c *SearchController) Events() <-chan SearchEvent {
	return c.events
}

// OnInputChanged registers a new input value. Any pending timer is stopped
// and any in-flight resolution is cancelled; its result will be dropped.
// Empty input immediately emits a cleared state.
func (c *SearchController) OnInputChanged(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.seq++
	seq := c.seq

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if domain.NormalizeQuery(text) == "" {
		c.emitLocked(SearchEvent{Kind: SearchCleared})
		return
	}

	c.timer = time.AfterFunc(c.delay, func() {
		c.fire(seq, text)
	})
}

// fire runs after the debounce delay. seq identifies the input that armed
// the timer; if a newer input has arrived the firing is a no-op.
func (c *SearchController) fire(seq uint64, text string) {
	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.emitLocked(SearchEvent{Kind: SearchPending})
	c.mu.Unlock()

	outcome := c.resolver.Resolve(ctx, text)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || seq != c.seq {
		// Superseded while resolving: drop, never apply.
		return
	}
	c.cancel = nil
	c.emitLocked(SearchEvent{Kind: SearchSettled, Outcome: outcome})
}

// Close cancels any pending work and closes the event channel.
func (c *SearchController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	close(c.events)
}

func (c *SearchController) emitLocked(ev SearchEvent) {
	select {
	case c.events <- ev:
	default:
		// Subscriber is not draining; drop rather than block input handling.
	}
}
