// Package viewstate models the per-page UI state of the dashboard: the
// selected filters, the loading flag and the last result of a user action.
package viewstate

import (
	"fmt"
	"sync"
	"time"
)

// Phase is the position of a page in its request lifecycle
type Phase string

const (
	Idle      Phase = "idle"
	Loading   Phase = "loading"
	Succeeded Phase = "success"
	Failed    Phase = "failed"
)

// Ticket identifies one request started on a page. Tickets increase
// monotonically per page.
type Ticket uint64

// State is a copy of a page's view state
type State[T any] struct {
	Page      string    `json:"page"`
	Phase     Phase     `json:"phase"`
	Loading   bool      `json:"loading"`
	Data      *T        `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
	Request   Ticket    `json:"request"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Page holds the view state of one page. Only the most recently started
// request may settle it; results of older requests are dropped.
type Page[T any] struct {
	name string

	mu       sync.Mutex
	state    State[T]
	latest   Ticket
	closed   bool
	stale    uint64
	listener func(page string)
	onStale  func(page string)
}

// NewPage creates an idle page, optionally pre-populated with data
func NewPage[T any](name string, initial *T) *Page[T] {
	return &Page[T]{
		name: name,
		state: State[T]{
			Page:      name,
			Phase:     Idle,
			Data:      initial,
			UpdatedAt: time.Now(),
		},
	}
}

// Name returns the page name
func (p *Page[T]) Name() string {
	return p.name
}

// OnChange registers fn to be called after every state change
func (p *Page[T]) OnChange(fn func(page string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = fn
}

// OnStale registers fn to be called when a settlement is discarded
func (p *Page[T]) OnStale(fn func(page string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onStale = fn
}

// Begin marks the page as loading and returns the ticket of the new
// request. It returns false once the page is closed.
func (p *Page[T]) Begin() (Ticket, bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return 0, false
	}
	p.latest++
	p.state.Phase = Loading
	p.state.Loading = true
	p.state.Error = ""
	p.state.Request = p.latest
	p.state.UpdatedAt = time.Now()
	ticket := p.latest
	listener := p.listener
	p.mu.Unlock()

	p.notify(listener)
	return ticket, true
}

// Succeed settles request t with data. It reports whether the result was
// applied.
func (p *Page[T]) Succeed(t Ticket, data T) bool {
	return p.settle(t, func(s *State[T]) {
		s.Phase = Succeeded
		s.Data = &data
		s.Error = ""
	})
}

// Fail settles request t with an error message. The previous data is
// kept so the page can keep showing it.
func (p *Page[T]) Fail(t Ticket, msg string) bool {
	return p.settle(t, func(s *State[T]) {
		s.Phase = Failed
		s.Error = msg
	})
}

func (p *Page[T]) settle(t Ticket, apply func(*State[T])) bool {
	p.mu.Lock()
	if p.closed || t != p.latest || !p.state.Loading {
		p.stale++
		onStale := p.onStale
		p.mu.Unlock()
		if onStale != nil {
			onStale(p.name)
		}
		return false
	}
	apply(&p.state)
	p.state.Loading = false
	p.state.UpdatedAt = time.Now()
	listener := p.listener
	p.mu.Unlock()

	p.notify(listener)
	return true
}

// Set replaces the page data outside of a request, e.g. after a filter
// change re-selects mock data. It does not touch a request in flight.
func (p *Page[T]) Set(data T) {
	p.mu.Lock()
	p.state.Data = &data
	p.state.UpdatedAt = time.Now()
	listener := p.listener
	p.mu.Unlock()

	p.notify(listener)
}

func (p *Page[T]) notify(listener func(string)) {
	if listener != nil {
		listener(p.name)
	}
}

// Snapshot returns a copy of the current state
func (p *Page[T]) Snapshot() State[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.state
	if s.Data != nil {
		d := *s.Data
		s.Data = &d
	}
	return s
}

// Loading reports whether a request is in flight
func (p *Page[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Loading
}

// Stale returns how many settlements were discarded
func (p *Page[T]) Stale() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stale
}

// Close detaches the page. Requests still in flight may complete but
// their results are dropped.
func (p *Page[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.state.Loading = false
	if p.state.Phase == Loading {
		p.state.Phase = Idle
	}
}

// Run executes fn as one request on the page. The request is always
// settled, including when fn panics, so the loading flag cannot stay set.
func Run[T any](p *Page[T], fn func() (T, error)) (result T, err error) {
	ticket, ok := p.Begin()
	if !ok {
		return result, fmt.Errorf("page %s is closed", p.name)
	}

	settled := false
	defer func() {
		if !settled {
			p.Fail(ticket, "request aborted")
		}
	}()

	result, err = fn()
	if err != nil {
		p.Fail(ticket, err.Error())
	} else {
		p.Succeed(ticket, result)
	}
	settled = true
	return result, err
}
