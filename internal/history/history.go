// Package history keeps the undo/redo state of one editing session.
//
// A Stack holds past, present and future snapshots of a block list. New
// edits push the present onto past and drop the redo branch; undo and redo
// move the present between the two sides. Nothing here is persisted.
package history

import (
	"sync"

	"storefront-builder/internal/block"
)

// DefaultLimit bounds the undo depth of a session.
const DefaultLimit = 50

// State is an immutable view of the history.
type State struct {
	Past    []block.List
	Present block.List
	Future  []block.List
}

func (s State) CanUndo() bool { return len(s.Past) > 0 }
func (s State) CanRedo() bool { return len(s.Future) > 0 }

// Option configures a Stack
type Option func(*Stack)

// WithLimit sets how many past snapshots are kept. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(s *Stack) {
		if n > 0 {
			s.limit = n
		}
	}
}

// Stack applies history actions one at a time; each action reads the state
// the previous one produced.
type Stack struct {
	mu    sync.Mutex
	state State
	skip  bool
	limit int
}

func New(initial block.List, opts ...Option) *Stack {
	s := &Stack{
		state: State{Present: initial.Clone()},
		limit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns a deep copy of the current state. Changing it does not
// affect the stack.
func (s *Stack) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Past:    cloneAll(s.state.Past),
		Present: s.state.Present.Clone(),
		Future:  cloneAll(s.state.Future),
	}
}

func cloneAll(lists []block.List) []block.List {
	if lists == nil {
		return nil
	}
	out := make([]block.List, len(lists))
	for i, l := range lists {
		out[i] = l.Clone()
	}
	return out
}

func (s *Stack) Blocks() block.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Present.Clone()
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CanUndo()
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.CanRedo()
}

// SetBlocks records a new present snapshot.
func (s *Stack) SetBlocks(next block.List) {
	s.Update(func(block.List) block.List { return next })
}

// Update computes the next present from the current one. fn runs under the
// stack lock, so consecutive calls always see each other's result.
func (s *Stack) Update(fn func(current block.List) block.List) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.state.Present.Clone()).Clone()

	if s.skip {
		s.skip = false
		s.state = State{Past: s.state.Past, Present: next, Future: s.state.Future}
		return
	}

	if block.Equal(s.state.Present, next) {
		return
	}

	past := make([]block.List, 0, len(s.state.Past)+1)
	past = append(past, s.state.Past...)
	past = append(past, s.state.Present)
	s.state = State{Past: s.trim(past), Present: next}
}

// SkipNext makes the next SetBlocks/Update replace the present without
// recording history. Used for programmatic loads.
func (s *Stack) SkipNext() {
	s.mu.Lock()
	s.skip = true
	s.mu.Unlock()
}

func (s *Stack) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.state.Past)
	if n == 0 {
		return
	}

	future := make([]block.List, 0, len(s.state.Future)+1)
	future = append(future, s.state.Present)
	future = append(future, s.state.Future...)

	s.state = State{
		Past:    s.state.Past[:n-1:n-1],
		Present: s.state.Past[n-1],
		Future:  future,
	}
}

func (s *Stack) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.state.Future) == 0 {
		return
	}

	past := make([]block.List, 0, len(s.state.Past)+1)
	past = append(past, s.state.Past...)
	past = append(past, s.state.Present)

	s.state = State{
		Past:    s.trim(past),
		Present: s.state.Future[0],
		Future:  s.state.Future[1:],
	}
}

// Reset loads a snapshot with empty history on both sides.
// A pending skip is consumed by the reset itself.
func (s *Stack) Reset(snapshot block.List) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.skip = false
	s.state = State{Present: snapshot.Clone()}
}

// trim drops the oldest entries beyond the limit.
func (s *Stack) trim(past []block.List) []block.List {
	if len(past) <= s.limit {
		return past
	}
	return past[len(past)-s.limit:]
}
