package chat

import (
	"sort"
	"sync"
)

// History stores the session's messages indexed by round. Appending and
// reading are safe for concurrent use; messages are never removed or
// edited once recorded.
type History struct {
	mu     sync.RWMutex
	rounds map[int][]Message
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{rounds: make(map[int][]Message)}
}

// Append records a message under its round.
func (h *History) Append(m Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rounds[m.RoundID] = append(h.rounds[m.RoundID], m)
}

// Round returns a copy of the messages recorded for one round, in
// insertion order.
func (h *History) Round(round int) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msgs := h.rounds[round]
	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out
}

// Range returns the messages of rounds in [from, to] inclusive, ordered by
// round, then insertion order within a round.
func (h *History) Range(from, to int) []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Message
	for r := from; r <= to; r++ {
		out = append(out, h.rounds[r]...)
	}
	return out
}

// VisibleRange is Range filtered to messages the reader may see.
func (h *History) VisibleRange(from, to int, readerID string) []Message {
	var out []Message
	for _, m := range h.Range(from, to) {
		if m.VisibleTo(readerID) {
			out = append(out, m)
		}
	}
	return out
}

// Rounds returns the round numbers that have at least one message,
// ascending.
func (h *History) Rounds() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]int, 0, len(h.rounds))
	for r := range h.rounds {
		out = append(out, r)
	}
	sort.Ints(out)
	return out
}

// Restore replaces the history contents with previously saved rounds.
// Rounds not present in the input are dropped.
func (h *History) Restore(rounds map[int][]Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rounds = make(map[int][]Message, len(rounds))
	for r, msgs := range rounds {
		cp := make([]Message, len(msgs))
		copy(cp, msgs)
		h.rounds[r] = cp
	}
}

// Export returns a copy of all rounds for serialization.
func (h *History) Export() map[int][]Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[int][]Message, len(h.rounds))
	for r, msgs := range h.rounds {
		cp := make([]Message, len(msgs))
		copy(cp, msgs)
		out[r] = cp
	}
	return out
}
