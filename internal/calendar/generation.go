package calendar

import "sync"

// Generation guards the month view against out-of-order completion. There
// is no cancellation for in-flight month builds; rapid next/prev clicks can
// finish out of order, so each render takes a ticket and only the most
// recently started one may publish its result.
type Generation struct {
	mu      sync.Mutex
	current uint64
}

// Next starts a new render generation and returns its ticket.
func (g *Generation) Next() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return g.current
}

// IsCurrent reports whether ticket still belongs to the latest render.
// Stale tickets mean the result must be dropped, not rendered.
func (g *Generation) IsCurrent(ticket uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current == ticket
}
