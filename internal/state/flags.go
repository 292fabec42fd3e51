package state

import "sync"

// Flags tracks one pending-inbound token per domain. A token is set right
// before an inbound load/reload is applied and consumed by the very next
// state-change effect for that domain, which then skips its outward save.
// Tokens are single-slot: marking an already-marked domain is a no-op.
type Flags struct {
	mu      sync.Mutex
	pending map[string]struct{}
}

// NewFlags returns an empty tracker.
func NewFlags() *Flags {
	return &Flags{pending: make(map[string]struct{})}
}

// Mark sets the pending-inbound token for a domain.
func (f *Flags) Mark(domain string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[domain] = struct{}{}
}

// Consume atomically tests and clears the token, reporting whether it was
// set. Exactly one caller observes true per Mark.
func (f *Flags) Consume(domain string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[domain]
	if ok {
		delete(f.pending, domain)
	}
	return ok
}

// Pending reports whether a token is set without clearing it.
func (f *Flags) Pending(domain string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[domain]
	return ok
}
