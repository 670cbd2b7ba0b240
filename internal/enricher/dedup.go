package enricher

import "sync"

// Ledger tracks product ids already processed in the current run, scoped per
// country. It is never persisted; every run starts empty. The same id may
// recur across countries but is processed at most once within one country.
type Ledger struct {
	mu   sync.Mutex
	seen map[string]map[string]struct{}
}

// NewLedger creates an empty dedup ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]map[string]struct{})}
}

// MarkSeen records productID for country and reports whether it was newly
// marked. A false return means the id was already processed this run.
func (l *Ledger) MarkSeen(country, productID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	ids, ok := l.seen[country]
	if !ok {
		ids = make(map[string]struct{})
		l.seen[country] = ids
	}
	if _, dup := ids[productID]; dup {
		return false
	}
	ids[productID] = struct{}{}
	return true
}

// Count returns the number of ids seen for a country.
func (l *Ledger) Count(country string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen[country])
}

// Reset clears the ledger for a fresh run.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = make(map[string]map[string]struct{})
}
