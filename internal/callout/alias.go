package callout

import "sync"

// AliasTable assigns each identifier a stable index in first-seen order.
// Entries are never removed.
type AliasTable struct {
	mu    sync.Mutex
	ids   []string
	index map[string]int
}

// NewAliasTable creates an empty table.
func NewAliasTable() *AliasTable {
	return &AliasTable{index: make(map[string]int)}
}

// Index returns the index of id, appending it if it has not been seen.
func (t *AliasTable) Index(id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if i, ok := t.index[id]; ok {
		return i
	}
	i := len(t.ids)
	t.ids = append(t.ids, id)
	t.index[id] = i
	return i
}

// Lookup returns the index of id without assigning one.
func (t *AliasTable) Lookup(id string) (int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[id]
	return i, ok
}

// Len returns the number of identifiers seen.
func (t *AliasTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.ids)
}

// Identifiers returns the identifiers in first-seen order.
func (t *AliasTable) Identifiers() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}
