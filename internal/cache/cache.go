// Package cache holds the client-side result sets for ticket queries. Every
// cached set is keyed by a normalized query key and tracked with a
// generation counter so a mutation can mark sets stale and in-flight
// fetches started before the mutation can never resurrect pre-mutation data.
package cache

import (
	"sort"
	"strings"
	"sync"
)

// Key identifies one cached result set. Two logically identical queries
// normalize to the same Key.
type Key string

// NewKey builds a Key from a set prefix and its filter parameters.
// Parameters are sorted by name and empty values dropped, so declaration
// order never splits the cache.
func NewKey(prefix string, params map[string]string) Key {
	if len(params) == 0 {
		return Key(prefix)
	}
	names := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		names = append(names, k)
	}
	if len(names) == 0 {
		return Key(prefix)
	}
	sort.Strings(names)
	var b strings.Builder
	b.WriteString(prefix)
	for i, k := range names {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return Key(b.String())
}

// Prefix reports whether k belongs to the named set family.
func (k Key) Prefix(prefix string) bool {
	s := string(k)
	if !strings.HasPrefix(s, prefix) {
		return false
	}
	return len(s) == len(prefix) || s[len(prefix)] == '?'
}

type entry struct {
	val   any
	stale bool
	// gen is the generation of the fetch that produced val. A Complete with
	// an older token than the key's current generation is discarded.
	gen uint64
}

// Table is the cache proper. All methods are safe for concurrent use.
type Table struct {
	mu      sync.Mutex
	entries map[Key]*entry
	gens    map[Key]uint64
}

func NewTable() *Table {
	return &Table{
		entries: make(map[Key]*entry),
		gens:    make(map[Key]uint64),
	}
}

// Lookup returns the cached value for k when it is present and fresh.
func (t *Table) Lookup(k Key) (any, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[k]
	if !ok || e.stale {
		return nil, false
	}
	return e.val, true
}

// Begin registers a new fetch for k and returns its generation token.
// Starting a newer fetch invalidates completion of any older one for the
// same key (last request wins).
func (t *Table) Begin(k Key) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gens[k]++
	return t.gens[k]
}

// Complete stores val for k if tok is still the latest generation. It
// reports whether the value was accepted.
func (t *Table) Complete(k Key, tok uint64, val any) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.gens[k] != tok {
		return false
	}
	t.entries[k] = &entry{val: val, gen: tok}
	return true
}

// Invalidate stale-marks every entry in the named set families and bumps
// their generations, so fetches already in flight complete into the void.
func (t *Table) Invalidate(prefixes ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k, e := range t.entries {
		for _, p := range prefixes {
			if k.Prefix(p) {
				e.stale = true
				break
			}
		}
	}
	// Bump generations for every key ever fetched, not just those with a
	// stored entry, so a first load still in flight is discarded too.
	for k := range t.gens {
		for _, p := range prefixes {
			if k.Prefix(p) {
				t.gens[k]++
				break
			}
		}
	}
}

// Drop removes a single entry outright.
func (t *Table) Drop(k Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.entries, k)
	t.gens[k]++
}

// Reset empties the table. Used on logout so one user's cached views never
// leak into the next session.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = make(map[Key]*entry)
	t.gens = make(map[Key]uint64)
}
