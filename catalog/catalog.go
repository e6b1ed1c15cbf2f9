package catalog

import (
	"sort"
	"strings"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Entry maps a human-readable display name to the canonical identifier
// the server expects in commands, with an optional category tag (effects
// carry "good"/"bad").
type Entry struct {
	DisplayName string
	ID          string
	Category    string
}

// Catalog is a named, ordered set of entries. Insertion order matches the
// source file and is the tie-break for equal fuzzy scores, which keeps
// search results deterministic. A Catalog is immutable once built.
type Catalog struct {
	name    string
	entries []Entry
	byName  map[string]int
	trie    *patricia.Trie
}

// New builds a catalog from entries, preserving their order. Display
// names are catalog-unique; on a duplicate the first entry wins.
func New(name string, entries []Entry) *Catalog {
	c := &Catalog{
		name:    name,
		entries: entries,
		byName:  make(map[string]int, len(entries)),
		trie:    patricia.NewTrie(),
	}
	for i, e := range entries {
		if _, ok := c.byName[e.DisplayName]; ok {
			continue
		}
		c.byName[e.DisplayName] = i
		c.trie.Insert(patricia.Prefix(strings.ToLower(e.DisplayName)), i)
	}
	return c
}

// Name returns the catalog's type name ("item", "effect", ...).
func (c *Catalog) Name() string {
	return c.name
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entry returns the entry at position i in catalog order.
func (c *Catalog) Entry(i int) Entry {
	return c.entries[i]
}

// Entries returns the entries in catalog order. The slice is shared;
// callers must not modify it.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Lookup resolves a display name exactly, case-sensitive as authored.
func (c *Catalog) Lookup(displayName string) (Entry, bool) {
	i, ok := c.byName[displayName]
	if !ok {
		return Entry{}, false
	}
	return c.entries[i], true
}

// LookupPrefix returns up to limit entries whose display name starts with
// the given prefix, case-insensitive, in catalog order.
func (c *Catalog) LookupPrefix(prefix string, limit int) []Entry {
	if prefix == "" || limit <= 0 {
		return nil
	}

	var indexes []int
	_ = c.trie.VisitSubtree(patricia.Prefix(strings.ToLower(prefix)), func(_ patricia.Prefix, item patricia.Item) error {
		indexes = append(indexes, item.(int))
		return nil
	})

	// Trie visit order is lexicographic; reorder to catalog order.
	sort.Ints(indexes)
	if len(indexes) > limit {
		indexes = indexes[:limit]
	}

	out := make([]Entry, 0, len(indexes))
	for _, i := range indexes {
		out = append(out, c.entries[i])
	}
	return out
}
