// Package pricing implements item extraction, volume inference, route
// classification, and the price-estimate pipeline. Every function here
// is pure: it is handed a Config and LeadData-shaped inputs and
// returns a result, with no I/O.
package pricing

import "github.com/caravanleads/caravan/internal/domain"

// CatalogItem is one entry in the item catalog: a priced, labeled good.
type CatalogItem struct {
	Key      string
	PriceMin int
	PriceMax int
	Heavy    bool
	Labels   map[domain.Lang]string
}

// ItemCatalog resolves raw-text aliases to catalog items. Aliases are
// matched longest-first so a more specific alias like "детская
// кровать" is tried before the generic "кровать".
type ItemCatalog struct {
	Items        map[string]CatalogItem // key -> item
	aliasToKey   []aliasEntry           // sorted longest-first
}

type aliasEntry struct {
	alias string
	key   string
}

// NewItemCatalog builds a catalog from a key->item map and an
// alias->key map, pre-sorting aliases longest-first once at construction
// time so extraction never re-sorts per call.
func NewItemCatalog(items map[string]CatalogItem, aliases map[string]string) *ItemCatalog {
	c := &ItemCatalog{Items: items}
	for alias, key := range aliases {
		c.aliasToKey = append(c.aliasToKey, aliasEntry{alias: alias, key: key})
	}
	sortAliasesLongestFirst(c.aliasToKey)
	return c
}

func sortAliasesLongestFirst(entries []aliasEntry) {
	// Simple insertion sort: catalogs are small (tens to low hundreds of
	// aliases), and this keeps the dependency-free stdlib-only contract
	// for this file explicit rather than reaching for sort.Slice here too.
	for i := 1; i < len(entries); i++ {
		j := i
		for j > 0 && len(entries[j-1].alias) < len(entries[j].alias) {
			entries[j-1], entries[j] = entries[j], entries[j-1]
			j--
		}
	}
}

// LocalityCatalog resolves free-text locality aliases to canonical names
// and holds the approximate distance table used for route classification.
type LocalityCatalog struct {
	AliasToCanonical map[string]string
	// Distances is symmetric: Distances[a][b] == Distances[b][a].
	Distances map[string]map[string]float64
}

// Canonicalize normalizes a free-text locality mention, falling back to
// the input unchanged (not trimmed) when no alias matches.
func (l *LocalityCatalog) Canonicalize(raw string) string {
	if l == nil {
		return raw
	}
	if canon, ok := l.AliasToCanonical[normalizeKey(raw)]; ok {
		return canon
	}
	return raw
}

// DistanceKM returns the approximate distance between two canonical
// localities, or 0 with ok=false if unknown.
func (l *LocalityCatalog) DistanceKM(from, to string) (float64, bool) {
	if l == nil || l.Distances == nil {
		return 0, false
	}
	if row, ok := l.Distances[from]; ok {
		if d, ok := row[to]; ok {
			return d, true
		}
	}
	if row, ok := l.Distances[to]; ok {
		if d, ok := row[from]; ok {
			return d, true
		}
	}
	return 0, false
}
