package pricing

import "testing"

func TestSortAliasesLongestFirst(t *testing.T) {
	entries := []aliasEntry{
		{alias: "кровать", key: "bed"},
		{alias: "детская кровать", key: "baby_bed"},
		{alias: "шкаф", key: "wardrobe"},
	}
	sortAliasesLongestFirst(entries)
	for i := 1; i < len(entries); i++ {
		if len(entries[i-1].alias) < len(entries[i].alias) {
			t.Fatalf("not sorted longest-first: %+v", entries)
		}
	}
	if entries[0].alias != "детская кровать" {
		t.Fatalf("want longest alias first, got %q", entries[0].alias)
	}
}

func TestLocalityCatalog_CanonicalizeFallback(t *testing.T) {
	l := &LocalityCatalog{AliasToCanonical: map[string]string{"tel aviv": "Tel Aviv"}}
	if got := l.Canonicalize("Tel Aviv"); got != "Tel Aviv" {
		t.Errorf("want alias match, got %q", got)
	}
	if got := l.Canonicalize("Somewhere Else"); got != "Somewhere Else" {
		t.Errorf("want fallback to input, got %q", got)
	}
}

func TestLocalityCatalog_DistanceSymmetric(t *testing.T) {
	l := &LocalityCatalog{Distances: map[string]map[string]float64{
		"A": {"B": 42},
	}}
	if d, ok := l.DistanceKM("A", "B"); !ok || d != 42 {
		t.Fatalf("forward lookup failed: %v %v", d, ok)
	}
	if d, ok := l.DistanceKM("B", "A"); !ok || d != 42 {
		t.Fatalf("reverse lookup failed: %v %v", d, ok)
	}
	if _, ok := l.DistanceKM("A", "C"); ok {
		t.Fatalf("unknown pair should report ok=false")
	}
}
