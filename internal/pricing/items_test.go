package pricing

import "testing"

func testCatalog() *ItemCatalog {
	items := map[string]CatalogItem{
		"wardrobe":    {Key: "wardrobe", PriceMin: 300, PriceMax: 600, Heavy: false},
		"fridge":      {Key: "fridge", PriceMin: 400, PriceMax: 900, Heavy: true},
		"bed":         {Key: "bed", PriceMin: 250, PriceMax: 500, Heavy: false},
		"baby_bed":    {Key: "baby_bed", PriceMin: 150, PriceMax: 300, Heavy: false},
		"box":         {Key: "box", PriceMin: 20, PriceMax: 40, Heavy: false},
	}
	aliases := map[string]string{
		"шкаф":            "wardrobe",
		"холодильник":     "fridge",
		"кровать":         "bed",
		"детская кровать": "baby_bed",
		"коробка":         "box",
	}
	return NewItemCatalog(items, aliases)
}

func TestExtractItems_ExplicitQuantity(t *testing.T) {
	cat := testCatalog()
	items := ExtractItems("коробка x5, шкаф 2x", cat)
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d: %+v", len(items), items)
	}
	if items[0].Key != "box" || items[0].Qty != 5 {
		t.Errorf("box: got %+v", items[0])
	}
	if items[1].Key != "wardrobe" || items[1].Qty != 2 {
		t.Errorf("wardrobe: got %+v", items[1])
	}
}

func TestExtractItems_AttributeSuppressedQuantity(t *testing.T) {
	cat := testCatalog()
	// "Холодильник 200кг, 5 дверный шкаф": both bare numbers are attached
	// to attribute suffixes (кг, дверный) so quantity stays 1 for each.
	items := ExtractItems("Холодильник 200кг, 5 дверный шкаф", cat)
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d: %+v", len(items), items)
	}
	for _, it := range items {
		if it.Qty != 1 {
			t.Errorf("item %s: want qty 1, got %d", it.Key, it.Qty)
		}
	}
}

func TestExtractItems_BareNumberQuantity(t *testing.T) {
	cat := testCatalog()
	items := ExtractItems("коробка 10", cat)
	if len(items) != 1 || items[0].Qty != 10 {
		t.Fatalf("want 1 box with qty 10, got %+v", items)
	}
}

func TestExtractItems_BareNumberAboveCapFallsBackToOne(t *testing.T) {
	cat := testCatalog()
	items := ExtractItems("коробка 500", cat)
	if len(items) != 1 || items[0].Qty != 1 {
		t.Fatalf("want 1 box with qty 1 (cap exceeded), got %+v", items)
	}
}

func TestExtractItems_LongestAliasWins(t *testing.T) {
	cat := testCatalog()
	items := ExtractItems("детская кровать", cat)
	if len(items) != 1 || items[0].Key != "baby_bed" {
		t.Fatalf("want baby_bed (longest alias), got %+v", items)
	}
}

func TestExtractItems_DimensionStripped(t *testing.T) {
	cat := testCatalog()
	items := ExtractItems("шкаф 120x60x200см", cat)
	if len(items) != 1 || items[0].Key != "wardrobe" || items[0].Qty != 1 {
		t.Fatalf("dimension text should not affect quantity, got %+v", items)
	}
}

func TestExtractItems_NoMatchIgnored(t *testing.T) {
	cat := testCatalog()
	items := ExtractItems("старый телевизор", cat)
	if len(items) != 0 {
		t.Fatalf("want no items for unmatched fragment, got %+v", items)
	}
}

func TestExtractItems_NilCatalog(t *testing.T) {
	if items := ExtractItems("шкаф", nil); items != nil {
		t.Fatalf("want nil for nil catalog, got %+v", items)
	}
}

func TestExtractItems_MultipleFragments(t *testing.T) {
	cat := testCatalog()
	items := ExtractItems("шкаф, кровать and коробка x3", cat)
	if len(items) != 3 {
		t.Fatalf("want 3 items, got %d: %+v", len(items), items)
	}
}
