package pricing

import (
	"testing"

	"github.com/caravanleads/caravan/internal/domain"
)

func TestInferVolume_NoItemsNoDescriptor(t *testing.T) {
	cfg := DefaultConfig()
	if got := InferVolume(nil, "немного вещей", cfg); got != "" {
		t.Fatalf("want unknown volume, got %q", got)
	}
}

func TestInferVolume_RoomDescriptorFallback(t *testing.T) {
	cfg := DefaultConfig()
	got := InferVolume(nil, "переезд из studio квартиры", cfg)
	if got != domain.VolumeMedium {
		t.Fatalf("want medium from room descriptor, got %q", got)
	}
}

func TestInferVolume_BySummedValue(t *testing.T) {
	cfg := DefaultConfig()
	items := []domain.Item{
		{Key: "box", Qty: 2, PriceMin: 20, PriceMax: 40}, // mid 30 * 2 = 60
	}
	got := InferVolume(items, "коробка x2", cfg)
	if got != domain.VolumeSmall {
		t.Fatalf("want small for low sum, got %q", got)
	}
}

func TestInferVolume_HeavyItemOverride(t *testing.T) {
	cfg := DefaultConfig()
	items := []domain.Item{
		{Key: "fridge", Qty: 1, PriceMin: 100, PriceMax: 100, Heavy: true},
		{Key: "washer", Qty: 1, PriceMin: 100, PriceMax: 100, Heavy: true},
	}
	got := InferVolume(items, "холодильник, стиралка", cfg)
	if got != domain.VolumeLarge {
		t.Fatalf("want large from heavy-item override, got %q", got)
	}
}

func TestInferVolume_HeavyOverrideNeverDowngrades(t *testing.T) {
	cfg := DefaultConfig()
	items := []domain.Item{
		{Key: "a", Qty: 1, PriceMin: 5000, PriceMax: 5000, Heavy: true},
		{Key: "b", Qty: 1, PriceMin: 5000, PriceMax: 5000, Heavy: true},
	}
	got := InferVolume(items, "xl stuff", cfg)
	if got != domain.VolumeXL {
		t.Fatalf("heavy override must not downgrade an already-xl sum, got %q", got)
	}
}
