package domain

import "testing"

func TestBasketItemsAreASet(t *testing.T) {
	b := NewBasket("week 12")
	b.AddItems([]GlobalID{"SS2", "SS1", "SS2"})
	if b.ItemCount() != 2 {
		t.Fatalf("ItemCount: got %d, want 2", b.ItemCount())
	}
	got := b.Items()
	if len(got) != 2 || got[0] != "SS1" || got[1] != "SS2" {
		t.Fatalf("Items: %v", got)
	}
	if !b.Contains("SS1") || b.Contains("SS3") {
		t.Fatalf("Contains gave wrong membership")
	}
}

func TestBasketSetItemsReplaces(t *testing.T) {
	b := NewBasket("week 12")
	b.AddItems([]GlobalID{"SS1"})
	b.SetItems([]GlobalID{"SA5"})
	if b.ItemCount() != 1 || !b.Contains("SA5") || b.Contains("SS1") {
		t.Fatalf("SetItems did not replace: %v", b.Items())
	}
}
