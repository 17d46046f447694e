package cart

import (
	"errors"
	"testing"

	"maeva_back_end/internal/models"
)

func str(s string) *string { return &s }

func line(productID, color, size string, price float64, qty int) models.CartLine {
	return models.CartLine{ProductID: productID, Name: "Karakou " + productID, Color: color, Size: size, Price: price, Quantity: qty}
}

func TestAddMergesSameKey(t *testing.T) {
	c := New(nil)
	quantities := []int{1, 3, 2, 5}
	for _, q := range quantities {
		c.Add(line("p1", "rouge", "M", 4500, q))
	}

	if c.Len() != 1 {
		t.Fatalf("expected 1 line, got %d", c.Len())
	}
	if got := c.Lines()[0].Quantity; got != 11 {
		t.Errorf("expected quantity 11, got %d", got)
	}
}

func TestAddKeepsVariantsDistinct(t *testing.T) {
	c := New(nil)
	c.Add(line("p1", "rouge", "M", 4500, 1))
	c.Add(line("p1", "rouge", "L", 4500, 1))
	c.Add(line("p1", "vert", "M", 4500, 1))
	c.Add(line("p1", "", "", 4500, 1))

	if c.Len() != 4 {
		t.Fatalf("expected 4 distinct lines, got %d", c.Len())
	}
	ids := map[string]bool{}
	for _, l := range c.Lines() {
		if l.ID == "" {
			t.Error("expected every line to get an id")
		}
		ids[l.ID] = true
	}
	if len(ids) != 4 {
		t.Errorf("expected unique line ids, got %d", len(ids))
	}
}

func TestTotalsAlwaysRecomputed(t *testing.T) {
	c := New(nil)
	c.Add(line("p1", "", "S", 1200.5, 2))
	c.Add(line("p2", "", "", 3000, 1))

	if c.TotalItems() != 3 {
		t.Errorf("expected 3 items, got %d", c.TotalItems())
	}
	if c.TotalPrice() != 5401 {
		t.Errorf("expected 5401, got %v", c.TotalPrice())
	}

	c.UpdateQuantity(Selector{ProductID: "p2"}, 4)
	snap := c.Snapshot()
	if snap.TotalItems != 6 || snap.TotalPrice != 14401 {
		t.Errorf("stale totals: %+v", snap)
	}

	c.Remove(Selector{ProductID: "p1"})
	snap = c.Snapshot()
	if snap.TotalItems != 4 || snap.TotalPrice != 12000 {
		t.Errorf("stale totals after remove: %+v", snap)
	}
}

func TestRemoveWithoutVariantRemovesExactlyOneLine(t *testing.T) {
	c := New(nil)
	c.Add(line("p1", "", "M", 4500, 1))
	c.Add(line("p1", "", "L", 4500, 2))

	if n := c.Remove(Selector{ProductID: "p1"}); n != 1 {
		t.Fatalf("expected 1 removed line, got %d", n)
	}
	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 remaining line, got %d", len(lines))
	}
	if lines[0].Size != "L" {
		t.Errorf("expected first line to be removed, remaining size %q", lines[0].Size)
	}
}

func TestRemoveMatchingRules(t *testing.T) {
	tests := []struct {
		name      string
		sel       Selector
		removed   int
		remaining int
	}{
		{"exact color and size", Selector{ProductID: "p1", Color: str("rouge"), Size: str("L")}, 1, 3},
		{"color axis only", Selector{ProductID: "p1", Color: str("rouge")}, 2, 2},
		{"size axis only", Selector{ProductID: "p1", Size: str("M")}, 2, 2},
		{"no match", Selector{ProductID: "p1", Color: str("bleu")}, 0, 4},
		{"unknown product", Selector{ProductID: "p9"}, 0, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			c.Add(line("p1", "rouge", "M", 100, 1))
			c.Add(line("p1", "rouge", "L", 100, 1))
			c.Add(line("p1", "vert", "M", 100, 1))
			c.Add(line("p2", "rouge", "M", 100, 1))

			if n := c.Remove(tt.sel); n != tt.removed {
				t.Errorf("expected %d removed, got %d", tt.removed, n)
			}
			if c.Len() != tt.remaining {
				t.Errorf("expected %d remaining, got %d", tt.remaining, c.Len())
			}
		})
	}
}

func TestRemoveByLineID(t *testing.T) {
	c := New(nil)
	c.Add(line("p1", "", "M", 100, 1))
	second := c.Add(line("p1", "", "L", 100, 1))

	if n := c.Remove(Selector{LineID: second.ID}); n != 1 {
		t.Fatalf("expected 1 removed, got %d", n)
	}
	if c.Lines()[0].Size != "M" {
		t.Error("expected the targeted line to be removed")
	}
	if n := c.Remove(Selector{LineID: "missing"}); n != 0 {
		t.Errorf("expected nothing removed for unknown line id, got %d", n)
	}
}

func TestUpdateQuantityDoesNotClamp(t *testing.T) {
	c := New(nil)
	c.Add(line("p1", "", "", 100, 1))

	c.UpdateQuantity(Selector{ProductID: "p1"}, 50)
	if got := c.Lines()[0].Quantity; got != 50 {
		t.Errorf("expected cart to accept 50 as is, got %d", got)
	}
	c.UpdateQuantity(Selector{ProductID: "p1"}, 0)
	if got := c.Lines()[0].Quantity; got != 0 {
		t.Errorf("expected cart to accept 0 as is, got %d", got)
	}
}

func TestUpdateQuantityWithoutVariantTargetsFirstLine(t *testing.T) {
	c := New(nil)
	c.Add(line("p1", "", "M", 100, 1))
	c.Add(line("p1", "", "L", 100, 1))

	if n := c.UpdateQuantity(Selector{ProductID: "p1"}, 7); n != 1 {
		t.Fatalf("expected 1 updated line, got %d", n)
	}
	lines := c.Lines()
	if lines[0].Quantity != 7 || lines[1].Quantity != 1 {
		t.Errorf("unexpected quantities: %d, %d", lines[0].Quantity, lines[1].Quantity)
	}
}

func TestValidateQuantity(t *testing.T) {
	for _, q := range []int{-1, 0, 21, 100} {
		if err := ValidateQuantity(q, 20); !errors.Is(err, ErrInvalidQuantity) {
			t.Errorf("expected ErrInvalidQuantity for %d, got %v", q, err)
		}
	}
	for _, q := range []int{1, 10, 20} {
		if err := ValidateQuantity(q, 20); err != nil {
			t.Errorf("expected %d to be accepted, got %v", q, err)
		}
	}
}

func TestClearAndNewAssignsMissingIDs(t *testing.T) {
	c := New([]models.CartLine{{ProductID: "p1", Price: 10, Quantity: 1}})
	if c.Lines()[0].ID == "" {
		t.Error("expected legacy line to receive an id")
	}
	c.Clear()
	if !c.IsEmpty() || c.TotalItems() != 0 || c.TotalPrice() != 0 {
		t.Error("expected empty cart after clear")
	}
}
