package youtube

import "testing"

func TestBudgetPageCeiling(t *testing.T) {
	b := NewBudget(2, 0)

	for i := 0; i < 2; i++ {
		if !b.AllowPage() {
			t.Fatalf("page %d should be allowed", i+1)
		}

		b.CountPage()
	}

	if b.AllowPage() {
		t.Fatal("third page should be denied")
	}

	if !b.Truncated() {
		t.Error("hitting the page ceiling must mark the budget truncated")
	}
}

func TestBudgetItemCeiling(t *testing.T) {
	b := NewBudget(0, 3)

	for i := 0; i < 3; i++ {
		if !b.AllowItem() {
			t.Fatalf("item %d should be allowed", i+1)
		}

		b.CountItem()
	}

	if b.AllowItem() {
		t.Fatal("fourth item should be denied")
	}

	if b.AllowPage() {
		t.Error("a full item budget also denies further pages")
	}

	if !b.Truncated() {
		t.Error("hitting the item ceiling must mark the budget truncated")
	}
}

func TestBudgetUnlimited(t *testing.T) {
	b := NewBudget(0, 0)

	for i := 0; i < 1000; i++ {
		if !b.AllowPage() || !b.AllowItem() {
			t.Fatal("unlimited budget must never deny")
		}

		b.CountPage()
		b.CountItem()
	}

	if b.Truncated() {
		t.Error("unlimited budget must never be truncated")
	}

	if b.Pages() != 1000 || b.Items() != 1000 {
		t.Errorf("unexpected counters: pages %d items %d", b.Pages(), b.Items())
	}
}
