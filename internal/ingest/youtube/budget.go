package youtube

import "sync"

// Budget bounds a paginated fetch by page count and item count. Hitting
// either ceiling is not an error; the fetch stops and the budget records
// that results were truncated. A Budget may be shared by concurrent
// fetchers.
type Budget struct {
	MaxPages int
	MaxItems int

	mu        sync.Mutex
	pages     int
	items     int
	truncated bool
}

// NewBudget creates a budget with the given ceilings. Non-positive ceilings
// are treated as unlimited.
func NewBudget(maxPages, maxItems int) *Budget {
	return &Budget{MaxPages: maxPages, MaxItems: maxItems}
}

// AllowPage reports whether another page may be fetched, marking the budget
// truncated when the answer is no.
func (b *Budget) AllowPage() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.MaxPages > 0 && b.pages >= b.MaxPages {
		b.truncated = true
		return false
	}

	if b.MaxItems > 0 && b.items >= b.MaxItems {
		b.truncated = true
		return false
	}

	return true
}

// AllowItem reports whether another item may be accepted, marking the budget
// truncated when the answer is no.
func (b *Budget) AllowItem() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.MaxItems > 0 && b.items >= b.MaxItems {
		b.truncated = true
		return false
	}

	return true
}

// CountPage records one fetched page.
func (b *Budget) CountPage() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.pages++
}

// CountItem records one accepted item.
func (b *Budget) CountItem() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.items++
}

// Items returns the number of accepted items so far.
func (b *Budget) Items() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.items
}

// Pages returns the number of fetched pages so far.
func (b *Budget) Pages() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.pages
}

// Truncated reports whether a ceiling cut the fetch short.
func (b *Budget) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.truncated
}
