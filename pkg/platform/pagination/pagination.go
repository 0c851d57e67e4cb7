// Package pagination bounds query results to a configured page size.
package pagination

import "encoding/json"

// DefaultMaxPageSize applies when no explicit maximum is configured.
const DefaultMaxPageSize = 1000

// Config is built once at startup and passed to every repository that pages.
type Config struct {
	MaxPageSize int `env:"PAGE_MAX_SIZE" envDefault:"1000"`
}

func (c Config) maxPageSize() int {
	if c.MaxPageSize <= 0 {
		return DefaultMaxPageSize
	}
	return c.MaxPageSize
}

// Pagination is one page of a larger result set. Total is the size of the
// whole matching set, independent of the page.
type Pagination[T any] struct {
	offset int
	limit  int
	total  int
	items  []T
}

// New creates an empty page. limit is clamped to the configured maximum; a
// non-positive limit means "as many as allowed". Negative offsets become 0.
func New[T any](cfg Config, offset, limit, total int) *Pagination[T] {
	maxSize := cfg.maxPageSize()
	if limit <= 0 || limit > maxSize {
		limit = maxSize
	}
	if offset < 0 {
		offset = 0
	}
	if total < 0 {
		total = 0
	}
	return &Pagination[T]{offset: offset, limit: limit, total: total}
}

func (p *Pagination[T]) Offset() int { return p.offset }
func (p *Pagination[T]) Limit() int { return p.limit }
func (p *Pagination[T]) Total() int { return p.total }
func (p *Pagination[T]) Count() int { return len(p.items) }

// Items returns a copy of the page contents.
func (p *Pagination[T]) Items() []T {
	return append([]T(nil), p.items...)
}

// AddItem appends one result.
func (p *Pagination[T]) AddItem(item T) {
	p.items = append(p.items, item)
}

// AddItems appends results in order.
func (p *Pagination[T]) AddItems(items []T) {
	p.items = append(p.items, items...)
}

// IntoItems hands the contents to the caller and leaves the page empty.
func (p *Pagination[T]) IntoItems() []T {
	items := p.items
	p.items = nil
	return items
}

// Window returns the [start, end) bounds of this page within a result set of n
// elements.
func (p *Pagination[T]) Window(n int) (start, end int) {
	start = min(p.offset, n)
	end = min(start+p.limit, n)
	return start, end
}

// HasMore reports whether results exist past this page.
func (p *Pagination[T]) HasMore() bool {
	return p.offset+len(p.items) < p.total
}

type wire[T any] struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
	Count  int `json:"count"`
	Items  []T `json:"items"`
}

func (p *Pagination[T]) MarshalJSON() ([]byte, error) {
	items := p.items
	if items == nil {
		items = []T{}
	}
	return json.Marshal(wire[T]{
		Offset: p.offset,
		Limit:  p.limit,
		Total:  p.total,
		Count:  len(p.items),
		Items:  items,
	})
}

// Apply pages over a full result set: it records total as len(all) and adds
// the items inside the window.
func Apply[T any](cfg Config, offset, limit int, all []T) *Pagination[T] {
	p := New[T](cfg, offset, limit, len(all))
	start, end := p.Window(len(all))
	p.AddItems(all[start:end])
	return p
}
