package tabular

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"
)

var (
	// ErrSuperseded is returned by Load when a newer load was issued before this one finished.
	ErrSuperseded = errors.New("tabular: load superseded by a newer request")
	// ErrNotInView is returned by Update for an id the collection does not hold.
	ErrNotInView = errors.New("tabular: record not in view")
)

// Source produces the full unfiltered collection of a view.
type Source[T any] func(ctx context.Context) ([]T, error)

// Snapshot is the visible state of a view.
type Snapshot[T any] struct {
	Items      []T
	Page       int
	TotalPages int
	PageSize   int
	Matched    int
	Total      int
}

// View is the controller behind one list screen. It owns the full collection,
// the current criteria, the filtered set and the pager. Safe for concurrent use.
type View[T any] struct {
	mu       sync.Mutex
	schema   Schema[T]
	all      []T
	filtered []T
	criteria Criteria
	pager    *Pager
	loaded   bool

	gen    uint64
	cancel context.CancelFunc
}

// NewView creates an empty view for schema.
func NewView[T any](schema Schema[T]) *View[T] {
	if schema.PageSize < 1 {
		schema.PageSize = DefaultPageSize
	}
	return &View[T]{schema: schema, pager: NewPager(0, schema.PageSize)}
}

// Load replaces the collection with the result of src. Each call supersedes
// the previous one: the earlier context is cancelled and, should its result
// still arrive, it is dropped with ErrSuperseded.
func (v *View[T]) Load(ctx context.Context, src Source[T]) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.mu.Unlock()
	defer cancel()

	items, err := src(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return ErrSuperseded
	}
	v.cancel = nil
	if err != nil {
		return err
	}
	v.setItemsLocked(items)
	return nil
}

// SetItems replaces the collection directly.
func (v *View[T]) SetItems(items []T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.gen++
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.setItemsLocked(items)
}

func (v *View[T]) setItemsLocked(items []T) {
	v.all = append([]T(nil), items...)
	v.sortLocked()
	v.loaded = true
	v.refilterLocked(true)
}

func (v *View[T]) sortLocked() {
	if v.schema.Less == nil {
		return
	}
	sort.SliceStable(v.all, func(i, j int) bool { return v.schema.Less(v.all[i], v.all[j]) })
}

func (v *View[T]) refilterLocked(resetPage bool) {
	v.filtered = Filter(v.all, v.schema, v.criteria)
	if resetPage {
		v.pager.Reset(len(v.filtered))
	} else {
		v.pager.Resize(len(v.filtered))
	}
}

// Loaded reports whether the view holds a collection.
func (v *View[T]) Loaded() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loaded
}

// Criteria returns the active criteria.
func (v *View[T]) Criteria() Criteria {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.criteria
}

// SetCriteria re-filters the collection. When the criteria differ from the
// active ones the page goes back to 1.
func (v *View[T]) SetCriteria(c Criteria) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.setCriteriaLocked(c)
}

func (v *View[T]) setCriteriaLocked(c Criteria) bool {
	if c.Equal(v.criteria) {
		v.criteria = c
		return false
	}
	v.criteria = c
	v.refilterLocked(true)
	return true
}

// SetQuery changes the free-text query.
func (v *View[T]) SetQuery(q string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.criteria
	c.Query = q
	v.setCriteriaLocked(c)
}

// SetCategory changes one category filter. All or "" clears it.
func (v *View[T]) SetCategory(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.criteria
	cats := make(map[string]string, len(c.Categories)+1)
	for k, val := range c.Categories {
		cats[k] = val
	}
	cats[name] = value
	c.Categories = cats
	v.setCriteriaLocked(c)
}

// SetDateRange changes the inclusive date bounds. Nil bounds are open.
func (v *View[T]) SetDateRange(from, to *time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	c := v.criteria
	c.From, c.To = from, to
	v.setCriteriaLocked(c)
}

// Apply sets the criteria and then moves to page. A criteria change wins over
// the requested page, which is ignored and page 1 is shown.
func (v *View[T]) Apply(c Criteria, page int) Snapshot[T] {
	return v.Query(c, page, 0)
}

// Query is Apply with a page size. A size below 1 keeps the current one;
// a different size also sends the view back to page 1.
func (v *View[T]) Query(c Criteria, page, size int) Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	reset := v.setCriteriaLocked(c)
	if size > 0 && size != v.pager.PageSize() {
		v.pager = NewPager(len(v.filtered), size)
		reset = true
	}
	if !reset {
		v.pager.JumpTo(page)
	}
	return v.snapshotLocked()
}

// Page filters the collection by c and returns page of it without touching
// the view's own criteria or pager, so concurrent readers of one view never
// move each other's page. A size below 1 uses the schema's page size and the
// page is clamped into range.
func (v *View[T]) Page(c Criteria, page, size int) Snapshot[T] {
	if size < 1 {
		size = v.schema.PageSize
	}
	v.mu.Lock()
	filtered := Filter(v.all, v.schema, c)
	total := len(v.all)
	v.mu.Unlock()

	p := NewPager(len(filtered), size)
	p.JumpTo(page)
	return Snapshot[T]{
		Items:      append([]T(nil), Slice(filtered, p)...),
		Page:       p.Page(),
		TotalPages: p.TotalPages(),
		PageSize:   p.PageSize(),
		Matched:    len(filtered),
		Total:      total,
	}
}

// FilteredBy returns every record matching c across all pages.
func (v *View[T]) FilteredBy(c Criteria) []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Filter(v.all, v.schema, c)
}

// Snapshot returns the visible page and the summary counts.
func (v *View[T]) Snapshot() Snapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Items:      append([]T(nil), Slice(v.filtered, v.pager)...),
		Page:       v.pager.Page(),
		TotalPages: v.pager.TotalPages(),
		PageSize:   v.pager.PageSize(),
		Matched:    len(v.filtered),
		Total:      len(v.all),
	}
}

// Navigation.

func (v *View[T]) First()       { v.navigate((*Pager).First) }
func (v *View[T]) Prev()        { v.navigate((*Pager).Prev) }
func (v *View[T]) Next()        { v.navigate((*Pager).Next) }
func (v *View[T]) Last()        { v.navigate((*Pager).Last) }
func (v *View[T]) JumpTo(n int) { v.navigate(func(p *Pager) { p.JumpTo(n) }) }

func (v *View[T]) navigate(fn func(*Pager)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.pager)
}

// Find returns the record with id.
func (v *View[T]) Find(id string) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexLocked(id); i >= 0 {
		return v.all[i], true
	}
	var zero T
	return zero, false
}

func (v *View[T]) indexLocked(id string) int {
	if v.schema.ID == nil {
		return -1
	}
	for i := range v.all {
		if v.schema.ID(v.all[i]) == id {
			return i
		}
	}
	return -1
}

// Upsert replaces the record with the same id or adds it.
func (v *View[T]) Upsert(item T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexLocked(v.schema.ID(item)); i >= 0 {
		v.all[i] = item
	} else {
		v.all = append([]T{item}, v.all...)
	}
	v.sortLocked()
	v.refilterLocked(false)
}

// Update applies fn to the record with id and returns the updated record.
// When fn returns an error the record is left unchanged.
func (v *View[T]) Update(id string, fn func(*T) error) (T, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	var zero T
	i := v.indexLocked(id)
	if i < 0 {
		return zero, ErrNotInView
	}
	item := v.all[i]
	if err := fn(&item); err != nil {
		return zero, err
	}
	v.all[i] = item
	v.sortLocked()
	v.refilterLocked(false)
	return item, nil
}

// Remove deletes the record with id. It reports whether it existed.
func (v *View[T]) Remove(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexLocked(id)
	if i < 0 {
		return false
	}
	v.all = append(v.all[:i:i], v.all[i+1:]...)
	v.refilterLocked(false)
	return true
}

// Items returns a copy of the full collection.
func (v *View[T]) Items() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]T(nil), v.all...)
}

// Filtered returns a copy of the filtered collection across all pages.
func (v *View[T]) Filtered() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]T(nil), v.filtered...)
}

// Export writes the filtered collection, not just the visible page, as CSV.
func (v *View[T]) Export(w io.Writer, cols []Column[T]) error {
	return WriteCSV(w, v.Filtered(), cols)
}
