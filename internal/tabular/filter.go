// Package tabular implements the list-screen engine shared by every table in
// the frontend: filter predicates, paging, the view controller and CSV export.
package tabular

import (
	"strings"
	"time"
)

// All is the category value that imposes no constraint.
const All = "all"

// Category describes one exact-match filter of a screen.
type Category[T any] struct {
	Name  string
	Value func(T) string
}

// Schema parameterises a screen over records of type T.
type Schema[T any] struct {
	// Searchable returns the fields matched by the free-text query.
	Searchable func(T) []string
	Categories []Category[T]
	// Date returns the field compared against the date range. Nil disables date filtering.
	Date func(T) time.Time
	// Less orders the collection. Nil keeps source order.
	Less     func(a, b T) bool
	ID       func(T) string
	PageSize int
}

// Criteria is the set of filter inputs of one view.
type Criteria struct {
	Query      string
	Categories map[string]string
	From       *time.Time
	To         *time.Time
}

// Equal reports whether two criteria select the same records.
func (c Criteria) Equal(o Criteria) bool {
	if strings.TrimSpace(c.Query) != strings.TrimSpace(o.Query) {
		return false
	}
	if !sameDay(c.From, o.From) || !sameDay(c.To, o.To) {
		return false
	}
	for k, v := range c.Categories {
		if active(v) && o.Categories[k] != v {
			return false
		}
	}
	for k, v := range o.Categories {
		if active(v) && c.Categories[k] != v {
			return false
		}
	}
	return true
}

func sameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func active(v string) bool {
	return v != "" && v != All
}

// StartOfDay returns 00:00:00 of t's day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of t's day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// Match reports whether item passes every predicate of c.
// Predicates are evaluated text, categories, date and stop at the first failure.
func (s Schema[T]) Match(item T, c Criteria) bool {
	if q := strings.TrimSpace(c.Query); q != "" && s.Searchable != nil {
		hay := strings.ToLower(strings.Join(s.Searchable(item), " "))
		if !strings.Contains(hay, strings.ToLower(q)) {
			return false
		}
	}

	for _, cat := range s.Categories {
		want := c.Categories[cat.Name]
		if !active(want) {
			continue
		}
		if cat.Value(item) != want {
			return false
		}
	}

	if s.Date != nil && (c.From != nil || c.To != nil) {
		at := s.Date(item)
		if c.From != nil && at.Before(StartOfDay(*c.From)) {
			return false
		}
		if c.To != nil && at.After(EndOfDay(*c.To)) {
			return false
		}
	}
	return true
}

// Filter returns the items matching c, preserving order.
func Filter[T any](items []T, s Schema[T], c Criteria) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if s.Match(it, c) {
			out = append(out, it)
		}
	}
	return out
}
