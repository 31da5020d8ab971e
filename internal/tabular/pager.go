package tabular

// DefaultPageSize is used when a screen does not set one.
const DefaultPageSize = 10

// Pager slices a collection of count records into fixed-size pages.
// The current page is always within [1, TotalPages].
type Pager struct {
	size  int
	count int
	page  int
}

// NewPager creates a pager on page 1.
func NewPager(count, pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if count < 0 {
		count = 0
	}
	return &Pager{size: pageSize, count: count, page: 1}
}

// TotalPages is max(1, ceil(count/pageSize)).
func (p *Pager) TotalPages() int {
	if p.count == 0 {
		return 1
	}
	return (p.count + p.size - 1) / p.size
}

func (p *Pager) Page() int     { return p.page }
func (p *Pager) PageSize() int { return p.size }
func (p *Pager) Count() int    { return p.count }

// Reset points the pager at a new collection and goes back to page 1.
func (p *Pager) Reset(count int) {
	if count < 0 {
		count = 0
	}
	p.count = count
	p.page = 1
}

// Resize changes the collection size but keeps the current page when it is still valid.
func (p *Pager) Resize(count int) {
	if count < 0 {
		count = 0
	}
	p.count = count
	p.JumpTo(p.page)
}

func (p *Pager) First() { p.page = 1 }
func (p *Pager) Last()  { p.page = p.TotalPages() }

// Prev moves back one page, stopping at 1.
func (p *Pager) Prev() { p.JumpTo(p.page - 1) }

// Next moves forward one page, stopping at the last page.
func (p *Pager) Next() { p.JumpTo(p.page + 1) }

// JumpTo moves to page n clamped into [1, TotalPages].
func (p *Pager) JumpTo(n int) {
	switch total := p.TotalPages(); {
	case n < 1:
		p.page = 1
	case n > total:
		p.page = total
	default:
		p.page = n
	}
}

// Bounds returns the half-open index range of the current page.
func (p *Pager) Bounds() (lo, hi int) {
	lo = (p.page - 1) * p.size
	if lo > p.count {
		lo = p.count
	}
	hi = lo + p.size
	if hi > p.count {
		hi = p.count
	}
	return lo, hi
}

// Slice returns the records of the current page.
func Slice[T any](items []T, p *Pager) []T {
	lo, hi := p.Bounds()
	if hi > len(items) {
		hi = len(items)
	}
	if lo > hi {
		lo = hi
	}
	return items[lo:hi]
}
