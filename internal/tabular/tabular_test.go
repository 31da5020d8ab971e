package tabular_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/facturaja/facturaja-bff/internal/tabular"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID      string
	Actor   string
	Action  string
	Company string
	At      time.Time
}

var base = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func rowSchema(pageSize int) tabular.Schema[row] {
	return tabular.Schema[row]{
		Searchable: func(r row) []string { return []string{r.Actor, r.Company, r.Action} },
		Categories: []tabular.Category[row]{
			{Name: "action", Value: func(r row) string { return r.Action }},
			{Name: "company", Value: func(r row) string { return r.Company }},
		},
		Date:     func(r row) time.Time { return r.At },
		Less:     func(a, b row) bool { return a.At.After(b.At) },
		ID:       func(r row) string { return r.ID },
		PageSize: pageSize,
	}
}

func makeRows(n int) []row {
	rows := make([]row, n)
	actions := []string{"CREATE", "UPDATE", "DELETE"}
	for i := range rows {
		rows[i] = row{
			ID:      fmt.Sprintf("r%03d", i+1),
			Actor:   fmt.Sprintf("user%d@acme.ao", i%4),
			Action:  actions[i%3],
			Company: []string{"Acme", "Kwanza Lda"}[i%2],
			At:      base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return rows
}

func ptr(t time.Time) *time.Time { return &t }

// ============================================================
// Filter Predicate Evaluator
// ============================================================

func TestMatch_BlankQueryAndAllSentinel(t *testing.T) {
	schema := rowSchema(10)
	r := row{Actor: "ana", Action: "CREATE", At: base}

	assert.True(t, schema.Match(r, tabular.Criteria{}))
	assert.True(t, schema.Match(r, tabular.Criteria{Query: "   "}))
	assert.True(t, schema.Match(r, tabular.Criteria{Categories: map[string]string{"action": tabular.All}}))
	assert.False(t, schema.Match(r, tabular.Criteria{Categories: map[string]string{"action": "DELETE"}}))
}

func TestMatch_QueryIsCaseInsensitive(t *testing.T) {
	schema := rowSchema(10)
	r := row{Actor: "Ana.Silva@Acme.ao", Company: "Acme", At: base}

	assert.True(t, schema.Match(r, tabular.Criteria{Query: "ana.silva"}))
	assert.True(t, schema.Match(r, tabular.Criteria{Query: "ACME"}))
	assert.False(t, schema.Match(r, tabular.Criteria{Query: "kwanza"}))
}

func TestMatch_DateBoundsCoverWholeDays(t *testing.T) {
	schema := rowSchema(10)
	day := time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

	early := row{At: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)}
	late := row{At: time.Date(2025, 3, 10, 23, 59, 59, 0, time.UTC)}
	nextDay := row{At: time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)}
	prevDay := row{At: time.Date(2025, 3, 9, 23, 59, 59, 0, time.UTC)}

	c := tabular.Criteria{From: ptr(day), To: ptr(day)}
	assert.True(t, schema.Match(early, c))
	assert.True(t, schema.Match(late, c))
	assert.False(t, schema.Match(nextDay, c))
	assert.False(t, schema.Match(prevDay, c))

	assert.True(t, schema.Match(nextDay, tabular.Criteria{From: ptr(day)}), "open upper bound")
	assert.True(t, schema.Match(prevDay, tabular.Criteria{To: ptr(day)}), "open lower bound")
}

func TestFilter_Idempotent(t *testing.T) {
	schema := rowSchema(10)
	rows := makeRows(60)
	c := tabular.Criteria{Query: "user1", Categories: map[string]string{"company": "Kwanza Lda"}}

	once := tabular.Filter(rows, schema, c)
	twice := tabular.Filter(once, schema, c)
	assert.Equal(t, once, twice)
}

func TestFilter_Monotonic(t *testing.T) {
	schema := rowSchema(10)
	rows := makeRows(120)

	wide := tabular.Criteria{From: ptr(base.Add(-100 * time.Hour)), To: ptr(base)}
	narrow := tabular.Criteria{From: ptr(base.Add(-40 * time.Hour)), To: ptr(base)}
	withText := narrow
	withText.Query = "user2"

	nWide := len(tabular.Filter(rows, schema, wide))
	nNarrow := len(tabular.Filter(rows, schema, narrow))
	nText := len(tabular.Filter(rows, schema, withText))

	assert.LessOrEqual(t, nNarrow, nWide)
	assert.LessOrEqual(t, nText, nNarrow)
	assert.LessOrEqual(t, nWide, len(rows))
}

func TestCriteriaEqual(t *testing.T) {
	a := tabular.Criteria{Query: "x", Categories: map[string]string{"action": "all"}}
	b := tabular.Criteria{Query: " x "}
	assert.True(t, a.Equal(b))

	c := tabular.Criteria{Query: "x", Categories: map[string]string{"action": "DELETE"}}
	assert.False(t, a.Equal(c))
	assert.False(t, c.Equal(a))

	d1 := tabular.Criteria{From: ptr(base)}
	d2 := tabular.Criteria{From: ptr(base.Add(time.Hour))}
	assert.True(t, d1.Equal(d2), "bounds on the same day select the same records")
	assert.False(t, d1.Equal(tabular.Criteria{}))
}

// ============================================================
// Pager
// ============================================================

func TestPager_Invariants(t *testing.T) {
	for count := 0; count <= 60; count++ {
		for size := 1; size <= 9; size++ {
			p := tabular.NewPager(count, size)
			want := (count + size - 1) / size
			if want < 1 {
				want = 1
			}
			require.Equal(t, want, p.TotalPages(), "count=%d size=%d", count, size)

			for page := 1; page <= p.TotalPages(); page++ {
				p.JumpTo(page)
				lo, hi := p.Bounds()
				wantLen := count - (page-1)*size
				if wantLen > size {
					wantLen = size
				}
				if wantLen < 0 {
					wantLen = 0
				}
				require.Equal(t, wantLen, hi-lo, "count=%d size=%d page=%d", count, size, page)
			}
		}
	}
}

func TestPager_Navigation(t *testing.T) {
	p := tabular.NewPager(45, 10)
	require.Equal(t, 5, p.TotalPages())

	p.Prev()
	assert.Equal(t, 1, p.Page(), "prev clamps at 1")
	p.Next()
	p.Next()
	assert.Equal(t, 3, p.Page())
	p.Last()
	assert.Equal(t, 5, p.Page())
	p.Next()
	assert.Equal(t, 5, p.Page(), "next clamps at last")
	p.JumpTo(99)
	assert.Equal(t, 5, p.Page())
	p.JumpTo(-3)
	assert.Equal(t, 1, p.Page())
	p.JumpTo(4)
	p.First()
	assert.Equal(t, 1, p.Page())
}

func TestPager_Empty(t *testing.T) {
	p := tabular.NewPager(0, 15)
	assert.Equal(t, 1, p.TotalPages())
	assert.Empty(t, tabular.Slice([]row{}, p))
}

func TestPager_ResizeClampsPage(t *testing.T) {
	p := tabular.NewPager(30, 10)
	p.Last()
	p.Resize(12)
	assert.Equal(t, 2, p.Page())
	p.Resize(25)
	assert.Equal(t, 2, p.Page())
}

// ============================================================
// View controller
// ============================================================

func TestView_AuditLogFirstPage(t *testing.T) {
	rows := makeRows(120)
	// shuffle the source order; the view sorts by timestamp desc
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	v := tabular.NewView(rowSchema(15))
	require.NoError(t, v.Load(context.Background(), func(context.Context) ([]row, error) { return rows, nil }))

	snap := v.Snapshot()
	assert.Equal(t, 8, snap.TotalPages)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 120, snap.Matched)
	require.Len(t, snap.Items, 15)
	for i, r := range snap.Items {
		assert.Equal(t, fmt.Sprintf("r%03d", i+1), r.ID)
	}
	for i := 1; i < len(snap.Items); i++ {
		assert.True(t, snap.Items[i-1].At.After(snap.Items[i].At))
	}
}

func TestView_ActionFilterResetsPage(t *testing.T) {
	var rows []row
	add := func(action string, n int) {
		for i := 0; i < n; i++ {
			rows = append(rows, row{ID: fmt.Sprintf("%s-%d", action, i), Action: action, At: base.Add(-time.Duration(len(rows)) * time.Minute)})
		}
	}
	add("DELETE", 3)
	add("CREATE", 5)
	add("UPDATE", 2)

	v := tabular.NewView(rowSchema(2))
	v.SetItems(rows)
	v.JumpTo(4)
	require.Equal(t, 4, v.Snapshot().Page)

	v.SetCategory("action", "DELETE")
	snap := v.Snapshot()
	assert.Equal(t, 3, snap.Matched)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 2, snap.TotalPages)
	for _, r := range v.Filtered() {
		assert.Equal(t, "DELETE", r.Action)
	}
}

func TestView_ApplyIgnoresPageWhenCriteriaChange(t *testing.T) {
	v := tabular.NewView(rowSchema(10))
	v.SetItems(makeRows(100))

	snap := v.Apply(tabular.Criteria{}, 4)
	assert.Equal(t, 4, snap.Page)

	snap = v.Apply(tabular.Criteria{Query: "user1"}, 4)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 25, snap.Matched)

	snap = v.Apply(tabular.Criteria{Query: "user1"}, 3)
	assert.Equal(t, 3, snap.Page)
}

func TestView_QueryPageSizeChangeResetsPage(t *testing.T) {
	v := tabular.NewView(rowSchema(10))
	v.SetItems(makeRows(100))

	snap := v.Query(tabular.Criteria{}, 5, 0)
	assert.Equal(t, 5, snap.Page)
	assert.Equal(t, 10, snap.PageSize)

	snap = v.Query(tabular.Criteria{}, 5, 25)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 4, snap.TotalPages)
	assert.Len(t, snap.Items, 25)

	snap = v.Query(tabular.Criteria{}, 3, 25)
	assert.Equal(t, 3, snap.Page)
}

func TestView_PageLeavesSharedStateAlone(t *testing.T) {
	v := tabular.NewView(rowSchema(10))
	v.SetItems(makeRows(100))

	a := v.Page(tabular.Criteria{}, 3, 0)
	assert.Equal(t, 3, a.Page)
	assert.Equal(t, "r021", a.Items[0].ID)

	b := v.Page(tabular.Criteria{Query: "user1"}, 1, 0)
	assert.Equal(t, 25, b.Matched)
	assert.Equal(t, 100, b.Total)

	a = v.Page(tabular.Criteria{}, 4, 0)
	assert.Equal(t, 4, a.Page, "another caller's criteria must not reset this page")
	assert.Equal(t, "r031", a.Items[0].ID)

	assert.True(t, v.Criteria().Equal(tabular.Criteria{}), "Page must not store criteria on the view")
	assert.Equal(t, 1, v.Snapshot().Page)
}

func TestView_PageClampsAndSizes(t *testing.T) {
	v := tabular.NewView(rowSchema(10))
	v.SetItems(makeRows(45))

	snap := v.Page(tabular.Criteria{}, 99, 20)
	assert.Equal(t, 3, snap.Page)
	assert.Equal(t, 3, snap.TotalPages)
	assert.Len(t, snap.Items, 5)

	snap = v.Page(tabular.Criteria{}, 0, 0)
	assert.Equal(t, 1, snap.Page)
	assert.Equal(t, 10, snap.PageSize)

	empty := v.Page(tabular.Criteria{Query: "nobody"}, 2, 0)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 1, empty.TotalPages)
	assert.Empty(t, empty.Items)
}

func TestView_FilteredByIgnoresActiveCriteria(t *testing.T) {
	v := tabular.NewView(rowSchema(5))
	v.SetItems(makeRows(40))
	v.SetCategory("company", "Acme")

	kwanza := v.FilteredBy(tabular.Criteria{Categories: map[string]string{"company": "Kwanza Lda"}})
	assert.Len(t, kwanza, 20)
	for _, r := range kwanza {
		assert.Equal(t, "Kwanza Lda", r.Company)
	}
	assert.Len(t, v.Filtered(), 20)
	assert.Equal(t, "Acme", v.Filtered()[0].Company)
}

func TestView_EveryFilterInputResetsPage(t *testing.T) {
	v := tabular.NewView(rowSchema(5))
	v.SetItems(makeRows(100))

	v.Last()
	v.SetQuery("user")
	assert.Equal(t, 1, v.Snapshot().Page)

	v.Last()
	v.SetDateRange(ptr(base.Add(-50*time.Hour)), nil)
	assert.Equal(t, 1, v.Snapshot().Page)

	v.Last()
	v.SetCategory("company", "Acme")
	assert.Equal(t, 1, v.Snapshot().Page)
}

func TestView_LoadDiscardsSupersededResult(t *testing.T) {
	v := tabular.NewView(rowSchema(10))

	started := make(chan struct{})
	firstErr := make(chan error, 1)
	go func() {
		firstErr <- v.Load(context.Background(), func(ctx context.Context) ([]row, error) {
			close(started)
			<-ctx.Done()
			return []row{{ID: "stale", At: base}}, nil
		})
	}()
	<-started

	fresh := []row{{ID: "fresh", At: base}}
	require.NoError(t, v.Load(context.Background(), func(context.Context) ([]row, error) { return fresh, nil }))

	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, tabular.ErrSuperseded)
	case <-time.After(2 * time.Second):
		t.Fatal("superseded load was not cancelled")
	}

	items := v.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "fresh", items[0].ID)
}

func TestView_LoadErrorKeepsPreviousItems(t *testing.T) {
	v := tabular.NewView(rowSchema(10))
	v.SetItems(makeRows(3))

	err := v.Load(context.Background(), func(context.Context) ([]row, error) { return nil, errors.New("boom") })
	require.Error(t, err)
	assert.Len(t, v.Items(), 3)
}

func TestView_Mutations(t *testing.T) {
	v := tabular.NewView(rowSchema(10))
	v.SetItems(makeRows(5))

	v.Upsert(row{ID: "new", Action: "CREATE", At: base.Add(time.Hour)})
	assert.Equal(t, "new", v.Snapshot().Items[0].ID)

	updated, err := v.Update("r002", func(r *row) error {
		r.Action = "DELETE"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "DELETE", updated.Action)

	_, err = v.Update("missing", func(*row) error { return nil })
	assert.ErrorIs(t, err, tabular.ErrNotInView)

	_, err = v.Update("r003", func(*row) error { return errors.New("rejected") })
	require.Error(t, err)
	got, _ := v.Find("r003")
	assert.Equal(t, "DELETE", got.Action, "r003 starts as DELETE and is left unchanged")

	assert.True(t, v.Remove("r001"))
	assert.False(t, v.Remove("r001"))
	assert.Equal(t, 5, v.Snapshot().Total)
}

// ============================================================
// CSV export
// ============================================================

func TestExport_FilteredRowsWithQuotes(t *testing.T) {
	rows := makeRows(40)
	rows[0].Actor = `Ana "Boss" Silva`

	v := tabular.NewView(rowSchema(5))
	v.SetItems(rows)
	v.SetCategory("company", "Acme")

	cols := []tabular.Column[row]{
		{Header: "id", Value: func(r row) string { return r.ID }},
		{Header: "actor", Value: func(r row) string { return r.Actor }},
		{Header: "action", Value: func(r row) string { return r.Action }},
	}

	var buf bytes.Buffer
	require.NoError(t, v.Export(&buf, cols))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 20+1, "header plus every filtered row, not just the visible page")
	assert.Equal(t, "id,actor,action", lines[0])
	assert.Equal(t, `r001,"Ana ""Boss"" Silva",CREATE`, lines[1])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	cols := []tabular.Column[row]{{Header: "id", Value: func(r row) string { return r.ID }}}
	require.NoError(t, tabular.WriteCSV(&buf, nil, cols))
	assert.Equal(t, "id\n", buf.String())
}
