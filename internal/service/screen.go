package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/facturaja/facturaja-bff/internal/domain"
	"github.com/facturaja/facturaja-bff/internal/infra/observability"
	"github.com/facturaja/facturaja-bff/internal/port"
	"github.com/facturaja/facturaja-bff/internal/tabular"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var screenTracer = otel.Tracer("service/screen")

// FallbackNotice is shown when a live screen had to switch to placeholder data.
const FallbackNotice = "Não foi possível carregar os dados do servidor. A mostrar dados de demonstração."

// ListQuery is one list request: filter criteria plus paging.
type ListQuery struct {
	Criteria tabular.Criteria
	Page     int
	PageSize int
	Refresh  bool
}

// ScreenDeps are the collaborators every screen shares.
type ScreenDeps struct {
	Resources port.Resources
	Views     port.Cache[any]
	Metrics   *observability.Metrics
	Logger    *zap.Logger
	// DemoMode serves placeholder data even to signed-in users.
	DemoMode bool
}

// screenState is the cached per-session state of one screen.
type screenState[T any] struct {
	view  *tabular.View[T]
	loads singleflight.Group

	mu     sync.Mutex
	demo   bool
	notice string
}

func (s *screenState[T]) mode() (demo bool, notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.demo, s.notice
}

func (s *screenState[T]) setMode(demo bool, notice string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.demo, s.notice = demo, notice
}

// Screen binds a tabular view to a backend resource and a placeholder
// collection. One loaded view is cached per session and screen, so filter
// and page changes never refetch.
type Screen[T any] struct {
	name        string
	resource    string
	schema      tabular.Schema[T]
	columns     []tabular.Column[T]
	placeholder func() []T
	deps        ScreenDeps
}

// NewScreen creates a screen. resource is the backend path under /api/.
func NewScreen[T any](name, resource string, schema tabular.Schema[T], columns []tabular.Column[T], placeholder func() []T, deps ScreenDeps) *Screen[T] {
	return &Screen[T]{
		name:        name,
		resource:    resource,
		schema:      schema,
		columns:     columns,
		placeholder: placeholder,
		deps:        deps,
	}
}

// Name is the screen's key in caches, metrics and export file names.
func (s *Screen[T]) Name() string { return s.name }

func viewKey(sess *domain.Session, screen string) string {
	sid := "anonymous"
	if sess != nil {
		sid = sess.ID
	}
	return "view:" + sid + ":" + screen
}

// ViewPrefix is the cache key prefix of every view owned by a session.
func ViewPrefix(sessionID string) string {
	return "view:" + sessionID + ":"
}

// state returns the screen's cached state for sess, loading it when new,
// when refresh is set or when a previous load never completed.
func (s *Screen[T]) state(ctx context.Context, sess *domain.Session, refresh bool) (*screenState[T], error) {
	v, created := s.deps.Views.GetOrCreate(viewKey(sess, s.name), func() any {
		return &screenState[T]{view: tabular.NewView(s.schema)}
	})
	st := v.(*screenState[T])

	if created {
		s.deps.Metrics.IncrCacheMiss(s.name)
	} else {
		s.deps.Metrics.IncrCacheHit(s.name)
	}

	if created || refresh || !st.view.Loaded() {
		if err := s.loadOnce(ctx, sess, st, refresh); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// loadOnce runs at most one load per state. Callers arriving while a load is
// in flight wait for it instead of starting their own. The shared load is not
// tied to the first caller's cancellation; each caller stops waiting when its
// own context is done.
func (s *Screen[T]) loadOnce(ctx context.Context, sess *domain.Session, st *screenState[T], refresh bool) error {
	ch := st.loads.DoChan("load", func() (any, error) {
		if !refresh && st.view.Loaded() {
			return nil, nil
		}
		return nil, s.load(context.WithoutCancel(ctx), sess, st)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Screen[T]) load(ctx context.Context, sess *domain.Session, st *screenState[T]) error {
	ctx, span := screenTracer.Start(ctx, "Screen.Load")
	defer span.End()
	span.SetAttributes(attribute.String("screen", s.name))

	if sess == nil || s.deps.DemoMode {
		st.view.SetItems(s.placeholder())
		st.setMode(true, "")
		s.deps.Metrics.IncrDemoFallback(s.name)
		return nil
	}

	err := st.view.Load(ctx, func(ctx context.Context) ([]T, error) {
		var items []T
		if err := s.deps.Resources.List(ctx, sess.UpstreamToken, s.resource, &items); err != nil {
			return nil, err
		}
		return items, nil
	})
	switch {
	case err == nil:
		st.setMode(false, "")
		return nil
	case errors.Is(err, tabular.ErrSuperseded):
		if st.view.Loaded() {
			return nil
		}
		return err
	case errors.Is(err, context.Canceled):
		return err
	case isUpstreamUnauthorized(err):
		return &domain.ErrUnauthorized{Message: "Sessão expirada no servidor de faturação"}
	}

	s.deps.Logger.Warn("screen: backend list failed, serving placeholder data",
		zap.String("screen", s.name),
		zap.String("session_id", sess.ID),
		zap.Error(err),
	)
	span.RecordError(err)
	st.view.SetItems(s.placeholder())
	st.setMode(true, FallbackNotice)
	s.deps.Metrics.IncrDemoFallback(s.name)
	return nil
}

func isUpstreamUnauthorized(err error) bool {
	var upstream *domain.ErrUpstreamStatus
	return errors.As(err, &upstream) && upstream.Status == 401
}

// List returns one page of the screen for q. Criteria and page belong to the
// request; the cached view only holds the collection.
func (s *Screen[T]) List(ctx context.Context, sess *domain.Session, q ListQuery) (*domain.PageResponse[T], error) {
	ctx, span := screenTracer.Start(ctx, "Screen.List")
	defer span.End()
	span.SetAttributes(attribute.String("screen", s.name))

	st, err := s.state(ctx, sess, q.Refresh)
	if err != nil {
		return nil, err
	}

	snap := st.view.Page(q.Criteria, q.Page, q.PageSize)
	demo, notice := st.mode()

	data := snap.Items
	if data == nil {
		data = []T{}
	}
	return &domain.PageResponse[T]{
		Data:       data,
		Page:       snap.Page,
		TotalPages: snap.TotalPages,
		PageSize:   snap.PageSize,
		Matched:    snap.Matched,
		Total:      snap.Total,
		Demo:       demo,
		Notice:     notice,
	}, nil
}

// Export writes every record matching c as CSV.
func (s *Screen[T]) Export(ctx context.Context, sess *domain.Session, c tabular.Criteria, w io.Writer) error {
	ctx, span := screenTracer.Start(ctx, "Screen.Export")
	defer span.End()
	span.SetAttributes(attribute.String("screen", s.name))

	st, err := s.state(ctx, sess, false)
	if err != nil {
		return err
	}
	if err := tabular.WriteCSV(w, st.view.FilteredBy(c), s.columns); err != nil {
		return err
	}
	s.deps.Metrics.IncrExport(s.name)
	return nil
}

// live reports whether mutations must go to the backend. Placeholder views
// are edited in memory only.
func (s *Screen[T]) live(sess *domain.Session, st *screenState[T]) bool {
	demo, _ := st.mode()
	return sess != nil && !demo
}

// find returns a record by id from the view, asking the backend when a live
// view does not hold it.
func (s *Screen[T]) find(ctx context.Context, sess *domain.Session, st *screenState[T], id string) (T, error) {
	if item, ok := st.view.Find(id); ok {
		return item, nil
	}
	var item T
	if !s.live(sess, st) {
		return item, &domain.ErrNotFound{Resource: s.resource, ID: id}
	}
	if err := s.deps.Resources.Get(ctx, sess.UpstreamToken, s.resource, id, &item); err != nil {
		return item, err
	}
	return item, nil
}

// Get returns one record of the screen.
func (s *Screen[T]) Get(ctx context.Context, sess *domain.Session, id string) (T, error) {
	st, err := s.state(ctx, sess, false)
	if err != nil {
		var zero T
		return zero, err
	}
	return s.find(ctx, sess, st, id)
}

// create stores a new record. fresh is used as-is in placeholder views and
// sent to the backend otherwise; the stored record then replaces it.
func (s *Screen[T]) create(ctx context.Context, sess *domain.Session, fresh T) (T, error) {
	st, err := s.state(ctx, sess, false)
	if err != nil {
		return fresh, err
	}
	if !s.live(sess, st) {
		st.view.Upsert(fresh)
		return fresh, nil
	}

	var stored T
	if err := s.deps.Resources.Create(ctx, sess.UpstreamToken, s.resource, fresh, &stored); err != nil {
		return fresh, err
	}
	if s.schema.ID(stored) == "" {
		return fresh, &domain.ErrExternalService{Service: "backend", Err: errors.New("created record has no id")}
	}
	st.view.Upsert(stored)
	return stored, nil
}

// modify loads the record with id, applies fn to a copy and persists it.
func (s *Screen[T]) modify(ctx context.Context, sess *domain.Session, id string, fn func(*T) error) (T, error) {
	st, err := s.state(ctx, sess, false)
	if err != nil {
		var zero T
		return zero, err
	}
	current, err := s.find(ctx, sess, st, id)
	if err != nil {
		return current, err
	}

	next := current
	if err := fn(&next); err != nil {
		return current, err
	}
	if !s.live(sess, st) {
		st.view.Upsert(next)
		return next, nil
	}

	var stored T
	if err := s.deps.Resources.Update(ctx, sess.UpstreamToken, s.resource, id, next, &stored); err != nil {
		return current, err
	}
	if s.schema.ID(stored) == "" {
		stored = next
	}
	st.view.Upsert(stored)
	return stored, nil
}

// remove deletes the record with id.
func (s *Screen[T]) remove(ctx context.Context, sess *domain.Session, id string) error {
	st, err := s.state(ctx, sess, false)
	if err != nil {
		return err
	}
	if s.live(sess, st) {
		if err := s.deps.Resources.Delete(ctx, sess.UpstreamToken, s.resource, id); err != nil {
			return err
		}
		st.view.Remove(id)
		return nil
	}
	if !st.view.Remove(id) {
		return &domain.ErrNotFound{Resource: s.resource, ID: id}
	}
	return nil
}

// items returns the whole collection of the screen for sess.
func (s *Screen[T]) items(ctx context.Context, sess *domain.Session) ([]T, bool, string, error) {
	st, err := s.state(ctx, sess, false)
	if err != nil {
		return nil, false, "", err
	}
	demo, notice := st.mode()
	return st.view.Items(), demo, notice, nil
}
