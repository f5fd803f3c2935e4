package client

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// DefaultDebounce is how long the controller waits after the last filter
// keystroke before it reloads.
const DefaultDebounce = 300 * time.Millisecond

// FetchFunc loads one page: limit rows starting at offset, filtered by query.
// It returns the page and the total row count across all pages.
type FetchFunc[T any] func(ctx context.Context, limit, offset int, query url.Values) ([]T, int, error)

// ListController drives an incrementally loaded, filterable list the way the
// back-office grid does: filter edits are debounced into a reload from the
// top, LoadMore appends the next page, and a page shorter than the page size
// marks the list exhausted. Only one request is in flight at a time; LoadMore
// calls during a load are dropped rather than queued.
type ListController[T any] struct {
	fetch    FetchFunc[T]
	pageSize int
	debounce time.Duration

	mu        sync.Mutex
	query     url.Values
	items     []T
	total     int
	exhausted bool
	loading   bool
	timer     *time.Timer
	onUpdate  func([]T, int)
	lastErr   error
}

// NewListController builds a controller around fetch. onUpdate, if not nil,
// runs after every completed load with the full item set and the total.
func NewListController[T any](fetch FetchFunc[T], pageSize int, onUpdate func([]T, int)) *ListController[T] {
	return &ListController[T]{
		fetch:    fetch,
		pageSize: pageSize,
		debounce: DefaultDebounce,
		query:    url.Values{},
		onUpdate: onUpdate,
	}
}

// SetDebounce overrides the debounce window. Zero disables debouncing, which
// tests rely on.
func (lc *ListController[T]) SetDebounce(d time.Duration) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.debounce = d
}

// SetFilter updates one filter value and schedules a reload. Rapid successive
// calls collapse into a single reload after the debounce window.
func (lc *ListController[T]) SetFilter(ctx context.Context, key, value string) {
	lc.mu.Lock()
	if value == "" {
		lc.query.Del(key)
	} else {
		lc.query.Set(key, value)
	}

	if lc.debounce == 0 {
		lc.mu.Unlock()
		lc.Reload(ctx)
		return
	}

	if lc.timer != nil {
		lc.timer.Stop()
	}
	lc.timer = time.AfterFunc(lc.debounce, func() {
		lc.Reload(ctx)
	})
	lc.mu.Unlock()
}

// Reload throws away loaded items and fetches the first page.
func (lc *ListController[T]) Reload(ctx context.Context) {
	lc.mu.Lock()
	if lc.loading {
		lc.mu.Unlock()
		return
	}
	lc.loading = true
	lc.items = nil
	lc.exhausted = false
	query := cloneQuery(lc.query)
	lc.mu.Unlock()

	lc.load(ctx, 0, query)
}

// LoadMore appends the next page. It is a no-op while a load is in flight or
// once the list is exhausted.
func (lc *ListController[T]) LoadMore(ctx context.Context) {
	lc.mu.Lock()
	if lc.loading || lc.exhausted {
		lc.mu.Unlock()
		return
	}
	lc.loading = true
	offset := len(lc.items)
	query := cloneQuery(lc.query)
	lc.mu.Unlock()

	lc.load(ctx, offset, query)
}

func (lc *ListController[T]) load(ctx context.Context, offset int, query url.Values) {
	page, total, err := lc.fetch(ctx, lc.pageSize, offset, query)

	lc.mu.Lock()
	lc.loading = false
	lc.lastErr = err
	if err != nil {
		lc.mu.Unlock()
		return
	}
	lc.items = append(lc.items, page...)
	lc.total = total
	if len(page) < lc.pageSize {
		lc.exhausted = true
	}
	items := lc.items
	onUpdate := lc.onUpdate
	lc.mu.Unlock()

	if onUpdate != nil {
		onUpdate(items, total)
	}
}

// Items returns the currently loaded rows.
func (lc *ListController[T]) Items() []T {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.items
}

// Total returns the last reported total row count.
func (lc *ListController[T]) Total() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.total
}

// Exhausted reports whether every row has been loaded.
func (lc *ListController[T]) Exhausted() bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.exhausted
}

// Err returns the error of the last load, if any.
func (lc *ListController[T]) Err() error {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.lastErr
}

func cloneQuery(q url.Values) url.Values {
	out := url.Values{}
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
