package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

func TestList(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		start, _ := strconv.Atoi(r.URL.Query().Get("_start"))
		end, _ := strconv.Atoi(r.URL.Query().Get("_end"))

		rows := make([]row, 0, end-start)
		for i := start; i < end && i < 25; i++ {
			rows = append(rows, row{ID: i + 1, Email: "u@example.com"})
		}
		w.Header().Set("X-Total-Count", "25")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	c := New(srv.URL, WithAuthToken("tok123"))
	rows, total, err := List[row](context.Background(), c, "/api/admin/subscribers", url.Values{"q": {"u"}}, 10, 20)
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, 25, total)
	require.Len(t, rows, 10)
	assert.Equal(t, 11, rows[0].ID)
}

func TestListErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, _, err := List[row](context.Background(), c, "/api/admin/subscribers", nil, 0, 10)
	assert.Error(t, err)
}

func TestListControllerOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start, _ := strconv.Atoi(r.URL.Query().Get("_start"))
		end, _ := strconv.Atoi(r.URL.Query().Get("_end"))

		rows := make([]row, 0, end-start)
		for i := start; i < end && i < 12; i++ {
			rows = append(rows, row{ID: i + 1})
		}
		w.Header().Set("X-Total-Count", "12")
		json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	c := New(srv.URL)
	fetch := func(ctx context.Context, limit, offset int, query url.Values) ([]row, int, error) {
		return List[row](ctx, c, "/api/admin/subscribers", query, offset, offset+limit)
	}

	lc := NewListController(FetchFunc[row](fetch), 10, nil)
	lc.SetDebounce(0)
	ctx := context.Background()

	lc.Reload(ctx)
	require.NoError(t, lc.Err())
	assert.Len(t, lc.Items(), 10)
	assert.Equal(t, 12, lc.Total())

	lc.LoadMore(ctx)
	assert.Len(t, lc.Items(), 12)
	assert.True(t, lc.Exhausted())
}
