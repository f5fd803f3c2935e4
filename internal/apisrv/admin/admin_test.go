package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/softkom/site-manager/internal/apisrv/apitest"
	"github.com/softkom/site-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedSubscribers(n int) []entity.Subscriber {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	subs := make([]entity.Subscriber, 0, n)
	for i := 1; i <= n; i++ {
		subs = append(subs, entity.Subscriber{
			ID:        i,
			Email:     fmt.Sprintf("user%02d@example.com", i),
			IsActive:  i%2 == 1,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	return subs
}

func newTestServer(repo *apitest.Repo) (*httptest.Server, *apitest.MailerMock) {
	mailer := &apitest.MailerMock{}
	s := New(repo, mailer)
	r := chi.NewRouter()
	r.Route("/api/admin", s.Routes)
	return httptest.NewServer(r), mailer
}

func getSubscribers(t *testing.T, ts *httptest.Server, query string) (*http.Response, []entity.Subscriber) {
	t.Helper()
	resp, err := http.Get(ts.URL + "/api/admin/subscribers" + query)
	require.NoError(t, err)
	if resp.StatusCode != http.StatusOK {
		return resp, nil
	}
	var subs []entity.Subscriber
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&subs))
	resp.Body.Close()
	return resp, subs
}

func TestSubscriberGridPagination(t *testing.T) {
	repo := &apitest.Repo{SubscribersStore: apitest.NewSubscribersMem(seedSubscribers(25))}
	ts, _ := newTestServer(repo)
	defer ts.Close()

	// full window: defaults cover all 25 rows
	resp, subs := getSubscribers(t, ts, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, subs, 25)
	assert.Equal(t, "25", resp.Header.Get("X-Total-Count"))
	assert.Contains(t, resp.Header.Get("Access-Control-Expose-Headers"), "X-Total-Count")

	// middle window
	resp, subs = getSubscribers(t, ts, "?_start=10&_end=20&_sort=id&_order=asc")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, subs, 10)
	assert.Equal(t, 11, subs[0].ID)
	assert.Equal(t, 20, subs[9].ID)
	assert.Equal(t, "25", resp.Header.Get("X-Total-Count"))

	// last short page
	resp, subs = getSubscribers(t, ts, "?_start=20&_end=30&_sort=id&_order=asc")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, subs, 5)
	assert.Equal(t, "25", resp.Header.Get("X-Total-Count"))

	// past the end
	resp, subs = getSubscribers(t, ts, "?_start=30&_end=40")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, subs, 0)
	assert.Equal(t, "25", resp.Header.Get("X-Total-Count"))

	// zero-width window: empty page, the total still counts
	resp, subs = getSubscribers(t, ts, "?_start=5&_end=5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, subs, 0)
	assert.Equal(t, "25", resp.Header.Get("X-Total-Count"))

	// malformed window fails loudly
	resp, _ = getSubscribers(t, ts, "?_start=abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp, _ = getSubscribers(t, ts, "?_start=20&_end=10")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSubscriberGridSortAndFilter(t *testing.T) {
	repo := &apitest.Repo{SubscribersStore: apitest.NewSubscribersMem(seedSubscribers(25))}
	ts, _ := newTestServer(repo)
	defer ts.Close()

	// the grid alias resolves to the created_at column
	resp, subs := getSubscribers(t, ts, "?_sort=subscribedAt&_order=desc&_end=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, subs, 1)
	assert.Equal(t, 25, subs[0].ID)

	// unknown sort keys degrade to the default instead of erroring
	resp, subs = getSubscribers(t, ts, "?_sort=password_hash&_order=desc&_end=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, subs, 1)
	assert.Equal(t, 25, subs[0].ID)

	// only 13 of the 25 seeds are active
	resp, subs = getSubscribers(t, ts, "?isActive=true")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, subs, 13)
	assert.Equal(t, "13", resp.Header.Get("X-Total-Count"))

	resp, _ = getSubscribers(t, ts, "?isActive=maybe")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// search narrows by email substring
	resp, subs = getSubscribers(t, ts, "?q=user07")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, subs, 1)
	assert.Equal(t, "user07@example.com", subs[0].Email)
}

func TestSubscriberUpdate(t *testing.T) {
	repo := &apitest.Repo{SubscribersStore: apitest.NewSubscribersMem(seedSubscribers(3))}
	ts, _ := newTestServer(repo)
	defer ts.Close()

	update := func(method string, id int, body any) *http.Response {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req, _ := http.NewRequest(method, fmt.Sprintf("%s/api/admin/subscribers/%d", ts.URL, id), bytes.NewReader(b))
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	// plain email change
	resp := update(http.MethodPatch, 1, map[string]any{"email": "New01@Example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sub entity.Subscriber
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sub))
	resp.Body.Close()
	assert.Equal(t, "new01@example.com", sub.Email)

	// PUT stays as an alias for older clients
	resp = update(http.MethodPut, 1, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sub))
	resp.Body.Close()
	assert.False(t, sub.IsActive)

	// taking another subscriber's email is a conflict
	resp = update(http.MethodPatch, 1, map[string]any{"email": "user02@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// invalid email
	resp = update(http.MethodPatch, 1, map[string]any{"email": "broken"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// unknown id
	resp = update(http.MethodPatch, 44, map[string]any{"isActive": false})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestSubscriberDelete(t *testing.T) {
	repo := &apitest.Repo{SubscribersStore: apitest.NewSubscribersMem(seedSubscribers(2))}
	ts, _ := newTestServer(repo)
	defer ts.Close()

	del := func(id string) *http.Response {
		req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/admin/subscribers/"+id, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := del("1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// already gone
	resp = del("1")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// an id that parses but matches nothing is a 404, not a 400
	resp = del("0")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = del("zero")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestSendNewsletter(t *testing.T) {
	// odd ids are active: 3 of the 5 seeds
	repo := &apitest.Repo{SubscribersStore: apitest.NewSubscribersMem(seedSubscribers(5))}
	ts, mailer := newTestServer(repo)
	defer ts.Close()

	send := func(body any) *http.Response {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		resp, err := http.Post(ts.URL+"/api/admin/newsletters", "application/json", bytes.NewReader(b))
		require.NoError(t, err)
		return resp
	}

	resp := send(map[string]string{"subject": "Акции августа", "html": "<p>Скидки на ИТС</p>"})
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var body struct {
		Recipients int `json:"recipients"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, 3, body.Recipients)
	assert.ElementsMatch(t, []string{
		"user01@example.com", "user03@example.com", "user05@example.com",
	}, mailer.Newsletters)

	resp = send(map[string]string{"subject": "", "html": "<p>x</p>"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = send(map[string]string{"subject": "s", "html": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestGetSubscriber(t *testing.T) {
	repo := &apitest.Repo{SubscribersStore: apitest.NewSubscribersMem(seedSubscribers(1))}
	ts, _ := newTestServer(repo)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/admin/subscribers/1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sub entity.Subscriber
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sub))
	resp.Body.Close()
	assert.Equal(t, "user01@example.com", sub.Email)

	resp, err = http.Get(ts.URL + "/api/admin/subscribers/2")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
