package frontend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/softkom/site-manager/internal/apisrv/apitest"
	"github.com/softkom/site-manager/internal/dependency"
	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventsStub struct {
	dependency.Events
	events []entity.Event
	regs   []entity.EventRegistration
}

func (e *eventsStub) GetByID(ctx context.Context, id int) (*entity.Event, error) {
	for _, ev := range e.events {
		if ev.ID == id {
			out := ev
			return &out, nil
		}
	}
	return nil, gerr.ErrNotFound
}

func (e *eventsStub) Register(ctx context.Context, eventID int, reg *entity.EventRegistrationInsert) (int, error) {
	ev, err := e.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if !ev.IsPublished {
		return 0, gerr.ErrNotFound
	}
	id := len(e.regs) + 1
	e.regs = append(e.regs, entity.EventRegistration{
		ID:                      id,
		EventID:                 eventID,
		EventRegistrationInsert: *reg,
	})
	return id, nil
}

type callbacksStub struct {
	dependency.Callbacks
	added []entity.CallbackRequestInsert
}

func (c *callbacksStub) Add(ctx context.Context, cb *entity.CallbackRequestInsert) (int, error) {
	c.added = append(c.added, *cb)
	return len(c.added), nil
}

func newTestServer(repo *apitest.Repo, mailer *apitest.MailerMock) *httptest.Server {
	s := New(repo, mailer)
	r := chi.NewRouter()
	r.Route("/api/frontend", s.Routes)
	return httptest.NewServer(r)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestSubscribeLifecycle(t *testing.T) {
	subs := apitest.NewSubscribersMem(nil)
	mailer := &apitest.MailerMock{}
	ts := newTestServer(&apitest.Repo{SubscribersStore: subs}, mailer)
	defer ts.Close()

	// fresh address is created
	resp := postJSON(t, ts.URL+"/api/frontend/subscribers", map[string]string{"email": " Ivanov@Example.COM "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created entity.Subscriber
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "ivanov@example.com", created.Email)
	assert.True(t, created.IsActive)
	assert.Equal(t, []string{"ivanov@example.com"}, mailer.Subscriptions)

	// second attempt while active conflicts
	resp = postJSON(t, ts.URL+"/api/frontend/subscribers", map[string]string{"email": "ivanov@example.com"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// unsubscribe keeps the row but flips it off
	req, _ := http.NewRequest(http.MethodPatch, ts.URL+"/api/frontend/subscribers/1", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var unsubbed entity.Subscriber
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&unsubbed))
	resp.Body.Close()
	assert.False(t, unsubbed.IsActive)

	// a second unsubscribe is rejected
	req, _ = http.NewRequest(http.MethodPatch, ts.URL+"/api/frontend/subscribers/1", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// coming back reactivates instead of creating a duplicate
	resp = postJSON(t, ts.URL+"/api/frontend/subscribers", map[string]string{"email": "ivanov@example.com"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var msg map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&msg))
	resp.Body.Close()
	assert.Equal(t, "Successfully resubscribed", msg["message"])
}

func TestSubscribeRejectsBadInput(t *testing.T) {
	subs := apitest.NewSubscribersMem(nil)
	ts := newTestServer(&apitest.Repo{SubscribersStore: subs}, &apitest.MailerMock{})
	defer ts.Close()

	for _, email := range []string{"", "nope", "a@b", "has space@example.com"} {
		resp := postJSON(t, ts.URL+"/api/frontend/subscribers", map[string]string{"email": email})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "email %q", email)
		resp.Body.Close()
	}

	resp, err := http.Post(ts.URL+"/api/frontend/subscribers", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestUnsubscribeUnknownID(t *testing.T) {
	ts := newTestServer(&apitest.Repo{SubscribersStore: apitest.NewSubscribersMem(nil)}, &apitest.MailerMock{})
	defer ts.Close()

	patch := func(path string) *http.Response {
		req, _ := http.NewRequest(http.MethodPatch, ts.URL+path, nil)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		return resp
	}

	resp := patch("/api/frontend/subscribers/99")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// the long form from old newsletter footers still answers
	resp = patch("/api/frontend/subscribers/99/unsubscribe")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// ids that parse but match nothing are a 404, not a 400
	resp = patch("/api/frontend/subscribers/0")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = patch("/api/frontend/subscribers/-5")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = patch("/api/frontend/subscribers/abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRegisterForEvent(t *testing.T) {
	events := &eventsStub{events: []entity.Event{
		{ID: 1, EventInsert: entity.EventInsert{Title: "1C seminar", StartsAt: time.Now(), IsPublished: true}},
		{ID: 2, EventInsert: entity.EventInsert{Title: "draft", StartsAt: time.Now(), IsPublished: false}},
	}}
	mailer := &apitest.MailerMock{}
	ts := newTestServer(&apitest.Repo{EventsStore: events}, mailer)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/frontend/events/1/registrations", map[string]string{
		"name":  "Petrov",
		"email": "petrov@example.com",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	require.Len(t, events.regs, 1)
	assert.Equal(t, []string{"petrov@example.com"}, mailer.Registrations)

	// unpublished events are invisible to the public
	resp = postJSON(t, ts.URL+"/api/frontend/events/2/registrations", map[string]string{
		"name":  "Petrov",
		"email": "petrov@example.com",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, ts.URL+"/api/frontend/events/1/registrations", map[string]string{
		"name":  "Petrov",
		"email": "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestRequestCallback(t *testing.T) {
	callbacks := &callbacksStub{}
	ts := newTestServer(&apitest.Repo{CallbacksStore: callbacks}, &apitest.MailerMock{})
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/api/frontend/callbacks", map[string]string{
		"name":  "Sidorov",
		"phone": "+7 900 000-00-00",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
	require.Len(t, callbacks.added, 1)
	assert.Equal(t, "Sidorov", callbacks.added[0].Name)

	// phone is required
	resp = postJSON(t, ts.URL+"/api/frontend/callbacks", map[string]string{"name": "Sidorov"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
