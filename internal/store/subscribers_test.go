package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/softkom/site-manager/internal/entity"
	gerr "github.com/softkom/site-manager/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore connects to the database named by MYSQL_TEST_DSN. Tests that
// need a real database are skipped when it is unset.
func newTestStore(t *testing.T) *MYSQLStore {
	t.Helper()
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN is not set")
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	ms, err := New(ctx, Config{
		DSN:                dsn,
		Automigrate:        true,
		MaxOpenConnections: 5,
		MaxIdleConnections: 5,
	})
	require.NoError(t, err)
	return ms
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func TestSubscribeLifecycle(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()
	subs := ms.Subscribers()
	email := uniqueEmail("lifecycle")

	sub, reactivated, err := subs.Subscribe(ctx, email)
	require.NoError(t, err)
	assert.False(t, reactivated)
	assert.True(t, sub.IsActive)
	assert.Equal(t, email, sub.Email)
	t.Cleanup(func() { _ = subs.Delete(context.Background(), sub.ID) })

	// second subscribe while active conflicts
	_, _, err = subs.Subscribe(ctx, email)
	assert.ErrorIs(t, err, gerr.ErrAlreadySubscribed)

	// soft delete keeps the row
	unsubbed, err := subs.Unsubscribe(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, unsubbed.IsActive)

	got, err := subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = subs.Unsubscribe(ctx, sub.ID)
	assert.ErrorIs(t, err, gerr.ErrAlreadyUnsubscribed)

	// the rejected second unsubscribe touched nothing
	same, err := subs.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, same.CreatedAt.Equal(got.CreatedAt))

	// returning address reactivates the same row with a fresh created_at
	resub, reactivated, err := subs.Subscribe(ctx, email)
	require.NoError(t, err)
	assert.True(t, reactivated)
	assert.Equal(t, sub.ID, resub.ID)
	assert.True(t, resub.IsActive)
	assert.True(t, resub.CreatedAt.After(sub.CreatedAt))
}

func TestSubscriberNotFound(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()
	subs := ms.Subscribers()

	_, err := subs.GetByID(ctx, -1)
	assert.ErrorIs(t, err, gerr.ErrNotFound)

	_, err = subs.Unsubscribe(ctx, -1)
	assert.ErrorIs(t, err, gerr.ErrNotFound)

	err = subs.Delete(ctx, -1)
	assert.ErrorIs(t, err, gerr.ErrNotFound)

	_, err = subs.Update(ctx, -1, entity.SubscriberUpdate{})
	assert.ErrorIs(t, err, gerr.ErrNotFound)
}

func TestSubscriberUpdateEmailConflict(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()
	subs := ms.Subscribers()

	a, _, err := subs.Subscribe(ctx, uniqueEmail("upd-a"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = subs.Delete(context.Background(), a.ID) })

	b, _, err := subs.Subscribe(ctx, uniqueEmail("upd-b"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = subs.Delete(context.Background(), b.ID) })

	_, err = subs.Update(ctx, a.ID, entity.SubscriberUpdate{Email: &b.Email})
	assert.ErrorIs(t, err, gerr.ErrEmailTaken)

	// updating to your own email is fine
	upd, err := subs.Update(ctx, a.ID, entity.SubscriberUpdate{Email: &a.Email})
	require.NoError(t, err)
	assert.Equal(t, a.Email, upd.Email)

	inactive := false
	upd, err = subs.Update(ctx, a.ID, entity.SubscriberUpdate{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, upd.IsActive)
}

func TestSubscriberListPaged(t *testing.T) {
	ms := newTestStore(t)
	ctx := context.Background()
	subs := ms.Subscribers()

	seeded := make([]entity.Subscriber, 0, 5)
	for i := 0; i < 5; i++ {
		s, _, err := subs.Subscribe(ctx, uniqueEmail(fmt.Sprintf("page-%d", i)))
		require.NoError(t, err)
		seeded = append(seeded, *s)
		t.Cleanup(func() { _ = subs.Delete(context.Background(), s.ID) })
	}

	page, total, err := subs.ListPaged(ctx, 2, 0, "id", entity.Descending,
		entity.SubscriberFilters{Search: "page-"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, total, 5)
	assert.Len(t, page, 2)

	// filter down to a single row
	one, total, err := subs.ListPaged(ctx, 10, 0, "id", entity.Ascending,
		entity.SubscriberFilters{Search: seeded[0].Email})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, one, 1)
	assert.Equal(t, seeded[0].ID, one[0].ID)

	active := true
	_, _, err = subs.ListPaged(ctx, 10, 0, "created_at", entity.Descending,
		entity.SubscriberFilters{IsActive: &active})
	require.NoError(t, err)
}
