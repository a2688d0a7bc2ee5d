package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
	"github.com/kevinaaaquil/library/backend/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewBolt(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err, "failed to open test store")
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

// conflictingStore fails the next `remaining` Apply calls with a version conflict.
type conflictingStore struct {
	store.Store
	remaining int
	applies   int
}

func (s *conflictingStore) Apply(ctx context.Context, writes ...store.Write) error {
	s.applies++
	if s.remaining > 0 {
		s.remaining--
		return store.ErrVersionConflict
	}
	return s.Store.Apply(ctx, writes...)
}

type fixture struct {
	store      store.Store
	clock      *fakeClock
	catalog    *service.Catalog
	membership *service.Membership
	lending    *service.Lending
	reporting  *service.Reporting
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, newTestStore(t), 3)
}

func newFixtureWithStore(t *testing.T, s store.Store, retries int) *fixture {
	t.Helper()
	clock := newFakeClock()
	opts := service.Options{Now: clock.Now, MaxRetries: retries}
	return &fixture{
		store:      s,
		clock:      clock,
		catalog:    service.NewCatalog(s, opts),
		membership: service.NewMembership(s, opts),
		lending:    service.NewLending(s, service.DefaultLendingPolicy(), opts),
		reporting:  service.NewReporting(s, opts),
	}
}

func (f *fixture) addBook(t *testing.T, isbn string, copies int) *models.Book {
	t.Helper()
	b, err := f.catalog.Create(context.Background(), models.BookInput{
		Title: "Title " + isbn, Author: "Author", ISBN: isbn, Category: "Fiction", TotalCopies: copies,
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) addMember(t *testing.T, email string) *models.Member {
	t.Helper()
	m, err := f.membership.Create(context.Background(), models.MemberInput{
		Name: "Member " + email, Email: email, Phone: "555-0100",
	})
	require.NoError(t, err)
	return m
}

func (f *fixture) book(t *testing.T, id string) models.Book {
	t.Helper()
	b, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return *b
}

func requireReason(t *testing.T, err error, kind error, reason string) {
	t.Helper()
	require.ErrorIs(t, err, kind)
	var serr *service.Error
	require.True(t, errors.As(err, &serr), "expected *service.Error, got %T", err)
	require.Equal(t, reason, serr.Reason)
}
