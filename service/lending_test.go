package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/service"
	"github.com/kevinaaaquil/library/backend/store"
)

func TestIssueAndReturnScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	book, err := f.catalog.Create(ctx, models.BookInput{Title: "A", Author: "X", ISBN: "111", Category: "c", TotalCopies: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, book.AvailableCopies)
	member := f.addMember(t, "m@example.com")

	tx, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.NoError(t, err)
	assert.Equal(t, models.StatusIssued, tx.Status)
	assert.Nil(t, tx.ReturnDate)
	assert.Zero(t, tx.Fine)
	assert.Equal(t, f.clock.Now(), tx.IssueDate)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), tx.DueDate)

	issued := f.book(t, book.ID)
	assert.Equal(t, 0, issued.AvailableCopies)
	assert.Equal(t, 1, issued.IssuedCopies)

	returned, err := f.lending.Return(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	back := f.book(t, book.ID)
	assert.Equal(t, 1, back.AvailableCopies)
	assert.Equal(t, 0, back.IssuedCopies)
}

func TestIssuePreconditionsInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 1)
	_, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.NoError(t, err)

	_, err = f.lending.Issue(ctx, models.IssueRequest{BookID: "missing", MemberID: "missing"})
	requireReason(t, err, service.ErrNotFound, service.ReasonBook)

	// Availability is checked before the member.
	_, err = f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: "missing"})
	requireReason(t, err, service.ErrInvalidState, service.ReasonBookUnavailable)

	other := f.addBook(t, "222", 1)
	_, err = f.lending.Issue(ctx, models.IssueRequest{BookID: other.ID, MemberID: "missing"})
	requireReason(t, err, service.ErrNotFound, service.ReasonMember)
}

func TestIssueUnavailableMutatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 1)
	_, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.NoError(t, err)

	booksBefore, err := f.store.Load(ctx, store.Books)
	require.NoError(t, err)
	txsBefore, err := f.store.Load(ctx, store.Transactions)
	require.NoError(t, err)

	_, err = f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	requireReason(t, err, service.ErrInvalidState, service.ReasonBookUnavailable)

	booksAfter, err := f.store.Load(ctx, store.Books)
	require.NoError(t, err)
	txsAfter, err := f.store.Load(ctx, store.Transactions)
	require.NoError(t, err)
	assert.Equal(t, booksBefore, booksAfter)
	assert.Equal(t, txsBefore, txsAfter)
}

func TestReturnTwiceKeepsFirstOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 1)
	tx, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.NoError(t, err)

	f.clock.Set(tx.IssueDate.Add(9 * 24 * time.Hour))
	first, err := f.lending.Return(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, first.Fine)

	f.clock.Set(tx.IssueDate.Add(30 * 24 * time.Hour))
	_, err = f.lending.Return(ctx, tx.ID)
	requireReason(t, err, service.ErrInvalidState, service.ReasonAlreadyReturned)

	txs, err := f.lending.List(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, first.Fine, txs[0].Fine)
	assert.True(t, first.ReturnDate.Equal(*txs[0].ReturnDate))

	// The second attempt must not have restored another copy.
	b := f.book(t, book.ID)
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Equal(t, 0, b.IssuedCopies)
}

func TestReturnUnknownTransaction(t *testing.T) {
	f := newFixture(t)
	_, err := f.lending.Return(context.Background(), "nope")
	requireReason(t, err, service.ErrNotFound, service.ReasonTransaction)
}

func TestReturnFine(t *testing.T) {
	cases := []struct {
		name  string
		after time.Duration
		fine  float64
	}{
		{"early", 5 * 24 * time.Hour, 0},
		{"exactly due", 7 * 24 * time.Hour, 0},
		{"less than a day late", 7*24*time.Hour + 23*time.Hour, 0},
		{"one day late", 8 * 24 * time.Hour, 5},
		{"three days late", 10 * 24 * time.Hour, 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			member := f.addMember(t, "m@example.com")
			book := f.addBook(t, "111", 1)
			tx, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
			require.NoError(t, err)

			f.clock.Set(tx.IssueDate.Add(tc.after))
			returned, err := f.lending.Return(ctx, tx.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.fine, returned.Fine)
			assert.True(t, returned.ReturnDate.Equal(tx.IssueDate.Add(tc.after)))
			assert.False(t, returned.ReturnDate.Before(returned.IssueDate))
		})
	}
}

func TestLendingPolicyFine(t *testing.T) {
	p := service.LendingPolicy{IssuePeriod: 14 * 24 * time.Hour, FinePerDay: 0.5}
	due := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 0.0, p.Fine(due, due.Add(-time.Hour)))
	assert.Equal(t, 0.0, p.Fine(due, due))
	assert.Equal(t, 1.0, p.Fine(due, due.Add(2*24*time.Hour+time.Minute)))
}

func TestReturnAfterBookDeleted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 2)
	tx, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.NoError(t, err)
	require.NoError(t, f.catalog.Delete(ctx, book.ID))

	returned, err := f.lending.Return(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, returned.Status)

	books, err := f.catalog.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestCounterInvariantAcrossSequence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 3)

	checkInvariant := func() {
		t.Helper()
		b := f.book(t, book.ID)
		assert.Equal(t, b.TotalCopies, b.AvailableCopies+b.IssuedCopies)
		assert.GreaterOrEqual(t, b.AvailableCopies, 0)
	}

	var open []string
	for i := 0; i < 3; i++ {
		tx, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
		require.NoError(t, err)
		open = append(open, tx.ID)
		checkInvariant()
	}
	_, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.ErrorIs(t, err, service.ErrInvalidState)
	checkInvariant()

	for _, id := range open[:2] {
		_, err := f.lending.Return(ctx, id)
		require.NoError(t, err)
		checkInvariant()
	}
	_, err = f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.NoError(t, err)
	checkInvariant()

	b := f.book(t, book.ID)
	assert.Equal(t, 1, b.AvailableCopies)
	assert.Equal(t, 2, b.IssuedCopies)
}

func TestIssueRetriesOnVersionConflict(t *testing.T) {
	s := &conflictingStore{Store: newTestStore(t)}
	f := newFixtureWithStore(t, s, 3)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 1)

	s.remaining, s.applies = 2, 0
	tx, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, s.applies)

	txs, err := f.lending.List(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	require.Len(t, txs, 1, "exactly one transaction despite retries")
	assert.Equal(t, tx.ID, txs[0].ID)
	assert.Equal(t, 1, f.book(t, book.ID).IssuedCopies)
}

func TestIssueGivesUpAfterMaxRetries(t *testing.T) {
	s := &conflictingStore{Store: newTestStore(t)}
	f := newFixtureWithStore(t, s, 2)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 1)

	s.remaining = 5
	_, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
	requireReason(t, err, service.ErrConflict, service.ReasonBusy)
	assert.Equal(t, 1, f.book(t, book.ID).AvailableCopies)
}

func TestListTransactionsFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.addMember(t, "ann@example.com")
	bob := f.addMember(t, "bob@example.com")
	book := f.addBook(t, "111", 5)

	t1, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: ann.ID})
	require.NoError(t, err)
	_, err = f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: bob.ID})
	require.NoError(t, err)
	_, err = f.lending.Return(ctx, t1.ID)
	require.NoError(t, err)

	all, err := f.lending.List(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	annOnly, err := f.lending.List(ctx, models.TransactionFilter{MemberID: ann.ID})
	require.NoError(t, err)
	require.Len(t, annOnly, 1)
	assert.Equal(t, t1.ID, annOnly[0].ID)

	open, err := f.lending.List(ctx, models.TransactionFilter{Status: models.StatusIssued})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, bob.ID, open[0].MemberID)
}

func TestConcurrentIssueOfLastCopy(t *testing.T) {
	f := newFixtureWithStore(t, newTestStore(t), 50)
	ctx := context.Background()
	member := f.addMember(t, "m@example.com")
	book := f.addBook(t, "111", 1)

	const workers = 30
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.lending.Issue(ctx, models.IssueRequest{BookID: book.ID, MemberID: member.ID})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	issued := 0
	for err := range errs {
		if err == nil {
			issued++
			continue
		}
		var serr *service.Error
		require.True(t, errors.As(err, &serr), "unexpected error %v", err)
		assert.Contains(t, []string{service.ReasonBookUnavailable, service.ReasonBusy}, serr.Reason)
	}
	assert.Equal(t, 1, issued)

	b := f.book(t, book.ID)
	assert.Equal(t, 0, b.AvailableCopies)
	assert.Equal(t, 1, b.IssuedCopies)
	txs, err := f.lending.List(ctx, models.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}
