package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
)

const day = 24 * time.Hour

// LendingPolicy fixes how long a copy may be kept and what each late day costs.
type LendingPolicy struct {
	IssuePeriod time.Duration
	FinePerDay  float64
}

func DefaultLendingPolicy() LendingPolicy {
	return LendingPolicy{IssuePeriod: 7 * day, FinePerDay: 5.0}
}

// Fine charges FinePerDay for every whole day between due and returned.
// Returning on or before the due time costs nothing.
func (p LendingPolicy) Fine(due, returned time.Time) float64 {
	if !returned.After(due) {
		return 0
	}
	overdueDays := int64(returned.Sub(due) / day)
	return float64(overdueDays) * p.FinePerDay
}

// Lending issues and returns copies. Each operation updates the book
// counters and the transaction list in a single store write.
type Lending struct {
	store  store.Store
	policy LendingPolicy
	opts   Options
}

func NewLending(s store.Store, policy LendingPolicy, opts Options) *Lending {
	return &Lending{store: s, policy: policy, opts: opts.withDefaults()}
}

// Issue lends one available copy of a book to a member.
func (l *Lending) Issue(ctx context.Context, req models.IssueRequest) (*models.Transaction, error) {
	var issued models.Transaction
	err := l.opts.withRetry(ctx, "issue", func() error {
		books, booksTag, err := store.LoadBooks(ctx, l.store)
		if err != nil {
			return err
		}
		bi := bookIndex(books, req.BookID)
		if bi < 0 {
			return notFound(ReasonBook, "Book not found")
		}
		if books[bi].AvailableCopies <= 0 {
			return invalidState(ReasonBookUnavailable, "Book is not available")
		}
		members, _, err := store.LoadMembers(ctx, l.store)
		if err != nil {
			return err
		}
		if memberIndex(members, req.MemberID) < 0 {
			return notFound(ReasonMember, "Member not found")
		}
		txs, txTag, err := store.LoadTransactions(ctx, l.store)
		if err != nil {
			return err
		}

		now := l.opts.Now().UTC()
		issued = models.Transaction{
			ID:        uuid.NewString(),
			BookID:    req.BookID,
			MemberID:  req.MemberID,
			IssueDate: now,
			DueDate:   now.Add(l.policy.IssuePeriod),
			Fine:      0,
			Status:    models.StatusIssued,
		}
		books[bi].AvailableCopies--
		books[bi].IssuedCopies++

		bw, err := store.BooksWrite(books, booksTag)
		if err != nil {
			return err
		}
		tw, err := store.TransactionsWrite(append(txs, issued), txTag)
		if err != nil {
			return err
		}
		return l.store.Apply(ctx, bw, tw)
	})
	if err != nil {
		return nil, err
	}
	l.opts.Log.Info("book issued",
		"transaction_id", issued.ID, "book_id", issued.BookID, "member_id", issued.MemberID, "due_date", issued.DueDate)
	return &issued, nil
}

// Return closes an issued transaction, fixing its return date and fine. The
// book's counters are restored only if the book is still in the catalog.
func (l *Lending) Return(ctx context.Context, transactionID string) (*models.Transaction, error) {
	var returned models.Transaction
	var dangling bool
	err := l.opts.withRetry(ctx, "return", func() error {
		txs, txTag, err := store.LoadTransactions(ctx, l.store)
		if err != nil {
			return err
		}
		ti := transactionIndex(txs, transactionID)
		if ti < 0 {
			return notFound(ReasonTransaction, "Transaction not found")
		}
		if txs[ti].Status != models.StatusIssued {
			return invalidState(ReasonAlreadyReturned, "Book already returned")
		}
		books, booksTag, err := store.LoadBooks(ctx, l.store)
		if err != nil {
			return err
		}

		now := l.opts.Now().UTC()
		txs[ti].ReturnDate = &now
		txs[ti].Fine = l.policy.Fine(txs[ti].DueDate, now)
		txs[ti].Status = models.StatusReturned
		returned = txs[ti]

		tw, err := store.TransactionsWrite(txs, txTag)
		if err != nil {
			return err
		}
		writes := []store.Write{tw}

		bi := bookIndex(books, returned.BookID)
		dangling = bi < 0
		if !dangling {
			books[bi].AvailableCopies++
			books[bi].IssuedCopies--
			bw, err := store.BooksWrite(books, booksTag)
			if err != nil {
				return err
			}
			writes = append(writes, bw)
		}
		return l.store.Apply(ctx, writes...)
	})
	if err != nil {
		return nil, err
	}
	if dangling {
		l.opts.Log.Warn("returned transaction for a book no longer in the catalog",
			"transaction_id", returned.ID, "book_id", returned.BookID)
	}
	l.opts.Log.Info("book returned", "transaction_id", returned.ID, "book_id", returned.BookID, "fine", returned.Fine)
	return &returned, nil
}

// List returns the transactions matching filter in storage order.
func (l *Lending) List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	txs, _, err := store.LoadTransactions(ctx, l.store)
	if err != nil {
		return nil, err
	}
	if filter == (models.TransactionFilter{}) {
		return txs, nil
	}
	matched := []models.Transaction{}
	for _, t := range txs {
		if filter.Match(t) {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func transactionIndex(txs []models.Transaction, id string) int {
	for i := range txs {
		if txs[i].ID == id {
			return i
		}
	}
	return -1
}
