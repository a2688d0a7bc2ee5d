package service

import (
	"context"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
)

// Reporting derives dashboard counts; it never writes.
type Reporting struct {
	store store.Store
	opts  Options
}

func NewReporting(s store.Store, opts Options) *Reporting {
	return &Reporting{store: s, opts: opts.withDefaults()}
}

func (r *Reporting) Stats(ctx context.Context) (*models.DashboardStats, error) {
	books, _, err := store.LoadBooks(ctx, r.store)
	if err != nil {
		return nil, err
	}
	members, _, err := store.LoadMembers(ctx, r.store)
	if err != nil {
		return nil, err
	}
	txs, _, err := store.LoadTransactions(ctx, r.store)
	if err != nil {
		return nil, err
	}

	now := r.opts.Now()
	stats := &models.DashboardStats{
		TotalBooks:   len(books),
		TotalMembers: len(members),
	}
	for _, t := range txs {
		if t.Status != models.StatusIssued {
			continue
		}
		stats.BooksIssued++
		if t.DueDate.Before(now) {
			stats.OverdueBooks++
		}
	}
	return stats, nil
}
