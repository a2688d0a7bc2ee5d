package store

import (
	"context"

	"github.com/kevinaaaquil/library/backend/models"
)

func LoadTransactions(ctx context.Context, s Store) ([]models.Transaction, string, error) {
	return Load[models.Transaction](ctx, s, Transactions)
}

func TransactionsWrite(txs []models.Transaction, ifMatch string) (Write, error) {
	return NewWrite(Transactions, txs, ifMatch)
}
