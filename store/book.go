package store

import (
	"context"

	"github.com/kevinaaaquil/library/backend/models"
)

func LoadBooks(ctx context.Context, s Store) ([]models.Book, string, error) {
	return Load[models.Book](ctx, s, Books)
}

func BooksWrite(books []models.Book, ifMatch string) (Write, error) {
	return NewWrite(Books, books, ifMatch)
}
