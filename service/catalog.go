package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
)

// Catalog manages the books collection.
type Catalog struct {
	store store.Store
	opts  Options
}

func NewCatalog(s store.Store, opts Options) *Catalog {
	return &Catalog{store: s, opts: opts.withDefaults()}
}

// List returns every book, or only those whose title, author, ISBN or
// category contains search (case-insensitive), in storage order.
func (c *Catalog) List(ctx context.Context, search string) ([]models.Book, error) {
	books, _, err := store.LoadBooks(ctx, c.store)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(search)
	if q == "" {
		return books, nil
	}
	matched := []models.Book{}
	for _, b := range books {
		if containsFold(q, b.Title, b.Author, b.ISBN, b.Category) {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (*models.Book, error) {
	books, _, err := store.LoadBooks(ctx, c.store)
	if err != nil {
		return nil, err
	}
	i := bookIndex(books, id)
	if i < 0 {
		return nil, notFound(ReasonBook, "Book not found")
	}
	return &books[i], nil
}

func (c *Catalog) Create(ctx context.Context, in models.BookInput) (*models.Book, error) {
	var created models.Book
	err := c.opts.withRetry(ctx, "create book", func() error {
		books, etag, err := store.LoadBooks(ctx, c.store)
		if err != nil {
			return err
		}
		if isbnTaken(books, in.ISBN, "") {
			return conflict(ReasonDuplicateISBN, "Book with this ISBN already exists")
		}
		created = models.Book{
			ID:              uuid.NewString(),
			Title:           in.Title,
			Author:          in.Author,
			ISBN:            in.ISBN,
			Category:        in.Category,
			TotalCopies:     in.TotalCopies,
			AvailableCopies: in.TotalCopies,
			IssuedCopies:    0,
		}
		w, err := store.BooksWrite(append(books, created), etag)
		if err != nil {
			return err
		}
		return c.store.Apply(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	c.opts.Log.Info("book created", "book_id", created.ID, "isbn", created.ISBN)
	return &created, nil
}

// Update replaces every client-writable field. Issued copies carry over and
// available copies are recomputed from the new total.
func (c *Catalog) Update(ctx context.Context, id string, in models.BookInput) (*models.Book, error) {
	var updated models.Book
	err := c.opts.withRetry(ctx, "update book", func() error {
		books, etag, err := store.LoadBooks(ctx, c.store)
		if err != nil {
			return err
		}
		i := bookIndex(books, id)
		if i < 0 {
			return notFound(ReasonBook, "Book not found")
		}
		issued := books[i].IssuedCopies
		if in.TotalCopies < issued {
			return invalidState(ReasonTotalBelowIssued, "Total copies cannot be less than issued copies")
		}
		if isbnTaken(books, in.ISBN, id) {
			return conflict(ReasonDuplicateISBN, "Book with this ISBN already exists")
		}
		updated = models.Book{
			ID:              id,
			Title:           in.Title,
			Author:          in.Author,
			ISBN:            in.ISBN,
			Category:        in.Category,
			TotalCopies:     in.TotalCopies,
			AvailableCopies: in.TotalCopies - issued,
			IssuedCopies:    issued,
		}
		books[i] = updated
		w, err := store.BooksWrite(books, etag)
		if err != nil {
			return err
		}
		return c.store.Apply(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the book whether or not copies are still issued. Open
// transactions for it stay in place and can still be returned.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	var outstanding int
	err := c.opts.withRetry(ctx, "delete book", func() error {
		books, etag, err := store.LoadBooks(ctx, c.store)
		if err != nil {
			return err
		}
		i := bookIndex(books, id)
		if i < 0 {
			return notFound(ReasonBook, "Book not found")
		}
		outstanding = books[i].IssuedCopies
		remaining := append(books[:i:i], books[i+1:]...)
		w, err := store.BooksWrite(remaining, etag)
		if err != nil {
			return err
		}
		return c.store.Apply(ctx, w)
	})
	if err != nil {
		return err
	}
	if outstanding > 0 {
		c.opts.Log.Warn("deleted book with copies still issued", "book_id", id, "issued_copies", outstanding)
	}
	return nil
}

func bookIndex(books []models.Book, id string) int {
	for i := range books {
		if books[i].ID == id {
			return i
		}
	}
	return -1
}

func isbnTaken(books []models.Book, isbn, exceptID string) bool {
	for _, b := range books {
		if b.ISBN == isbn && b.ID != exceptID {
			return true
		}
	}
	return false
}

// containsFold reports whether any field contains the already lower-cased q.
func containsFold(q string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
