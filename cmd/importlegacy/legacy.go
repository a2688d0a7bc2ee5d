package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/kevinaaaquil/library/backend/models"
	"github.com/kevinaaaquil/library/backend/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// naiveLayout matches timestamps written without a zone offset, with or
// without fractional seconds.
const naiveLayout = "2006-01-02T15:04:05.999999999"

var errNotEmpty = errors.New("collection already holds records; rerun with --force to overwrite")

type legacyTransaction struct {
	ID         string  `json:"id"`
	BookID     string  `json:"book_id"`
	MemberID   string  `json:"member_id"`
	IssueDate  string  `json:"issue_date"`
	DueDate    string  `json:"due_date"`
	ReturnDate *string `json:"return_date"`
	Fine       float64 `json:"fine"`
	Status     string  `json:"status"`
}

type importResult struct {
	Books        int
	Members      int
	Transactions int
}

// parseTimestamp accepts RFC 3339 or a zone-less ISO timestamp, the latter
// read in loc. The result is UTC.
func parseTimestamp(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
	}
	return t.UTC(), nil
}

// readLegacy decodes dir/name into v. A missing or empty file leaves v untouched.
func readLegacy(dir, name string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func readBooks(dir string) ([]models.Book, error) {
	books := []models.Book{}
	if err := readLegacy(dir, "books.json", &books); err != nil {
		return nil, err
	}
	for _, b := range books {
		if b.ID == "" {
			return nil, fmt.Errorf("books.json: book %q has no id", b.Title)
		}
		if b.AvailableCopies < 0 || b.IssuedCopies < 0 || b.AvailableCopies+b.IssuedCopies != b.TotalCopies {
			return nil, fmt.Errorf("books.json: book %s has inconsistent copy counts", b.ID)
		}
	}
	return books, nil
}

func readMembers(dir string) ([]models.Member, error) {
	members := []models.Member{}
	if err := readLegacy(dir, "members.json", &members); err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.ID == "" {
			return nil, fmt.Errorf("members.json: member %q has no id", m.Name)
		}
	}
	return members, nil
}

func readTransactions(dir string, loc *time.Location) ([]models.Transaction, error) {
	var legacy []legacyTransaction
	if err := readLegacy(dir, "transactions.json", &legacy); err != nil {
		return nil, err
	}
	txs := make([]models.Transaction, 0, len(legacy))
	for _, lt := range legacy {
		tx, err := convertTransaction(lt, loc)
		if err != nil {
			return nil, fmt.Errorf("transactions.json: %s: %w", lt.ID, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

func convertTransaction(lt legacyTransaction, loc *time.Location) (models.Transaction, error) {
	tx := models.Transaction{
		ID:       lt.ID,
		BookID:   lt.BookID,
		MemberID: lt.MemberID,
		Fine:     lt.Fine,
		Status:   models.TransactionStatus(lt.Status),
	}
	if tx.ID == "" {
		return tx, errors.New("missing id")
	}
	var err error
	if tx.IssueDate, err = parseTimestamp(lt.IssueDate, loc); err != nil {
		return tx, err
	}
	if tx.DueDate, err = parseTimestamp(lt.DueDate, loc); err != nil {
		return tx, err
	}
	switch tx.Status {
	case models.StatusIssued:
		if lt.ReturnDate != nil {
			return tx, errors.New("issued transaction has a return date")
		}
	case models.StatusReturned:
		if lt.ReturnDate == nil {
			return tx, errors.New("returned transaction has no return date")
		}
		rd, err := parseTimestamp(*lt.ReturnDate, loc)
		if err != nil {
			return tx, err
		}
		tx.ReturnDate = &rd
	default:
		return tx, fmt.Errorf("unknown status %q", lt.Status)
	}
	return tx, nil
}

// loadCurrent returns the stored version of c and whether it holds anything.
// Records are not decoded into models, so a collection still in the legacy
// format (for example the file store pointed at the legacy directory) can be
// replaced in place. Content that is not a JSON array counts as held.
func loadCurrent(ctx context.Context, s store.Store, c store.Collection) (string, bool, error) {
	doc, err := s.Load(ctx, c)
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", c, err)
	}
	if len(bytes.TrimSpace(doc.Records)) == 0 {
		return doc.ETag, false, nil
	}
	var records []jsoniter.RawMessage
	if err := json.Unmarshal(doc.Records, &records); err != nil {
		return doc.ETag, true, nil
	}
	return doc.ETag, len(records) > 0, nil
}

// importLegacy copies the flat files in dir into s with a single Apply.
// Non-empty collections are only replaced when force is set.
func importLegacy(ctx context.Context, s store.Store, dir string, loc *time.Location, force bool) (*importResult, error) {
	books, err := readBooks(dir)
	if err != nil {
		return nil, err
	}
	members, err := readMembers(dir)
	if err != nil {
		return nil, err
	}
	txs, err := readTransactions(dir, loc)
	if err != nil {
		return nil, err
	}

	booksTag, booksHeld, err := loadCurrent(ctx, s, store.Books)
	if err != nil {
		return nil, err
	}
	membersTag, membersHeld, err := loadCurrent(ctx, s, store.Members)
	if err != nil {
		return nil, err
	}
	txsTag, txsHeld, err := loadCurrent(ctx, s, store.Transactions)
	if err != nil {
		return nil, err
	}
	if !force && (booksHeld || membersHeld || txsHeld) {
		return nil, errNotEmpty
	}

	bw, err := store.BooksWrite(books, booksTag)
	if err != nil {
		return nil, err
	}
	mw, err := store.MembersWrite(members, membersTag)
	if err != nil {
		return nil, err
	}
	tw, err := store.TransactionsWrite(txs, txsTag)
	if err != nil {
		return nil, err
	}
	if err := s.Apply(ctx, bw, mw, tw); err != nil {
		return nil, err
	}
	return &importResult{Books: len(books), Members: len(members), Transactions: len(txs)}, nil
}
