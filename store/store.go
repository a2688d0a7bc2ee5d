package store

import (
	"context"
	"errors"
)

// Collection names one whole-document record list.
type Collection string

const (
	Books        Collection = "books"
	Members      Collection = "members"
	Transactions Collection = "transactions"
)

// Collections lists every collection a store must hold.
var Collections = []Collection{Books, Members, Transactions}

var (
	// ErrVersionConflict is returned by Apply when a write's IfMatch no longer
	// names the stored version of its collection.
	ErrVersionConflict = errors.New("document version conflict")
	// ErrCorruptDocument is returned when a stored document is not a JSON record list.
	ErrCorruptDocument = errors.New("corrupt document")
)

// Document is a collection as read from the store. An absent collection is
// an empty record list with an empty ETag.
type Document struct {
	Collection Collection
	Records    []byte
	ETag       string
}

// Write replaces a whole collection provided its stored version still
// matches IfMatch. An empty IfMatch expects the collection to be absent.
type Write struct {
	Collection Collection
	Records    []byte
	IfMatch    string
}

// Store holds the collections. Apply either performs every write or fails
// with ErrVersionConflict before touching anything; whether the writes land
// atomically as a group depends on the backend.
type Store interface {
	Load(ctx context.Context, c Collection) (*Document, error)
	Apply(ctx context.Context, writes ...Write) error
	Close(ctx context.Context) error
}

func emptyRecords() []byte {
	return []byte("[]")
}
