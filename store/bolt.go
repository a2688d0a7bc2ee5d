package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	keyRecords = []byte("records")
	keyVersion = []byte("version")
)

// Bolt keeps each collection in its own bucket as a records/version pair.
// Apply runs in a single read-write transaction, so a multi-collection write
// is all or nothing.
type Bolt struct {
	db *bolt.DB
}

// NewBolt opens (or creates) the database file at path and ensures a bucket
// exists for every collection.
func NewBolt(path string) (*Bolt, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, c := range Collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(c)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

func (s *Bolt) Close(context.Context) error {
	return s.db.Close()
}

func (s *Bolt) Load(ctx context.Context, c Collection) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := &Document{Collection: c, Records: emptyRecords()}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(c))
		if b == nil {
			return fmt.Errorf("unknown collection %q", c)
		}
		// Values are only valid for the life of the transaction.
		if v := b.Get(keyRecords); v != nil {
			doc.Records = append([]byte(nil), v...)
		}
		doc.ETag = string(b.Get(keyVersion))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *Bolt) Apply(ctx context.Context, writes ...Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, w := range writes {
			b := tx.Bucket([]byte(w.Collection))
			if b == nil {
				return fmt.Errorf("unknown collection %q", w.Collection)
			}
			if current := string(b.Get(keyVersion)); current != w.IfMatch {
				return fmt.Errorf("%w: %s at version %q, expected %q", ErrVersionConflict, w.Collection, current, w.IfMatch)
			}
		}
		for _, w := range writes {
			b := tx.Bucket([]byte(w.Collection))
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			if err := b.Put(keyRecords, w.Records); err != nil {
				return err
			}
			if err := b.Put(keyVersion, []byte(strconv.FormatUint(seq, 10))); err != nil {
				return err
			}
		}
		return nil
	})
}
