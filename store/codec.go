package store

import (
	"bytes"
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Load reads collection c and decodes it into records of type T, returning
// the ETag to pass back as Write.IfMatch.
func Load[T any](ctx context.Context, s Store, c Collection) ([]T, string, error) {
	doc, err := s.Load(ctx, c)
	if err != nil {
		return nil, "", fmt.Errorf("load %s: %w", c, err)
	}
	records, err := decode[T](doc)
	if err != nil {
		return nil, "", err
	}
	return records, doc.ETag, nil
}

// NewWrite encodes records as the replacement document for c.
func NewWrite[T any](c Collection, records []T, ifMatch string) (Write, error) {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return Write{}, fmt.Errorf("encode %s: %w", c, err)
	}
	return Write{Collection: c, Records: data, IfMatch: ifMatch}, nil
}

func decode[T any](doc *Document) ([]T, error) {
	records := []T{}
	if len(bytes.TrimSpace(doc.Records)) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(doc.Records, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptDocument, doc.Collection, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}
