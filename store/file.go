package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// File stores each collection as a bare JSON array in dir/<collection>.json,
// the layout of the original flat-file deployment. The ETag is a content
// hash. Before a file is replaced its previous content is copied to
// <collection>.json.bak.
//
// Apply is serialised by a mutex, so version checks only protect against
// writers in this process.
type File struct {
	dir string
	mu  sync.Mutex
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (s *File) Close(context.Context) error { return nil }

func (s *File) path(c Collection) string {
	return filepath.Join(s.dir, string(c)+".json")
}

func (s *File) Load(ctx context.Context, c Collection) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	data, etag, err := s.read(c)
	if err != nil {
		return nil, err
	}
	return &Document{Collection: c, Records: data, ETag: etag}, nil
}

func (s *File) Apply(ctx context.Context, writes ...Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make([][]byte, len(writes))
	for i, w := range writes {
		data, etag, err := s.read(w.Collection)
		if err != nil {
			return err
		}
		if etag != w.IfMatch {
			return fmt.Errorf("%w: %s at version %q, expected %q", ErrVersionConflict, w.Collection, etag, w.IfMatch)
		}
		if etag != "" {
			previous[i] = data
		}
	}
	for i, w := range writes {
		if previous[i] != nil {
			if err := os.WriteFile(s.path(w.Collection)+".bak", previous[i], 0o644); err != nil {
				return fmt.Errorf("backup %s: %w", w.Collection, err)
			}
		}
		if err := s.replace(w.Collection, w.Records); err != nil {
			return err
		}
	}
	return nil
}

func (s *File) read(c Collection) ([]byte, string, error) {
	data, err := os.ReadFile(s.path(c))
	if errors.Is(err, fs.ErrNotExist) {
		return emptyRecords(), "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", c, err)
	}
	return data, fileETag(data), nil
}

// replace writes data next to the target and renames it into place so
// readers never observe a partial document.
func (s *File) replace(c Collection, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, string(c)+".json.tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", c, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", c, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", c, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", c, err)
	}
	if err := os.Rename(tmp.Name(), s.path(c)); err != nil {
		return fmt.Errorf("rename %s: %w", c, err)
	}
	return nil
}

func fileETag(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}
