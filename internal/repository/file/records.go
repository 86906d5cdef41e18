// Package file keeps records and outcome streams on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NordCoder/Uptimer/internal/domain/record"
)

var _ record.Store = (*RecordStore)(nil)

const recordExt = ".json"

// RecordStore lays records out as <dir>/<collection>/<key>.json.
type RecordStore struct {
	dir string
}

func NewRecordStore(dir string) (*RecordStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &RecordStore{dir: dir}, nil
}

func (s *RecordStore) path(collection, key string) (string, error) {
	if err := safeName("collection", collection); err != nil {
		return "", err
	}
	if err := safeName("key", key); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, collection, key+recordExt), nil
}

func (s *RecordStore) Create(_ context.Context, collection, key string, value record.Record) error {
	p, err := s.path(collection, key)
	if err != nil {
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create collection dir: %w", err)
	}

	f, err := os.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return record.ErrExists
		}
		return fmt.Errorf("create %s/%s: %w", collection, key, err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s/%s: %w", collection, key, err)
	}
	return f.Close()
}

func (s *RecordStore) Read(_ context.Context, collection, key string) (record.Record, error) {
	p, err := s.path(collection, key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, record.ErrNotFound
		}
		return nil, fmt.Errorf("read %s/%s: %w", collection, key, err)
	}
	var v record.Record
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode %s/%s: %w", collection, key, err)
	}
	return v, nil
}

// Update replaces an existing record by writing a sibling temp file and renaming it over the original.
func (s *RecordStore) Update(_ context.Context, collection, key string, value record.Record) error {
	p, err := s.path(collection, key)
	if err != nil {
		return err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return record.ErrNotFound
		}
		return fmt.Errorf("stat %s/%s: %w", collection, key, err)
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s/%s: %w", collection, key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s/%s: %w", collection, key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s/%s: %w", collection, key, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, key, err)
	}
	return nil
}

func (s *RecordStore) Delete(_ context.Context, collection, key string) error {
	p, err := s.path(collection, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return record.ErrNotFound
		}
		return fmt.Errorf("delete %s/%s: %w", collection, key, err)
	}
	return nil
}

// List returns the keys of a collection. A collection that was never written is empty.
func (s *RecordStore) List(_ context.Context, collection string) ([]string, error) {
	if err := safeName("collection", collection); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(s.dir, collection))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, recordExt) {
			continue
		}
		keys = append(keys, strings.TrimSuffix(name, recordExt))
	}
	sort.Strings(keys)
	return keys, nil
}
