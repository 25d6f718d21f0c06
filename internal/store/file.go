package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore keeps each document as a pretty-printed JSON file in a
// single directory, one file per key. Intended for local development
// where the files double as the site's content fixtures.
type FileStore struct {
	dir string
}

// OpenFile prepares a file-backed store rooted at dir, creating the
// directory and seeding missing documents with their defaults.
func OpenFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating content directory: %w", err)
	}
	s := &FileStore{dir: dir}
	for _, key := range Keys() {
		path := s.path(key)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("checking %s: %w", path, err)
		}
		if err := s.write(key, defaultDoc(key)); err != nil {
			return nil, fmt.Errorf("seeding %s: %w", key, err)
		}
	}
	return s, nil
}

func (s *FileStore) path(key Key) string {
	return filepath.Join(s.dir, string(key)+".json")
}

// Read returns the stored document for key.
func (s *FileStore) Read(_ context.Context, key Key) (json.RawMessage, error) {
	if !Valid(key) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return json.RawMessage(data), nil
}

// Replace overwrites the document for key. The write goes through a
// temporary file and a rename so readers never observe a partial file.
func (s *FileStore) Replace(_ context.Context, key Key, doc json.RawMessage, _ string) error {
	if !Valid(key) {
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if !json.Valid(doc) {
		return fmt.Errorf("replacing %s: document is not valid JSON", key)
	}
	if err := s.write(key, doc); err != nil {
		return fmt.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) write(key Key, doc json.RawMessage) error {
	var pretty json.RawMessage
	var buf any
	if err := json.Unmarshal(doc, &buf); err == nil {
		if b, err := json.MarshalIndent(buf, "", "  "); err == nil {
			pretty = append(b, '\n')
		}
	}
	if pretty == nil {
		pretty = doc
	}

	tmp, err := os.CreateTemp(s.dir, "."+string(key)+"-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pretty); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(key))
}
