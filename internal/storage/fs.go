package storage

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/mind-engage/itembank/internal/apperr"
)

const uploadsDir = "uploads"

type FSStore struct{ base string }

func NewFSStore(base string) (*FSStore, error) {
	if base == "" {
		base = "./data"
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, err
	}
	return &FSStore{base: base}, nil
}

func (s *FSStore) Base() string { return s.base }

func (s *FSStore) Put(key string, r io.Reader) (string, error) {
	if key == "" {
		return "", errors.New("empty key")
	}
	key = filepath.Clean(key)
	if !filepath.IsLocal(key) {
		return "", apperr.Validation("storage key %q escapes the data directory", key)
	}
	dst := filepath.Join(s.base, key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", apperr.IO(err, "create %s", filepath.Dir(dst))
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", apperr.IO(err, "create %s", dst)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", apperr.IO(err, "write %s", dst)
	}
	if err := f.Close(); err != nil {
		return "", apperr.IO(err, "write %s", dst)
	}
	return dst, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func (s *FSStore) SaveUpload(filename string, r io.Reader) (string, error) {
	name := unsafeName.ReplaceAllString(filepath.Base(filename), "_")
	name = strings.Trim(name, "._")
	if name == "" {
		name = "upload.xlsx"
	}
	return s.Put(filepath.Join(uploadsDir, uuid.NewString()+"-"+name), r)
}

// Resolve returns path unchanged when absolute. A relative path is looked
// up under the data directory first, then the working directory. The file
// must exist.
func (s *FSStore) Resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", apperr.Validation("excel_path is required")
	}
	p := path
	if !filepath.IsAbs(p) {
		if _, err := os.Stat(filepath.Join(s.base, p)); err == nil {
			p = filepath.Join(s.base, p)
		}
	}
	st, err := os.Stat(p)
	if err != nil {
		return "", apperr.IO(err, "excel file not found: %s", path)
	}
	if st.IsDir() {
		return "", apperr.IO(nil, "excel path is a directory: %s", path)
	}
	return p, nil
}
