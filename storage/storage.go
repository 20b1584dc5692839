// Package storage is the object-storage collaborator boundary: put a
// binary payload under a path hint, get back a retrievable URL. The
// core never cares what sits behind it.
package storage

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ObjectStorage accepts a payload and a path hint of the form
// <category>/<subcategory>/<id>_<original-filename> and returns a URL
// the presentation layer can serve.
type ObjectStorage interface {
	Put(pathHint string, payload io.Reader) (string, error)
}

// PathHint builds the canonical storage path for an upload.
func PathHint(category, subcategory string, id uint, filename string) string {
	return path.Join(category, subcategory, fmt.Sprintf("%d_%s", id, sanitizeFilename(filename)))
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

// FileStorage keeps media on the local filesystem and serves it under
// a URL prefix.
type FileStorage struct {
	root    string
	baseURL string
}

func NewFileStorage(root, baseURL string) *FileStorage {
	return &FileStorage{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

func (f *FileStorage) Put(pathHint string, payload io.Reader) (string, error) {
	dest := filepath.Join(f.root, filepath.FromSlash(pathHint))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, payload); err != nil {
		os.Remove(dest)
		return "", err
	}

	return f.baseURL + "/" + pathHint, nil
}
