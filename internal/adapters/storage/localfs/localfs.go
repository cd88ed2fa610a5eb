package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage guarda archivos bajo un directorio base.
type Storage struct {
	base string
}

func New(base string) *Storage {
	return &Storage{base: base}
}

// Save escribe r en base/name y devuelve la ruta relativa.
func (s *Storage) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	clean := filepath.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("localfs: nombre vacío")
	}
	full := filepath.Join(s.base, clean)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", err
	}
	f, err := os.Create(full)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return strings.TrimPrefix(clean, "/"), nil
}
