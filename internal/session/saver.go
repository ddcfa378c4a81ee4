package session

import (
	"fmt"
	"os"
	"path/filepath"
)

// Download describes a file fetched from the service and saved locally.
type Download struct {
	FileName string
	Link     string
	SavedTo  string
	Size     int
}

// Saver persists downloaded files. It returns where the file ended up.
type Saver interface {
	Save(name string, data []byte) (string, error)
}

// DirSaver writes files into Dir, creating it when missing.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(name string, data []byte) (string, error) {
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// SaverFunc adapts a function to Saver.
type SaverFunc func(name string, data []byte) (string, error)

func (f SaverFunc) Save(name string, data []byte) (string, error) { return f(name, data) }
