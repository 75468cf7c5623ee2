package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Store persists uploaded attachment bytes and returns a retrievable path.
type Store interface {
	Save(originalName string, data []byte) (string, error)
}

// LocalStore writes attachments to a directory on disk. Stored names are
// generated, collision-resistant and keep the original extension; the
// returned path is the public one clients fetch files under.
type LocalStore struct {
	baseDir   string
	publicDir string
}

func NewLocalStore(baseDir, publicDir string) *LocalStore {
	if publicDir == "" {
		publicDir = "/uploads"
	}
	return &LocalStore{baseDir: baseDir, publicDir: publicDir}
}

func (s *LocalStore) Save(originalName string, data []byte) (string, error) {
	if err := os.MkdirAll(s.baseDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(s.baseDir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return s.publicDir + "/" + name, nil
}
