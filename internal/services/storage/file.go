package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"fingenius/internal/models"
)

// FileStore writes one JSON document per profile under dir, going through
// Storage so profiles are encrypted at rest once encryption is enabled
type FileStore struct {
	files *Storage
	dir   string
}

// NewFileStore creates a FileStore rooted at dir
func NewFileStore(files *Storage, dir string) (*FileStore, error) {
	if err := files.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create profiles directory: %w", err)
	}
	return &FileStore{files: files, dir: dir}, nil
}

func (f *FileStore) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

// Put writes p atomically, replacing any previous version
func (f *FileStore) Put(_ context.Context, id string, p *models.FinancialProfile) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := f.files.WriteFile(f.path(id), data, 0600); err != nil {
		return fmt.Errorf("write profile %s: %w", id, err)
	}
	log.Debug().Str("id", id).Str("source", p.Source).Msg("Profile saved")
	return nil
}

// Get reads the profile stored under id
func (f *FileStore) Get(_ context.Context, id string) (*models.FinancialProfile, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := f.files.ReadFile(f.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read profile %s: %w", id, err)
	}

	var p models.FinancialProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile %s: %w", id, err)
	}
	return &p, nil
}
