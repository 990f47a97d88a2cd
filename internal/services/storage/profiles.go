package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"fingenius/internal/models"
)

var (
	// ErrNotFound is returned when no profile is stored under an id
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidID is returned for ids that are empty or contain characters
	// outside [A-Za-z0-9_-]
	ErrInvalidID = errors.New("invalid profile id")

	// ErrLocked is returned when reading encrypted data before Unlock
	ErrLocked = errors.New("file is encrypted but storage is locked")
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ProfileStore persists FinancialProfiles keyed by user or upload id.
// Writes are last-write-wins.
type ProfileStore interface {
	Put(ctx context.Context, id string, p *models.FinancialProfile) error
	Get(ctx context.Context, id string) (*models.FinancialProfile, error)
}

// ValidateID checks that id is safe to use as a key and a file name
func ValidateID(id string) error {
	if len(id) > 128 || !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
