package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"filippo.io/age"
	"github.com/rs/zerolog/log"
)

// MinPasswordLength is the shortest accepted encryption password
const MinPasswordLength = 8

// EnableEncryption encrypts every data file in place with the given password
func (s *Storage) EnableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.encrypted {
		return fmt.Errorf("encryption is already enabled")
	}
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}

	recipient, err := age.NewScryptRecipient(password)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}
	identity, err := age.NewScryptIdentity(password)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	verifyPath := filepath.Join(s.baseDir, verifyFile)
	verify, err := encryptData([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("failed to encrypt verification file: %w", err)
	}
	if err := atomicWrite(verifyPath, verify, 0600); err != nil {
		return fmt.Errorf("failed to write verification file: %w", err)
	}

	var targets []string
	err = filepath.Walk(s.baseDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && !s.shouldSkipEncryption(path) {
			targets = append(targets, path)
		}
		return nil
	})
	if err != nil {
		os.Remove(verifyPath)
		return fmt.Errorf("failed to scan files: %w", err)
	}

	for i, path := range targets {
		if err := rewriteFile(path, func(data []byte) ([]byte, error) {
			if isAgeEncrypted(data) {
				return nil, nil
			}
			return encryptData(data, recipient)
		}); err != nil {
			// Best effort: put back what was already converted
			s.rollbackEncryption(targets[:i], identity)
			os.Remove(verifyPath)
			return fmt.Errorf("failed to encrypt %s: %w", filepath.Base(path), err)
		}
	}

	if err := os.WriteFile(filepath.Join(s.baseDir, markerFile), []byte("encrypted"), 0644); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	s.encrypted = true
	s.identity = identity
	s.recipient = recipient

	log.Info().Int("files", len(targets)).Str("dir", s.baseDir).Msg("Encryption enabled")
	return nil
}

// DisableEncryption decrypts every encrypted file in place (requires the current password)
func (s *Storage) DisableEncryption(password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.encrypted {
		return fmt.Errorf("encryption is not enabled")
	}

	identity, err := s.verifyPassword(password)
	if err != nil {
		return err
	}

	var targets []string
	err = filepath.Walk(s.baseDir, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || s.shouldSkipEncryption(path) {
			return nil
		}
		targets = append(targets, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan files: %w", err)
	}

	for _, path := range targets {
		if err := rewriteFile(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return nil, nil
			}
			return decryptData(data, identity)
		}); err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(s.baseDir, markerFile))
	os.Remove(filepath.Join(s.baseDir, verifyFile))

	s.encrypted = false
	s.identity = nil
	s.recipient = nil

	log.Info().Int("files", len(targets)).Str("dir", s.baseDir).Msg("Encryption disabled")
	return nil
}

// rewriteFile replaces the file's content with transform's output.
// A nil result leaves the file untouched.
func rewriteFile(path string, transform func([]byte) ([]byte, error)) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out, err := transform(data)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return atomicWrite(path, out, info.Mode().Perm())
}

// rollbackEncryption decrypts files that were encrypted during a failed enable
func (s *Storage) rollbackEncryption(files []string, identity *age.ScryptIdentity) {
	for _, path := range files {
		err := rewriteFile(path, func(data []byte) ([]byte, error) {
			if !isAgeEncrypted(data) {
				return nil, nil
			}
			return decryptData(data, identity)
		})
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Rollback failed")
		}
	}
}
