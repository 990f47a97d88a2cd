package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}

	// Write unencrypted upload
	testFile := filepath.Join(dir, "uploads", "test.csv")
	original := []byte("income,rent,groceries\n85000,18000,3500\n")

	if err := store.WriteFile(testFile, original, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	read, err := store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch before encryption")
	}

	password := "testpassword123"
	if err := store.EnableEncryption(password); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	if !store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return true")
	}

	rawData, _ := os.ReadFile(testFile)
	if !isAgeEncrypted(rawData) {
		t.Error("File should be encrypted on disk")
	}

	read, err = store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read encrypted file: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after encryption: got %q, want %q", string(read), string(original))
	}

	// Lock and unlock
	store.Lock()
	if _, err := store.ReadFile(testFile); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked while locked, got %v", err)
	}
	if err := store.Unlock(password); err != nil {
		t.Fatalf("Failed to unlock: %v", err)
	}

	read, err = store.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read after unlock: %v", err)
	}
	if string(read) != string(original) {
		t.Errorf("Content mismatch after unlock")
	}

	if err := store.DisableEncryption(password); err != nil {
		t.Fatalf("Failed to disable encryption: %v", err)
	}

	if store.IsEncrypted() {
		t.Error("Expected IsEncrypted() to return false after disable")
	}

	rawData, _ = os.ReadFile(testFile)
	if isAgeEncrypted(rawData) {
		t.Error("File should be decrypted on disk")
	}
	if string(rawData) != string(original) {
		t.Errorf("Raw content mismatch after decryption")
	}
}

func TestReopenDetectsEncryption(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)
	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("Failed to reopen storage: %v", err)
	}
	if !reopened.IsEncrypted() {
		t.Error("Expected reopened storage to be encrypted")
	}
	if reopened.IsUnlocked() {
		t.Error("Expected reopened storage to be locked")
	}
}

func TestWrongPassword(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	testFile := filepath.Join(dir, "profiles", "default.json")
	if err := store.WriteFile(testFile, []byte(`{"user_id": "default"}`), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	if err := store.EnableEncryption("correctpassword"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	store.Lock()

	if err := store.Unlock("wrongpassword"); err == nil {
		t.Error("Expected error with wrong password")
	}
	if err := store.DisableEncryption("wrongpassword"); err == nil {
		t.Error("Expected error disabling with wrong password")
	}
}

func TestPasswordTooShort(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("short"); err == nil {
		t.Error("Expected error for short password")
	}
}

func TestSkipNonDataFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	dbFile := filepath.Join(dir, "fingenius.db")
	content := []byte("SQLite format 3\x00")
	if err := store.WriteFile(dbFile, content, 0644); err != nil {
		t.Fatalf("Failed to write db file: %v", err)
	}

	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	rawData, _ := os.ReadFile(dbFile)
	if isAgeEncrypted(rawData) {
		t.Error("Database file should not be encrypted")
	}
	if string(rawData) != string(content) {
		t.Error("Database file content should be unchanged")
	}
}

func TestNewFilesEncrypted(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	if err := store.EnableEncryption("testpassword123"); err != nil {
		t.Fatalf("Failed to enable encryption: %v", err)
	}

	newFile := filepath.Join(dir, "profiles", "new.json")
	content := []byte(`{"user_id":"new"}`)
	if err := store.WriteFile(newFile, content, 0644); err != nil {
		t.Fatalf("Failed to write new file: %v", err)
	}

	rawData, _ := os.ReadFile(newFile)
	if !isAgeEncrypted(rawData) {
		t.Error("New file should be encrypted on disk")
	}

	read, err := store.ReadFile(newFile)
	if err != nil {
		t.Fatalf("Failed to read new file: %v", err)
	}
	if string(read) != string(content) {
		t.Errorf("Content mismatch: got %q, want %q", string(read), string(content))
	}

	store.Lock()
	if err := store.WriteFile(newFile, content, 0644); !errors.Is(err, ErrLocked) {
		t.Errorf("Expected ErrLocked writing while locked, got %v", err)
	}
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, _ := New(dir)

	path := filepath.Join(dir, "profiles", "a.json")
	for i := 0; i < 3; i++ {
		if err := store.WriteFile(path, []byte(`{}`), 0644); err != nil {
			t.Fatalf("Write %d failed: %v", i, err)
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the target file, found %d entries", len(entries))
	}
}
