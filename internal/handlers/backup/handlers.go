package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apphttp "fingenius/internal/http"
	"fingenius/internal/logger"
	"fingenius/internal/services/storage"
	"fingenius/internal/version"
)

// maxRestoreBytes caps restore uploads
const maxRestoreBytes = 50 << 20

// restorable are the archive entries a restore writes back
var restorable = map[string]bool{
	".csv":  true,
	".xlsx": true,
	".xls":  true,
	".json": true,
}

var store *storage.Storage

// Initialize sets up the backup package with required dependencies
func Initialize(s *storage.Storage) {
	store = s
}

// RegisterRoutes registers the operational routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/health", HandleHealth)
	r.Get("/api/version", handleVersion)
	r.Get("/api/backup", handleBackup)
	r.Post("/api/restore", handleRestore)
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, version.Get())
}

// handleBackup streams a zip of the data directory. Files are decrypted on
// the way out so the archive restores on any install.
func handleBackup(w http.ResponseWriter, r *http.Request) {
	if store.IsEncrypted() && !store.IsUnlocked() {
		apphttp.ErrorResponse(w, r, storage.ErrLocked.Error(), http.StatusServiceUnavailable)
		return
	}

	// Build in memory so a failure can still be reported as an error response
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	count := 0
	err := store.Walk(func(path string, _ fs.FileInfo) error {
		rel, err := filepath.Rel(store.BaseDir(), path)
		if err != nil {
			return err
		}
		data, err := store.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		f, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		if _, err := f.Write(data); err != nil {
			return err
		}
		count++
		return nil
	})
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error creating backup: "+err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("fingenius_backup_%s.zip", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.FromContext(r.Context()).Warn().Err(err).Msg("Backup download interrupted")
		return
	}

	logger.FromContext(r.Context()).Info().Int("files", count).Str("filename", filename).Msg("Backup created")
}

// handleRestore writes the data files of an uploaded backup zip back into the
// data directory, re-encrypting them when encryption is on
func handleRestore(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxRestoreBytes)
	if err := r.ParseMultipartForm(maxRestoreBytes); err != nil {
		apphttp.ErrorResponse(w, r, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		apphttp.ErrorResponse(w, r, "Only ZIP backup files are allowed", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusInternalServerError)
		return
	}

	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		apphttp.ErrorResponse(w, r, "Invalid ZIP file", http.StatusBadRequest)
		return
	}

	restored := 0
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() {
			continue
		}
		name := filepath.FromSlash(zf.Name)
		if !filepath.IsLocal(name) || !restorable[strings.ToLower(filepath.Ext(name))] {
			continue
		}

		rc, err := zf.Open()
		if err != nil {
			log.Warn().Err(err).Str("entry", zf.Name).Msg("Error opening zip entry")
			continue
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Warn().Err(err).Str("entry", zf.Name).Msg("Error reading zip entry")
			continue
		}

		dest := filepath.Join(store.BaseDir(), name)
		if err := store.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			log.Warn().Err(err).Str("path", dest).Msg("Error creating directory")
			continue
		}
		if err := store.WriteFile(dest, data, 0644); err != nil {
			log.Warn().Err(err).Str("path", dest).Msg("Error writing file")
			continue
		}
		restored++
	}

	if restored == 0 {
		apphttp.ErrorResponse(w, r, "No data files found in backup", http.StatusBadRequest)
		return
	}

	log.Info().Int("files", restored).Msg("Restore complete")
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{"restored": restored})
}
