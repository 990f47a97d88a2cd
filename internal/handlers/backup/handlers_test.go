package backup

import (
	"archive/zip"
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"fingenius/internal/services/storage"
	"fingenius/internal/testutil"
)

func setup(t *testing.T) (*testutil.TestServer, *storage.Storage) {
	t.Helper()
	s, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage.New failed: %v", err)
	}
	Initialize(s)

	r := chi.NewRouter()
	RegisterRoutes(r)
	return testutil.NewTestServer(t, r), s
}

func writeFile(t *testing.T, s *storage.Storage, rel, content string) {
	t.Helper()
	path := filepath.Join(s.BaseDir(), rel)
	if err := s.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := s.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func readZip(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Invalid zip: %v", err)
	}
	files := make(map[string]string)
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open %s failed: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("Read %s failed: %v", f.Name, err)
		}
		files[f.Name] = string(content)
	}
	return files
}

func TestHealthAndVersion(t *testing.T) {
	ts, _ := setup(t)

	testutil.AssertResponse(t, ts.GET("/api/health")).
		StatusOK().
		ContentTypeJSON().
		Contains(`"status":"ok"`)

	testutil.AssertResponse(t, ts.GET("/api/version")).
		StatusOK().
		ContainsAll(`"version"`, `"go_version"`)
}

func TestBackup(t *testing.T) {
	ts, s := setup(t)
	writeFile(t, s, "profiles/uploaded_1.json", `{"user_id":"uploaded_1"}`)
	writeFile(t, s, "uploads/uploaded_1.csv", "a,b\n1,2\n")

	resp := ts.GET("/api/backup")
	testutil.AssertResponse(t, resp).StatusOK().ContentType("application/zip")
	if cd := resp.Header.Get("Content-Disposition"); !bytes.Contains([]byte(cd), []byte("fingenius_backup_")) {
		t.Errorf("Content-Disposition = %q", cd)
	}

	files := readZip(t, []byte(testutil.ReadBody(t, resp)))
	if files["profiles/uploaded_1.json"] != `{"user_id":"uploaded_1"}` {
		t.Errorf("profile entry = %q", files["profiles/uploaded_1.json"])
	}
	if files["uploads/uploaded_1.csv"] != "a,b\n1,2\n" {
		t.Errorf("upload entry = %q", files["uploads/uploaded_1.csv"])
	}
}

func TestBackupEncrypted(t *testing.T) {
	ts, s := setup(t)
	writeFile(t, s, "profiles/p.json", `{"user_id":"p"}`)
	if err := s.EnableEncryption("correct horse"); err != nil {
		t.Fatalf("EnableEncryption failed: %v", err)
	}

	t.Run("decrypted when unlocked", func(t *testing.T) {
		resp := ts.GET("/api/backup")
		testutil.AssertResponse(t, resp).StatusOK()
		files := readZip(t, []byte(testutil.ReadBody(t, resp)))
		if files["profiles/p.json"] != `{"user_id":"p"}` {
			t.Errorf("profile entry = %q", files["profiles/p.json"])
		}
		if len(files) != 1 {
			t.Errorf("Expected bookkeeping files to be skipped, got %v", files)
		}
	})

	t.Run("refused when locked", func(t *testing.T) {
		s.Lock()
		resp := ts.GET("/api/backup")
		testutil.AssertResponse(t, resp).
			Status(http.StatusServiceUnavailable).
			ErrorMessage("locked")
	})
}

func TestRestore(t *testing.T) {
	ts, s := setup(t)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	entries := map[string]string{
		"profiles/uploaded_2.json": `{"user_id":"uploaded_2"}`,
		"../escape.csv":            "x",
		"notes.txt":                "skip me",
	}
	for name, content := range entries {
		f, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip Create failed: %v", err)
		}
		f.Write([]byte(content))
	}
	zw.Close()

	resp := ts.Upload("/api/restore", "file", "backup.zip", buf.Bytes())
	testutil.AssertResponse(t, resp).StatusOK().Contains(`"restored":1`)

	got, err := s.ReadFile(filepath.Join(s.BaseDir(), "profiles", "uploaded_2.json"))
	if err != nil || string(got) != `{"user_id":"uploaded_2"}` {
		t.Errorf("restored profile = %q, err = %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(s.BaseDir()), "escape.csv")); err == nil {
		t.Error("Entry outside the data directory was written")
	}
}

func TestRestoreErrors(t *testing.T) {
	ts, _ := setup(t)

	t.Run("not a zip name", func(t *testing.T) {
		resp := ts.Upload("/api/restore", "file", "backup.tar", []byte("data"))
		testutil.AssertResponse(t, resp).
			Status(http.StatusBadRequest).
			ErrorMessage("Only ZIP")
	})

	t.Run("corrupt zip", func(t *testing.T) {
		resp := ts.Upload("/api/restore", "file", "backup.zip", []byte("not a zip"))
		testutil.AssertResponse(t, resp).
			Status(http.StatusBadRequest).
			ErrorMessage("Invalid ZIP")
	})

	t.Run("no data files", func(t *testing.T) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		f, _ := zw.Create("readme.md")
		f.Write([]byte("hello"))
		zw.Close()

		resp := ts.Upload("/api/restore", "file", "backup.zip", buf.Bytes())
		testutil.AssertResponse(t, resp).
			Status(http.StatusBadRequest).
			ErrorMessage("No data files")
	})
}
