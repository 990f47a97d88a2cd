package explorer

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fingenius/internal/config"
	apphttp "fingenius/internal/http"
	"fingenius/internal/logger"
	"fingenius/internal/services/dataloader"
)

var (
	loader *dataloader.DataLoader
	cfg    *config.Config
)

// Initialize sets up the explorer package with required dependencies
func Initialize(l *dataloader.DataLoader, c *config.Config) {
	loader = l
	cfg = c
}

// RegisterRoutes registers the upload route
func RegisterRoutes(r chi.Router) {
	r.Post("/upload", handleFileUpload)
}

// DataSummary counts what an upload produced
type DataSummary struct {
	ExpensesCount    int `json:"expenses_count"`
	InvestmentsCount int `json:"investments_count"`
	GoalsCount       int `json:"goals_count"`
}

// UploadResponse is returned by POST /upload
type UploadResponse struct {
	FileID      string              `json:"file_id"`
	Filename    string              `json:"filename"`
	Message     string              `json:"message"`
	Strategy    dataloader.Strategy `json:"strategy"`
	DataSummary DataSummary         `json:"data_summary"`
}

func handleFileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apphttp.ErrorResponse(w, r, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		apphttp.ErrorResponse(w, r, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file: a multipart field named \"file\" is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		apphttp.ErrorResponse(w, r, "Error reading file", http.StatusBadRequest)
		return
	}

	fileID := "uploaded_" + uuid.NewString()
	p, strategy, err := loader.Ingest(r.Context(), fileID, data, header.Filename)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	message := "File uploaded and parsed successfully"
	if strategy == dataloader.StrategyNone {
		message = "File uploaded, but its columns were not recognized; showing sample data"
	}

	logger.FromContext(r.Context()).Info().
		Str("file_id", fileID).
		Str("filename", header.Filename).
		Str("strategy", string(strategy)).
		Int("bytes", len(data)).
		Msg("Upload ingested")

	apphttp.WriteJSON(w, http.StatusOK, UploadResponse{
		FileID:   fileID,
		Filename: header.Filename,
		Message:  message,
		Strategy: strategy,
		DataSummary: DataSummary{
			ExpensesCount:    len(p.Expenses),
			InvestmentsCount: len(p.Investments),
			GoalsCount:       len(p.Goals),
		},
	})
}
