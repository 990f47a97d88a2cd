package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"fingenius/internal/logger"
	"fingenius/internal/services/calculator"
	"fingenius/internal/services/dataloader"
	"fingenius/internal/services/storage"
)

// maxJSONBody caps JSON request bodies
const maxJSONBody = 1 << 20

// WriteJSON writes v as a JSON response with the given status. v is encoded
// before any header is written, so a value that cannot be encoded becomes a
// 500 error envelope instead of an empty success.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	if v == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg("Failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"failed to encode response"}` + "\n"))
		return
	}

	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

// ErrorResponse sends a JSON error envelope: {"error": message}
func ErrorResponse(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	event := logger.FromContext(r.Context()).Warn()
	if statusCode >= 500 {
		event = logger.FromContext(r.Context()).Error()
	}
	event.Int("status", statusCode).Str("error", message).Msg("Request failed")

	WriteJSON(w, statusCode, map[string]string{"error": message})
}

// Error writes err with the status StatusForError picks for it
func Error(w http.ResponseWriter, r *http.Request, err error) {
	ErrorResponse(w, r, err.Error(), StatusForError(err))
}

// StatusForError maps domain errors to HTTP status codes: bad input is 400,
// anything else (storage among it) is 500
func StatusForError(err error) int {
	var (
		parseErr  *dataloader.ParseError
		domainErr *calculator.DomainError
	)
	switch {
	case errors.Is(err, dataloader.ErrUnsupportedFormat),
		errors.As(err, &parseErr),
		errors.As(err, &domainErr),
		errors.Is(err, calculator.ErrMissingParameter),
		errors.Is(err, calculator.ErrInvalidParameter),
		errors.Is(err, calculator.ErrUnknownFunction),
		errors.Is(err, calculator.ErrNoFunctionDetected),
		errors.Is(err, storage.ErrInvalidID):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON reads a JSON request body into v. Numbers decode as
// json.Number inside interface values.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.UseNumber()
	return dec.Decode(v)
}

// ProfileID returns the profile a dashboard request names: file_id when
// present, else user_id, else the default user
func ProfileID(r *http.Request) string {
	q := r.URL.Query()
	if id := q.Get("file_id"); id != "" {
		return id
	}
	if id := q.Get("user_id"); id != "" {
		return id
	}
	return dataloader.DefaultUserID
}

// CORS allows the dashboard frontend to call the API from any origin
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
