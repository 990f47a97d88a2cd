package insights

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fingenius/internal/handlers/dashboard"
	apphttp "fingenius/internal/http"
	"fingenius/internal/logger"
	"fingenius/internal/services/advisor"
	"fingenius/internal/services/dataloader"
)

var (
	loader *dataloader.DataLoader
	adv    *advisor.Advisor
)

// Initialize sets up the insights package with required dependencies
func Initialize(l *dataloader.DataLoader, a *advisor.Advisor) {
	loader = l
	adv = a
}

// RegisterRoutes registers the AI-backed routes
func RegisterRoutes(r chi.Router) {
	r.Post("/ask", handleAsk)
	r.Get("/dashboard/analytics", handleAnalytics)
}

// AskRequest is the body of POST /ask
type AskRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

func handleAsk(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		apphttp.ErrorResponse(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		apphttp.ErrorResponse(w, r, "query is required", http.StatusBadRequest)
		return
	}

	log := logger.FromContext(r.Context())

	if advisor.IsCalculationQuery(req.Query) {
		resp := adv.Calculate(r.Context(), req.Query)
		log.Info().Str("function", resp.FunctionName).Bool("failed", resp.Failed()).Msg("Calculator query answered")
		apphttp.WriteJSON(w, http.StatusOK, resp)
		return
	}

	advice, err := adv.Advise(r.Context(), req.Query)
	if err != nil {
		apphttp.ErrorResponse(w, r, err.Error(), http.StatusBadGateway)
		return
	}
	apphttp.WriteJSON(w, http.StatusOK, advice)
}

func handleAnalytics(w http.ResponseWriter, r *http.Request) {
	p, err := loader.LoadProfile(r.Context(), apphttp.ProfileID(r))
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	analysis, err := adv.Analyze(r.Context(), p)
	if err != nil {
		apphttp.ErrorResponse(w, r, err.Error(), http.StatusBadGateway)
		return
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"analytics": analysis,
		"summary": map[string]any{
			"expenses":     dashboard.ExpenseSummary(p),
			"monthly_data": p.MonthlyHistory,
		},
	})
}
