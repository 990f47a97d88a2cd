package whatif

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	apphttp "fingenius/internal/http"
	"fingenius/internal/logger"
	"fingenius/internal/services/calculator"
)

// RegisterRoutes registers the calculator routes
func RegisterRoutes(r chi.Router) {
	r.Get("/calculate", handleFunctions)
	r.Post("/calculate", handleCalculate)
}

// CalculateRequest names a formula and its inputs. Either function or
// function_name may carry the name.
type CalculateRequest struct {
	Function     string         `json:"function"`
	FunctionName string         `json:"function_name"`
	Parameters   map[string]any `json:"parameters"`
}

func (c CalculateRequest) name() string {
	if c.Function != "" {
		return c.Function
	}
	return c.FunctionName
}

// handleFunctions lists the formulas with their parameters
func handleFunctions(w http.ResponseWriter, r *http.Request) {
	apphttp.WriteJSON(w, http.StatusOK, map[string]any{
		"functions": calculator.Functions(),
	})
}

func handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		apphttp.ErrorResponse(w, r, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	calc, err := calculator.Run(req.name(), req.Parameters)
	if err != nil {
		apphttp.Error(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Debug().
		Str("function", calc.FunctionName).
		Interface("parameters", calc.Parameters).
		Msg("Calculation run")

	apphttp.WriteJSON(w, http.StatusOK, calc)
}
