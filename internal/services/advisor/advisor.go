// Package advisor answers free-form finance questions and turns natural
// language calculation requests into formula calls through a language model.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"fingenius/internal/models"
	"fingenius/internal/services/calculator"
)

// GeneralKnowledge is the only source cited for advice
const GeneralKnowledge = "AI General Knowledge"

// calculationKeywords route a question to the calculator instead of advice
var calculationKeywords = []string{"budget", "invest", "loan", "mortgage", "debt", "interest"}

// Advisor wraps a Generator with the finance prompts
type Advisor struct {
	gen     Generator
	timeout time.Duration
}

// New creates an advisor. A zero timeout leaves the caller's deadline alone.
func New(gen Generator, timeout time.Duration) *Advisor {
	return &Advisor{gen: gen, timeout: timeout}
}

// Advice is the answer to a free-form question
type Advice struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// CalculationResponse is either a successful formula call or a failure
// carrying what the model said
type CalculationResponse struct {
	FunctionName string             `json:"function_name,omitempty"`
	Parameters   map[string]float64 `json:"parameters,omitempty"`
	Result       any                `json:"result,omitempty"`

	Error       string `json:"error,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
	Exception   string `json:"exception,omitempty"`
}

// Failed reports whether the calculation could not be performed
func (c *CalculationResponse) Failed() bool {
	return c.Error != ""
}

// IsCalculationQuery reports whether the question should go to the calculator
func IsCalculationQuery(query string) bool {
	q := strings.ToLower(query)
	for _, k := range calculationKeywords {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

func (a *Advisor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// Advise answers a finance question in markdown
func (a *Advisor) Advise(ctx context.Context, question string) (*Advice, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	prompt := "You are a financial advisor. Provide expert guidance on the user's question.\n\n" +
		"Question:\n" + question + "\n\n" +
		"Answer clearly in markdown."

	text, err := a.gen.GenerateText(ctx, prompt)
	if err != nil {
		log.Warn().Err(err).Msg("Advice generation failed")
		return nil, fmt.Errorf("AI generation failed: %w", err)
	}

	return &Advice{
		Response: strings.TrimSpace(text),
		Sources:  []string{GeneralKnowledge},
	}, nil
}

// AnalysisQuestion summarizes a profile as a question for Advise
func AnalysisQuestion(p *models.FinancialProfile) string {
	var expenses, investments float64
	for _, e := range p.Expenses {
		expenses += e.Amount
	}
	for _, inv := range p.Investments {
		investments += inv.Amount
	}
	return fmt.Sprintf("Analyze my finances: Income: %g, Expenses: %g, Investments: %g",
		p.Profile.MonthlyIncome, expenses, investments)
}

// Analyze asks for an assessment of the profile's headline numbers
func (a *Advisor) Analyze(ctx context.Context, p *models.FinancialProfile) (*Advice, error) {
	return a.Advise(ctx, AnalysisQuestion(p))
}

// calculatorPrompt lists every function with its parameters so the model
// answers with names the dispatcher accepts
func calculatorPrompt(query string) string {
	var b strings.Builder
	b.WriteString("You are a financial calculator assistant.\n\n")
	b.WriteString("Determine which financial function to call and extract numeric parameters.\n\n")
	b.WriteString("Available functions:\n")

	funcs := calculator.Functions()
	for _, name := range calculator.FunctionNames() {
		fmt.Fprintf(&b, "- %s(%s)\n", name, strings.Join(funcs[name], ", "))
	}

	b.WriteString("\nRespond with a JSON object of the form ")
	b.WriteString(`{"function": "<name>", "parameters": {"<param>": <number>}}`)
	b.WriteString(".\nRates are percentages, durations are years.\n\n")
	b.WriteString("Return ONLY valid JSON.\nNo markdown. No explanations outside JSON.\n\n")
	b.WriteString("Query:\n")
	b.WriteString(query)
	return b.String()
}

// functionCall is the JSON the model is asked to produce
type functionCall struct {
	Function     string         `json:"function"`
	FunctionName string         `json:"function_name"`
	Parameters   map[string]any `json:"parameters"`
}

func (f functionCall) name() string {
	if f.Function != "" {
		return f.Function
	}
	return f.FunctionName
}

// Calculate extracts a formula call from the query and runs it. Failures
// are reported in the response rather than as an error.
func (a *Advisor) Calculate(ctx context.Context, query string) *CalculationResponse {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	text, err := a.gen.GenerateText(ctx, calculatorPrompt(query))
	if err != nil {
		log.Warn().Err(err).Msg("Calculator extraction failed")
		return &CalculationResponse{
			Error:     "Failed to parse or execute financial calculation",
			Exception: err.Error(),
		}
	}

	calc, err := runModelOutput(text)
	if err != nil {
		log.Warn().Err(err).Str("raw", text).Msg("Could not run calculation from model output")
		return &CalculationResponse{
			Error:       "Failed to parse or execute financial calculation",
			RawResponse: text,
			Exception:   err.Error(),
		}
	}

	return &CalculationResponse{
		FunctionName: calc.FunctionName,
		Parameters:   calc.Parameters,
		Result:       calc.Result,
	}
}

func runModelOutput(text string) (*calculator.Calculation, error) {
	dec := json.NewDecoder(bytes.NewReader(cleanModelJSON(text)))
	dec.UseNumber()

	var call functionCall
	if err := dec.Decode(&call); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}
	return calculator.Run(call.name(), call.Parameters)
}

// cleanModelJSON strips Markdown code fences and any text around the JSON object
func cleanModelJSON(s string) []byte {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		if j := strings.LastIndex(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	if start := strings.IndexByte(s, '{'); start >= 0 {
		if end := strings.LastIndexByte(s, '}'); end > start {
			s = s[start : end+1]
		}
	}
	return []byte(strings.TrimSpace(s))
}
