// Package main provides a CLI tool for validating fingenius server endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	path        string
	method      string
	contentType string
	body        string
	contains    []string
}

const jsonType = "application/json"

var endpoints = []endpoint{
	// Operational
	{path: "/api/health", method: "GET", contentType: jsonType, contains: []string{`"status":"ok"`}},
	{path: "/api/version", method: "GET", contentType: jsonType, contains: []string{`"version"`}},

	// Dashboard views
	{path: "/dashboard/summary", method: "GET", contentType: jsonType, contains: []string{`"profile"`, `"current_month"`}},
	{path: "/dashboard/expenses", method: "GET", contentType: jsonType, contains: []string{`"expenses"`, `"summary"`}},
	{path: "/dashboard/investments", method: "GET", contentType: jsonType, contains: []string{`"risk_profile"`}},
	{path: "/dashboard/goals", method: "GET", contentType: jsonType, contains: []string{`"goals"`}},
	{path: "/dashboard/budgets", method: "GET", contentType: jsonType, contains: []string{`"budgets"`}},
	{path: "/dashboard/subscriptions", method: "GET", contentType: jsonType, contains: []string{`"subscriptions"`}},
	{path: "/dashboard/history", method: "GET", contentType: jsonType, contains: []string{`"history"`}},
	{path: "/dashboard/insights", method: "GET", contentType: jsonType, contains: []string{`"insights"`, `"savings_rate"`}},

	// Calculator
	{path: "/calculate", method: "GET", contentType: jsonType, contains: []string{`"budget_allocation"`}},
	{
		path:        "/calculate",
		method:      "POST",
		contentType: jsonType,
		body:        `{"function":"budget_allocation","parameters":{"income":50000}}`,
		contains:    []string{`"needs":25000`},
	},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed int
	var results []result

	for _, ep := range endpoints {
		r := validateEndpoint(client, *url, ep, *verbose)
		results = append(results, r)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		} else if r.status != http.StatusOK {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected 200)\n", r.status)
		} else {
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint, verbose bool) result {
	start := time.Now()

	var body io.Reader
	if ep.body != "" {
		body = strings.NewReader(ep.body)
	}
	req, err := http.NewRequest(ep.method, baseURL+ep.path, body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}
	if ep.body != "" {
		req.Header.Set("Content-Type", jsonType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	duration := time.Since(start)

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: duration,
		body:     string(respBody),
	}

	// Validate content type
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, ep.contentType) {
		r.err = fmt.Errorf("wrong content type: got %q, expected %q", ct, ep.contentType)
		return r
	}

	// Validate JSON if expected
	if ep.contentType == jsonType {
		var js any
		if err := json.Unmarshal(respBody, &js); err != nil {
			r.err = fmt.Errorf("invalid JSON: %w", err)
			return r
		}
	}

	// Validate required content
	for _, needle := range ep.contains {
		if !strings.Contains(string(respBody), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}
