// Package nl2sql turns natural-language questions into a single executable
// SQLite statement via a hosted language model, and cleans up the free-form
// model output.
package nl2sql

import "context"

type Request struct {
	Question string `json:"question"`
	Schema   string `json:"schema"`
}

type Result struct {
	// SQL is the sanitized single statement extracted from the raw response.
	SQL string `json:"sql"`
	// Raw is the untouched text content of the model's first choice.
	Raw      string `json:"raw,omitempty"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}
