package nl2sql

import (
	"fmt"
	"strings"
)

// buildPrompt assembles the fixed instruction template. The schema block is
// the only grounding the model gets, so the rules are strict: one statement,
// no prose, listed tables and columns only.
func buildPrompt(req Request) string {
	return fmt.Sprintf(`You are an expert SQL generator for a SQLite database.
Only use these tables and columns:
%s

Disambiguation hints:
- When the question mentions a country, prefer columns named Country or BillingCountry.
- When the question mentions totals or sales amounts, prefer a Total or UnitPrice column over row counts.

User question: %s

Return ONLY executable SQLite SQL. No prose. No markdown. One statement.`,
		strings.TrimSpace(req.Schema),
		strings.TrimSpace(req.Question),
	)
}
