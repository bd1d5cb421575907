package nl2sql

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRe = regexp.MustCompile("(?is)```(?:sql)?(.*?)```")
	sqlKeywordRe  = regexp.MustCompile(`(?is)\b(select|with)\b`)
)

// ExtractSQL pulls a single executable statement out of free-form model text.
// It prefers a fenced code block, falls back to everything from the first
// SELECT/WITH keyword, strips comment and stray fence lines, and truncates at
// the first semicolon (appending one when absent). It is a best-effort
// heuristic, not a parser: a semicolon inside a string literal truncates the
// statement early. Running it on its own output is a no-op.
func ExtractSQL(raw string) string {
	candidate := raw
	if match := fencedBlockRe.FindStringSubmatch(raw); match != nil {
		candidate = match[1]
	} else if loc := sqlKeywordRe.FindStringIndex(raw); loc != nil {
		candidate = raw[loc[0]:]
	}

	var kept []string
	for _, line := range strings.Split(candidate, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "--") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "```") {
			continue
		}
		kept = append(kept, line)
	}

	sqlText := strings.TrimSpace(strings.Join(kept, "\n"))
	if idx := strings.Index(sqlText, ";"); idx != -1 {
		sqlText = sqlText[:idx+1]
	} else {
		sqlText += ";"
	}
	return strings.TrimSpace(sqlText)
}
