// Package chart picks a chart type from question keywords and result shape,
// and rasterizes the first two result columns to a PNG data URI.
package chart

import (
	"strings"

	"github.com/asksql/asksql/internal/query"
)

type Kind string

const (
	KindNone Kind = ""
	KindBar  Kind = "bar"
	KindLine Kind = "line"
	KindPie  Kind = "pie"
)

var (
	lineKeywords = []string{"trend", "over time", "line chart", "month", "year"}
	pieKeywords  = []string{"percentage", "distribution", "share", "pie"}
	barKeywords  = []string{"top", "compare", "vs", "bar"}
)

// Decide infers the chart kind. Keyword signals in the question win; when no
// keyword matches, the shape of the first two columns decides (numeric y over
// categorical x is a bar, numeric over numeric is a line, a handful of rows
// makes a pie). KindNone means the result is not worth charting.
func Decide(question string, result query.Result) Kind {
	q := strings.ToLower(question)

	if containsAny(q, lineKeywords) {
		return KindLine
	}
	if containsAny(q, pieKeywords) {
		return KindPie
	}
	if containsAny(q, barKeywords) {
		return KindBar
	}

	if len(result.Columns) < 2 || len(result.Rows) == 0 {
		return KindNone
	}
	xNumeric := columnIsNumeric(result.Rows, 0)
	yNumeric := columnIsNumeric(result.Rows, 1)
	switch {
	case yNumeric && !xNumeric:
		return KindBar
	case yNumeric && xNumeric:
		return KindLine
	case len(result.Rows) <= 6:
		return KindPie
	default:
		return KindNone
	}
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// columnIsNumeric inspects the first non-nil value in the column.
func columnIsNumeric(rows [][]any, index int) bool {
	for _, row := range rows {
		if index >= len(row) || row[index] == nil {
			continue
		}
		_, ok := toFloat(row[index])
		return ok
	}
	return false
}

func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case int:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case uint64:
		return float64(typed), true
	case float32:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}
