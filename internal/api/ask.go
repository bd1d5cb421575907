package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/asksql/asksql/internal/chart"
	"github.com/asksql/asksql/internal/nl2sql"
	"github.com/asksql/asksql/internal/observability"
	"github.com/asksql/asksql/internal/query"
)

type askRequest struct {
	Question    string `json:"question"`
	RowLimit    int    `json:"row_limit"`
	RenderChart *bool  `json:"render_chart"`
}

type askChart struct {
	Kind  string `json:"kind"`
	Image string `json:"image"`
}

type askError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

type askResponse struct {
	Question string         `json:"question"`
	SQL      string         `json:"sql"`
	Provider string         `json:"provider"`
	Model    string         `json:"model"`
	Columns  []string       `json:"columns,omitempty"`
	Rows     [][]any        `json:"rows,omitempty"`
	Stats    map[string]any `json:"stats,omitempty"`
	Chart    *askChart      `json:"chart,omitempty"`
	Error    *askError      `json:"error,omitempty"`
}

// handleAsk runs the whole pipeline: schema context, translation, execution,
// chart selection and rendering. Execution failures are reported in-band with
// the generated SQL so callers can show what the model produced; only
// translation failures abort the request.
func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Translator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TRANSLATE_NOT_CONFIGURED", "natural-language translation is not configured", false, nil)
		return
	}
	if deps.Schema == nil || deps.Engine == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "ask pipeline dependencies are not configured", false, nil)
		return
	}

	var req askRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "question is required", false, nil)
		return
	}

	translation, err := deps.Translator.Translate(r.Context(), nl2sql.Request{
		Question: req.Question,
		Schema:   deps.Schema.DescribeText(r.Context()),
	})
	observability.ObserveTranslation(translation.Provider, err)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to translate question", true, map[string]any{"details": err.Error()})
		return
	}

	response := askResponse{
		Question: req.Question,
		SQL:      translation.SQL,
		Provider: translation.Provider,
		Model:    translation.Model,
	}

	rowLimit := req.RowLimit
	if rowLimit <= 0 {
		rowLimit = deps.RowLimit
	}

	result, err := deps.Engine.Execute(r.Context(), query.Request{
		SQL:      translation.SQL,
		RowLimit: rowLimit,
	})
	observability.ObserveQuery(result.Duration, err)
	if err != nil {
		message := err.Error()
		var execErr *query.ExecutionError
		if errors.As(err, &execErr) {
			message = execErr.Err.Error()
		}
		response.Error = &askError{ErrorCode: "QUERY_EXECUTION_FAILED", Message: message}
		writeJSON(w, http.StatusOK, response)
		return
	}

	response.Columns = result.Columns
	response.Rows = result.Rows
	response.Stats = map[string]any{
		"duration_ms": result.Duration.Milliseconds(),
		"row_count":   len(result.Rows),
	}

	wantChart := deps.ChartEnabled && deps.Renderer != nil
	if req.RenderChart != nil && !*req.RenderChart {
		wantChart = false
	}
	if wantChart {
		if kind := chart.Decide(req.Question, result); kind != chart.KindNone {
			image, renderErr := deps.Renderer.Render(result, kind, req.Question)
			if renderErr != nil {
				if deps.Logger != nil {
					deps.Logger.WarnContext(r.Context(), "chart render failed",
						"kind", string(kind),
						"error", renderErr,
					)
				}
			} else {
				observability.IncrementChartRendered(string(kind))
				response.Chart = &askChart{Kind: string(kind), Image: image}
			}
		}
	}

	writeJSON(w, http.StatusOK, response)
}
