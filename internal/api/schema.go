package api

import (
	"net/http"
)

type schemaTable struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
}

func handleSchema(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Schema == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "SCHEMA_NOT_CONFIGURED", "schema dependency is not configured", false, nil)
		return
	}

	descriptor, err := deps.Schema.Describe(r.Context())
	if err != nil {
		// Introspection failure degrades to the static table list so the
		// translate path keeps working against a missing database.
		writeJSON(w, http.StatusOK, map[string]any{
			"tables":      []schemaTable{},
			"text":        deps.Schema.DescribeText(r.Context()),
			"placeholder": true,
		})
		return
	}

	tables := make([]schemaTable, 0, len(descriptor.Tables))
	for _, table := range descriptor.Tables {
		tables = append(tables, schemaTable{Name: table.Name, Columns: table.Columns})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tables":      tables,
		"text":        descriptor.Text(),
		"placeholder": false,
	})
}
