package httpapi

import (
	"encoding/csv"
	"fmt"
	"net/http"
)

// handleExport streams a table as a CSV download.  "authorized" exports
// the registry (without encodings); anything else exports the captured
// event ledger, matching the original report downloads.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")

	var (
		rows [][]string
		err  error
	)
	if table == "authorized" {
		rows, err = s.reports.AuthorizedRows(r.Context())
	} else {
		table = "captured"
		rows, err = s.reports.CapturedRows(r.Context())
	}
	if err != nil {
		s.logger.Printf("export %s error: %v", table, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", table+"_data.csv"))

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		s.logger.Printf("export %s write error: %v", table, err)
	}
}
