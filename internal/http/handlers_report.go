package http

import (
	"net/http"
)

// handleReport serves the fully resolved month report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	month, err := monthQuery(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}

	rep, err := s.svc.Report(r.Context(), month)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
