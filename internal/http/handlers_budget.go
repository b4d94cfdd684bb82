package http

import (
	"net/http"

	"budsjett/internal/core"
)

// Budget writes follow the write-back contract: an explicit mode picks
// the governing template or this month's override map, and clears mark a
// deliberate reversion back to the template.

type amountRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Mode        string `json:"mode,omitempty"`
}

type bucketConfigRequest struct {
	AmountCents      int64  `json:"amount_cents"`
	DailyAmountCents int64  `json:"daily_amount_cents"`
	ActiveDays       []int  `json:"active_days"`
	Mode             string `json:"mode,omitempty"`
}

func (s *Server) handleSetSubCategoryBudget(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	var req amountRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	mode, ok := parseWriteMode(req.Mode)
	if !ok {
		badRequest(w, "mode must be TEMPLATE or OVERRIDE")
		return
	}

	err = s.svc.SetSubCategoryBudget(r.Context(), month, r.PathValue("id"),
		core.Money{Cents: req.AmountCents}, mode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSubCategoryOverride(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	if err := s.svc.ClearSubCategoryOverride(r.Context(), month, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetBucketConfig(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	var req bucketConfigRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	mode, ok := parseWriteMode(req.Mode)
	if !ok {
		badRequest(w, "mode must be TEMPLATE or OVERRIDE")
		return
	}

	cfg := core.BucketConfig{
		Amount:      core.Money{Cents: req.AmountCents},
		DailyAmount: core.Money{Cents: req.DailyAmountCents},
		ActiveDays:  req.ActiveDays,
	}
	if err := s.svc.SetBucketConfig(r.Context(), month, r.PathValue("id"), cfg, mode); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearBucketOverride(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	if err := s.svc.ClearBucketOverride(r.Context(), month, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetGroupLimit(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	var req amountRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	err = s.svc.SetGroupLimit(r.Context(), month, r.PathValue("id"), core.Money{Cents: req.AmountCents})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearGroupLimit(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	if err := s.svc.ClearGroupLimit(r.Context(), month, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetGoalMonthAmount(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	var req amountRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	err = s.svc.SetGoalMonthAmount(r.Context(), month, r.PathValue("id"), core.Money{Cents: req.AmountCents})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearGoalMonthAmount(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	if err := s.svc.ClearGoalMonthAmount(r.Context(), month, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetMonthLock(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	var req struct {
		Locked bool `json:"locked"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	if err := s.svc.SetMonthLock(r.Context(), month, req.Locked); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAssignTemplate(w http.ResponseWriter, r *http.Request) {
	month, err := monthPath(r)
	if err != nil {
		badRequest(w, "month must be YYYY-MM")
		return
	}
	var req struct {
		TemplateID string `json:"template_id"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	if err := s.svc.AssignTemplate(r.Context(), month, req.TemplateID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
