package http

import (
	"net/http"
	"strings"

	"budsjett/internal/core"
)

type templateRequest struct {
	Name               string           `json:"name"`
	IsDefault          bool             `json:"is_default"`
	SubCategoryAmounts map[string]int64 `json:"sub_category_amounts"`
	BucketConfigs      map[string]struct {
		AmountCents      int64 `json:"amount_cents"`
		DailyAmountCents int64 `json:"daily_amount_cents"`
		ActiveDays       []int `json:"active_days"`
	} `json:"bucket_configs"`
}

func (req templateRequest) toDomain() core.BudgetTemplate {
	t := core.BudgetTemplate{
		Name:               strings.TrimSpace(req.Name),
		IsDefault:          req.IsDefault,
		SubCategoryAmounts: make(map[string]core.Money, len(req.SubCategoryAmounts)),
		BucketConfigs:      make(map[string]core.BucketConfig, len(req.BucketConfigs)),
	}
	for id, cents := range req.SubCategoryAmounts {
		t.SubCategoryAmounts[id] = core.Money{Cents: cents}
	}
	for id, cfg := range req.BucketConfigs {
		t.BucketConfigs[id] = core.BucketConfig{
			Amount:      core.Money{Cents: cfg.AmountCents},
			DailyAmount: core.Money{Cents: cfg.DailyAmountCents},
			ActiveDays:  cfg.ActiveDays,
		}
	}
	return t
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.Storage().ListTemplates(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if templates == nil {
		templates = []core.BudgetTemplate{}
	}
	writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	created, err := s.svc.CreateTemplate(r.Context(), req.toDomain())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleSetDefaultTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.SetDefaultTemplate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.svc.Storage().ListAccounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if accounts == nil {
		accounts = []core.Account{}
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	created, err := s.svc.Storage().CreateAccount(r.Context(), core.Account{Name: strings.TrimSpace(req.Name)})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleListMainCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.svc.Storage().ListMainCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if cats == nil {
		cats = []core.MainCategory{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleCreateMainCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		Icon string `json:"icon"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	created, err := s.svc.Storage().CreateMainCategory(r.Context(), core.MainCategory{
		Name: strings.TrimSpace(req.Name),
		Icon: req.Icon,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetPayday(w http.ResponseWriter, r *http.Request) {
	payday, err := s.svc.Storage().Payday(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"payday": payday})
}

func (s *Server) handleSetPayday(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Payday int `json:"payday"`
	}
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if err := s.svc.SetPayday(r.Context(), req.Payday); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
