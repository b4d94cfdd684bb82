package http

import (
	"net/http"
	"strings"

	"budsjett/internal/core"
	"budsjett/internal/storage"
)

type groupRequest struct {
	Name             string   `json:"name"`
	Icon             string   `json:"icon"`
	ForecastType     string   `json:"forecast_type"`
	DefaultAccountID string   `json:"default_account_id"`
	LinkedBucketIDs  []string `json:"linked_bucket_ids"`
	IsCatchAll       bool     `json:"is_catch_all"`
}

func (req groupRequest) toDomain(id string) core.BudgetGroup {
	return core.BudgetGroup{
		ID:               id,
		Name:             strings.TrimSpace(req.Name),
		Icon:             req.Icon,
		ForecastType:     core.ForecastType(req.ForecastType),
		DefaultAccountID: req.DefaultAccountID,
		LinkedBucketIDs:  req.LinkedBucketIDs,
		IsCatchAll:       req.IsCatchAll,
	}
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.svc.Storage().ListGroups(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if groups == nil {
		groups = []core.BudgetGroup{}
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	created, err := s.svc.CreateGroup(r.Context(), req.toDomain(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	g := req.toDomain(r.PathValue("id"))
	if err := s.svc.UpdateGroup(r.Context(), g); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteGroup(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type subCategoryRequest struct {
	Name           string `json:"name"`
	Icon           string `json:"icon"`
	MainCategoryID string `json:"main_category_id"`
	BudgetGroupID  string `json:"budget_group_id"`
	IsSavings      bool   `json:"is_savings"`
	AccountID      string `json:"account_id"`
}

func (req subCategoryRequest) toDomain(id string) core.SubCategory {
	return core.SubCategory{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		Icon:           req.Icon,
		MainCategoryID: req.MainCategoryID,
		BudgetGroupID:  req.BudgetGroupID,
		IsSavings:      req.IsSavings,
		AccountID:      req.AccountID,
	}
}

func (s *Server) handleListSubCategories(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.Storage().ListSubCategories(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if subs == nil {
		subs = []core.SubCategory{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (s *Server) handleCreateSubCategory(w http.ResponseWriter, r *http.Request) {
	var req subCategoryRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	created, err := s.svc.CreateSubCategory(r.Context(), req.toDomain(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateSubCategory(w http.ResponseWriter, r *http.Request) {
	var req subCategoryRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	sub := req.toDomain(r.PathValue("id"))
	if err := s.svc.UpdateSubCategory(r.Context(), sub); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSubCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type goalSpecRequest struct {
	TargetAmountCents int64  `json:"target_amount_cents"`
	StartSaving       string `json:"start_saving"`
	TargetMonth       string `json:"target_month"`
	PaymentSource     string `json:"payment_source"`
	EventStart        string `json:"event_start"`
	EventEnd          string `json:"event_end"`
	ArchivedMonth     string `json:"archived_month"`
}

type bucketRequest struct {
	Name          string           `json:"name"`
	Icon          string           `json:"icon"`
	Kind          string           `json:"kind"`
	BudgetGroupID string           `json:"budget_group_id"`
	Goal          *goalSpecRequest `json:"goal,omitempty"`
}

func (req bucketRequest) toDomain(id string) core.Bucket {
	b := core.Bucket{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Icon:          req.Icon,
		Kind:          core.BucketKind(req.Kind),
		BudgetGroupID: req.BudgetGroupID,
	}
	if req.Goal != nil {
		b.Goal = &core.GoalSpec{
			TargetAmount:  core.Money{Cents: req.Goal.TargetAmountCents},
			StartSaving:   core.MonthKey(req.Goal.StartSaving),
			Target:        core.MonthKey(req.Goal.TargetMonth),
			PaymentSource: core.GoalPaymentSource(req.Goal.PaymentSource),
			EventStart:    req.Goal.EventStart,
			EventEnd:      req.Goal.EventEnd,
			Archived:      core.MonthKey(req.Goal.ArchivedMonth),
		}
	}
	return b
}

func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets, err := s.svc.Storage().ListBuckets(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if buckets == nil {
		buckets = []core.Bucket{}
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	var req bucketRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	created, err := s.svc.CreateBucket(r.Context(), req.toDomain(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBucket(w http.ResponseWriter, r *http.Request) {
	var req bucketRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	b := req.toDomain(r.PathValue("id"))
	if err := s.svc.UpdateBucket(r.Context(), b); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleDeleteBucket removes a bucket either for one month (?scope=MONTH,
// requires ?month=) or entirely (?scope=ALL, the default).
func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	scope := storage.DeleteScope(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("scope"))))
	if scope == "" {
		scope = storage.DeleteAll
	}

	var month core.MonthKey
	switch scope {
	case storage.DeleteAll:
	case storage.DeleteMonth:
		var err error
		month, err = core.ParseMonthKey(r.URL.Query().Get("month"))
		if err != nil {
			badRequest(w, "scope=MONTH requires month=YYYY-MM")
			return
		}
	default:
		badRequest(w, "scope must be MONTH or ALL")
		return
	}

	if err := s.svc.DeleteBucket(r.Context(), r.PathValue("id"), scope, month); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
