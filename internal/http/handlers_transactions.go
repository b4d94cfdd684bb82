package http

import (
	"net/http"
	"strings"

	"budsjett/internal/core"
)

type transactionRequest struct {
	Date          string `json:"date"`
	AmountCents   int64  `json:"amount_cents"`
	Type          string `json:"type"`
	SubCategoryID string `json:"sub_category_id"`
	BucketID      string `json:"bucket_id"`
	AccountID     string `json:"account_id"`
	Description   string `json:"description"`
	IsHidden      bool   `json:"is_hidden"`
	ReimbursesID  string `json:"reimburses_id"`
}

func (req transactionRequest) toDomain(id string) core.Transaction {
	return core.Transaction{
		ID:            id,
		Date:          strings.TrimSpace(req.Date),
		Amount:        core.Money{Cents: req.AmountCents},
		Type:          core.TransactionType(req.Type),
		SubCategoryID: req.SubCategoryID,
		BucketID:      req.BucketID,
		AccountID:     req.AccountID,
		Description:   strings.TrimSpace(req.Description),
		IsHidden:      req.IsHidden,
		ReimbursesID:  req.ReimbursesID,
	}
}

// handleListTransactions lists transactions, optionally bounded by a
// month (?month=) or an inclusive date interval (?from=&to=).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	from := strings.TrimSpace(r.URL.Query().Get("from"))
	to := strings.TrimSpace(r.URL.Query().Get("to"))

	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, err := core.ParseMonthKey(v)
		if err != nil {
			badRequest(w, "month must be YYYY-MM")
			return
		}
		start := month.Time()
		from = start.Format("2006-01-02")
		to = start.AddDate(0, 1, -1).Format("2006-01-02")
	}

	txns, err := s.svc.Storage().ListTransactions(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	created, err := s.svc.CreateTransaction(r.Context(), req.toDomain(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := readJSON(r, &req); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	txn := req.toDomain(r.PathValue("id"))
	if err := s.svc.UpdateTransaction(r.Context(), txn); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
