package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"budsjett/internal/cache"
	"budsjett/internal/engine"
	"budsjett/internal/log"
	"budsjett/internal/services"
	"budsjett/internal/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budsjett.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	reports := cache.NewLRUCache[engine.Report](8, time.Minute)
	svc := services.NewBudgetService(repo, nil, reports, logger)

	srv := NewServer(":0", svc, logger)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(func() { srv.rateLimiter.stop() })
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *nethttp.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := nethttp.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := nethttp.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *nethttp.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

type idResponse struct {
	ID string
}

// seedHousehold builds a minimal group/sub-category/template over the API.
func seedHousehold(t *testing.T, base string) (groupID, subID string) {
	t.Helper()

	resp := doJSON(t, "POST", base+"/api/groups", map[string]any{
		"name":          "Mat",
		"forecast_type": "variable",
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("create group: status %d", resp.StatusCode)
	}
	groupID = decode[idResponse](t, resp).ID

	resp = doJSON(t, "POST", base+"/api/sub-categories", map[string]any{
		"name":            "Dagligvarer",
		"budget_group_id": groupID,
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("create sub-category: status %d", resp.StatusCode)
	}
	subID = decode[idResponse](t, resp).ID

	resp = doJSON(t, "POST", base+"/api/templates", map[string]any{
		"name":       "Standard",
		"is_default": true,
		"sub_category_amounts": map[string]int64{
			subID: 400000,
		},
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("create template: status %d", resp.StatusCode)
	}
	return groupID, subID
}

func TestReportEndpoint(t *testing.T) {
	ts := newTestServer(t)
	seedHousehold(t, ts.URL)

	resp := doJSON(t, "GET", ts.URL+"/api/report?month=2025-03", nil)
	if resp.StatusCode != nethttp.StatusOK {
		t.Fatalf("report: status %d", resp.StatusCode)
	}
	rep := decode[struct {
		Month       string
		TotalBudget struct{ Cents int64 }
	}](t, resp)
	if rep.Month != "2025-03" {
		t.Fatalf("month = %q", rep.Month)
	}
	if rep.TotalBudget.Cents != 400000 {
		t.Fatalf("total budget = %d, want 400000", rep.TotalBudget.Cents)
	}
}

func TestReportRejectsMalformedMonth(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "GET", ts.URL+"/api/report?month=march", nil)
	if resp.StatusCode != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBudgetOverrideWriteAndClear(t *testing.T) {
	ts := newTestServer(t)
	_, subID := seedHousehold(t, ts.URL)
	url := fmt.Sprintf("%s/api/months/2025-03/sub-categories/%s", ts.URL, subID)

	resp := doJSON(t, "PUT", url, map[string]any{"amount_cents": 450000, "mode": "OVERRIDE"})
	if resp.StatusCode != nethttp.StatusNoContent {
		t.Fatalf("set override: status %d", resp.StatusCode)
	}

	resp = doJSON(t, "GET", ts.URL+"/api/report?month=2025-03", nil)
	rep := decode[struct {
		TotalBudget struct{ Cents int64 }
	}](t, resp)
	if rep.TotalBudget.Cents != 450000 {
		t.Fatalf("after override = %d, want 450000", rep.TotalBudget.Cents)
	}

	resp = doJSON(t, "DELETE", url, nil)
	if resp.StatusCode != nethttp.StatusNoContent {
		t.Fatalf("clear override: status %d", resp.StatusCode)
	}

	// Clearing the override reverts the month to the template amount.
	resp = doJSON(t, "GET", ts.URL+"/api/report?month=2025-03", nil)
	rep = decode[struct {
		TotalBudget struct{ Cents int64 }
	}](t, resp)
	if rep.TotalBudget.Cents != 400000 {
		t.Fatalf("after clear = %d, want template 400000", rep.TotalBudget.Cents)
	}
}

func TestLockedMonthReturns423(t *testing.T) {
	ts := newTestServer(t)
	_, subID := seedHousehold(t, ts.URL)

	resp := doJSON(t, "PUT", ts.URL+"/api/months/2025-03/lock", map[string]any{"locked": true})
	if resp.StatusCode != nethttp.StatusNoContent {
		t.Fatalf("lock: status %d", resp.StatusCode)
	}

	url := fmt.Sprintf("%s/api/months/2025-03/sub-categories/%s", ts.URL, subID)
	resp = doJSON(t, "PUT", url, map[string]any{"amount_cents": 1})
	if resp.StatusCode != nethttp.StatusLocked {
		t.Fatalf("write on locked month: status %d, want 423", resp.StatusCode)
	}
}

func TestTransactionCRUD(t *testing.T) {
	ts := newTestServer(t)
	_, subID := seedHousehold(t, ts.URL)

	resp := doJSON(t, "POST", ts.URL+"/api/transactions", map[string]any{
		"date":            "2025-03-10",
		"amount_cents":    25000,
		"type":            "expense",
		"sub_category_id": subID,
		"description":     "groceries",
	})
	if resp.StatusCode != nethttp.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	txn := decode[idResponse](t, resp)
	if txn.ID == "" {
		t.Fatal("created transaction has no id")
	}

	resp = doJSON(t, "GET", ts.URL+"/api/transactions?month=2025-03", nil)
	listed := decode[[]idResponse](t, resp)
	if len(listed) != 1 || listed[0].ID != txn.ID {
		t.Fatalf("list = %+v, want the created transaction", listed)
	}

	resp = doJSON(t, "GET", ts.URL+"/api/transactions?month=2025-04", nil)
	if listed := decode[[]idResponse](t, resp); len(listed) != 0 {
		t.Fatalf("other month list = %+v, want empty", listed)
	}

	resp = doJSON(t, "DELETE", ts.URL+"/api/transactions/"+txn.ID, nil)
	if resp.StatusCode != nethttp.StatusNoContent {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp = doJSON(t, "DELETE", ts.URL+"/api/transactions/"+txn.ID, nil)
	if resp.StatusCode != nethttp.StatusNotFound {
		t.Fatalf("second delete: status %d, want 404", resp.StatusCode)
	}
}

func TestInvalidTransactionReturns422(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, "POST", ts.URL+"/api/transactions", map[string]any{
		"date":         "2025-03-10",
		"amount_cents": -5,
		"type":         "expense",
	})
	if resp.StatusCode != nethttp.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHealthEndpoints(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := nethttp.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != nethttp.StatusOK {
			t.Fatalf("%s: status %d", path, resp.StatusCode)
		}
	}
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(3)
	defer rl.stop()

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("request %d should pass", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Fatal("fourth request in the window should be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Fatal("other clients are limited independently")
	}
}
