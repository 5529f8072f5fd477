package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"saldo/internal/core"
	"saldo/internal/services"
	"saldo/internal/storage/memory"
	"saldo/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := store.New(context.Background(), memory.New(), store.DefaultPageSize)
	svc := services.NewTrackerService(st, nil)
	srv := NewServer(":0", svc)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := doJSON(t, srv, http.MethodGet, path, "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rr.Code)
		}
	}
}

func TestCreateAndList(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"Salary","amount":1000,"type":"deposit","date":"2026-02-01"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	created := decodeBody[struct {
		Transaction     core.Transaction `json:"transaction"`
		HiddenByFilters bool             `json:"hiddenByFilters"`
	}](t, rr)
	if created.Transaction.ID == "" {
		t.Error("created transaction should carry an id")
	}
	if created.HiddenByFilters {
		t.Error("default filters should not hide a new transaction")
	}

	rr = doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	list := decodeBody[listResponse](t, rr)
	if len(list.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list.Items))
	}
	if list.Pagination.TotalItems != 1 {
		t.Errorf("pagination total = %d, want 1", list.Pagination.TotalItems)
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid type", `{"description":"x","amount":1,"type":"transfer","date":"2026-02-01"}`, http.StatusUnprocessableEntity},
		{"empty description", `{"description":"  ","amount":1,"type":"deposit","date":"2026-02-01"}`, http.StatusUnprocessableEntity},
		{"bad date", `{"description":"x","amount":1,"type":"deposit","date":"02/01/2026"}`, http.StatusUnprocessableEntity},
		{"malformed body", `{`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doJSON(t, srv, http.MethodPost, "/transactions", tt.body)
			if rr.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	srv := newTestServer(t)

	rr := doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"Rent","amount":500,"type":"withdrawal","date":"2026-02-02"}`)
	created := decodeBody[struct {
		Transaction core.Transaction `json:"transaction"`
	}](t, rr)
	id := created.Transaction.ID

	rr = doJSON(t, srv, http.MethodPut, "/transactions/"+id,
		`{"description":"Rent February","amount":550,"type":"withdrawal","date":"2026-02-02"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, srv, http.MethodGet, "/transactions", "")
	list := decodeBody[listResponse](t, rr)
	if len(list.Items) != 1 || list.Items[0].Description != "Rent February" {
		t.Fatalf("unexpected items after update: %+v", list.Items)
	}
	if list.Items[0].ID != id {
		t.Error("update should preserve the transaction id")
	}

	rr = doJSON(t, srv, http.MethodPut, "/transactions/unknown-id",
		`{"description":"x","amount":1,"type":"deposit","date":"2026-02-01"}`)
	if rr.Code != http.StatusNotFound {
		t.Errorf("update unknown id status = %d, want 404", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodDelete, "/transactions/"+id, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodDelete, "/transactions/"+id, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rr.Code)
	}
}

func TestUndoRedoEndpoints(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"Salary","amount":1000,"type":"deposit","date":"2026-02-01"}`)

	rr := doJSON(t, srv, http.MethodPost, "/undo", "")
	undo := decodeBody[struct {
		Applied bool `json:"applied"`
	}](t, rr)
	if !undo.Applied {
		t.Fatal("undo after add should apply")
	}

	rr = doJSON(t, srv, http.MethodGet, "/transactions", "")
	if list := decodeBody[listResponse](t, rr); len(list.Items) != 0 {
		t.Fatalf("expected empty collection after undo, got %d items", len(list.Items))
	}

	rr = doJSON(t, srv, http.MethodPost, "/redo", "")
	if redo := decodeBody[struct {
		Applied bool `json:"applied"`
	}](t, rr); !redo.Applied {
		t.Fatal("redo after undo should apply")
	}

	rr = doJSON(t, srv, http.MethodPost, "/redo", "")
	if redo := decodeBody[struct {
		Applied bool `json:"applied"`
	}](t, rr); redo.Applied {
		t.Error("second redo should be a no-op")
	}
}

func TestFiltersAndPagination(t *testing.T) {
	srv := newTestServer(t)

	rows := []string{
		`{"description":"Salary","amount":1000,"type":"deposit","date":"2026-02-01"}`,
		`{"description":"Rent","amount":500,"type":"withdrawal","date":"2026-02-02"}`,
		`{"description":"Coffee","amount":3.5,"type":"withdrawal","date":"2026-02-03"}`,
	}
	for _, row := range rows {
		if rr := doJSON(t, srv, http.MethodPost, "/transactions", row); rr.Code != http.StatusCreated {
			t.Fatalf("seed create failed: %d", rr.Code)
		}
	}

	rr := doJSON(t, srv, http.MethodPost, "/filters/type", `{"type":"withdrawal"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set type filter status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/transactions", "")
	list := decodeBody[listResponse](t, rr)
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 withdrawals, got %d", len(list.Items))
	}

	rr = doJSON(t, srv, http.MethodPost, "/filters/type", `{"type":"bogus"}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bogus type filter status = %d, want 422", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/filters/dates", `{"fromDate":"not-a-date","toDate":""}`)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad date bound status = %d, want 422", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodPost, "/page", `{"page":7}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("set page status = %d", rr.Code)
	}
	rr = doJSON(t, srv, http.MethodGet, "/transactions", "")
	list = decodeBody[listResponse](t, rr)
	if len(list.Items) != 0 {
		t.Errorf("out-of-range page should yield an empty page, got %d items", len(list.Items))
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"Salary","amount":1000,"type":"deposit","date":"2026-02-01"}`)
	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"Rent","amount":500,"type":"withdrawal","date":"2026-02-02"}`)

	rr := doJSON(t, srv, http.MethodGet, "/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rr.Code)
	}
	got := decodeBody[summaryResponse](t, rr)
	if got.Summary.Balance != 500 {
		t.Errorf("balance = %v, want 500", got.Summary.Balance)
	}
	if got.MaxAmount != 1000 {
		t.Errorf("maxAmount = %v, want 1000", got.MaxAmount)
	}
	if got.HasActiveFilters {
		t.Error("no filters are active")
	}
	if !got.CanUndo {
		t.Error("undo should be available after two adds")
	}
}

func TestListResponseCaching(t *testing.T) {
	srv := newTestServer(t)

	doJSON(t, srv, http.MethodPost, "/transactions",
		`{"description":"Salary","amount":1000,"type":"deposit","date":"2026-02-01"}`)

	first := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if srv.listCache.Size() != 1 {
		t.Fatalf("expected 1 cached list entry, got %d", srv.listCache.Size())
	}
	second := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if first.Body.String() != second.Body.String() {
		t.Error("cached response should match the computed one")
	}
}

func TestImportExportEndpoints(t *testing.T) {
	srv := newTestServer(t)

	csv := strings.Join([]string{
		"Date,Amount,Description,Type",
		`2026-02-01,1000,"Salary",Deposit`,
		`2026-02-02,-500,"Rent",Withdrawal`,
	}, "\n")

	rr := doJSON(t, srv, http.MethodPost, "/import", csv)
	if rr.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rr.Code, rr.Body.String())
	}
	res := decodeBody[struct {
		Imported int `json:"imported"`
		Skipped  int `json:"skipped"`
	}](t, rr)
	if res.Imported != 2 || res.Skipped != 0 {
		t.Fatalf("unexpected import result: %+v", res)
	}

	rr = doJSON(t, srv, http.MethodPost, "/import", "Wrong,Header\nrow")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad header import status = %d, want 422", rr.Code)
	}

	rr = doJSON(t, srv, http.MethodGet, "/export", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("export status = %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("export content type = %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "transactions.csv") {
		t.Errorf("export content disposition = %q", cd)
	}
	if !strings.HasPrefix(rr.Body.String(), "Date,Amount,Description,Type") {
		t.Errorf("export body missing header: %q", rr.Body.String())
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	srv := newTestServer(t)

	var last int
	for i := 0; i < 61; i++ {
		rr := doJSON(t, srv, http.MethodPost, "/undo", "")
		last = rr.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("61st mutating request status = %d, want 429", last)
	}

	// Reads are not rate limited
	rr := doJSON(t, srv, http.MethodGet, "/transactions", "")
	if rr.Code != http.StatusOK {
		t.Errorf("read after rate limit status = %d, want 200", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPut, "/transactions"},
		{http.MethodGet, "/undo"},
		{http.MethodGet, "/redo"},
		{http.MethodPost, "/summary"},
		{http.MethodGet, "/import"},
		{http.MethodPost, "/export"},
	}
	for _, tt := range tests {
		rr := doJSON(t, srv, tt.method, tt.path, "")
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s %s status = %d, want 405", tt.method, tt.path, rr.Code)
		}
	}
}
