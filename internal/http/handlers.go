package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"saldo/internal/cache"
	"saldo/internal/core"
	"saldo/internal/csvio"
	"saldo/internal/services"
	"saldo/internal/store"
)

type transactionRequest struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
}

type listResponse struct {
	Items      []core.Transaction   `json:"items"`
	Pagination store.PaginationInfo `json:"pagination"`
	Filters    store.Filters        `json:"filters"`
	Version    uint64               `json:"version"`
}

type summaryResponse struct {
	Summary          core.BalanceSummary `json:"summary"`
	MaxAmount        float64             `json:"maxAmount"`
	HasActiveFilters bool                `json:"hasActiveFilters"`
	CanUndo          bool                `json:"canUndo"`
	CanRedo          bool                `json:"canRedo"`
	Version          uint64              `json:"version"`
}

type filtersResponse struct {
	Filters store.Filters `json:"filters"`
	Version uint64        `json:"version"`
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleList(w, r)
	case http.MethodPost:
		s.handleCreate(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	snap := s.service.Store().Snapshot()
	key := "list:" + strconv.FormatUint(snap.Version, 10)

	if body, found := s.listCache.Get(key); found {
		slog.DebugContext(r.Context(), "List cache hit", "version", snap.Version)
		writeCachedJSON(w, body)
		return
	}

	resp := listResponse{
		Items:      store.Paginated(snap),
		Pagination: store.Pagination(snap),
		Filters:    snap.Filters,
		Version:    snap.Version,
	}
	s.cacheAndWrite(w, s.listCache, key, resp)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	typ, err := core.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid transaction type")
		return
	}

	result, err := s.service.Add(r.Context(), sanitizeInput(req.Description), req.Amount, typ, strings.TrimSpace(req.Date))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"transaction":     result.Transaction,
		"hiddenByFilters": result.HiddenByFilters,
	})
}

func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/transactions/")
	if id == "" || strings.Contains(id, "/") {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.handleUpdate(w, r, id)
	case http.MethodDelete:
		s.handleDelete(w, r, id)
	default:
		methodNotAllowed(w, http.MethodPut, http.MethodDelete)
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, found := s.findByID(id)
	if !found {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	typ, err := core.ParseType(req.Type)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid transaction type")
		return
	}

	updated := existing
	updated.Description = sanitizeInput(req.Description)
	updated.Amount = req.Amount
	if updated.Amount < 0 {
		updated.Amount = -updated.Amount
	}
	updated.Type = typ
	updated.Date = core.NormalizeDate(strings.TrimSpace(req.Date))

	if err := s.service.Update(r.Context(), updated); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transaction": updated})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			writeError(w, http.StatusNotFound, "transaction not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	applied := s.service.Undo(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": applied,
		"version": s.service.Store().Snapshot().Version,
	})
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	applied := s.service.Redo(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"applied": applied,
		"version": s.service.Store().Snapshot().Version,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	snap := s.service.Store().Snapshot()
	key := "summary:" + strconv.FormatUint(snap.Version, 10)

	if body, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "version", snap.Version)
		writeCachedJSON(w, body)
		return
	}

	resp := summaryResponse{
		Summary:          store.Summary(snap),
		MaxAmount:        store.MaxAmount(snap),
		HasActiveFilters: store.HasActiveFilters(snap),
		CanUndo:          s.service.Store().CanUndo(),
		CanRedo:          s.service.Store().CanRedo(),
		Version:          snap.Version,
	}
	s.cacheAndWrite(w, s.summaryCache, key, resp)
}

func (s *Server) handleSetSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Search string `json:"search"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.service.Store().SetSearch(req.Search)
	s.writeFilters(w)
}

func (s *Server) handleSetType(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Type string `json:"type"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tf, ok := parseTypeFilter(req.Type)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "invalid type filter")
		return
	}
	s.service.Store().SetType(tf)
	s.writeFilters(w)
}

func (s *Server) handleSetDateRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		FromDate string `json:"fromDate"`
		ToDate   string `json:"toDate"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	from := strings.TrimSpace(req.FromDate)
	to := strings.TrimSpace(req.ToDate)
	for _, d := range []string{from, to} {
		if d == "" {
			continue
		}
		if err := core.ValidateDate(d); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid date bound")
			return
		}
	}
	s.service.Store().SetDateRange(from, to)
	s.writeFilters(w)
}

func (s *Server) handleSetAmountRange(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		MinAmount *float64 `json:"minAmount"`
		MaxAmount *float64 `json:"maxAmount"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if (req.MinAmount != nil && *req.MinAmount < 0) || (req.MaxAmount != nil && *req.MaxAmount < 0) {
		writeError(w, http.StatusUnprocessableEntity, "amount bounds must be non-negative")
		return
	}
	s.service.Store().SetAmountRange(req.MinAmount, req.MaxAmount)
	s.writeFilters(w)
}

func (s *Server) handleSetPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	var req struct {
		Page int `json:"page"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.service.Store().SetPage(req.Page)
	snap := s.service.Store().Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"pagination": store.Pagination(snap),
		"version":    snap.Version,
	})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	result, err := s.service.ImportCSV(r.Context(), string(body))
	if err != nil {
		if errors.Is(err, csvio.ErrInvalidFormat) || errors.Is(err, csvio.ErrInvalidHeader) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"imported": len(result.Transactions),
		"skipped":  result.Skipped,
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	csv := s.service.ExportCSV(r.Context())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+csvio.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csv))
}

// cacheAndWrite marshals the response once, caches it under key and
// writes it out.
func (s *Server) cacheAndWrite(w http.ResponseWriter, c *cache.LRUCache[[]byte], key string, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	c.Set(key, body)
	writeCachedJSON(w, body)
}

func (s *Server) writeFilters(w http.ResponseWriter) {
	snap := s.service.Store().Snapshot()
	writeJSON(w, http.StatusOK, filtersResponse{Filters: snap.Filters, Version: snap.Version})
}

func (s *Server) findByID(id string) (core.Transaction, bool) {
	for _, t := range s.service.Store().Snapshot().Items {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}

func parseTypeFilter(v string) (store.TypeFilter, bool) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "ALL", "":
		return store.All, true
	case "DEPOSIT", "DEPOSITS":
		return store.Deposits, true
	case "WITHDRAWAL", "WITHDRAWALS":
		return store.Withdrawals, true
	default:
		return "", false
	}
}
