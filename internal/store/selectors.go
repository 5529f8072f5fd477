package store

import (
	"sort"
	"strings"

	"saldo/internal/core"
)

// PaginationInfo describes the current page within the filtered view.
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	TotalPages int  `json:"totalPages"`
	HasPrev    bool `json:"hasPrev"`
	HasNext    bool `json:"hasNext"`
	TotalItems int  `json:"totalItems"`
}

// Filtered applies search, type, date-range and amount-range predicates,
// all ANDed together.
func Filtered(st State) []core.Transaction {
	out := make([]core.Transaction, 0, len(st.Items))
	for _, t := range st.Items {
		if MatchesFilters(t, st.Filters) {
			out = append(out, t)
		}
	}
	return out
}

// Sorted returns the filtered view ordered by date descending. Ties keep
// the original collection order.
func Sorted(st State) []core.Transaction {
	out := Filtered(st)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// Paginated slices the sorted view to the current page. An out-of-range
// page yields an empty slice, never an error.
func Paginated(st State) []core.Transaction {
	items := Sorted(st)
	start := (st.Page - 1) * st.PageSize
	if start < 0 || start >= len(items) {
		return []core.Transaction{}
	}
	end := start + st.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Pagination reports page bounds over the filtered view. TotalPages is
// at least 1 even for an empty view.
func Pagination(st State) PaginationInfo {
	total := len(Sorted(st))
	totalPages := (total + st.PageSize - 1) / st.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return PaginationInfo{
		Page:       st.Page,
		PageSize:   st.PageSize,
		TotalPages: totalPages,
		HasPrev:    st.Page > 1,
		HasNext:    st.Page < totalPages,
		TotalItems: total,
	}
}

// Summary aggregates over all items, unfiltered.
func Summary(st State) core.BalanceSummary {
	return core.Summarize(st.Items)
}

// MaxAmount bounds a range-filter control: the largest magnitude across
// all items, never negative.
func MaxAmount(st State) float64 {
	max := 0.0
	for _, t := range st.Items {
		if t.Amount > max {
			max = t.Amount
		}
	}
	return max
}

// HasActiveFilters reports whether any filter beyond the search text is
// set; search alone does not light the filter badge.
func HasActiveFilters(st State) bool {
	f := st.Filters
	return (f.Type != All && f.Type != "") ||
		f.FromDate != "" || f.ToDate != "" ||
		f.MinAmount != nil || f.MaxAmount != nil
}

// MatchesFilters applies the same predicate composition as Filtered to a
// single candidate, e.g. to warn that a just-added record is hidden.
func MatchesFilters(t core.Transaction, f Filters) bool {
	if search := strings.ToLower(strings.TrimSpace(f.Search)); search != "" {
		if !strings.Contains(strings.ToLower(t.Description), search) {
			return false
		}
	}
	if f.Type != "" && f.Type != All && string(t.Type) != string(f.Type) {
		return false
	}
	if !inDateRange(t.Date, f.FromDate, f.ToDate) {
		return false
	}
	if f.MinAmount != nil && t.Amount < *f.MinAmount {
		return false
	}
	if f.MaxAmount != nil && t.Amount > *f.MaxAmount {
		return false
	}
	return true
}

// inDateRange compares ISO strings lexicographically. The item date is
// truncated to the bound's length so a date-only bound stays inclusive
// for date-time items on the boundary day: a bare compare of
// "2024-02-01T10:30:00" against toDate "2024-02-01" would exclude it.
func inDateRange(date, from, to string) bool {
	if from != "" && truncateTo(date, from) < from {
		return false
	}
	if to != "" && truncateTo(date, to) > to {
		return false
	}
	return true
}

func truncateTo(date, bound string) string {
	if len(date) > len(bound) {
		return date[:len(bound)]
	}
	return date
}
