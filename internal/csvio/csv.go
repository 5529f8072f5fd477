// Package csvio encodes the transaction collection to CSV and decodes
// CSV text back into candidate records, deduplicating against an
// existing collection. It is stateless and operates only on snapshots.
package csvio

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"saldo/internal/core"
)

// Header is the exact column row both directions agree on.
const Header = "Date,Amount,Description,Type"

// FileName is the suggested name for exported files.
const FileName = "transactions.csv"

var (
	ErrInvalidFormat = errors.New("invalid CSV format")
	ErrInvalidHeader = errors.New("invalid CSV headers")
)

// ImportResult carries the accepted records and the number of rows that
// were rejected or deduplicated. Row-level problems never fail the
// import as a whole.
type ImportResult struct {
	Transactions []core.Transaction
	Skipped      int
}

// Export renders one row per transaction in input order. Amount is
// signed (negative for withdrawals), Description is quoted with internal
// quotes doubled, Type is capitalized.
func Export(items []core.Transaction) string {
	var b strings.Builder
	b.WriteString(Header)
	for _, t := range items {
		b.WriteByte('\n')
		b.WriteString(t.Date)
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(t.Signed(), 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(`"` + strings.ReplaceAll(t.Description, `"`, `""`) + `"`)
		b.WriteByte(',')
		b.WriteString(capitalize(string(t.Type)))
	}
	return b.String()
}

// Import parses CSV text line by line. It fails hard only on the two
// structural checks (minimum line count, exact header); every other
// problem skips the row and increments Skipped. Rows whose dedup key
// matches an existing record, or an earlier row of the same batch, are
// skipped as duplicates.
func Import(text string, existing []core.Transaction) (ImportResult, error) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return ImportResult{}, ErrInvalidFormat
	}
	if strings.TrimSpace(lines[0]) != Header {
		return ImportResult{}, ErrInvalidHeader
	}

	seen := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		seen[t.DedupKey()] = struct{}{}
	}

	result := ImportResult{Transactions: []core.Transaction{}}
	for _, row := range lines[1:] {
		cols := strings.Split(row, ",")
		if len(cols) != 4 {
			result.Skipped++
			continue
		}

		rawDate := cleanField(cols[0])
		rawAmount := cleanField(cols[1])
		rawDescription := cleanField(cols[2])
		rawType := cleanField(cols[3])

		if rawDate == "" || rawAmount == "" || rawDescription == "" || rawType == "" {
			result.Skipped++
			continue
		}

		typ, err := core.ParseType(rawType)
		if err != nil {
			result.Skipped++
			continue
		}

		amount, err := strconv.ParseFloat(rawAmount, 64)
		if err != nil {
			result.Skipped++
			continue
		}

		normalized := core.NormalizeDate(rawDate)
		key := normalized + "|" + rawDescription
		if _, dup := seen[key]; dup {
			result.Skipped++
			continue
		}
		seen[key] = struct{}{}

		result.Transactions = append(result.Transactions,
			core.NewTransaction(rawDescription, math.Abs(amount), typ, normalized))
	}

	return result, nil
}

// cleanField trims whitespace and strips one wrapping quote on each side.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, `"`)
	s = strings.TrimSuffix(s, `"`)
	return s
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
