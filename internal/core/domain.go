package core

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Deposit    TransactionType = "DEPOSIT"
	Withdrawal TransactionType = "WITHDRAWAL"
)

type (
	TransactionType string

	// Transaction is a single recorded deposit or withdrawal event.
	// Amount is always stored non-negative; the sign is carried by Type.
	Transaction struct {
		ID          string          `json:"id"`
		Description string          `json:"description"`
		Amount      float64         `json:"amount"`
		Type        TransactionType `json:"type"`
		Date        string          `json:"date"`
		CreatedAt   string          `json:"createdAt"`
	}
)

var (
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid transaction type")
	ErrInvalidDate      = errors.New("invalid date")
)

// NewTransaction builds a Transaction with a fresh id and creation
// timestamp. The amount's sign is folded into the type-authoritative
// convention and the date is normalized to a fixed-width ISO form.
func NewTransaction(description string, amount float64, typ TransactionType, date string) Transaction {
	return Transaction{
		ID:          uuid.NewString(),
		Description: description,
		Amount:      math.Abs(amount),
		Type:        typ,
		Date:        NormalizeDate(date),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
}

func (tt TransactionType) IsValid() bool {
	return tt == Deposit || tt == Withdrawal
}

// ParseType recognizes "deposit" and "withdrawal" case-insensitively.
func ParseType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit":
		return Deposit, nil
	case "withdrawal":
		return Withdrawal, nil
	default:
		return "", ErrInvalidType
	}
}

// Signed returns the transaction's contribution to the balance:
// positive for deposits, negative for withdrawals.
func (t Transaction) Signed() float64 {
	if t.Type == Withdrawal {
		return -t.Amount
	}
	return t.Amount
}

// DedupKey identifies a logical record for CSV import deduplication.
func (t Transaction) DedupKey() string {
	return NormalizeDate(t.Date) + "|" + t.Description
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if t.Amount < 0 || math.IsNaN(t.Amount) || math.IsInf(t.Amount, 0) {
		return ErrInvalidAmount
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := ValidateDate(t.Date); err != nil {
		return err
	}
	return nil
}

// NormalizeDate appends a midnight time component to date-only values so
// that lexicographic order stays chronological across the collection.
func NormalizeDate(s string) string {
	if strings.Contains(s, "T") {
		return s
	}
	return s + "T00:00:00"
}

// ValidateDate accepts zero-padded ISO-8601 dates and date-times.
func ValidateDate(s string) error {
	if s == "" {
		return ErrInvalidDate
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"} {
		if _, err := time.Parse(layout, s); err == nil {
			return nil
		}
	}
	return ErrInvalidDate
}
