package core

import (
	"testing"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2024-02-01", "2024-02-01T00:00:00"},
		{"2024-02-01T10:30:00", "2024-02-01T10:30:00"},
		{"2024-12-31T23:59", "2024-12-31T23:59"},
	}
	for i, tc := range cases {
		if got := NormalizeDate(tc.in); got != tc.want {
			t.Fatalf("case %d: got %q, want %q", i, got, tc.want)
		}
	}
}

func TestValidateDate(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"2024-02-01", true},
		{"2024-02-01T00:00:00", true},
		{"2024-02-01T10:30", true},
		{"", false},
		{"01/02/2024", false},
		{"not-a-date", false},
	}
	for i, tc := range cases {
		err := ValidateDate(tc.in)
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseType(t *testing.T) {
	cases := []struct {
		in   string
		want TransactionType
		ok   bool
	}{
		{"deposit", Deposit, true},
		{"Deposit", Deposit, true},
		{"WITHDRAWAL", Withdrawal, true},
		{" withdrawal ", Withdrawal, true},
		{"transfer", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		got, err := ParseType(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("case %d: got (%q, %v), want %q", i, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestNewTransactionFoldsSign(t *testing.T) {
	tn := NewTransaction("Rent", -500, Withdrawal, "2024-02-01")
	if tn.Amount != 500 {
		t.Fatalf("amount should be stored unsigned, got %v", tn.Amount)
	}
	if tn.Date != "2024-02-01T00:00:00" {
		t.Fatalf("date not normalized: %q", tn.Date)
	}
	if tn.ID == "" || tn.CreatedAt == "" {
		t.Fatal("id and createdAt must be assigned at creation")
	}
	if tn.Signed() != -500 {
		t.Fatalf("withdrawal must contribute negatively, got %v", tn.Signed())
	}
}

func TestTransactionValidate(t *testing.T) {
	good := Transaction{ID: "1", Description: "Salary", Amount: 1000, Type: Deposit, Date: "2024-02-01T00:00:00"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "1", Description: "", Amount: 1, Type: Deposit, Date: "2024-02-01"},
		{ID: "1", Description: "a", Amount: -1, Type: Deposit, Date: "2024-02-01"},
		{ID: "1", Description: "a", Amount: 1, Type: "TRANSFER", Date: "2024-02-01"},
		{ID: "1", Description: "a", Amount: 1, Type: Deposit, Date: "bad"},
	}
	for i, tn := range bads {
		if err := tn.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestDedupKey(t *testing.T) {
	tn := Transaction{Description: "Rent", Date: "2024-02-01"}
	if got := tn.DedupKey(); got != "2024-02-01T00:00:00|Rent" {
		t.Fatalf("unexpected dedup key %q", got)
	}
}

func TestSummarize(t *testing.T) {
	items := []Transaction{
		{Description: "Salary", Amount: 1000, Type: Deposit},
		{Description: "Rent", Amount: 500, Type: Withdrawal},
		{Description: "Groceries", Amount: 120.50, Type: Withdrawal},
	}
	s := Summarize(items)
	if s.Income != 1000 || s.Expenses != 620.50 {
		t.Fatalf("unexpected sums: %+v", s)
	}
	if s.Balance != s.Income-s.Expenses {
		t.Fatalf("balance invariant violated: %+v", s)
	}
	if s.TotalTransactions != 3 {
		t.Fatalf("unexpected count: %d", s.TotalTransactions)
	}

	signed := 0.0
	for _, tn := range items {
		signed += tn.Signed()
	}
	if s.Balance != signed {
		t.Fatalf("balance %v != signed sum %v", s.Balance, signed)
	}
}
