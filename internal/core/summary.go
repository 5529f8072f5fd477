package core

// BalanceSummary aggregates the whole collection, ignoring any filters.
type BalanceSummary struct {
	Income            float64 `json:"income"`
	Expenses          float64 `json:"expenses"`
	Balance           float64 `json:"balance"`
	TotalTransactions int     `json:"totalTransactions"`
}

// Summarize computes income, expenses and balance over all items.
// Balance always equals Income - Expenses.
func Summarize(items []Transaction) BalanceSummary {
	s := BalanceSummary{TotalTransactions: len(items)}
	for _, t := range items {
		if t.Type == Deposit {
			s.Income += t.Amount
		} else {
			s.Expenses += t.Amount
		}
	}
	s.Balance = s.Income - s.Expenses
	return s
}
