// Package report extracts the transactions of a parsed statement and
// aggregates them into totals, a per-type breakdown and an account summary.
//
// Bank statements are read from
//
//	OFX > BANKMSGSRSV1 > STMTTRNRS > STMTRS > BANKTRANLIST > STMTTRN
//
// and credit card statements from
//
//	OFX > CREDITCARDMSGSRSV1 > CCSTMTTRNRS > CCSTMTRS > BANKTRANLIST > STMTTRN
//
// Every step may hold one element or a list of them. Missing steps simply
// contribute no transactions.
//
// Example usage:
//
//	doc, _ := parser.ParseBytes(ctx, source)
//	r := report.New(report.WithLabels(catalog)).Build(ctx, doc)
//	fmt.Println(r.Currency.Format(r.NetBalance))
package report

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one statement entry.
type Transaction struct {
	Type string    `json:"type"`
	Date time.Time `json:"date"`
	// DateEstimated is set when DTPOSTED was missing or unreadable and Date
	// holds the time the report was built instead.
	DateEstimated bool            `json:"date_estimated,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	ID            string          `json:"id"`
	Memo          string          `json:"memo,omitempty"`
	Name          string          `json:"name,omitempty"`
}

// Description returns the memo, or the name when there is no memo.
func (t Transaction) Description() string {
	if t.Memo != "" {
		return t.Memo
	}
	return t.Name
}

// TypeCount is the number of transactions of one type.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Report is the aggregate view of a statement.
type Report struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpenses     decimal.Decimal `json:"total_expenses"`
	NetBalance        decimal.Decimal `json:"net_balance"`
	TotalTransactions int             `json:"total_transactions"`
	IncomePercent     decimal.Decimal `json:"income_percent"`
	ExpensesPercent   decimal.Decimal `json:"expenses_percent"`

	// TransactionTypes lists every type once, in the order first seen.
	TransactionTypes []string    `json:"transaction_types"`
	TypeCounts       []TypeCount `json:"type_counts"`

	// Transactions are sorted by date, newest first.
	Transactions []Transaction `json:"transactions"`

	Account  Account `json:"account"`
	Summary  string  `json:"summary"`
	Currency Money   `json:"currency"`
}

// Blank returns the report of a statement without transactions.
func Blank() *Report {
	return &Report{
		TotalIncome:      decimal.Zero,
		TotalExpenses:    decimal.Zero,
		NetBalance:       decimal.Zero,
		IncomePercent:    decimal.Zero,
		ExpensesPercent:  decimal.Zero,
		TransactionTypes: []string{},
		TypeCounts:       []TypeCount{},
		Transactions:     []Transaction{},
		Currency:         DefaultMoney(),
	}
}

// Filter returns the transactions of the given type. An empty type returns
// all of them.
func (r *Report) Filter(typ string) []Transaction {
	if typ == "" {
		return r.Transactions
	}

	filtered := make([]Transaction, 0)
	for _, t := range r.Transactions {
		if t.Type == typ {
			filtered = append(filtered, t)
		}
	}
	return filtered
}

// Count returns the number of transactions of the given type.
func (r *Report) Count(typ string) int {
	for _, tc := range r.TypeCounts {
		if tc.Type == typ {
			return tc.Count
		}
	}
	return 0
}
