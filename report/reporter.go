package report

import (
	"context"
	"strings"
	"time"

	"github.com/robinvdvleuten/ofx/ast"
	"github.com/robinvdvleuten/ofx/telemetry"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

var (
	hundred = decimal.NewFromInt(100)
	one     = decimal.NewFromInt(1)
)

// statementPaths are the routes from the OFX root to the transaction lists.
var statementPaths = []struct {
	messages, responses, statement string
}{
	{"BANKMSGSRSV1", "STMTTRNRS", "STMTRS"},
	{"CREDITCARDMSGSRSV1", "CCSTMTTRNRS", "CCSTMTRS"},
}

// Reporter builds reports. It holds no state between builds.
type Reporter struct {
	labels Labels
	clock  func() time.Time
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLabels sets the labels used in the account summary.
func WithLabels(labels Labels) Option {
	return func(r *Reporter) {
		if labels != nil {
			r.labels = labels
		}
	}
}

// WithClock sets the time used for transactions without a readable date.
func WithClock(clock func() time.Time) Option {
	return func(r *Reporter) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// New creates a Reporter with the given options.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		labels: keyLabels{},
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Build extracts and aggregates the transactions of doc. A document without
// transactions yields the blank aggregates; account details and currency are
// still filled in.
func (r *Reporter) Build(ctx context.Context, doc *ast.Document) *Report {
	timer := telemetry.StartTimer(ctx, "report.build")
	defer timer.End()

	rep := Blank()

	root, ok := doc.Root()
	if !ok {
		return rep
	}

	rep.Currency = MoneyFor(currencyCode(root))
	rep.Account = extractAccount(root)
	rep.Summary = summarize(rep.Account, r.labels, rep.Currency)

	extractTimer := timer.Child("report.extract")
	transactions := r.extractTransactions(root)
	extractTimer.End()

	if len(transactions) == 0 {
		return rep
	}

	aggregateTimer := timer.Child("report.aggregate")
	defer aggregateTimer.End()

	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range transactions {
		switch t.Amount.Sign() {
		case 1:
			income = income.Add(t.Amount)
		case -1:
			expenses = expenses.Add(t.Amount)
		}
	}
	expenses = expenses.Abs()

	total := decimal.Max(income.Add(expenses), one)

	rep.TotalIncome = income
	rep.TotalExpenses = expenses
	rep.NetBalance = income.Sub(expenses)
	rep.TotalTransactions = len(transactions)
	rep.IncomePercent = income.Mul(hundred).Div(total).Round(2)
	rep.ExpensesPercent = expenses.Mul(hundred).Div(total).Round(2)
	rep.Transactions = transactions

	for _, t := range transactions {
		i := slices.IndexFunc(rep.TypeCounts, func(tc TypeCount) bool { return tc.Type == t.Type })
		if i < 0 {
			rep.TransactionTypes = append(rep.TransactionTypes, t.Type)
			rep.TypeCounts = append(rep.TypeCounts, TypeCount{Type: t.Type, Count: 1})
			continue
		}
		rep.TypeCounts[i].Count++
	}

	return rep
}

// extractTransactions collects the transactions of every statement, bank
// statements first, and sorts them newest first.
func (r *Reporter) extractTransactions(root *ast.Object) []Transaction {
	var transactions []Transaction

	for _, path := range statementPaths {
		messages, ok := ast.LookupObject(root, path.messages)
		if !ok {
			continue
		}
		responses, _ := messages.Get(path.responses)
		for _, response := range ast.Items(responses) {
			resp, ok := response.(*ast.Object)
			if !ok {
				continue
			}
			list, ok := ast.LookupObject(resp, path.statement, "BANKTRANLIST")
			if !ok {
				continue
			}
			entries, _ := list.Get("STMTTRN")
			for _, entry := range ast.Items(entries) {
				if obj, ok := entry.(*ast.Object); ok {
					transactions = append(transactions, r.transaction(obj))
				}
			}
		}
	}

	slices.SortStableFunc(transactions, func(a, b Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return transactions
}

func (r *Reporter) transaction(obj *ast.Object) Transaction {
	t := Transaction{Amount: decimal.Zero}
	t.Type, _ = ast.LookupText(obj, "TRNTYPE")
	t.ID, _ = ast.LookupText(obj, "FITID")
	t.Memo, _ = ast.LookupText(obj, "MEMO")
	t.Name, _ = ast.LookupText(obj, "NAME")

	if v, ok := obj.Get("TRNAMT"); ok {
		t.Amount = toDecimal(ast.First(v))
	}

	raw, _ := ast.LookupText(obj, "DTPOSTED")
	if date, ok := ParseDate(raw); ok {
		t.Date = date
	} else {
		t.Date = r.clock()
		t.DateEstimated = true
	}

	return t
}

// currencyCode returns CURDEF of the first bank statement, or of the first
// credit card statement.
func currencyCode(root *ast.Object) string {
	for _, path := range statementPaths {
		if code, ok := ast.LookupText(root, path.messages, path.responses, path.statement, "CURDEF"); ok {
			return code
		}
	}
	return ""
}

// ParseDate reads the YYYYMMDD prefix of an OFX date-time such as
// "20250401120000[-3:BRT]".
func ParseDate(raw string) (time.Time, bool) {
	if len(raw) < 8 {
		return time.Time{}, false
	}
	date, err := time.Parse("20060102", raw[:8])
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// toDecimal converts an amount leaf. Numbers keep their source digits;
// strings are parsed with either decimal separator. Anything else is zero.
func toDecimal(v ast.Value) decimal.Decimal {
	var text string
	switch v := v.(type) {
	case ast.Number:
		if v.Literal == "" {
			return decimal.NewFromFloat(v.Float)
		}
		text = v.Literal
	case ast.String:
		text = strings.TrimSpace(string(v))
	default:
		return decimal.Zero
	}

	d, err := decimal.NewFromString(strings.Replace(text, ",", ".", 1))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Build is a shorthand for New(opts...).Build(ctx, doc).
func Build(ctx context.Context, doc *ast.Document, opts ...Option) *Report {
	return New(opts...).Build(ctx, doc)
}
