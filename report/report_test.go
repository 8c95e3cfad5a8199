package report

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/robinvdvleuten/ofx/ast"
	"github.com/robinvdvleuten/ofx/parser"
	"github.com/shopspring/decimal"
)

var fixedNow = time.Date(2025, 5, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type stmttrn struct {
	typ, posted, amount, id, memo string
}

func (s stmttrn) String() string {
	var b strings.Builder
	b.WriteString("<STMTTRN>\n")
	if s.typ != "" {
		fmt.Fprintf(&b, "<TRNTYPE>%s\n", s.typ)
	}
	if s.posted != "" {
		fmt.Fprintf(&b, "<DTPOSTED>%s\n", s.posted)
	}
	if s.amount != "" {
		fmt.Fprintf(&b, "<TRNAMT>%s\n", s.amount)
	}
	if s.id != "" {
		fmt.Fprintf(&b, "<FITID>%s\n", s.id)
	}
	if s.memo != "" {
		fmt.Fprintf(&b, "<MEMO>%s\n", s.memo)
	}
	b.WriteString("</STMTTRN>\n")
	return b.String()
}

func bankStatement(curdef string, transactions ...stmttrn) string {
	var b strings.Builder
	b.WriteString("OFXHEADER:100\n\n<OFX>\n<BANKMSGSRSV1>\n<STMTTRNRS>\n<STMTRS>\n")
	if curdef != "" {
		fmt.Fprintf(&b, "<CURDEF>%s\n", curdef)
	}
	b.WriteString("<BANKACCTFROM>\n<BANKID>999</BANKID>\n<ACCTID>12345-6</ACCTID>\n<ACCTTYPE>CHECKING</ACCTTYPE>\n</BANKACCTFROM>\n")
	b.WriteString("<BANKTRANLIST>\n")
	for _, t := range transactions {
		b.WriteString(t.String())
	}
	b.WriteString("</BANKTRANLIST>\n<LEDGERBAL>\n<BALAMT>1000,00\n<DTASOF>20250401\n</LEDGERBAL>\n</STMTRS>\n</STMTTRNRS>\n</BANKMSGSRSV1>\n</OFX>\n")
	return b.String()
}

func parse(t *testing.T, source string) *ast.Document {
	t.Helper()
	doc, err := parser.ParseString(context.Background(), source)
	assert.NoError(t, err)
	return doc
}

func build(t *testing.T, source string, opts ...Option) *Report {
	t.Helper()
	opts = append([]Option{WithClock(fixedClock)}, opts...)
	return New(opts...).Build(context.Background(), parse(t, source))
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual)
}

func TestBuildBlank(t *testing.T) {
	t.Run("EmptyDocument", func(t *testing.T) {
		rep := Build(context.Background(), ast.NewDocument())
		assert.Equal(t, Blank(), rep)
	})

	t.Run("NoStatements", func(t *testing.T) {
		rep := build(t, "OFXHEADER:100\n<OFX>\n<SIGNONMSGSRSV1>\n</SIGNONMSGSRSV1>\n</OFX>")
		assert.Equal(t, Blank(), rep)
	})

	t.Run("StatementWithoutTransactions", func(t *testing.T) {
		rep := build(t, bankStatement("BRL"))
		assert.Equal(t, 0, rep.TotalTransactions)
		assert.Equal(t, []Transaction{}, rep.Transactions)
		assert.Equal(t, []string{}, rep.TransactionTypes)
		assertDecimal(t, "0", rep.IncomePercent)
		assertDecimal(t, "0", rep.ExpensesPercent)
		assert.Equal(t, "BRL", rep.Currency.Code)
		assert.Equal(t, "12345-6", rep.Account.AccountID)
	})
}

func TestBuildAggregates(t *testing.T) {
	rep := build(t, bankStatement("USD",
		stmttrn{typ: "CREDIT", posted: "20250315", amount: "100.00", id: "TXN001"},
		stmttrn{typ: "DEBIT", posted: "20250401", amount: "-40.00", id: "TXN002"},
	))

	assertDecimal(t, "100", rep.TotalIncome)
	assertDecimal(t, "40", rep.TotalExpenses)
	assertDecimal(t, "60", rep.NetBalance)
	assertDecimal(t, "71.43", rep.IncomePercent)
	assertDecimal(t, "28.57", rep.ExpensesPercent)
	assert.Equal(t, 2, rep.TotalTransactions)
	// First seen in date order, newest first.
	assert.Equal(t, []string{"DEBIT", "CREDIT"}, rep.TransactionTypes)
}

func TestBuildPercentDenominatorFloor(t *testing.T) {
	rep := build(t, bankStatement("USD",
		stmttrn{typ: "CREDIT", posted: "20250315", amount: "0.25"},
		stmttrn{typ: "DEBIT", posted: "20250316", amount: "-0.25"},
	))

	assertDecimal(t, "25", rep.IncomePercent)
	assertDecimal(t, "25", rep.ExpensesPercent)
	assertDecimal(t, "0", rep.NetBalance)
}

func TestBuildZeroAmounts(t *testing.T) {
	rep := build(t, bankStatement("USD",
		stmttrn{typ: "OTHER", posted: "20250315", amount: "0.00"},
	))

	assert.Equal(t, 1, rep.TotalTransactions)
	assertDecimal(t, "0", rep.TotalIncome)
	assertDecimal(t, "0", rep.TotalExpenses)
	assertDecimal(t, "0", rep.IncomePercent)
}

func TestBuildSortsNewestFirst(t *testing.T) {
	rep := build(t, bankStatement("USD",
		stmttrn{typ: "CREDIT", posted: "20250315", amount: "1", id: "A"},
		stmttrn{typ: "DEBIT", posted: "20250401120000[-3:BRT]", amount: "-1", id: "B"},
		stmttrn{typ: "DEBIT", posted: "20250315", amount: "-2", id: "C"},
	))

	ids := make([]string, len(rep.Transactions))
	for i, tx := range rep.Transactions {
		ids[i] = tx.ID
	}
	assert.Equal(t, []string{"B", "A", "C"}, ids)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), rep.Transactions[0].Date)
}

func TestBuildDateFallback(t *testing.T) {
	rep := build(t, bankStatement("USD",
		stmttrn{typ: "CREDIT", posted: "20250315", amount: "1", id: "DATED"},
		stmttrn{typ: "CREDIT", amount: "1", id: "MISSING"},
		stmttrn{typ: "CREDIT", posted: "2025", amount: "1", id: "SHORT"},
		stmttrn{typ: "CREDIT", posted: "2025XX01", amount: "1", id: "INVALID"},
	))

	for _, tx := range rep.Transactions {
		if tx.ID == "DATED" {
			assert.False(t, tx.DateEstimated)
			continue
		}
		assert.True(t, tx.DateEstimated, tx.ID)
		assert.Equal(t, fixedNow, tx.Date)
	}
	assert.Equal(t, "DATED", rep.Transactions[3].ID)
}

func TestBuildTransactionFields(t *testing.T) {
	source := bankStatement("USD",
		stmttrn{typ: "DEBIT", posted: "20250401", amount: "-50,25", id: "00012345678901234567", memo: "Coffee"},
		stmttrn{typ: "DEBIT", posted: "20250331", amount: "N/A", id: "TXN002"},
		stmttrn{posted: "20250330"},
	)
	rep := build(t, source)

	first := rep.Transactions[0]
	assert.Equal(t, "DEBIT", first.Type)
	assertDecimal(t, "-50.25", first.Amount)
	assert.Equal(t, "00012345678901234567", first.ID)
	assert.Equal(t, "Coffee", first.Memo)
	assert.Equal(t, "Coffee", first.Description())

	assertDecimal(t, "0", rep.Transactions[1].Amount)

	empty := rep.Transactions[2]
	assert.Equal(t, "", empty.Type)
	assert.Equal(t, "", empty.ID)
	assertDecimal(t, "0", empty.Amount)
}

func TestBuildStatementShapes(t *testing.T) {
	source := `<OFX>
<BANKMSGSRSV1>
<STMTTRNRS>
<STMTRS>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250301
<TRNAMT>10
</STMTTRN>
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
<STMTTRNRS>
<STMTRS>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250302
<TRNAMT>20
</STMTTRN>
<STMTTRN>junk
</BANKTRANLIST>
</STMTRS>
</STMTTRNRS>
<STMTTRNRS>
<TRNUID>3
</STMTTRNRS>
</BANKMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<CCSTMTRS>
<CURDEF>BRL
<CCACCTFROM>
<ACCTID>4111</ACCTID>
</CCACCTFROM>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>PAYMENT
<DTPOSTED>20250303
<TRNAMT>-5
<NAME>Card payment
</STMTTRN>
</BANKTRANLIST>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`
	rep := build(t, source)

	assert.Equal(t, 3, rep.TotalTransactions)
	assertDecimal(t, "30", rep.TotalIncome)
	assertDecimal(t, "5", rep.TotalExpenses)
	assert.Equal(t, "PAYMENT", rep.Transactions[0].Type)
	assert.Equal(t, "Card payment", rep.Transactions[0].Description())
	assert.Equal(t, []TypeCount{{Type: "PAYMENT", Count: 1}, {Type: "CREDIT", Count: 2}}, rep.TypeCounts)

	// The bank statement has no CURDEF, so the credit card one is used.
	assert.Equal(t, "BRL", rep.Currency.Code)
	// The bank statement has no account aggregate and no balance.
	assert.Equal(t, "", rep.Summary)
}

func TestBuildCreditCardAccount(t *testing.T) {
	source := `<OFX>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111</ACCTID>
</CCACCTFROM>
<LEDGERBAL>
<BALAMT>-250.5
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`
	rep := build(t, source)

	assert.True(t, rep.Account.CreditCard)
	assert.Equal(t, "4111", rep.Account.AccountID)
	assert.Equal(t, "ACCOUNT: 4111 | BALANCE: -$250.50", rep.Summary)
}

type upperLabels map[string]string

func (l upperLabels) Label(key string) string {
	if v, ok := l[key]; ok {
		return v
	}
	return key
}

func TestBuildSummary(t *testing.T) {
	t.Run("DefaultLabels", func(t *testing.T) {
		rep := build(t, bankStatement("USD"))
		assert.Equal(t, "BANK: 999 | ACCOUNT: 12345-6 | TYPE: CHECKING | BALANCE: $1,000.00", rep.Summary)
		assert.True(t, rep.Account.HasBalance)
		assert.Equal(t, "20250401", rep.Account.BalanceAt)
		assertDecimal(t, "1000", rep.Account.Balance)
	})

	t.Run("TranslatedLabels", func(t *testing.T) {
		labels := upperLabels{"BANK": "Banco", "ACCOUNT": "Conta", "TYPE": "Tipo", "BALANCE": "Saldo"}
		rep := build(t, bankStatement("BRL"), WithLabels(labels))
		assert.Equal(t, "Banco: 999 | Conta: 12345-6 | Tipo: CHECKING | Saldo: R$ 1.000,00", rep.Summary)
	})
}

func TestFilter(t *testing.T) {
	rep := build(t, bankStatement("USD",
		stmttrn{typ: "CREDIT", posted: "20250315", amount: "1", id: "A"},
		stmttrn{typ: "DEBIT", posted: "20250316", amount: "-1", id: "B"},
		stmttrn{typ: "CREDIT", posted: "20250317", amount: "1", id: "C"},
	))

	assert.Equal(t, 3, len(rep.Filter("")))
	credits := rep.Filter("CREDIT")
	assert.Equal(t, 2, len(credits))
	assert.Equal(t, "C", credits[0].ID)
	assert.Equal(t, []Transaction{}, rep.Filter("FEE"))

	assert.Equal(t, 2, rep.Count("CREDIT"))
	assert.Equal(t, 1, rep.Count("DEBIT"))
	assert.Equal(t, 0, rep.Count("FEE"))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
		ok   bool
	}{
		{"20250401", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"20250401120000.000[-3:BRT]", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), true},
		{"2025040", time.Time{}, false},
		{"", time.Time{}, false},
		{"20251301", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseDate(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
