package report

import (
	"strings"

	"github.com/robinvdvleuten/ofx/ast"
	"github.com/shopspring/decimal"
)

// Account identifies the statement's account. Only the first statement of a
// document is consulted.
type Account struct {
	BankID     string          `json:"bank_id,omitempty"`
	AccountID  string          `json:"account_id,omitempty"`
	Type       string          `json:"type,omitempty"`
	CreditCard bool            `json:"credit_card,omitempty"`
	Balance    decimal.Decimal `json:"balance"`
	HasBalance bool            `json:"has_balance"`
	BalanceAt  string          `json:"balance_at,omitempty"`
	identified bool
}

// Labels translates the symbolic keys used in the account summary, such as
// BANK or BALANCE.
type Labels interface {
	Label(key string) string
}

// keyLabels renders every key as itself.
type keyLabels struct{}

func (keyLabels) Label(key string) string { return key }

// extractAccount reads the account of the first bank statement, or of the
// first credit card statement when there is no bank statement.
func extractAccount(root *ast.Object) Account {
	var acct Account

	if stmt, ok := ast.LookupObject(root, "BANKMSGSRSV1", "STMTTRNRS", "STMTRS"); ok {
		if from, ok := ast.LookupObject(stmt, "BANKACCTFROM"); ok {
			acct.identified = true
			acct.BankID, _ = ast.LookupText(from, "BANKID")
			acct.AccountID, _ = ast.LookupText(from, "ACCTID")
			acct.Type, _ = ast.LookupText(from, "ACCTTYPE")
		}
		readBalance(stmt, &acct)
		return acct
	}

	if stmt, ok := ast.LookupObject(root, "CREDITCARDMSGSRSV1", "CCSTMTTRNRS", "CCSTMTRS"); ok {
		acct.CreditCard = true
		if from, ok := ast.LookupObject(stmt, "CCACCTFROM"); ok {
			acct.identified = true
			acct.AccountID, _ = ast.LookupText(from, "ACCTID")
		}
		readBalance(stmt, &acct)
	}

	return acct
}

func readBalance(stmt *ast.Object, acct *Account) {
	bal, ok := ast.LookupObject(stmt, "LEDGERBAL")
	if !ok {
		return
	}
	acct.HasBalance = true
	if v, ok := bal.Get("BALAMT"); ok {
		acct.Balance = toDecimal(ast.First(v))
	}
	acct.BalanceAt, _ = ast.LookupText(bal, "DTASOF")
}

// summarize renders the account as "BANK: 999 | ACCOUNT: 123 | TYPE: CHECKING
// | BALANCE: $1,000.00" with translated labels.
func summarize(acct Account, labels Labels, money Money) string {
	var parts []string
	field := func(key, value string) {
		parts = append(parts, labels.Label(key)+": "+value)
	}

	if acct.identified {
		if !acct.CreditCard {
			field("BANK", acct.BankID)
		}
		field("ACCOUNT", acct.AccountID)
		if !acct.CreditCard {
			field("TYPE", acct.Type)
		}
	}
	if acct.HasBalance {
		field("BALANCE", money.Format(acct.Balance))
	}

	return strings.Join(parts, " | ")
}
