// Large OFX Statement Generator
//
// This tool generates a large OFX bank statement for performance testing and
// profiling. It writes one statement with many transactions of mixed types,
// both positive and negative, in the SGML flavour by default.
//
// Usage:
//
//	go run main.go > large.ofx
//	go run main.go 20000000 > large.ofx      # Specify target size in bytes
//	go run main.go 20000000 xml > large.ofx  # Write the XML flavour
package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultTargetSize = 10 * 1024 * 1024 // 10MB
)

var (
	credits = []string{"CREDIT", "DEP", "DIRECTDEP", "INT", "DIV", "XFER"}
	debits  = []string{"DEBIT", "PAYMENT", "CHECK", "ATM", "POS", "FEE", "SRVCHG", "DIRECTDEBIT"}

	payees = []string{
		"Whole Foods", "Safeway", "Trader Joe's", "Costco",
		"Shell Gas", "Chevron", "BART", "Uber",
		"Landlord", "PG&E", "Comcast", "AT&T",
		"Amazon", "Target", "Best Buy", "Apple Store",
		"Netflix", "Spotify", "AMC Theaters",
		"Employer Inc", "Fidelity", "Vanguard",
	}

	memos = []string{
		"Grocery shopping", "Fuel purchase", "Rent payment",
		"Salary deposit", "Utility bill", "Online purchase",
		"Restaurant dinner", "Coffee", "Monthly subscription",
		"Medical appointment", "Dividend payment", "Tax payment",
		"Transferência recebida", "Pagamento de boleto",
	}
)

func main() {
	targetSize := defaultTargetSize
	if len(os.Args) > 1 {
		if size, err := strconv.Atoi(os.Args[1]); err == nil {
			targetSize = size
		}
	}
	xml := len(os.Args) > 2 && strings.EqualFold(os.Args[2], "xml")

	bytesWritten := writeHeader(xml)

	currentDate := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	transactionCount := 0
	balance := decimal.Zero

	for bytesWritten < targetSize {
		output, amount := generateTransaction(currentDate, transactionCount+1, xml)
		fmt.Print(output)
		bytesWritten += len(output)
		balance = balance.Add(amount)
		transactionCount++

		// Advance date by 0-2 days
		currentDate = currentDate.AddDate(0, 0, rand.Intn(3))
	}

	bytesWritten += writeFooter(balance, currentDate, xml)

	fmt.Fprintf(os.Stderr, "\nGenerated %d bytes with %d transactions\n", bytesWritten, transactionCount)
}

func writeHeader(xml bool) int {
	var b strings.Builder
	if xml {
		b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\" standalone=\"no\"?>\n")
		b.WriteString("<?OFX OFXHEADER=\"200\" VERSION=\"211\" SECURITY=\"NONE\" OLDFILEUID=\"NONE\" NEWFILEUID=\"NONE\"?>\n")
	} else {
		b.WriteString("OFXHEADER:100\nDATA:OFXSGML\nVERSION:102\nSECURITY:NONE\nENCODING:UTF-8\nCHARSET:NONE\n")
		b.WriteString("COMPRESSION:NONE\nOLDFILEUID:NONE\nNEWFILEUID:NONE\n")
	}
	b.WriteString("\n<OFX>\n")

	b.WriteString("<SIGNONMSGSRSV1>\n<SONRS>\n<STATUS>\n")
	b.WriteString(leaf("CODE", "0", xml))
	b.WriteString(leaf("SEVERITY", "INFO", xml))
	b.WriteString("</STATUS>\n")
	b.WriteString(leaf("DTSERVER", time.Now().Format("20060102150405"), xml))
	b.WriteString(leaf("LANGUAGE", "ENG", xml))
	b.WriteString("</SONRS>\n</SIGNONMSGSRSV1>\n")

	b.WriteString("<BANKMSGSRSV1>\n<STMTTRNRS>\n")
	b.WriteString(leaf("TRNUID", "1", xml))
	b.WriteString("<STMTRS>\n")
	b.WriteString(leaf("CURDEF", "USD", xml))
	b.WriteString("<BANKACCTFROM>\n")
	b.WriteString(leaf("BANKID", "121000248", xml))
	b.WriteString(leaf("ACCTID", "00012345-6", xml))
	b.WriteString(leaf("ACCTTYPE", "CHECKING", xml))
	b.WriteString("</BANKACCTFROM>\n<BANKTRANLIST>\n")
	b.WriteString(leaf("DTSTART", "20200101", xml))

	fmt.Print(b.String())
	return b.Len()
}

func writeFooter(balance decimal.Decimal, date time.Time, xml bool) int {
	var b strings.Builder
	b.WriteString("</BANKTRANLIST>\n<LEDGERBAL>\n")
	b.WriteString(leaf("BALAMT", balance.StringFixed(2), xml))
	b.WriteString(leaf("DTASOF", date.Format("20060102"), xml))
	b.WriteString("</LEDGERBAL>\n</STMTRS>\n</STMTTRNRS>\n</BANKMSGSRSV1>\n</OFX>\n")

	fmt.Print(b.String())
	return b.Len()
}

func generateTransaction(date time.Time, id int, xml bool) (string, decimal.Decimal) {
	var (
		trnType string
		amount  decimal.Decimal
	)
	if rand.Intn(4) == 0 {
		trnType = credits[rand.Intn(len(credits))]
		amount = randAmount(100, 5000)
	} else {
		trnType = debits[rand.Intn(len(debits))]
		amount = randAmount(1, 500).Neg()
	}

	var b strings.Builder
	b.WriteString("<STMTTRN>\n")
	b.WriteString(leaf("TRNTYPE", trnType, xml))
	b.WriteString(leaf("DTPOSTED", date.Format("20060102")+"120000[-3:BRT]", xml))
	b.WriteString(leaf("TRNAMT", amount.StringFixed(2), xml))
	b.WriteString(leaf("FITID", fmt.Sprintf("%010d", id), xml))
	if rand.Intn(3) > 0 {
		b.WriteString(leaf("NAME", payees[rand.Intn(len(payees))], xml))
	}
	b.WriteString(leaf("MEMO", memos[rand.Intn(len(memos))], xml))
	b.WriteString("</STMTTRN>\n")

	return b.String(), amount
}

// leaf renders a value element, closed in the XML flavour.
func leaf(tag, value string, xml bool) string {
	if xml {
		return fmt.Sprintf("<%s>%s</%s>\n", tag, value, tag)
	}
	return fmt.Sprintf("<%s>%s\n", tag, value)
}

func randAmount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + rand.Float64()*(max-min)).Round(2)
}
