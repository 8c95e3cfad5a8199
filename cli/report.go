package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-runewidth"

	"github.com/robinvdvleuten/ofx/output"
	"github.com/robinvdvleuten/ofx/report"
)

// ReportCmd prints the totals and transactions of a statement.
type ReportCmd struct {
	File   FileOrStdin `help:"OFX statement filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	JSON   bool        `help:"Print the report as JSON."`
	Filter string      `help:"Only list transactions of this type, e.g. DEBIT." placeholder:"TYPE"`
	Limit  int         `help:"List at most this many transactions (0 lists all)." default:"0"`
	Width  int         `help:"Width of the description column." default:"40"`
}

func (cmd *ReportCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx, reportTelemetry := globals.session(ctx, fmt.Sprintf("report %s", filepath.Base(cmd.File.Filename)))
	defer reportTelemetry()

	cfg, err := globals.Config()
	if err != nil {
		return err
	}

	stmt, err := cmd.File.Load(runCtx, globals.Loader(cfg))
	if err != nil {
		return err
	}

	logger := globals.Logger(ctx.Stderr)
	for _, w := range stmt.Warnings {
		logger.Warn("structural problem", "err", w)
	}

	catalog := globals.Catalog(cfg)
	rep := report.New(report.WithLabels(catalog)).Build(runCtx, stmt.Document)

	transactions := rep.Filter(strings.ToUpper(cmd.Filter))
	if cmd.Limit > 0 && len(transactions) > cmd.Limit {
		transactions = transactions[:cmd.Limit]
	}

	if cmd.JSON {
		view := *rep
		view.Transactions = transactions
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = fmt.Fprintln(ctx.Stdout, string(data))
		return err
	}

	table := &reportTable{
		labels:    catalog,
		styles:    output.NewStyles(ctx.Stdout),
		descWidth: max(cmd.Width, 8),
	}
	table.render(ctx.Stdout, rep, transactions)
	return nil
}

// reportTable renders a report as aligned terminal text.
type reportTable struct {
	labels    report.Labels
	styles    *output.Styles
	descWidth int
}

const dateLayout = "2006-01-02"

func (t *reportTable) render(w io.Writer, rep *report.Report, transactions []report.Transaction) {
	if rep.Summary != "" {
		_, _ = fmt.Fprintln(w, rep.Summary)
		_, _ = fmt.Fprintln(w)
	}

	totals := [][2]string{
		{t.labels.Label("TOTAL_INCOME"), fmt.Sprintf("%s (%s%%)",
			t.styles.Income(rep.Currency.Format(rep.TotalIncome)), rep.IncomePercent.StringFixed(2))},
		{t.labels.Label("TOTAL_EXPENSES"), fmt.Sprintf("%s (%s%%)",
			t.styles.Expense(rep.Currency.Format(rep.TotalExpenses)), rep.ExpensesPercent.StringFixed(2))},
		{t.labels.Label("NET_BALANCE"), t.styles.Amount(rep.Currency.Format(rep.NetBalance), rep.NetBalance.IsNegative())},
		{t.labels.Label("TOTAL_TRANSACTIONS"), fmt.Sprint(rep.TotalTransactions)},
	}

	labelWidth := 0
	for _, row := range totals {
		labelWidth = max(labelWidth, runewidth.StringWidth(row[0]))
	}
	for _, row := range totals {
		_, _ = fmt.Fprintf(w, "%s  %s\n", t.styles.Keyword(runewidth.FillRight(row[0], labelWidth)), row[1])
	}

	if len(rep.TypeCounts) > 0 {
		counts := make([]string, 0, len(rep.TypeCounts))
		for _, tc := range rep.TypeCounts {
			counts = append(counts, fmt.Sprintf("%s %d", t.styles.Tag(tc.Type), tc.Count))
		}
		_, _ = fmt.Fprintf(w, "%s  %s\n",
			t.styles.Keyword(runewidth.FillRight(t.labels.Label("TYPE"), labelWidth)),
			strings.Join(counts, t.styles.Dim(" · ")))
	}

	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, t.styles.Keyword(t.labels.Label("TRANSACTIONS")))

	if len(transactions) == 0 {
		_, _ = fmt.Fprintln(w, t.styles.Dim(t.labels.Label("NO_TRANSACTIONS")))
		return
	}

	t.renderTransactions(w, rep.Currency, transactions)
}

func (t *reportTable) renderTransactions(w io.Writer, money report.Money, transactions []report.Transaction) {
	headers := []string{
		t.labels.Label("DATE"),
		t.labels.Label("TYPE"),
		t.labels.Label("AMOUNT"),
		t.labels.Label("DESCRIPTION"),
	}

	amounts := make([]string, len(transactions))
	widths := []int{len(dateLayout), 0, 0, t.descWidth}
	for i, h := range headers[:3] {
		widths[i] = max(widths[i], runewidth.StringWidth(h))
	}
	for i, txn := range transactions {
		amounts[i] = money.Format(txn.Amount)
		widths[1] = max(widths[1], runewidth.StringWidth(txn.Type))
		widths[2] = max(widths[2], runewidth.StringWidth(amounts[i]))
	}

	_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
		t.styles.Keyword(runewidth.FillRight(headers[0], widths[0])),
		t.styles.Keyword(runewidth.FillRight(headers[1], widths[1])),
		t.styles.Keyword(runewidth.FillLeft(headers[2], widths[2])),
		t.styles.Keyword(headers[3]),
	)

	for i, txn := range transactions {
		date := runewidth.FillRight(txn.Date.Format(dateLayout), widths[0])
		if txn.DateEstimated {
			date = t.styles.Dim(date)
		}

		_, _ = fmt.Fprintf(w, "%s  %s  %s  %s\n",
			date,
			t.styles.Tag(runewidth.FillRight(txn.Type, widths[1])),
			t.styles.Amount(runewidth.FillLeft(amounts[i], widths[2]), txn.Amount.IsNegative()),
			runewidth.Truncate(txn.Description(), t.descWidth, "…"),
		)
	}
}
