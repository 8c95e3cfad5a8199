package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/robinvdvleuten/ofx/report"
)

//go:embed templates/*.html
var templates embed.FS

var viewerTemplate = template.Must(template.New("viewer.html").ParseFS(templates, "templates/viewer.html"))

// filterButton is one transaction type filter of the viewer.
type filterButton struct {
	Label  string
	Type   string
	Count  int
	Active bool
}

// transactionRow is a transaction prepared for display.
type transactionRow struct {
	Date        string
	Estimated   bool
	Type        string
	Description string
	Amount      string
	Negative    bool
	ID          string
}

// viewerPage is the data of the viewer template.
type viewerPage struct {
	Lang            string
	Label           func(string) string
	Error           string
	Summary         string
	TotalIncome     string
	TotalExpenses   string
	NetBalance      string
	NetNegative     bool
	Total           int
	IncomePercent   string
	ExpensesPercent string
	Filter          string
	Filters         []filterButton
	Rows            []transactionRow
	Version         string
}

// handleViewer renders the report as an HTML page. The optional type query
// parameter filters the listed transactions.
func (s *Server) handleViewer(w http.ResponseWriter, r *http.Request) {
	page := viewerPage{
		Lang:    s.catalog.Code,
		Label:   s.catalog.Label,
		Version: s.Version,
	}

	view, err := s.Current()
	switch {
	case view == nil && err != nil:
		page.Error = err.Error()
	case view == nil:
		page.Error = "Statement not loaded"
	default:
		s.fillPage(&page, view.Report, strings.ToUpper(r.URL.Query().Get("type")))
	}

	var buf bytes.Buffer
	if err := viewerTemplate.Execute(&buf, page); err != nil {
		http.Error(w, "Failed to render viewer", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if page.Error != "" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) fillPage(page *viewerPage, rep *report.Report, filter string) {
	money := rep.Currency

	page.Summary = rep.Summary
	page.TotalIncome = money.Format(rep.TotalIncome)
	page.TotalExpenses = money.Format(rep.TotalExpenses)
	page.NetBalance = money.Format(rep.NetBalance)
	page.NetNegative = rep.NetBalance.IsNegative()
	page.Total = rep.TotalTransactions
	page.IncomePercent = rep.IncomePercent.StringFixed(2)
	page.ExpensesPercent = rep.ExpensesPercent.StringFixed(2)
	page.Filter = filter

	page.Filters = append(page.Filters, filterButton{
		Label:  s.catalog.Label("FILTER_ALL"),
		Count:  rep.TotalTransactions,
		Active: filter == "",
	})
	for _, tc := range rep.TypeCounts {
		page.Filters = append(page.Filters, filterButton{
			Label:  tc.Type,
			Type:   tc.Type,
			Count:  tc.Count,
			Active: filter == tc.Type,
		})
	}

	for _, t := range rep.Filter(filter) {
		description := t.Name
		if description == "" {
			description = t.Memo
		}
		if description == "" {
			description = "-"
		}

		page.Rows = append(page.Rows, transactionRow{
			Date:        t.Date.Format("2006-01-02"),
			Estimated:   t.DateEstimated,
			Type:        t.Type,
			Description: description,
			Amount:      money.Format(t.Amount),
			Negative:    t.Amount.IsNegative(),
			ID:          t.ID,
		})
	}
}
