package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	ofxerrors "github.com/robinvdvleuten/ofx/errors"
	"github.com/robinvdvleuten/ofx/i18n"
	"github.com/robinvdvleuten/ofx/report"
)

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf.Bytes())
}

// currentView returns the view or answers the request with the load error.
func (s *Server) currentView(w http.ResponseWriter) (*View, bool) {
	view, err := s.Current()
	if view == nil {
		msg := "Statement not loaded"
		if err != nil {
			msg = err.Error()
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return nil, false
	}
	return view, true
}

// ReportResponse is the report with the transactions narrowed to one type.
type ReportResponse struct {
	*report.Report
	Filter string `json:"filter,omitempty"`
}

// handleGetReport handles GET requests to /api/report. The optional type
// query parameter filters the listed transactions; totals are unaffected.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	view, ok := s.currentView(w)
	if !ok {
		return
	}

	filter := strings.ToUpper(r.URL.Query().Get("type"))
	rep := *view.Report
	rep.Transactions = view.Report.Filter(filter)

	writeJSONResponse(w, &ReportResponse{Report: &rep, Filter: filter})
}

// handleGetDocument handles GET requests to /api/document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	view, ok := s.currentView(w)
	if !ok {
		return
	}
	writeJSONResponse(w, view.Statement.Document)
}

// handleGetFormatted handles GET requests to /api/formatted.
func (s *Server) handleGetFormatted(w http.ResponseWriter, r *http.Request) {
	view, ok := s.currentView(w)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(view.Formatted))
}

// ErrorsResponse lists the problems of the current statement.
type ErrorsResponse struct {
	Filepath string                `json:"filepath"`
	Charset  string                `json:"charset,omitempty"`
	Errors   []ofxerrors.ErrorJSON `json:"errors"`
}

// handleGetErrors handles GET requests to /api/errors. A failed reload is
// listed before the structural problems of the last good load.
func (s *Server) handleGetErrors(w http.ResponseWriter, r *http.Request) {
	view, loadErr := s.Current()

	var errs []error
	if loadErr != nil {
		errs = append(errs, loadErr)
	}

	response := &ErrorsResponse{Filepath: s.file}
	if view != nil {
		errs = append(errs, view.Statement.Warnings...)
		response.Charset = view.Statement.Charset
	}
	response.Errors = ofxerrors.NewJSONFormatter().FormatAllToSlice(errs)

	writeJSONResponse(w, response)
}

// LabelsResponse is the label table of the viewer language.
type LabelsResponse struct {
	Language string            `json:"language"`
	Labels   map[string]string `json:"labels"`
}

// handleGetLabels handles GET requests to /api/labels.
func (s *Server) handleGetLabels(w http.ResponseWriter, r *http.Request) {
	keys := i18n.Resolve(i18n.Default).Labels
	labels := make(map[string]string, len(keys))
	for key := range keys {
		labels[key] = s.catalog.Label(key)
	}
	writeJSONResponse(w, &LabelsResponse{Language: s.catalog.Code, Labels: labels})
}

// handleFormat handles POST requests to /api/format. It writes the formatted
// statement back to disk and reloads it.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	source, err := os.ReadFile(s.file)
	if err != nil {
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.formatter.Format(r.Context(), source, &buf); err != nil {
		http.Error(w, "Failed to format statement", http.StatusInternalServerError)
		return
	}

	changed := !bytes.Equal(buf.Bytes(), source)
	if changed {
		info, err := os.Stat(s.file)
		if err != nil {
			http.Error(w, "Failed to read file", http.StatusInternalServerError)
			return
		}
		if err := os.WriteFile(s.file, buf.Bytes(), info.Mode().Perm()); err != nil {
			http.Error(w, "Failed to write file", http.StatusInternalServerError)
			return
		}
		if err := s.Reload(r.Context()); err != nil {
			http.Error(w, "Failed to reload statement", http.StatusInternalServerError)
			return
		}
		s.broadcast("reload")
	}

	writeJSONResponse(w, map[string]bool{"changed": changed})
}
