package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/datacheck/internal/core"
	"github.com/JonMunkholm/datacheck/internal/logging"
	"github.com/JonMunkholm/datacheck/internal/web/templates"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope.
const multipartOverhead = 1 << 20

// maxFormMemory is the part of a multipart body kept in memory; the rest
// spills to temp files.
const maxFormMemory = 32 << 20

var errFileTooLarge = errors.New("file too large")

// DatasetResponse describes a loaded dataset.
type DatasetResponse struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// StateResponse is the JSON form of a session snapshot.
type StateResponse struct {
	Page       string                 `json:"page"`
	HasDataset bool                   `json:"hasDataset"`
	Dataset    *DatasetResponse       `json:"dataset,omitempty"`
	Result     *core.ValidationResult `json:"result,omitempty"`
	Clean      *CleanResponse         `json:"clean,omitempty"`
}

// ResultsResponse is the validation result plus the full rows behind its sample.
type ResultsResponse struct {
	core.ValidationResult
	Columns    []string   `json:"columns"`
	SampleRows []core.Row `json:"sampleRows"`
}

// CleanResponse summarizes a deletion and shows the first cleaned rows.
type CleanResponse struct {
	Before  int        `json:"before"`
	After   int        `json:"after"`
	Deleted int        `json:"deleted"`
	Columns []string   `json:"columns"`
	Head    []core.Row `json:"head"`
}

// validateRequest names the column and check to run. Check accepts a slug
// ("numeric") or a label ("Format validation Numerik").
type validateRequest struct {
	Column string `json:"column"`
	Check  string `json:"check"`
}

func datasetResponse(ds *core.Dataset) *DatasetResponse {
	if ds == nil {
		return nil
	}
	return &DatasetResponse{Name: ds.Name, Rows: ds.Len(), Columns: ds.Columns}
}

func cleanResponse(c core.CleanResult, head *core.Dataset) *CleanResponse {
	resp := &CleanResponse{Before: c.Before, After: c.After, Deleted: c.Deleted}
	if head != nil {
		resp.Columns = head.Columns
		resp.Head = head.Rows
	}
	return resp
}

// respond finishes a workflow action: JSON clients get v, browser forms are
// sent back to the index page, which renders the new page.
func respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	switch {
	case isHTMX(r):
		w.Header().Set("HX-Redirect", "/")
		w.WriteHeader(http.StatusNoContent)
	case wantsJSON(r):
		writeJSON(w, r, status, v)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// handleIndex renders the page the session is on.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).Snapshot()

	var page templ.Component
	switch snap.Page {
	case core.PagePreview:
		data, err := core.Preview(snap.Dataset, core.PreviewRows)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		page = templates.Preview(templates.PreviewView{Data: data, Checks: core.AllChecks()})
	case core.PageResults:
		if snap.Result == nil {
			s.fail(w, r, core.ErrNoValidationResult)
			return
		}
		page = templates.Results(templates.ResultsView{Result: *snap.Result, SampleRows: snap.SampleRows})
	case core.PageCleaned:
		if snap.Clean == nil {
			s.fail(w, r, core.ErrNothingToClean)
			return
		}
		page = templates.Cleaned(templates.CleanedView{Clean: *snap.Clean, Head: snap.CleanedHead})
	default:
		page = templates.Home(templates.HomeView{Dataset: snap.Dataset, MaxFileSize: s.cfg.Upload.MaxFileSize})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Warn("render failed", "page", snap.Page.String(), "error", err)
	}
}

// handleUpload parses the uploaded file and loads it into the session.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		if strings.Contains(err.Error(), "request body too large") {
			s.fail(w, r, fmt.Errorf("%w: %w", errFileTooLarge, err))
			return
		}
		s.fail(w, r, fmt.Errorf("%w: %w", errNoFile, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, fmt.Errorf("%w: %w", errNoFile, err))
		return
	}
	defer file.Close()

	if header.Size > maxSize {
		s.fail(w, r, fmt.Errorf("%w: %d bytes exceeds %d", errFileTooLarge, header.Size, maxSize))
		return
	}

	ds, err := s.service.LoadUpload(r.Context(), sessionFrom(r), header.Filename, file)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	respond(w, r, http.StatusCreated, datasetResponse(ds))
}

// handleProcess moves from Home to Preview.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	if err := sess.Process(); err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stateResponse(sess.Snapshot()))
}

// handlePreview returns the first rows and column profiles of the loaded dataset.
// ?rows=N overrides the default head size.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).Snapshot()
	data, err := core.Preview(snap.Dataset, parseIntParam(r, "rows", core.PreviewRows))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, data)
}

// handleValidate runs a check on a column. Accepts JSON or form values.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, fmt.Errorf("decode request: %w", err), http.StatusBadRequest)
			return
		}
	} else {
		req.Column = r.FormValue("column")
		req.Check = r.FormValue("check")
	}

	kind, err := core.ParseCheckKind(req.Check)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	sess := sessionFrom(r)
	if _, err := sess.Validate(req.Column, kind); err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, resultsResponse(sess.Snapshot()))
}

// handleResults returns the last validation result.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	snap := sessionFrom(r).Snapshot()
	if snap.Result == nil {
		s.fail(w, r, core.ErrNoValidationResult)
		return
	}
	writeJSON(w, r, http.StatusOK, resultsResponse(snap))
}

// handleExportInvalid downloads every row that failed the last check.
func (s *Server) handleExportInvalid(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ds, column, err := sessionFrom(r).ExportInvalid()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeExport(w, r, ds, core.InvalidExportName(column, format), format)
}

// handleClean deletes the invalid rows and moves to Cleaned.
func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	res, err := sess.DeleteInvalid()
	if err != nil {
		s.fail(w, r, err)
		return
	}

	snap := sess.Snapshot()
	var column, check string
	if snap.Result != nil {
		column, check = snap.Result.Column, snap.Result.Check.Slug()
	}
	logging.WithFields(r.Context(), "column", column, "check", check).Info("invalid rows removed",
		"before", res.Before,
		"after", res.After,
		"deleted", res.Deleted,
	)
	respond(w, r, http.StatusOK, cleanResponse(res, snap.CleanedHead))
}

// handleExportCleaned downloads the cleaned dataset.
func (s *Server) handleExportCleaned(w http.ResponseWriter, r *http.Request) {
	format, err := core.ParseExportFormat(r.URL.Query().Get("format"))
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ds, err := sessionFrom(r).ExportCleaned()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeExport(w, r, ds, core.CleanedExportName(format), format)
}

// handleState returns the session snapshot.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, stateResponse(sessionFrom(r).Snapshot()))
}

// handleNavigate moves to home or back to preview.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	page, err := core.ParsePage(chi.URLParam(r, "page"))
	if err != nil {
		respondError(w, r, err, http.StatusNotFound)
		return
	}

	sess := sessionFrom(r)
	if err := sess.Navigate(page); err != nil {
		s.fail(w, r, err)
		return
	}
	respond(w, r, http.StatusOK, stateResponse(sess.Snapshot()))
}

// handleHealth reports liveness plus session and parser load.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.service.Sessions().Len(),
		"parser":   s.service.Limiter().Status(),
	})
}

// writeExport encodes ds fully before sending so an encoding failure can still
// be reported as an error response.
func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, ds *core.Dataset, name string, format core.ExportFormat) {
	var buf bytes.Buffer
	if err := core.Export(&buf, ds, format); err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "file", name, "error", err)
	}
}

func stateResponse(snap core.Snapshot) StateResponse {
	resp := StateResponse{
		Page:       snap.Page.String(),
		HasDataset: snap.HasDataset(),
		Dataset:    datasetResponse(snap.Dataset),
		Result:     snap.Result,
	}
	if snap.Clean != nil {
		resp.Clean = cleanResponse(*snap.Clean, snap.CleanedHead)
	}
	return resp
}

func resultsResponse(snap core.Snapshot) ResultsResponse {
	resp := ResultsResponse{}
	if snap.Result != nil {
		resp.ValidationResult = *snap.Result
	}
	if snap.SampleRows != nil {
		resp.Columns = snap.SampleRows.Columns
		resp.SampleRows = snap.SampleRows.Rows
	}
	return resp
}

// parseIntParam parses a non-negative integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}
