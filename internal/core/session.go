package core

// session.go holds the per-user clean/export workflow.
//
// Page flow:
//
//	Home --Process--> Preview --Validate--> Results --DeleteInvalid--> Cleaned
//	                     ^                     |                          |
//	                     +----BackToPreview----+--------------------------+
//
// Home is reachable from every page and resets the session. Actions attempted on
// the wrong page return a *StateError naming the page to recover to; the session
// is left untouched.

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Page is the current step of the workflow.
type Page int

const (
	PageHome Page = iota
	PagePreview
	PageResults
	PageCleaned
)

func (p Page) String() string {
	switch p {
	case PageHome:
		return "home"
	case PagePreview:
		return "preview"
	case PageResults:
		return "results"
	case PageCleaned:
		return "cleaned"
	default:
		return fmt.Sprintf("page(%d)", int(p))
	}
}

// ParsePage maps a page name to a Page.
func ParsePage(s string) (Page, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "home":
		return PageHome, nil
	case "preview":
		return PagePreview, nil
	case "results":
		return PageResults, nil
	case "cleaned":
		return PageCleaned, nil
	default:
		return PageHome, fmt.Errorf("unknown page %q", s)
	}
}

// StateError reports an action attempted on a page that does not offer it.
type StateError struct {
	Action   string
	Page     Page
	Recovery Page
	Reason   error // optional detail, e.g. ErrNoDataset
}

func (e *StateError) Error() string {
	msg := fmt.Sprintf("invalid state: %s not available on %s page, return to %s", e.Action, e.Page, e.Recovery)
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	return msg
}

// Is matches ErrInvalidState and the optional reason.
func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState || (e.Reason != nil && errors.Is(e.Reason, target))
}

// CleanedPreviewRows is the number of cleaned rows shown on the cleaned page.
const CleanedPreviewRows = 10

// Session is one user's workflow state. All methods are safe for concurrent use;
// actions are serialized so each runs to completion before the next starts.
type Session struct {
	ID string

	mu      sync.Mutex
	page    Page
	dataset *Dataset
	result  *ValidationResult
	cleaned *CleanResult
}

// NewSession returns a session on the home page.
func NewSession(id string) *Session {
	return &Session{ID: id, page: PageHome}
}

func (s *Session) stateErr(action string, recovery Page, reason error) error {
	return &StateError{Action: action, Page: s.page, Recovery: recovery, Reason: reason}
}

// Load replaces the session dataset. Only available on the home page.
// A nil dataset (a failed parse) leaves the session unchanged.
func (s *Session) Load(ds *Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != PageHome {
		return s.stateErr("load", PageHome, nil)
	}
	if ds == nil {
		return ErrNoDataset
	}
	s.dataset = ds
	s.result = nil
	s.cleaned = nil
	return nil
}

// Process moves from Home to Preview once a dataset is loaded.
func (s *Session) Process() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != PageHome {
		return s.stateErr("process", s.page, nil)
	}
	if s.dataset == nil {
		return s.stateErr("process", PageHome, ErrNoDataset)
	}
	s.page = PagePreview
	return nil
}

// Validate runs check kind on column and moves to Results.
// On error the session stays on Preview.
func (s *Session) Validate(column string, kind CheckKind) (ValidationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != PagePreview {
		return ValidationResult{}, s.stateErr("validate", s.fallbackPage(), nil)
	}
	if s.dataset == nil {
		return ValidationResult{}, s.stateErr("validate", PageHome, ErrNoDataset)
	}

	res, err := Validate(s.dataset, column, kind)
	if err != nil {
		return ValidationResult{}, err
	}
	s.result = &res
	s.cleaned = nil
	s.page = PageResults
	return res, nil
}

// fallbackPage is where a rejected action sends the user: Preview when a
// dataset is loaded, Home otherwise.
func (s *Session) fallbackPage() Page {
	if s.dataset == nil {
		return PageHome
	}
	return PagePreview
}

// requireResult checks the Results-page preconditions shared by export and delete.
func (s *Session) requireResult(action string) error {
	if s.page != PageResults {
		return s.stateErr(action, s.fallbackPage(), nil)
	}
	if s.dataset == nil {
		return s.stateErr(action, PageHome, ErrNoDataset)
	}
	if s.result == nil {
		return s.stateErr(action, PagePreview, ErrNoValidationResult)
	}
	if s.result.InvalidCount == 0 {
		return ErrNothingToClean
	}
	return nil
}

// ExportInvalid returns every row failing the last check, all columns.
func (s *Session) ExportInvalid() (*Dataset, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireResult("export invalid rows"); err != nil {
		return nil, "", err
	}
	ds, err := ExtractInvalid(s.dataset, s.result.Column, s.result.Check)
	if err != nil {
		return nil, "", err
	}
	return ds, s.result.Column, nil
}

// DeleteInvalid removes every row failing the last check and moves to Cleaned.
// The invalid set is recomputed from the stored column and check, never taken
// from the sample.
func (s *Session) DeleteInvalid() (CleanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireResult("delete invalid rows"); err != nil {
		return CleanResult{}, err
	}
	res, err := RemoveInvalid(s.dataset, s.result.Column, s.result.Check)
	if err != nil {
		return CleanResult{}, err
	}
	s.cleaned = &res
	s.page = PageCleaned
	return res, nil
}

// ExportCleaned returns the cleaned dataset. Only available on the cleaned page.
func (s *Session) ExportCleaned() (*Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.page != PageCleaned {
		return nil, s.stateErr("export cleaned data", s.page, nil)
	}
	if s.cleaned == nil {
		return nil, s.stateErr("export cleaned data", PagePreview, ErrNothingToClean)
	}
	return s.cleaned.Cleaned, nil
}

// BackToPreview returns to Preview from Results or Cleaned, keeping the dataset,
// last result and cleaned dataset.
func (s *Session) BackToPreview() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.page {
	case PagePreview:
		return nil
	case PageResults, PageCleaned:
		if s.dataset == nil {
			s.reset()
			return s.stateErr("back to preview", PageHome, ErrNoDataset)
		}
		s.page = PagePreview
		return nil
	default:
		return s.stateErr("back to preview", PageHome, nil)
	}
}

// Home resets the session from any page.
func (s *Session) Home() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *Session) reset() {
	s.page = PageHome
	s.dataset = nil
	s.result = nil
	s.cleaned = nil
}

// Navigate moves to page p using BackToPreview or Home.
func (s *Session) Navigate(p Page) error {
	switch p {
	case PageHome:
		s.Home()
		return nil
	case PagePreview:
		return s.BackToPreview()
	default:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.stateErr("navigate to "+p.String(), s.page, nil)
	}
}

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	Page        Page
	Dataset     *Dataset
	Result      *ValidationResult
	SampleRows  *Dataset // full rows behind Result.Sample
	Clean       *CleanResult
	CleanedHead *Dataset
}

// HasDataset reports whether a dataset is loaded.
func (s Snapshot) HasDataset() bool {
	return s.Dataset != nil
}

// Snapshot returns the current page and the data it displays.
// Datasets are immutable so the snapshot shares them.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{Page: s.page, Dataset: s.dataset}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
		if s.dataset != nil {
			snap.SampleRows = SampleRows(s.dataset, res)
		}
	}
	if s.cleaned != nil {
		c := *s.cleaned
		snap.Clean = &c
		n := min(CleanedPreviewRows, c.Cleaned.Len())
		snap.CleanedHead = c.Cleaned.Subset(firstN(n))
	}
	return snap
}

func firstN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
