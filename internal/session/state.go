// Package session holds the per-visitor sourcing state that survives between
// requests: what was asked, what came back and which view is showing.
package session

import (
	"strings"
	"time"

	"github.com/markdave123-py/NexSupply/internal/models"
)

// View is the page a session is currently on.
type View string

const (
	ViewLanding View = "landing"
	ViewResults View = "results"
)

// Upload is a file attached to the query.
type Upload struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// State is one visitor's sourcing session. It is mutated only by the request
// that loaded it and written back through a Store.
type State struct {
	Query        string                 `json:"query"`
	ContextQuery string                 `json:"context_query"`
	Upload       *Upload                `json:"upload,omitempty"`
	Analysis     *models.AnalysisResult `json:"analysis,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
	ErrorCode    string                 `json:"error_code,omitempty"`
	Analyzing    bool                   `json:"analyzing"`
	Mode         string                 `json:"mode,omitempty"`
	View         View                   `json:"view"`
	ProjectID    string                 `json:"project_id,omitempty"`
	Notices      []string               `json:"notices,omitempty"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

// New returns an empty state on the landing view.
func New() *State {
	return &State{View: ViewLanding, Mode: models.ModeGeneral}
}

func (s *State) HasQuery() bool {
	return strings.TrimSpace(s.Query) != ""
}

func (s *State) HasFile() bool {
	return s.Upload != nil && s.Upload.Data != nil
}

// HasInput reports whether there is anything worth sending for analysis.
func (s *State) HasInput() bool {
	return s.HasQuery() || s.HasFile()
}

// Input builds the mapping handed to the analyzer.
func (s *State) Input() models.AnalysisInput {
	in := models.AnalysisInput{
		Query:        s.Query,
		ContextQuery: s.ContextQuery,
		Mode:         s.Mode,
	}
	if s.HasFile() {
		in.FileBytes = s.Upload.Data
		in.FileName = s.Upload.Name
		in.FileMIMEType = s.Upload.MIMEType
	}
	return in
}

// Result returns the stored analysis, or nil when there is none.
func (s *State) Result() *models.AnalysisResult {
	return s.Analysis
}

func (s *State) HasResult() bool {
	return s.Result() != nil
}

// Error returns the current user-facing error message, empty when none.
func (s *State) Error() string {
	return s.ErrorMessage
}

// SaveResult stores the analysis without changing the view.
func (s *State) SaveResult(res *models.AnalysisResult) {
	s.Analysis = res
}

// SetResult stores the analysis and moves to the results view.
func (s *State) SetResult(res *models.AnalysisResult) {
	s.SaveResult(res)
	s.View = ViewResults
	s.Analyzing = false
}

// SaveError records a user-facing error and its support code.
func (s *State) SaveError(msg, code string) {
	s.ErrorMessage = msg
	s.ErrorCode = code
}

// SetError records the error and ends the in-flight analysis.
func (s *State) SetError(msg, code string) {
	s.SaveError(msg, code)
	s.Analyzing = false
}

func (s *State) ClearError() {
	s.ErrorMessage = ""
	s.ErrorCode = ""
}

// Clear drops the input, the result and any error.
func (s *State) Clear() {
	s.Query = ""
	s.ContextQuery = ""
	s.Upload = nil
	s.Analysis = nil
	s.ClearError()
	s.Analyzing = false
	s.ProjectID = ""
}

// Reset clears the session and returns to the landing view.
func (s *State) Reset() {
	s.Clear()
	s.Mode = models.ModeGeneral
	s.View = ViewLanding
}

// ApplyTemplate prepares a quick-start analysis: the product field is
// emptied for the user to fill, the context is prefilled and the mode is set.
// The view does not change.
func (s *State) ApplyTemplate(mode, context string) {
	s.Query = ""
	s.ContextQuery = context
	s.Mode = mode
	s.ClearError()
}

// SetUpload attaches a file, or removes it when data is empty.
func (s *State) SetUpload(name, mimeType string, data []byte) {
	if len(data) == 0 {
		s.Upload = nil
		return
	}
	s.Upload = &Upload{Name: name, MIMEType: mimeType, Data: data}
}

// ReleaseUpload drops the attachment's bytes and keeps its name and type.
func (s *State) ReleaseUpload() {
	if s.Upload != nil {
		s.Upload.Data = nil
	}
}

// AddNotice queues a one-shot message for the next page render.
func (s *State) AddNotice(msg string) {
	s.Notices = append(s.Notices, msg)
}

// TakeNotices returns the queued notices and empties the queue.
func (s *State) TakeNotices() []string {
	n := s.Notices
	s.Notices = nil
	return n
}

// FullQuery joins the product query with the extra context the way the
// analyzer expects it.
func (s *State) FullQuery() string {
	q := strings.TrimSpace(s.Query)
	c := strings.TrimSpace(s.ContextQuery)
	switch {
	case q == "":
		return c
	case c == "":
		return q
	default:
		return q + "\n\n" + c
	}
}
