package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/markdave123-py/NexSupply/internal/core"
	"github.com/markdave123-py/NexSupply/internal/core/llm"
	"github.com/markdave123-py/NexSupply/internal/core/normalizer"
	"github.com/markdave123-py/NexSupply/internal/models"
	"github.com/markdave123-py/NexSupply/internal/platform/logger"
	"github.com/markdave123-py/NexSupply/internal/session"
)

// Support codes shown to the user next to a failed analysis.
const (
	CodeReportedFailure = "A-101"
	CodeUnexpected      = "A-102"
)

const (
	DefaultAnalysisTimeout = 60 * time.Second
	DefaultSlowThreshold   = 25 * time.Second
)

// ErrNoInput means neither a product query nor a file was provided.
var ErrNoInput = errors.New("enter a product or attach a file")

// AnalysisError is a failed analysis with its support code.
type AnalysisError struct {
	Code string
	Err  error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed (%s): %v", e.Code, e.Err)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// FailureMessage is the text shown for a failed analysis. Details stay in
// the log.
func FailureMessage(code, supportEmail string) string {
	return fmt.Sprintf("Analysis Failed. (Error Code: %s) We apologize for the issue. Please refresh the page or email us the details directly at %s", code, supportEmail)
}

// Notices shown when an optional integration could not be used.
const (
	NoticeSlow        = "Taking longer than expected. Thanks for waiting, the analysis finished."
	NoticeProjectSave = "Your results are shown, but they could not be saved to your project history."
)

type AnalysisService struct {
	analyzer     core.Analyzer
	projects     *ProjectService
	uploads      *UploadService
	log          *logger.Logger
	supportEmail string
	timeout      time.Duration
	slowAfter    time.Duration
}

type AnalysisOptions struct {
	Timeout      time.Duration
	SlowAfter    time.Duration
	SupportEmail string
}

// NewAnalysisService wires the analysis flow. analyzer may be nil when no
// API key is configured; every analysis then fails with A-101.
func NewAnalysisService(analyzer core.Analyzer, projects *ProjectService, uploads *UploadService, log *logger.Logger, opts AnalysisOptions) *AnalysisService {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultAnalysisTimeout
	}
	if opts.SlowAfter <= 0 {
		opts.SlowAfter = DefaultSlowThreshold
	}
	if log == nil {
		log = logger.Nop()
	}
	return &AnalysisService{
		analyzer:     analyzer,
		projects:     projects,
		uploads:      uploads,
		log:          log.With("service", "AnalysisService"),
		supportEmail: opts.SupportEmail,
		timeout:      opts.Timeout,
		slowAfter:    opts.SlowAfter,
	}
}

// Caller identifies who is asking. UserID is empty for anonymous visitors.
type Caller struct {
	UserID    string
	Email     string
	SessionID string
}

// Run analyses the session's current input and records the outcome on st:
// a result and the results view on success, an error message and code on
// failure. Project history and upload archiving are best effort.
func (s *AnalysisService) Run(ctx context.Context, st *session.State, caller Caller) error {
	if !st.HasInput() {
		return ErrNoInput
	}
	st.ClearError()
	st.Analyzing = true

	productQuery := st.Query
	fullQuery := st.FullQuery()
	log := s.log.With("session", caller.SessionID, "mode", st.Mode)

	projectID := s.startProject(ctx, st, caller, productQuery, log)

	resp, err := s.analyze(ctx, st, caller, log)
	if err != nil {
		log.Error("analysis error", "code", CodeUnexpected, "error", err.Error())
		st.SetError(FailureMessage(CodeUnexpected, s.supportEmail), CodeUnexpected)
		return &AnalysisError{Code: CodeUnexpected, Err: err}
	}
	if !resp.Success {
		log.Error("analysis reported failure", "code", CodeReportedFailure, "error", resp.Error, "details", resp.ErrorDetails)
		st.SetError(FailureMessage(CodeReportedFailure, s.supportEmail), CodeReportedFailure)
		return &AnalysisError{Code: CodeReportedFailure, Err: errors.New(resp.Error)}
	}

	res := normalizer.Normalize(resp.Data)
	res.AnalysisMode = resp.Mode
	if res.AnalysisMode == "" {
		res.AnalysisMode = models.ModeGeneral
	}

	if projectID != "" {
		if err := s.projects.Complete(ctx, projectID, fullQuery, res); err != nil {
			log.Warn("project history not saved", "project_id", projectID, "error", err.Error())
			st.AddNotice(NoticeProjectSave)
		}
	}

	st.Mode = res.AnalysisMode
	st.ProjectID = projectID
	st.SetResult(res)
	st.ReleaseUpload()
	return nil
}

// LoadDemo puts the demo dataset into the session's results.
func (s *AnalysisService) LoadDemo(st *session.State) {
	resp := llm.MockAnalysis(firstLine(st.FullQuery()))
	res := normalizer.Normalize(resp.Data)
	res.AnalysisMode = models.ModeGeneral
	st.ClearError()
	st.Mode = models.ModeGeneral
	st.SetResult(res)
}

func (s *AnalysisService) startProject(ctx context.Context, st *session.State, caller Caller, productQuery string, log *logger.Logger) string {
	if caller.UserID == "" || s.projects == nil {
		return ""
	}
	id, err := s.projects.Start(ctx, caller.UserID, productQuery)
	if err != nil {
		log.Warn("project not created", "error", err.Error())
		st.AddNotice(NoticeProjectSave)
		return ""
	}
	return id
}

// analyze calls the model under the hard timeout while the attachment is
// archived alongside. Passing the soft threshold only logs and adds a notice.
func (s *AnalysisService) analyze(ctx context.Context, st *session.State, caller Caller, log *logger.Logger) (*models.AnalysisResponse, error) {
	if s.analyzer == nil {
		return &models.AnalysisResponse{Success: false, Error: "analyzer not configured", ErrorDetails: llm.ErrNoAPIKey.Error()}, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var slow atomic.Bool
	timer := time.AfterFunc(s.slowAfter, func() {
		slow.Store(true)
		log.Warn("analysis taking longer than expected", "threshold", s.slowAfter.String())
	})
	defer timer.Stop()

	input := st.Input()
	started := time.Now()

	var (
		resp     *models.AnalysisResponse
		archived *ArchivedUpload
	)
	g, gctx := errgroup.WithContext(callCtx)
	g.Go(func() error {
		r, err := s.analyzer.Analyze(gctx, input)
		if err != nil {
			return err
		}
		if r == nil {
			return errors.New("analyzer returned no response")
		}
		resp = r
		return nil
	})
	if st.HasFile() && s.uploads.Enabled() {
		up := *st.Upload
		owner := caller.UserID
		if owner == "" {
			owner = caller.SessionID
		}
		g.Go(func() error {
			a, err := s.uploads.Archive(callCtx, owner, up.Name, up.MIMEType, up.Data)
			if err != nil {
				log.Warn("upload not archived", "file", up.Name, "error", err.Error())
				return nil
			}
			log.Info("upload archived", "file", up.Name, "url", a.URL)
			archived = a
			return nil
		})
	}

	err := g.Wait()
	if slow.Load() {
		st.AddNotice(NoticeSlow)
	}
	log.Info("analysis call finished", "elapsed", time.Since(started).String(), "ok", err == nil)

	// Attachments are only kept for analyses that produced a result.
	if archived != nil && (err != nil || !resp.Success) {
		if derr := s.uploads.Discard(ctx, archived.Key); derr != nil {
			log.Warn("archived upload not removed", "key", archived.Key, "error", derr.Error())
		} else {
			log.Info("archived upload removed", "key", archived.Key)
		}
	}
	return resp, err
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
