package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	middleware "github.com/markdave123-py/NexSupply/internal/api/middlewares"
	"github.com/markdave123-py/NexSupply/internal/api/views"
	db "github.com/markdave123-py/NexSupply/internal/core/database"
	"github.com/markdave123-py/NexSupply/internal/models"
	"github.com/markdave123-py/NexSupply/internal/platform/logger"
	"github.com/markdave123-py/NexSupply/internal/services"
	"github.com/markdave123-py/NexSupply/internal/session"
)

// DefaultMaxUpload bounds the analyze form including the attached file.
const DefaultMaxUpload = 20 << 20

// WarningNoInput is shown when the analyze form arrives empty.
const WarningNoInput = "Please enter a product or attach a file to analyze."

type PageConfig struct {
	SupportEmail string
	StoreURL     string
	MaxUpload    int64
}

// PageHandler serves the HTML pages and their form posts. Every post
// mutates the caller's session and redirects back to "/".
type PageHandler struct {
	store    session.Store
	views    *views.Renderer
	analysis *services.AnalysisService
	projects *services.ProjectService
	consult  *services.ConsultationService
	validate *validator.Validate
	log      *logger.Logger
	cfg      PageConfig
	now      func() time.Time
}

func NewPageHandler(store session.Store, v *views.Renderer, analysis *services.AnalysisService, projects *services.ProjectService,
	consult *services.ConsultationService, validate *validator.Validate, log *logger.Logger, cfg PageConfig) *PageHandler {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = DefaultMaxUpload
	}
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &PageHandler{
		store:    store,
		views:    v,
		analysis: analysis,
		projects: projects,
		consult:  consult,
		validate: validate,
		log:      log.With("handler", "PageHandler"),
		cfg:      cfg,
		now:      time.Now,
	}
}

// Home renders the landing page or the results dashboard, whichever view
// the session is on.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	st := h.load(r)
	h.ensureProfile(r)

	notices := st.TakeNotices()
	if len(notices) > 0 {
		h.save(r, st)
	}
	layout := h.layout(r, "", notices)

	if st.View == session.ViewResults && st.HasResult() {
		layout.Title = "Results"
		h.render(w, http.StatusOK, views.PageResults, views.ResultsData{
			Layout:              layout,
			Query:               st.Query,
			Result:              st.Result(),
			ProjectID:           st.ProjectID,
			ConsultationMessage: services.DefaultConsultationMessage(st.Query, st.Result()),
			ConsultationEnabled: h.consult.Enabled(),
		})
		return
	}
	h.renderHome(w, http.StatusOK, st, layout, "")
}

// Analyze runs an analysis on the submitted form. A form carrying "retry"
// re-runs the input already in the session.
func (h *PageHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUpload)
	if err := r.ParseMultipartForm(h.cfg.MaxUpload); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.log.Warn("analyze form rejected", "error", err.Error())
		st := h.load(r)
		h.renderHome(w, http.StatusBadRequest, st, h.layout(r, "", nil), "The upload could not be read. Files must be smaller than 20 MB.")
		return
	}

	st := h.load(r)
	h.ensureProfile(r)
	if r.FormValue("retry") == "" {
		st.Query = strings.TrimSpace(r.FormValue("query"))
		st.ContextQuery = strings.TrimSpace(r.FormValue("context_query"))
		if mode := r.FormValue("mode"); mode != "" && h.validate.Var(mode, "oneof=general verify cost market leadtime") == nil {
			st.Mode = mode
		}
		if err := h.readUpload(r, st); err != nil {
			h.log.Warn("upload not read", "error", err.Error())
			h.renderHome(w, http.StatusBadRequest, st, h.layout(r, "", nil), "The attached file could not be read.")
			return
		}
	}

	if !st.HasInput() {
		h.save(r, st)
		h.renderHome(w, http.StatusUnprocessableEntity, st, h.layout(r, "", nil), WarningNoInput)
		return
	}

	err := h.analysis.Run(r.Context(), st, h.caller(r))
	var aerr *services.AnalysisError
	if err != nil && !errors.As(err, &aerr) {
		h.log.Error("analysis run failed", "error", err.Error())
	}
	h.save(r, st)
	redirectHome(w, r)
}

func (h *PageHandler) readUpload(r *http.Request, st *session.State) error {
	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		st.SetUpload("", "", nil)
		return nil
	}
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	st.SetUpload(header.Filename, contentType, data)
	return nil
}

// Template applies a quick-start template.
func (h *PageHandler) Template(w http.ResponseWriter, r *http.Request) {
	mode := chi.URLParam(r, "mode")
	if err := h.validate.Var(mode, "required,oneof=verify cost market leadtime"); err != nil {
		http.Error(w, "unknown template", http.StatusNotFound)
		return
	}
	st := h.load(r)
	services.ApplyQuickStart(st, mode)
	h.save(r, st)
	redirectHome(w, r)
}

// Demo shows the sample analysis.
func (h *PageHandler) Demo(w http.ResponseWriter, r *http.Request) {
	st := h.load(r)
	h.analysis.LoadDemo(st)
	h.save(r, st)
	redirectHome(w, r)
}

// Reset returns to the landing page with an empty form.
func (h *PageHandler) Reset(w http.ResponseWriter, r *http.Request) {
	st := h.load(r)
	st.Reset()
	h.save(r, st)
	redirectHome(w, r)
}

// Report downloads the current analysis as JSON.
func (h *PageHandler) Report(w http.ResponseWriter, r *http.Request) {
	st := h.load(r)
	if !st.HasResult() {
		http.Error(w, "no analysis to export", http.StatusNotFound)
		return
	}
	now := h.now()
	body, err := services.BuildReport(st.FullQuery(), st.Result(), now).Encode()
	if err != nil {
		h.log.Error("report encode failed", "error", err.Error())
		http.Error(w, "report unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+services.ReportFilename(now)+`"`)
	_, _ = w.Write(body)
}

// Consultation mails a quote request and reports back through a notice.
func (h *PageHandler) Consultation(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	st := h.load(r)
	req := services.ConsultationRequest{
		Email:   r.PostFormValue("email"),
		Message: r.PostFormValue("message"),
		Product: st.Query,
	}

	err := h.consult.Submit(r.Context(), req)
	var verr *services.ValidationError
	switch {
	case err == nil:
		st.AddNotice("Thanks! We received your request and will reply by email within one business day.")
	case errors.As(err, &verr):
		st.AddNotice("Consultation not sent: " + verr.Error() + ".")
	case errors.Is(err, services.ErrMailerUnavailable):
		st.AddNotice("Online requests are unavailable right now. Please email us at " + h.cfg.SupportEmail + ".")
	default:
		h.log.Error("consultation not sent", "error", err.Error())
		st.AddNotice("We could not send your request. Please email us at " + h.cfg.SupportEmail + ".")
	}
	h.save(r, st)
	redirectHome(w, r)
}

// Payment shows the plans and, for signed-in users, the checkout link.
func (h *PageHandler) Payment(w http.ResponseWriter, r *http.Request) {
	data := views.PaymentData{Layout: h.layout(r, "Pricing", nil), Plans: services.Plans}

	var userID, email string
	if u := middleware.UserFromContext(r.Context()); u != nil {
		userID, email = u.ID, u.Email
		if p := h.ensureProfile(r); p != nil && p.Email != "" {
			email = p.Email
		}
	}

	url, err := services.CheckoutURL(h.cfg.StoreURL, email, userID)
	switch {
	case err == nil:
		data.CheckoutURL = url
	case errors.Is(err, services.ErrCheckoutNotConfigured):
		data.Setup = "Checkout is not set up yet. Set LEMON_SQUEEZY_STORE_URL to enable subscriptions."
	case errors.Is(err, services.ErrLoginRequired):
		data.Setup = "Sign in to upgrade to Pro."
	default:
		data.Setup = "Add an email address to your account to upgrade."
	}
	h.render(w, http.StatusOK, views.PagePayment, data)
}

func (h *PageHandler) Legal(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, views.PageLegal, views.LegalData{Layout: h.layout(r, "Terms & Privacy", nil)})
}

func (h *PageHandler) renderHome(w http.ResponseWriter, status int, st *session.State, layout views.Layout, warning string) {
	fileName := ""
	if st.HasFile() {
		fileName = st.Upload.Name
	}
	h.render(w, status, views.PageHome, views.HomeData{
		Layout:       layout,
		Query:        st.Query,
		ContextQuery: st.ContextQuery,
		Mode:         st.Mode,
		FileName:     fileName,
		Warning:      warning,
		Error:        st.Error(),
		ErrorCode:    st.ErrorCode,
		QuickStarts:  services.QuickStarts,
	})
}

func (h *PageHandler) render(w http.ResponseWriter, status int, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	var buf strings.Builder
	if err := h.views.Render(&buf, page, data); err != nil {
		h.log.Error("render failed", "page", page, "error", err.Error())
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

func (h *PageHandler) layout(r *http.Request, title string, notices []string) views.Layout {
	l := views.Layout{Title: title, Notices: notices, SupportEmail: h.cfg.SupportEmail}
	if u := middleware.UserFromContext(r.Context()); u != nil {
		l.UserEmail = u.Email
	}
	return l
}

func (h *PageHandler) caller(r *http.Request) services.Caller {
	c := services.Caller{SessionID: middleware.SessionIDFromContext(r.Context())}
	if u := middleware.UserFromContext(r.Context()); u != nil {
		c.UserID, c.Email = u.ID, u.Email
	}
	return c
}

func (h *PageHandler) load(r *http.Request) *session.State {
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		return session.New()
	}
	st, err := h.store.Load(r.Context(), sid)
	if err != nil || st == nil {
		if err != nil {
			h.log.Warn("session not loaded", "session", sid, "error", err.Error())
		}
		return session.New()
	}
	return st
}

func (h *PageHandler) save(r *http.Request, st *session.State) {
	sid := middleware.SessionIDFromContext(r.Context())
	if sid == "" {
		return
	}
	st.UpdatedAt = h.now()
	if err := h.store.Save(r.Context(), sid, st); err != nil {
		h.log.Warn("session not saved", "session", sid, "error", err.Error())
	}
}

// ensureProfile creates the free profile on a user's first signed-in visit.
func (h *PageHandler) ensureProfile(r *http.Request) *models.Profile {
	u := middleware.UserFromContext(r.Context())
	if u == nil || h.projects == nil {
		return nil
	}
	p, err := h.projects.EnsureProfile(r.Context(), u.ID, u.Email)
	if err != nil {
		if !errors.Is(err, db.ErrUnavailable) {
			h.log.Warn("profile not loaded", "user_id", u.ID, "error", err.Error())
		}
		return nil
	}
	return p
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
