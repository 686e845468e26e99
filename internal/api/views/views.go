// Package views renders the server-side HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strings"

	"github.com/markdave123-py/NexSupply/internal/core/normalizer"
	"github.com/markdave123-py/NexSupply/internal/models"
	"github.com/markdave123-py/NexSupply/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	PageHome    = "home"
	PageResults = "results"
	PagePayment = "payment"
	PageLegal   = "legal"
)

var pages = []string{PageHome, PageResults, PagePayment, PageLegal}

// Layout carries what every page shows around its content.
type Layout struct {
	Title        string
	UserEmail    string
	Notices      []string
	SupportEmail string
}

type HomeData struct {
	Layout
	Query        string
	ContextQuery string
	Mode         string
	FileName     string
	Warning      string
	Error        string
	ErrorCode    string
	QuickStarts  []services.QuickStart
}

type ResultsData struct {
	Layout
	Query               string
	Result              *models.AnalysisResult
	ProjectID           string
	ConsultationMessage string
	ConsultationEnabled bool
}

type PaymentData struct {
	Layout
	Plans       []services.Plan
	CheckoutURL string
	Setup       string
}

type LegalData struct {
	Layout
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes page to w. The page is rendered to a buffer first so a
// template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"usd":     usd,
	"percent": percent,
	"weeks":   weeks,
	"text":    text,
	"label":   label,
	"stars":   stars,
}

func usd(v float64) string {
	neg := v < 0
	cents := int64(math.Round(math.Abs(v) * 100))
	whole, frac := cents/100, cents%100

	s := fmt.Sprint(whole)
	var b strings.Builder
	for i, c := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := "$" + b.String()
	if frac != 0 {
		out += fmt.Sprintf(".%02d", frac)
	}
	if neg {
		out = "-" + out
	}
	return out
}

// percent renders a 0..1 confidence as a whole percentage.
func percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v*100)))
}

func weeks(days int) string {
	lo, hi := normalizer.WeeksRange(days)
	return fmt.Sprintf("%d-%d weeks", lo, hi)
}

// text prints a pass-through value, empty for nil.
func text(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// label picks the first non-empty of keys when v is an object, and prints v
// otherwise.
func label(v any, keys ...string) string {
	m, ok := v.(map[string]any)
	if !ok {
		return text(v)
	}
	for _, k := range keys {
		if s := strings.TrimSpace(text(m[k])); s != "" {
			return s
		}
	}
	return ""
}

func stars(rating float64) string {
	n := int(math.Round(rating))
	if n < 0 {
		n = 0
	}
	if n > 5 {
		n = 5
	}
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}
