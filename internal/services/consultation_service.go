package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/markdave123-py/NexSupply/internal/core"
	"github.com/markdave123-py/NexSupply/internal/models"
)

// ErrMailerUnavailable means requests cannot be sent from the server and the
// visitor should write to the support address directly.
var ErrMailerUnavailable = errors.New("consultation mail not configured")

// ConsultationRequest is the dashboard's "get real quotes" form.
type ConsultationRequest struct {
	Email   string `validate:"required,email,max=254"`
	Message string `validate:"max=5000"`
	Product string `validate:"max=500"`
}

type ConsultationService struct {
	mailer   core.Mailer
	to       string
	validate *validator.Validate
}

// NewConsultationService accepts a nil mailer; Submit then returns
// ErrMailerUnavailable after validation.
func NewConsultationService(mailer core.Mailer, to string, v *validator.Validate) *ConsultationService {
	if v == nil {
		v = validator.New()
	}
	return &ConsultationService{mailer: mailer, to: to, validate: v}
}

// Enabled reports whether requests can be mailed from the server.
func (s *ConsultationService) Enabled() bool {
	return s != nil && s.mailer != nil
}

// Submit validates the request and mails it to the consultation inbox with
// the visitor as reply-to.
func (s *ConsultationService) Submit(ctx context.Context, req ConsultationRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	req.Product = strings.TrimSpace(req.Product)
	if err := s.validate.Struct(req); err != nil {
		return &ValidationError{Err: err}
	}
	if s.mailer == nil {
		return ErrMailerUnavailable
	}

	msg := req.Message
	if msg == "" {
		msg = "Consultation request from NexSupply"
	}
	subject := "Consultation request"
	if req.Product != "" {
		subject += ": " + firstLine(req.Product)
	}
	body := fmt.Sprintf("From: %s\nProduct: %s\n\n%s\n", req.Email, req.Product, msg)

	if err := s.mailer.Send(ctx, models.Email{To: s.to, ReplyTo: req.Email, Subject: subject, Body: body}); err != nil {
		return fmt.Errorf("send consultation: %w", err)
	}
	return nil
}

// DefaultConsultationMessage pre-fills the form from the analysis.
func DefaultConsultationMessage(query string, res *models.AnalysisResult) string {
	product := firstLine(query)
	if res != nil {
		if n, ok := res.ProductInfo["name"].(string); ok && strings.TrimSpace(n) != "" {
			product = strings.TrimSpace(n)
		}
	}
	if product == "" {
		product = "Product Inquiry"
	}
	volume, perUnit := 1000, 0.0
	if res != nil {
		volume = res.LandedCost.QuantityBasis
		perUnit = res.LandedCost.CostPerUnitUSD
	}
	return fmt.Sprintf("Product: %s\nVolume: %s units\nLanded cost: $%.2f/unit\n\nPlease help me get real quotes and factory verification.",
		product, groupThousands(volume), perUnit)
}

// ValidationError wraps field errors from the validator.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	var verrs validator.ValidationErrors
	if errors.As(e.Err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		switch f.Tag() {
		case "required":
			return fmt.Sprintf("%s is required", strings.ToLower(f.Field()))
		case "email":
			return "please enter a valid email address"
		case "max":
			return fmt.Sprintf("%s is too long", strings.ToLower(f.Field()))
		case "oneof":
			return fmt.Sprintf("unknown %s", strings.ToLower(f.Field()))
		}
	}
	return "invalid input"
}

func (e *ValidationError) Unwrap() error { return e.Err }

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
