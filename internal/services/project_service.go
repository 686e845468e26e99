package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/markdave123-py/NexSupply/internal/core"
	"github.com/markdave123-py/NexSupply/internal/core/normalizer"
	"github.com/markdave123-py/NexSupply/internal/models"
)

// ErrProjectNotFound covers both missing projects and projects owned by
// someone else.
var ErrProjectNotFound = errors.New("project not found")

const (
	projectNameFromQuery = 50
	projectNameMax       = 100
)

type ProjectService struct {
	db  core.DbClient
	now func() time.Time
}

func NewProjectService(db core.DbClient) *ProjectService {
	return &ProjectService{db: db, now: time.Now}
}

// EnsureProfile loads the user's profile, creating a free one on first visit.
func (s *ProjectService) EnsureProfile(ctx context.Context, userID, email string) (*models.Profile, error) {
	p, err := s.db.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}
	if strings.TrimSpace(email) == "" {
		return nil, nil
	}
	return s.db.UpsertProfile(ctx, &models.Profile{ID: userID, Email: email, Role: models.RoleFree})
}

// ProjectName derives a project name from the product query: its first 50
// characters, or a timestamped fallback when the query is empty.
func (s *ProjectService) ProjectName(query string) string {
	name := strings.TrimSpace(query)
	if name == "" {
		return "Analysis " + s.now().Format("2006-01-02 15:04")
	}
	name = truncateRunes(name, projectNameFromQuery)
	return truncateRunes(name, projectNameMax)
}

// Start creates the active project an analysis is recorded against.
func (s *ProjectService) Start(ctx context.Context, userID, productQuery string) (string, error) {
	p, err := s.db.CreateProject(ctx, userID, s.ProjectName(productQuery))
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

// Complete records the conversation and headline scores of a finished
// analysis and marks the project completed.
func (s *ProjectService) Complete(ctx context.Context, projectID, fullQuery string, res *models.AnalysisResult) error {
	var msgs []models.Message
	if q := strings.TrimSpace(fullQuery); q != "" {
		msgs = append(msgs, models.Message{Role: models.MessageRoleUser, Content: q})
	}
	msgs = append(msgs, models.Message{Role: models.MessageRoleAI, Content: AISummary(res)})

	if _, err := s.db.SaveMessages(ctx, projectID, msgs); err != nil {
		return fmt.Errorf("save messages: %w", err)
	}

	risk, cost := normalizer.ExtractScores(res)
	status := models.ProjectCompleted
	if err := s.db.UpdateProject(ctx, projectID, models.ProjectUpdate{
		Status:           &status,
		InitialRiskScore: risk,
		TotalLandedCost:  cost,
	}); err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// AISummary is the short assistant message stored for a finished analysis.
func AISummary(res *models.AnalysisResult) string {
	name := "Product analysis"
	if res != nil {
		if n, ok := res.ProductInfo["product_name"].(string); ok && strings.TrimSpace(n) != "" {
			name = strings.TrimSpace(n)
		}
	}
	return "Analysis completed: " + name
}

func (s *ProjectService) List(ctx context.Context, userID string, status *string) ([]models.Project, error) {
	return s.db.ListUserProjects(ctx, userID, status)
}

// Get returns the project when it belongs to userID.
func (s *ProjectService) Get(ctx context.Context, userID, projectID string) (*models.Project, error) {
	p, err := s.db.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil || p.UserID != userID {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

// Messages returns a project's conversation after checking ownership.
func (s *ProjectService) Messages(ctx context.Context, userID, projectID string) ([]models.Message, error) {
	if _, err := s.Get(ctx, userID, projectID); err != nil {
		return []models.Message{}, err
	}
	return s.db.ListProjectMessages(ctx, projectID)
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n]))
}
