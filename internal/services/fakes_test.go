package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	db "github.com/markdave123-py/NexSupply/internal/core/database"
	"github.com/markdave123-py/NexSupply/internal/models"
)

type fakeDB struct {
	mu       sync.Mutex
	down     bool
	profiles map[string]*models.Profile
	projects map[string]*models.Project
	messages map[string][]models.Message
	seq      int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		profiles: map[string]*models.Profile{},
		projects: map[string]*models.Project{},
		messages: map[string][]models.Message{},
	}
}

func (f *fakeDB) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, db.ErrUnavailable
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDB) UpsertProfile(_ context.Context, p *models.Profile) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, db.ErrUnavailable
	}
	cp := *p
	cp.UpdatedAt = time.Now()
	f.profiles[p.ID] = &cp
	return &cp, nil
}

func (f *fakeDB) CreateProject(_ context.Context, userID, name string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, db.ErrUnavailable
	}
	f.seq++
	now := time.Now()
	p := &models.Project{
		ID: fmt.Sprintf("p-%d", f.seq), UserID: userID, Name: name,
		Status: models.ProjectActive, CreatedAt: now, UpdatedAt: now,
	}
	f.projects[p.ID] = p
	cp := *p
	return &cp, nil
}

func (f *fakeDB) GetProject(_ context.Context, id string) (*models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, db.ErrUnavailable
	}
	p, ok := f.projects[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeDB) ListUserProjects(_ context.Context, userID string, status *string) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return []models.Project{}, db.ErrUnavailable
	}
	out := []models.Project{}
	for _, p := range f.projects {
		if p.UserID == userID && (status == nil || p.Status == *status) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeDB) UpdateProject(_ context.Context, id string, upd models.ProjectUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return db.ErrUnavailable
	}
	if upd.Empty() {
		return nil
	}
	p, ok := f.projects[id]
	if !ok {
		return db.ErrNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Status != nil {
		p.Status = *upd.Status
	}
	if upd.InitialRiskScore != nil {
		v := *upd.InitialRiskScore
		p.InitialRiskScore = &v
	}
	if upd.TotalLandedCost != nil {
		v := *upd.TotalLandedCost
		p.TotalLandedCost = &v
	}
	p.UpdatedAt = time.Now()
	return nil
}

func (f *fakeDB) SaveMessage(_ context.Context, projectID, role, content string) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, db.ErrUnavailable
	}
	m := models.Message{ID: fmt.Sprintf("m-%d", len(f.messages[projectID])+1), ProjectID: projectID, Role: role, Content: content, Timestamp: time.Now()}
	f.messages[projectID] = append(f.messages[projectID], m)
	return &m, nil
}

func (f *fakeDB) SaveMessages(ctx context.Context, projectID string, msgs []models.Message) (int, error) {
	for _, m := range msgs {
		if _, err := f.SaveMessage(ctx, projectID, m.Role, m.Content); err != nil {
			return 0, err
		}
	}
	return len(msgs), nil
}

func (f *fakeDB) ListProjectMessages(_ context.Context, projectID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return []models.Message{}, db.ErrUnavailable
	}
	return append([]models.Message{}, f.messages[projectID]...), nil
}

func (f *fakeDB) Close() error { return nil }

type fakeAnalyzer struct {
	resp  *models.AnalysisResponse
	err   error
	delay time.Duration
	got   []models.AnalysisInput
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, in models.AnalysisInput) (*models.AnalysisResponse, error) {
	f.got = append(f.got, in)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.resp, f.err
}

type fakeMailer struct {
	sent []models.Email
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg models.Email) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeObjects struct {
	mu      sync.Mutex
	keys    []string
	deleted []string
	err     error
	delErr  error
}

func (f *fakeObjects) UploadFile(_ context.Context, bucket, key string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.keys = append(f.keys, key)
	return "https://" + bucket + "/" + key, nil
}

func (f *fakeObjects) DeleteFile(_ context.Context, _, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, key)
	return nil
}
