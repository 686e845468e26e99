package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/markdave123-py/NexSupply/internal/core/database"
	"github.com/markdave123-py/NexSupply/internal/models"
)

func TestEnsureProfileCreatesFreeProfile(t *testing.T) {
	store := newFakeDB()
	svc := NewProjectService(store)

	p, err := svc.EnsureProfile(context.Background(), "u1", "buyer@example.com")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, models.RoleFree, p.Role)

	store.profiles["u1"].Role = models.RolePro
	p, err = svc.EnsureProfile(context.Background(), "u1", "buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RolePro, p.Role)
}

func TestEnsureProfileWithoutEmail(t *testing.T) {
	p, err := NewProjectService(newFakeDB()).EnsureProfile(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestEnsureProfileDatabaseDown(t *testing.T) {
	store := newFakeDB()
	store.down = true
	_, err := NewProjectService(store).EnsureProfile(context.Background(), "u1", "a@b.c")
	assert.ErrorIs(t, err, db.ErrUnavailable)
}

func TestProjectName(t *testing.T) {
	svc := NewProjectService(newFakeDB())
	svc.now = func() time.Time { return time.Date(2025, 3, 9, 14, 5, 0, 0, time.UTC) }

	assert.Equal(t, "Analysis 2025-03-09 14:05", svc.ProjectName("  "))
	assert.Equal(t, "desk lamp", svc.ProjectName(" desk lamp "))

	long := strings.Repeat("가", 80)
	assert.Equal(t, 50, len([]rune(svc.ProjectName(long))))
}

func TestProjectOwnership(t *testing.T) {
	ctx := context.Background()
	store := newFakeDB()
	svc := NewProjectService(store)

	id, err := svc.Start(ctx, "owner", "desk lamp")
	require.NoError(t, err)
	_, err = store.SaveMessage(ctx, id, models.MessageRoleUser, "desk lamp")
	require.NoError(t, err)

	p, err := svc.Get(ctx, "owner", id)
	require.NoError(t, err)
	assert.Equal(t, "desk lamp", p.Name)

	_, err = svc.Get(ctx, "intruder", id)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	msgs, err := svc.Messages(ctx, "intruder", id)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	assert.Empty(t, msgs)

	msgs, err = svc.Messages(ctx, "owner", id)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = svc.Get(ctx, "owner", "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestAISummary(t *testing.T) {
	assert.Equal(t, "Analysis completed: Product analysis", AISummary(nil))
	assert.Equal(t, "Analysis completed: Lamp", AISummary(&models.AnalysisResult{ProductInfo: map[string]any{"product_name": "Lamp"}}))
}
