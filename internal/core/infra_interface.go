package core

import (
	"context"

	"github.com/markdave123-py/NexSupply/internal/models"
)

// DbClient is the persistence surface for profiles, projects and messages.
// On failure each method returns its zero value together with an error.
type DbClient interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error)

	CreateProject(ctx context.Context, userID, name string) (*models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListUserProjects(ctx context.Context, userID string, status *string) ([]models.Project, error)
	UpdateProject(ctx context.Context, id string, upd models.ProjectUpdate) error

	SaveMessage(ctx context.Context, projectID, role, content string) (*models.Message, error)
	SaveMessages(ctx context.Context, projectID string, msgs []models.Message) (int, error)
	ListProjectMessages(ctx context.Context, projectID string) ([]models.Message, error)

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
}

// Mailer delivers plain-text mail.
type Mailer interface {
	Send(ctx context.Context, msg models.Email) error
}
