package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/NexSupply/internal/core"
	"github.com/markdave123-py/NexSupply/internal/models"
)

// DatabaseClient talks to the hosted Postgres. The pool is opened on first
// use and cached; a failed open is retried on the next call.
type DatabaseClient struct {
	dsn string

	mu sync.Mutex
	db *sql.DB

	open func(ctx context.Context, dsn string) (*sql.DB, error)
}

// NewDatabaseClient never fails. With an empty dsn every method returns
// ErrUnavailable.
func NewDatabaseClient(dsn string) *DatabaseClient {
	return &DatabaseClient{dsn: strings.TrimSpace(dsn), open: openPool}
}

// Available reports whether a connection string is configured.
func (c *DatabaseClient) Available() bool {
	return c != nil && c.dsn != ""
}

func openPool(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return db, nil
}

func (c *DatabaseClient) conn(ctx context.Context) (*sql.DB, error) {
	if !c.Available() {
		return nil, ErrUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		return c.db, nil
	}
	db, err := c.open(ctx, c.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.db = db
	return db, nil
}

func (c *DatabaseClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		err := c.db.Close()
		c.db = nil
		return err
	}
	return nil
}

// validID filters ids that Postgres would reject as uuid input.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// Profiles

func (c *DatabaseClient) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if !validID(userID) {
		return nil, nil
	}
	const q = `
		SELECT id, email, role, updated_at
		FROM profiles WHERE id = $1
	`
	var p models.Profile
	err = db.QueryRowContext(ctx, q, userID).Scan(&p.ID, &p.Email, &p.Role, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// UpsertProfile inserts the profile or updates email and role of an existing
// one. An empty role means free.
func (c *DatabaseClient) UpsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errors.New("nil profile")
	}
	role := p.Role
	if role == "" {
		role = models.RoleFree
	}
	const q = `
		INSERT INTO profiles (id, email, role, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email, role = EXCLUDED.role, updated_at = now()
		RETURNING id, email, role, updated_at
	`
	var out models.Profile
	if err := db.QueryRowContext(ctx, q, p.ID, p.Email, role).Scan(&out.ID, &out.Email, &out.Role, &out.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	return &out, nil
}

// Projects

const projectColumns = `id, user_id, name, status, initial_risk_score, total_landed_cost, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(r rowScanner) (models.Project, error) {
	var (
		p    models.Project
		risk sql.NullFloat64
		cost sql.NullFloat64
	)
	if err := r.Scan(&p.ID, &p.UserID, &p.Name, &p.Status, &risk, &cost, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}
	if risk.Valid {
		p.InitialRiskScore = &risk.Float64
	}
	if cost.Valid {
		p.TotalLandedCost = &cost.Float64
	}
	return p, nil
}

// CreateProject inserts an active project and returns it with its generated id.
func (c *DatabaseClient) CreateProject(ctx context.Context, userID, name string) (*models.Project, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	q := `
		INSERT INTO projects (user_id, name, status)
		VALUES ($1, $2, $3)
		RETURNING ` + projectColumns
	p, err := scanProject(db.QueryRowContext(ctx, q, userID, name, models.ProjectActive))
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	return &p, nil
}

func (c *DatabaseClient) GetProject(ctx context.Context, id string) (*models.Project, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	if !validID(id) {
		return nil, nil
	}
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	p, err := scanProject(db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListUserProjects returns the user's projects newest first, optionally
// filtered by status.
func (c *DatabaseClient) ListUserProjects(ctx context.Context, userID string, status *string) ([]models.Project, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return []models.Project{}, err
	}
	if !validID(userID) {
		return []models.Project{}, nil
	}

	q := `SELECT ` + projectColumns + ` FROM projects WHERE user_id = $1`
	args := []any{userID}
	if status != nil {
		q += ` AND status = $2`
		args = append(args, *status)
	}
	q += ` ORDER BY created_at DESC`

	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return []models.Project{}, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return []models.Project{}, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// UpdateProject applies the non-nil fields of upd and stamps updated_at. An
// empty update succeeds without touching the row.
func (c *DatabaseClient) UpdateProject(ctx context.Context, id string, upd models.ProjectUpdate) error {
	db, err := c.conn(ctx)
	if err != nil {
		return err
	}
	if upd.Empty() {
		return nil
	}

	var (
		sets []string
		args = []any{id}
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.InitialRiskScore != nil {
		add("initial_risk_score", *upd.InitialRiskScore)
	}
	if upd.TotalLandedCost != nil {
		add("total_landed_cost", *upd.TotalLandedCost)
	}
	sets = append(sets, "updated_at = now()")

	q := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	res, err := db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("project %s: %w", id, ErrNotFound)
	}
	return nil
}

// Messages

func (c *DatabaseClient) SaveMessage(ctx context.Context, projectID, role, content string) (*models.Message, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO messages (project_id, role, content)
		VALUES ($1, $2, $3)
		RETURNING id, project_id, role, content, "timestamp"
	`
	var m models.Message
	if err := db.QueryRowContext(ctx, q, projectID, role, content).Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.Timestamp); err != nil {
		return nil, fmt.Errorf("save message: %w", err)
	}
	return &m, nil
}

// SaveMessages inserts msgs in a single transaction and returns how many were
// written. Timestamps are assigned in slice order.
func (c *DatabaseClient) SaveMessages(ctx context.Context, projectID string, msgs []models.Message) (int, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return 0, err
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	const q = `
		INSERT INTO messages (project_id, role, content, "timestamp")
		VALUES ($1, $2, $3, $4)
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	base := time.Now().UTC()
	for i, m := range msgs {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = base.Add(time.Duration(i) * time.Microsecond)
		}
		if _, err := stmt.ExecContext(ctx, projectID, m.Role, m.Content, ts); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert message %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(msgs), nil
}

// ListProjectMessages returns the project's messages oldest first.
func (c *DatabaseClient) ListProjectMessages(ctx context.Context, projectID string) ([]models.Message, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return []models.Message{}, err
	}
	if !validID(projectID) {
		return []models.Message{}, nil
	}
	const q = `
		SELECT id, project_id, role, content, "timestamp"
		FROM messages
		WHERE project_id = $1
		ORDER BY "timestamp" ASC, id ASC
	`
	rows, err := db.QueryContext(ctx, q, projectID)
	if err != nil {
		return []models.Message{}, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return []models.Message{}, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var _ core.DbClient = (*DatabaseClient)(nil)
