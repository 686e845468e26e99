package models

import (
	"time"
)

// Profile roles.
const (
	RoleFree = "free"
	RolePro  = "pro"
)

// Project statuses.
const (
	ProjectActive    = "active"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

// Message roles.
const (
	MessageRoleUser = "user"
	MessageRoleAI   = "ai"
)

// Profile is keyed by the auth provider's user id.
type Profile struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	Role      string    `db:"role" json:"role"` // free | pro
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Project is one sourcing analysis run owned by a user.
type Project struct {
	ID               string    `db:"id" json:"id"`
	UserID           string    `db:"user_id" json:"user_id"`
	Name             string    `db:"name" json:"name"`
	Status           string    `db:"status" json:"status"` // active | completed | archived
	InitialRiskScore *float64  `db:"initial_risk_score" json:"initial_risk_score,omitempty"`
	TotalLandedCost  *float64  `db:"total_landed_cost" json:"total_landed_cost,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ProjectUpdate carries the fields to change; nil fields are left alone.
type ProjectUpdate struct {
	Name             *string
	Status           *string
	InitialRiskScore *float64
	TotalLandedCost  *float64
}

// Empty reports whether the update changes nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Name == nil && u.Status == nil && u.InitialRiskScore == nil && u.TotalLandedCost == nil
}

// Message is an append-only entry in a project's conversation log.
type Message struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	Role      string    `db:"role" json:"role"` // user | ai
	Content   string    `db:"content" json:"content"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// Email is an outgoing plain-text message.
type Email struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}
