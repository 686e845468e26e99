package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactMasksSensitiveKeys(t *testing.T) {
	got := redact([]interface{}{"user_email", "a@b.co", "project_id", "p1", "api_key", "k"})

	assert.Equal(t, []interface{}{"user_email", "[REDACTED]", "project_id", "p1", "api_key", "[REDACTED]"}, got)
}

func TestRedactLeavesOddTail(t *testing.T) {
	got := redact([]interface{}{"code", "A-101", "dangling"})

	assert.Equal(t, []interface{}{"code", "A-101", "dangling"}, got)
}
