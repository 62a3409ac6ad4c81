package model

import "time"

// API key roles. Operators may mutate; viewers may only read.
const (
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// APIKey authenticates callers of the HTTP API and doubles as the audit actor.
type APIKey struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	KeyHash   string     `json:"-"`
	KeyPrefix string     `json:"key_prefix,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}
