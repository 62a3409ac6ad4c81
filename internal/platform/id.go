package platform

import "github.com/google/uuid"

// NewID returns a random UUID string used as an opaque row id.
func NewID() string {
	return uuid.New().String()
}
