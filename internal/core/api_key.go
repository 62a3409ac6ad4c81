package core

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edvin/drtrack/internal/model"
	"github.com/edvin/drtrack/internal/platform"
)

const apiKeyPrefix = "drt_"

// APIKeyService manages the keys that authenticate HTTP callers.
type APIKeyService struct {
	db DB
}

// NewAPIKeyService creates a new APIKeyService.
func NewAPIKeyService(db DB) *APIKeyService {
	return &APIKeyService{db: db}
}

// Create generates a new API key, stores the hash, and returns the model along
// with the raw key string. The raw key must be shown to the user exactly once.
func (s *APIKeyService) Create(ctx context.Context, name, role string) (*model.APIKey, string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return nil, "", fmt.Errorf("generate api key: %w", err)
	}
	rawKey := apiKeyPrefix + hex.EncodeToString(rawBytes)

	key, err := s.CreateWithRawKey(ctx, name, role, rawKey)
	if err != nil {
		return nil, "", err
	}
	return key, rawKey, nil
}

// CreateWithRawKey stores an API key with a caller-provided raw key value.
// Used for well-known dev keys where the raw value must be deterministic.
func (s *APIKeyService) CreateWithRawKey(ctx context.Context, name, role, rawKey string) (*model.APIKey, error) {
	if name == "" {
		return nil, validationError("api key name is required")
	}
	if role == "" {
		role = model.RoleOperator
	}
	if role != model.RoleOperator && role != model.RoleViewer {
		return nil, validationError("invalid api key role %q", role)
	}
	if len(rawKey) < 12 {
		return nil, validationError("api key must be at least 12 characters")
	}

	key := &model.APIKey{
		ID:        platform.NewID(),
		Name:      name,
		Role:      role,
		KeyHash:   HashAPIKey(rawKey),
		KeyPrefix: rawKey[:12],
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO api_keys (id, name, role, key_hash, key_prefix, created_at) VALUES ($1, $2, $3, $4, $5, now())
		 RETURNING created_at`,
		key.ID, key.Name, key.Role, key.KeyHash, key.KeyPrefix,
	).Scan(&key.CreatedAt)
	if isUniqueViolation(err) {
		return nil, conflictError("api key already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("insert api key: %w", err)
	}
	return key, nil
}

// Authenticate returns the active key matching rawKey.
func (s *APIKeyService) Authenticate(ctx context.Context, rawKey string) (*model.APIKey, error) {
	var k model.APIKey
	err := s.db.QueryRow(ctx,
		`SELECT id, name, role, key_prefix, created_at, revoked_at FROM api_keys
		 WHERE key_hash = $1 AND revoked_at IS NULL`, HashAPIKey(rawKey),
	).Scan(&k.ID, &k.Name, &k.Role, &k.KeyPrefix, &k.CreatedAt, &k.RevokedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFoundError("api key")
	}
	if err != nil {
		return nil, fmt.Errorf("authenticate api key: %w", err)
	}
	return &k, nil
}

// Revoke soft-deletes an API key by setting revoked_at.
func (s *APIKeyService) Revoke(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		"UPDATE api_keys SET revoked_at = now() WHERE id = $1 AND revoked_at IS NULL", id,
	)
	if err != nil {
		return fmt.Errorf("revoke api key %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return notFoundError("api key %s not found or already revoked", id)
	}
	return nil
}

// HashAPIKey returns the hex SHA-256 digest stored in place of the raw key.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}
