package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Execer is the slice of the store the audit writer needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// AuditLogger is an async audit log writer.
type AuditLogger struct {
	db     Execer
	logger zerolog.Logger
	ch     chan auditEntry
	done   chan struct{}
}

type auditEntry struct {
	APIKeyID     *string
	Actor        *string
	Source       string
	Method       string
	Path         string
	ResourceType *string
	ResourceID   *string
	Action       *string
	StatusCode   int
	RequestBody  json.RawMessage
}

func NewAuditLogger(db Execer, logger zerolog.Logger) *AuditLogger {
	al := &AuditLogger{
		db:     db,
		logger: logger,
		ch:     make(chan auditEntry, 1024),
		done:   make(chan struct{}),
	}
	go al.drain()
	return al
}

func (al *AuditLogger) drain() {
	defer close(al.done)
	for entry := range al.ch {
		_, err := al.db.Exec(
			// use context.Background since this is async
			context.Background(),
			`INSERT INTO audit_logs (api_key_id, actor, source, method, path, resource_type, resource_id, action, status_code, request_body, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())`,
			entry.APIKeyID, entry.Actor, entry.Source, entry.Method, entry.Path,
			entry.ResourceType, entry.ResourceID, entry.Action, entry.StatusCode, entry.RequestBody,
		)
		if err != nil {
			al.logger.Error().Err(err).Str("path", entry.Path).Msg("failed to write audit log")
		}
	}
}

// Close stops accepting entries and waits for the buffered ones to be written.
func (al *AuditLogger) Close() {
	close(al.ch)
	<-al.done
}

// Middleware returns a chi middleware that logs mutating API requests.
func (al *AuditLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		// Read and re-buffer the request body.
		var bodyBytes []byte
		if r.Body != nil {
			bodyBytes, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		resourceType, resourceID, action := extractResource(r.URL.Path)
		ac := AuditContext(r)

		entry := auditEntry{
			Actor:        ac.Label(),
			Source:       ac.Source,
			Method:       r.Method,
			Path:         r.URL.Path,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			Action:       action,
			StatusCode:   sw.status,
		}
		if identity := GetIdentity(r.Context()); identity != nil {
			id := identity.ID
			entry.APIKeyID = &id
		}
		if len(bodyBytes) > 0 && json.Valid(bodyBytes) {
			entry.RequestBody = sanitizeBody(bodyBytes)
		}

		select {
		case al.ch <- entry:
		default:
			al.logger.Warn().Msg("audit log buffer full, dropping entry")
		}
	})
}

// extractResource splits an API path into resource type, reference and
// lifecycle action:
//
//	/api/v1/backup-snapshots               -> backup-snapshots
//	/api/v1/backup-snapshots/nightly       -> backup-snapshots, nightly
//	/api/v1/recovery-drills/q3-dr/complete -> recovery-drills, q3-dr, complete
func extractResource(path string) (*string, *string, *string) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(path, "/api/v1"), "/"), "/")
	var out [3]*string
	for i, part := range parts {
		if i >= len(out) || part == "" {
			break
		}
		p := part
		out[i] = &p
	}
	return out[0], out[1], out[2]
}

// sensitiveFields are fields that should be redacted from audit logs.
var sensitiveFields = map[string]bool{
	"apiKey": true, "api_key": true, "secret": true, "token": true,
	"password": true, "credentials": true,
}

func sanitizeBody(body []byte) json.RawMessage {
	var data map[string]any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}
	for k := range data {
		if sensitiveFields[k] {
			data[k] = "[REDACTED]"
		}
	}
	sanitized, _ := json.Marshal(data)
	return sanitized
}
