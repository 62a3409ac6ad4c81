package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/edvin/drtrack/internal/model"
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500

	snapshotLockNamespace = "backup_snapshots"
)

const snapshotColumns = `id, snapshot_key, backup_type, source, environment, region, status, verification_status,
	storage_location_key, storage_class, storage_uri, checksum, checksum_algorithm, size_bytes, retention_days,
	initiated_by, initiated_from, started_at, completed_at, expires_at, verified_at, failure_reason, notes,
	dataset_scope, metadata, created_at, updated_at`

// SnapshotFilter narrows ListBackupSnapshots. Empty fields match everything.
type SnapshotFilter struct {
	Environment        string
	Status             string
	VerificationStatus string
	Source             string
	Limit              int
}

func (f SnapshotFilter) validate() error {
	if f.Status != "" && !model.IsEnumMember(f.Status, model.SnapshotStatuses) {
		return validationError("invalid status filter %q (allowed: %s)", f.Status, strings.Join(model.SnapshotStatuses, ", "))
	}
	if f.VerificationStatus != "" && !model.IsEnumMember(f.VerificationStatus, model.VerificationStatuses) {
		return validationError("invalid verificationStatus filter %q (allowed: %s)", f.VerificationStatus, strings.Join(model.VerificationStatuses, ", "))
	}
	if f.Limit < 0 {
		return validationError("limit must not be negative")
	}
	return nil
}

// BackupSnapshotService tracks backup snapshot lifecycles.
type BackupSnapshotService struct {
	db       DB
	now      func() time.Time
	observer TransitionObserver
}

// NewBackupSnapshotService creates a BackupSnapshotService on db. Pass a
// pgx.Tx to run every operation inside the caller's transaction.
func NewBackupSnapshotService(db DB) *BackupSnapshotService {
	return &BackupSnapshotService{db: db, now: time.Now}
}

// WithObserver returns a copy of the service that reports transitions to o.
func (s *BackupSnapshotService) WithObserver(o TransitionObserver) *BackupSnapshotService {
	c := *s
	c.observer = o
	return &c
}

// Schedule registers a pending snapshot. Scheduling a key that already
// exists fails with ErrConflict.
func (s *BackupSnapshotService) Schedule(ctx context.Context, in ScheduleBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	snap, err := in.snapshot()
	if err != nil {
		return nil, err
	}

	now := s.now()
	snap.InitiatedBy = ac.Label()
	if ac.Source != "" {
		src := ac.Source
		snap.InitiatedFrom = &src
	}
	snap.Metadata = model.StampAudit(nil, in.Metadata, ac, now)

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockKey(ctx, tx, snapshotLockNamespace, snap.Key); err != nil {
			return fmt.Errorf("lock backup snapshot key %s: %w", snap.Key, err)
		}
		existing, err := findSnapshotByKey(ctx, tx, snap.Key, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflictError("backup snapshot %s already exists", snap.Key)
		}
		return insertSnapshot(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, model.SnapshotRecord(snap), "")
	v := model.PublicSnapshot(snap)
	return &v, nil
}

// MarkRunning moves a pending snapshot to running. startedAt is only set
// the first time.
func (s *BackupSnapshotService) MarkRunning(ctx context.Context, ref string, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return s.mutate(ctx, ref, ac, nil, func(snap *model.BackupSnapshot, now time.Time) error {
		return applySnapshotRunning(snap, now)
	})
}

// Complete records the end of a backup run. The final status follows the
// verification outcome unless Status is given explicitly.
func (s *BackupSnapshotService) Complete(ctx context.Context, ref string, in CompleteBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return s.mutate(ctx, ref, ac, in.Metadata, func(snap *model.BackupSnapshot, now time.Time) error {
		return applySnapshotComplete(snap, in, now)
	})
}

// Fail marks a snapshot failed from any state.
func (s *BackupSnapshotService) Fail(ctx context.Context, ref string, in FailBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return s.mutate(ctx, ref, ac, in.Metadata, func(snap *model.BackupSnapshot, now time.Time) error {
		applySnapshotFail(snap, in, now)
		return nil
	})
}

// Verify records an integrity check. A verified outcome moves the snapshot
// to success and a failed one to failed, in either direction.
func (s *BackupSnapshotService) Verify(ctx context.Context, ref string, in VerifyBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return s.mutate(ctx, ref, ac, in.Metadata, func(snap *model.BackupSnapshot, now time.Time) error {
		applySnapshotVerify(snap, in, now)
		return nil
	})
}

// Get returns one snapshot by numeric id or key.
func (s *BackupSnapshotService) Get(ctx context.Context, ref string) (*model.BackupSnapshotView, error) {
	snap, err := findSnapshot(ctx, s.db, ref, false)
	if err != nil {
		return nil, err
	}
	v := model.PublicSnapshot(snap)
	return &v, nil
}

// FindByKey returns the snapshot with the normalized key, or nil.
func (s *BackupSnapshotService) FindByKey(ctx context.Context, key string) (*model.BackupSnapshot, error) {
	return findSnapshotByKey(ctx, s.db, key, false)
}

// List returns snapshots newest first. Enum filters are validated strictly.
func (s *BackupSnapshotService) List(ctx context.Context, f SnapshotFilter) ([]model.BackupSnapshotView, error) {
	snaps, err := s.ListRecords(ctx, f)
	if err != nil {
		return nil, err
	}
	views := make([]model.BackupSnapshotView, 0, len(snaps))
	for i := range snaps {
		views = append(views, model.PublicSnapshot(&snaps[i]))
	}
	return views, nil
}

// ListRecords is List without the public mapping, for aggregation.
func (s *BackupSnapshotService) ListRecords(ctx context.Context, f SnapshotFilter) ([]model.BackupSnapshot, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	query := `SELECT ` + snapshotColumns + ` FROM backup_snapshots WHERE true`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND %s = $%d", clause, len(args))
	}
	if f.Environment != "" {
		add("environment", f.Environment)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.VerificationStatus != "" {
		add("verification_status", f.VerificationStatus)
	}
	if f.Source != "" {
		add("source", f.Source)
	}
	args = append(args, clampLimit(f.Limit))
	query += fmt.Sprintf(" ORDER BY completed_at DESC, started_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list backup snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []model.BackupSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backup snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backup snapshots: %w", err)
	}
	return snaps, nil
}

// ExpireDue moves success snapshots whose expiry has passed to expired and
// returns how many were moved. Rows locked by a running transition are
// skipped until the next sweep.
func (s *BackupSnapshotService) ExpireDue(ctx context.Context, limit int) (int, error) {
	now := s.now()
	ac := model.AuditContext{Source: "retention-sweep"}
	var expired []*model.BackupSnapshot

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT `+snapshotColumns+` FROM backup_snapshots
			 WHERE status = $1 AND expires_at IS NOT NULL AND expires_at <= $2
			 ORDER BY expires_at LIMIT $3 FOR UPDATE SKIP LOCKED`,
			model.SnapshotStatusSuccess, now, clampLimit(limit),
		)
		if err != nil {
			return fmt.Errorf("select expired backup snapshots: %w", err)
		}
		var due []*model.BackupSnapshot
		for rows.Next() {
			snap, err := scanSnapshot(rows)
			if err != nil {
				rows.Close()
				return fmt.Errorf("scan backup snapshot: %w", err)
			}
			due = append(due, snap)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate expired backup snapshots: %w", err)
		}

		for _, snap := range due {
			snap.Status = model.SnapshotStatusExpired
			snap.Metadata = model.StampAudit(snap.Metadata, nil, ac, now)
			snap.Normalize()
			if err := updateSnapshot(ctx, tx, snap); err != nil {
				return err
			}
			expired = append(expired, snap)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, snap := range expired {
		s.observe(ctx, model.SnapshotRecord(snap), model.SnapshotStatusSuccess)
	}
	return len(expired), nil
}

// mutate loads the snapshot under a row lock, applies fn, stamps audit
// metadata and persists the result in one transaction.
func (s *BackupSnapshotService) mutate(ctx context.Context, ref string, ac model.AuditContext, patch map[string]any, fn func(*model.BackupSnapshot, time.Time) error) (*model.BackupSnapshotView, error) {
	var snap *model.BackupSnapshot
	var from string

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		snap, err = findSnapshot(ctx, tx, ref, true)
		if err != nil {
			return err
		}
		from = snap.Status

		now := s.now()
		if err := fn(snap, now); err != nil {
			return err
		}
		snap.Metadata = model.StampAudit(snap.Metadata, patch, ac, now)
		snap.Normalize()
		return updateSnapshot(ctx, tx, snap)
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, model.SnapshotRecord(snap), from)
	v := model.PublicSnapshot(snap)
	return &v, nil
}

func (s *BackupSnapshotService) observe(ctx context.Context, rec model.Record, from string) {
	logTransition(ctx, rec, from)
	if s.observer != nil {
		s.observer(ctx, rec, from)
	}
}

// findSnapshot resolves ref as a numeric id first and as a key second.
func findSnapshot(ctx context.Context, q querier, ref string, forUpdate bool) (*model.BackupSnapshot, error) {
	lock := ""
	if forUpdate {
		lock = " FOR UPDATE"
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); err == nil && id > 0 {
		snap, err := scanSnapshot(q.QueryRow(ctx, `SELECT `+snapshotColumns+` FROM backup_snapshots WHERE id = $1`+lock, id))
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get backup snapshot %s: %w", ref, err)
		}
	}

	snap, err := findSnapshotByKey(ctx, q, ref, forUpdate)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, notFoundError("backup snapshot %s", ref)
	}
	return snap, nil
}

// findSnapshotByKey normalizes key and returns nil when no row matches.
func findSnapshotByKey(ctx context.Context, q querier, key string, forUpdate bool) (*model.BackupSnapshot, error) {
	key = model.NormalizeKey(key)
	if key == "" {
		return nil, nil
	}
	query := `SELECT ` + snapshotColumns + ` FROM backup_snapshots WHERE snapshot_key = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	snap, err := scanSnapshot(q.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backup snapshot %s: %w", key, err)
	}
	return snap, nil
}

func scanSnapshot(row pgx.Row) (*model.BackupSnapshot, error) {
	var s model.BackupSnapshot
	err := row.Scan(&s.ID, &s.Key, &s.BackupType, &s.Source, &s.Environment, &s.Region, &s.Status, &s.VerificationStatus,
		&s.StorageLocationKey, &s.StorageClass, &s.StorageURI, &s.Checksum, &s.ChecksumAlgorithm, &s.SizeBytes, &s.RetentionDays,
		&s.InitiatedBy, &s.InitiatedFrom, &s.StartedAt, &s.CompletedAt, &s.ExpiresAt, &s.VerifiedAt, &s.FailureReason, &s.Notes,
		&s.DatasetScope, &s.Metadata, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func insertSnapshot(ctx context.Context, q querier, s *model.BackupSnapshot) error {
	err := q.QueryRow(ctx,
		`INSERT INTO backup_snapshots (snapshot_key, backup_type, source, environment, region, status, verification_status,
			storage_location_key, storage_class, storage_uri, checksum, checksum_algorithm, size_bytes, retention_days,
			initiated_by, initiated_from, started_at, completed_at, expires_at, verified_at, failure_reason, notes,
			dataset_scope, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, now(), now())
		 RETURNING id, created_at, updated_at`,
		s.Key, s.BackupType, s.Source, s.Environment, s.Region, s.Status, s.VerificationStatus,
		s.StorageLocationKey, s.StorageClass, s.StorageURI, s.Checksum, s.ChecksumAlgorithm, s.SizeBytes, s.RetentionDays,
		s.InitiatedBy, s.InitiatedFrom, s.StartedAt, s.CompletedAt, s.ExpiresAt, s.VerifiedAt, s.FailureReason, s.Notes,
		s.DatasetScope, s.Metadata,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if isUniqueViolation(err) {
		return conflictError("backup snapshot %s already exists", s.Key)
	}
	if err != nil {
		return fmt.Errorf("insert backup snapshot %s: %w", s.Key, err)
	}
	return nil
}

// updateSnapshot persists every mutable column. The key is immutable.
func updateSnapshot(ctx context.Context, q querier, s *model.BackupSnapshot) error {
	err := q.QueryRow(ctx,
		`UPDATE backup_snapshots SET backup_type = $2, source = $3, environment = $4, region = $5, status = $6,
			verification_status = $7, storage_location_key = $8, storage_class = $9, storage_uri = $10, checksum = $11,
			checksum_algorithm = $12, size_bytes = $13, retention_days = $14, started_at = $15, completed_at = $16,
			expires_at = $17, verified_at = $18, failure_reason = $19, notes = $20, dataset_scope = $21, metadata = $22,
			updated_at = now()
		 WHERE id = $1 RETURNING updated_at`,
		s.ID, s.BackupType, s.Source, s.Environment, s.Region, s.Status,
		s.VerificationStatus, s.StorageLocationKey, s.StorageClass, s.StorageURI, s.Checksum,
		s.ChecksumAlgorithm, s.SizeBytes, s.RetentionDays, s.StartedAt, s.CompletedAt,
		s.ExpiresAt, s.VerifiedAt, s.FailureReason, s.Notes, s.DatasetScope, s.Metadata,
	).Scan(&s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update backup snapshot %s: %w", s.Key, err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// logTransition writes one structured line per lifecycle change.
func logTransition(ctx context.Context, rec model.Record, from string) {
	ev := zerolog.Ctx(ctx).Info().
		Str("kind", string(rec.Kind)).
		Str("key", rec.Key()).
		Str("environment", rec.Environment()).
		Str("status", rec.Status())
	if from != "" {
		ev = ev.Str("from", from)
	}
	ev.Msg("lifecycle transition")
}
