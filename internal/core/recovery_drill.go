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

const drillLockNamespace = "disaster_recovery_drills"

const drillColumns = `id, drill_key, name, scenario, status, environment, region, rto_minutes, rpo_minutes,
	started_at, completed_at, verified_at, restore_started_at, restore_completed_at, restore_duration_ms,
	data_loss_seconds, summary, issues_found, evidence_uri, initiated_by, initiated_from, metadata, created_at, updated_at`

// DrillFilter narrows ListRecoveryDrills. Empty fields match everything.
type DrillFilter struct {
	Environment string
	Status      string
	Scenario    string
	Limit       int
}

func (f DrillFilter) validate() error {
	if f.Status != "" && !model.IsEnumMember(f.Status, model.DrillStatuses) {
		return validationError("invalid status filter %q (allowed: %s)", f.Status, strings.Join(model.DrillStatuses, ", "))
	}
	if f.Scenario != "" && !model.IsEnumMember(f.Scenario, model.DrillScenarios) {
		return validationError("invalid scenario filter %q (allowed: %s)", f.Scenario, strings.Join(model.DrillScenarios, ", "))
	}
	if f.Limit < 0 {
		return validationError("limit must not be negative")
	}
	return nil
}

// RecoveryDrillService tracks disaster-recovery drill lifecycles.
type RecoveryDrillService struct {
	db       DB
	now      func() time.Time
	observer TransitionObserver
}

// NewRecoveryDrillService creates a RecoveryDrillService on db.
func NewRecoveryDrillService(db DB) *RecoveryDrillService {
	return &RecoveryDrillService{db: db, now: time.Now}
}

// WithObserver returns a copy of the service that reports transitions to o.
func (s *RecoveryDrillService) WithObserver(o TransitionObserver) *RecoveryDrillService {
	c := *s
	c.observer = o
	return &c
}

// Schedule registers a drill. Duplicate keys fail with ErrConflict.
func (s *RecoveryDrillService) Schedule(ctx context.Context, in ScheduleRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	d, err := in.drill()
	if err != nil {
		return nil, err
	}
	d.InitiatedBy = ac.Label()
	if ac.Source != "" {
		src := ac.Source
		d.InitiatedFrom = &src
	}
	d.Metadata = model.StampAudit(nil, in.Metadata, ac, s.now())

	err = inTx(ctx, s.db, func(tx pgx.Tx) error {
		if err := lockKey(ctx, tx, drillLockNamespace, d.Key); err != nil {
			return fmt.Errorf("lock recovery drill key %s: %w", d.Key, err)
		}
		existing, err := findDrillByKey(ctx, tx, d.Key, true)
		if err != nil {
			return err
		}
		if existing != nil {
			return conflictError("recovery drill %s already exists", d.Key)
		}
		return insertDrill(ctx, tx, d)
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, model.DrillRecord(d), "")
	v := model.PublicDrill(d)
	return &v, nil
}

// Start moves a scheduled drill to running.
func (s *RecoveryDrillService) Start(ctx context.Context, ref string, in StartRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return s.mutate(ctx, ref, ac, in.Metadata, func(d *model.RecoveryDrill, now time.Time) error {
		return applyDrillStart(d, in, now)
	})
}

// Complete records a drill outcome, deriving restore timings that were not
// reported.
func (s *RecoveryDrillService) Complete(ctx context.Context, ref string, in CompleteRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return s.mutate(ctx, ref, ac, in.Metadata, func(d *model.RecoveryDrill, now time.Time) error {
		synthesized, err := applyDrillComplete(d, in, now)
		if err != nil {
			return err
		}
		if synthesized {
			warnSynthesizedWindow(ctx, d)
		}
		return nil
	})
}

// Fail marks a drill failed from any state.
func (s *RecoveryDrillService) Fail(ctx context.Context, ref string, in FailRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return s.mutate(ctx, ref, ac, in.Metadata, func(d *model.RecoveryDrill, now time.Time) error {
		if applyDrillFail(d, in, now) {
			warnSynthesizedWindow(ctx, d)
		}
		return nil
	})
}

// Cancel abandons a drill that is still scheduled or running.
func (s *RecoveryDrillService) Cancel(ctx context.Context, ref string, in CancelRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return s.mutate(ctx, ref, ac, in.Metadata, func(d *model.RecoveryDrill, now time.Time) error {
		return applyDrillCancel(d, in, now)
	})
}

// Get returns one drill by numeric id or key.
func (s *RecoveryDrillService) Get(ctx context.Context, ref string) (*model.RecoveryDrillView, error) {
	d, err := findDrill(ctx, s.db, ref, false)
	if err != nil {
		return nil, err
	}
	v := model.PublicDrill(d)
	return &v, nil
}

// List returns drills newest first.
func (s *RecoveryDrillService) List(ctx context.Context, f DrillFilter) ([]model.RecoveryDrillView, error) {
	drills, err := s.ListRecords(ctx, f)
	if err != nil {
		return nil, err
	}
	views := make([]model.RecoveryDrillView, 0, len(drills))
	for i := range drills {
		views = append(views, model.PublicDrill(&drills[i]))
	}
	return views, nil
}

// ListRecords is List without the public mapping.
func (s *RecoveryDrillService) ListRecords(ctx context.Context, f DrillFilter) ([]model.RecoveryDrill, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}

	query := `SELECT ` + drillColumns + ` FROM disaster_recovery_drills WHERE true`
	var args []any
	add := func(column string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND %s = $%d", column, len(args))
	}
	if f.Environment != "" {
		add("environment", f.Environment)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.Scenario != "" {
		add("scenario", f.Scenario)
	}
	args = append(args, clampLimit(f.Limit))
	query += fmt.Sprintf(" ORDER BY completed_at DESC, started_at DESC, id DESC LIMIT $%d", len(args))

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recovery drills: %w", err)
	}
	defer rows.Close()

	var drills []model.RecoveryDrill
	for rows.Next() {
		d, err := scanDrill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recovery drill: %w", err)
		}
		drills = append(drills, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recovery drills: %w", err)
	}
	return drills, nil
}

func (s *RecoveryDrillService) mutate(ctx context.Context, ref string, ac model.AuditContext, patch map[string]any, fn func(*model.RecoveryDrill, time.Time) error) (*model.RecoveryDrillView, error) {
	var d *model.RecoveryDrill
	var from string

	err := inTx(ctx, s.db, func(tx pgx.Tx) error {
		var err error
		d, err = findDrill(ctx, tx, ref, true)
		if err != nil {
			return err
		}
		from = d.Status

		now := s.now()
		if err := fn(d, now); err != nil {
			return err
		}
		d.Metadata = model.StampAudit(d.Metadata, patch, ac, now)
		d.Normalize()
		return updateDrill(ctx, tx, d)
	})
	if err != nil {
		return nil, err
	}

	s.observe(ctx, model.DrillRecord(d), from)
	v := model.PublicDrill(d)
	return &v, nil
}

func (s *RecoveryDrillService) observe(ctx context.Context, rec model.Record, from string) {
	logTransition(ctx, rec, from)
	if s.observer != nil {
		s.observer(ctx, rec, from)
	}
}

func warnSynthesizedWindow(ctx context.Context, d *model.RecoveryDrill) {
	zerolog.Ctx(ctx).Warn().
		Str("key", d.Key).
		Dur("assumed_window", restoreWindowFallback).
		Msg("recovery drill finished without restore timestamps; restore start assumed")
}

func findDrill(ctx context.Context, q querier, ref string, forUpdate bool) (*model.RecoveryDrill, error) {
	lock := ""
	if forUpdate {
		lock = " FOR UPDATE"
	}
	if id, err := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); err == nil && id > 0 {
		d, err := scanDrill(q.QueryRow(ctx, `SELECT `+drillColumns+` FROM disaster_recovery_drills WHERE id = $1`+lock, id))
		if err == nil {
			return d, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get recovery drill %s: %w", ref, err)
		}
	}

	d, err := findDrillByKey(ctx, q, ref, forUpdate)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, notFoundError("recovery drill %s", ref)
	}
	return d, nil
}

func findDrillByKey(ctx context.Context, q querier, key string, forUpdate bool) (*model.RecoveryDrill, error) {
	key = model.NormalizeKey(key)
	if key == "" {
		return nil, nil
	}
	query := `SELECT ` + drillColumns + ` FROM disaster_recovery_drills WHERE drill_key = $1`
	if forUpdate {
		query += " FOR UPDATE"
	}
	d, err := scanDrill(q.QueryRow(ctx, query, key))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recovery drill %s: %w", key, err)
	}
	return d, nil
}

func scanDrill(row pgx.Row) (*model.RecoveryDrill, error) {
	var d model.RecoveryDrill
	err := row.Scan(&d.ID, &d.Key, &d.Name, &d.Scenario, &d.Status, &d.Environment, &d.Region, &d.RTOMinutes, &d.RPOMinutes,
		&d.StartedAt, &d.CompletedAt, &d.VerifiedAt, &d.RestoreStartedAt, &d.RestoreCompletedAt, &d.RestoreDurationMs,
		&d.DataLossSeconds, &d.Summary, &d.IssuesFound, &d.EvidenceURI, &d.InitiatedBy, &d.InitiatedFrom, &d.Metadata,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func insertDrill(ctx context.Context, q querier, d *model.RecoveryDrill) error {
	err := q.QueryRow(ctx,
		`INSERT INTO disaster_recovery_drills (drill_key, name, scenario, status, environment, region, rto_minutes, rpo_minutes,
			started_at, completed_at, verified_at, restore_started_at, restore_completed_at, restore_duration_ms,
			data_loss_seconds, summary, issues_found, evidence_uri, initiated_by, initiated_from, metadata, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, now(), now())
		 RETURNING id, created_at, updated_at`,
		d.Key, d.Name, d.Scenario, d.Status, d.Environment, d.Region, d.RTOMinutes, d.RPOMinutes,
		d.StartedAt, d.CompletedAt, d.VerifiedAt, d.RestoreStartedAt, d.RestoreCompletedAt, d.RestoreDurationMs,
		d.DataLossSeconds, d.Summary, d.IssuesFound, d.EvidenceURI, d.InitiatedBy, d.InitiatedFrom, d.Metadata,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	if isUniqueViolation(err) {
		return conflictError("recovery drill %s already exists", d.Key)
	}
	if err != nil {
		return fmt.Errorf("insert recovery drill %s: %w", d.Key, err)
	}
	return nil
}

func updateDrill(ctx context.Context, q querier, d *model.RecoveryDrill) error {
	err := q.QueryRow(ctx,
		`UPDATE disaster_recovery_drills SET name = $2, scenario = $3, status = $4, environment = $5, region = $6,
			rto_minutes = $7, rpo_minutes = $8, started_at = $9, completed_at = $10, verified_at = $11,
			restore_started_at = $12, restore_completed_at = $13, restore_duration_ms = $14, data_loss_seconds = $15,
			summary = $16, issues_found = $17, evidence_uri = $18, metadata = $19, updated_at = now()
		 WHERE id = $1 RETURNING updated_at`,
		d.ID, d.Name, d.Scenario, d.Status, d.Environment, d.Region,
		d.RTOMinutes, d.RPOMinutes, d.StartedAt, d.CompletedAt, d.VerifiedAt,
		d.RestoreStartedAt, d.RestoreCompletedAt, d.RestoreDurationMs, d.DataLossSeconds,
		d.Summary, d.IssuesFound, d.EvidenceURI, d.Metadata,
	).Scan(&d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update recovery drill %s: %w", d.Key, err)
	}
	return nil
}
