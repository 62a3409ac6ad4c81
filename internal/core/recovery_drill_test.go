package core

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/drtrack/internal/model"
)

func drillValues(d *model.RecoveryDrill) []any {
	return []any{
		d.ID, d.Key, d.Name, d.Scenario, d.Status, d.Environment, d.Region, d.RTOMinutes, d.RPOMinutes,
		d.StartedAt, d.CompletedAt, d.VerifiedAt, d.RestoreStartedAt, d.RestoreCompletedAt, d.RestoreDurationMs,
		d.DataLossSeconds, d.Summary, d.IssuesFound, d.EvidenceURI, d.InitiatedBy, d.InitiatedFrom, d.Metadata,
		d.CreatedAt, d.UpdatedAt,
	}
}

func storedDrill(t *testing.T, status string) *model.RecoveryDrill {
	d := scheduledDrill(t)
	d.ID = 9
	d.Status = status
	d.CreatedAt = testNow.Add(-time.Hour)
	d.UpdatedAt = testNow.Add(-time.Hour)
	return d
}

func newTestDrillService(db DB) *RecoveryDrillService {
	svc := NewRecoveryDrillService(db)
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestRecoveryDrillService_Schedule_Success(t *testing.T) {
	db := &mockDB{}
	svc := newTestDrillService(db)
	ctx := context.Background()

	db.On("Exec", ctx, sqlContains("pg_advisory_xact_lock"), mock.Anything).Return(pgconn.NewCommandTag("SELECT 1"), nil).Once()
	db.On("QueryRow", ctx, sqlContains("drill_key = $1 FOR UPDATE"), mock.Anything).Return(errRow(pgx.ErrNoRows)).Once()
	db.On("QueryRow", ctx, sqlContains("INSERT INTO disaster_recovery_drills"), mock.Anything).
		Return(valuesRow(int64(3), testNow, testNow)).Once()

	v, err := svc.Schedule(ctx, ScheduleRecoveryDrillInput{
		DrillKey:    "prod-ransomware-q4",
		Name:        "Ransomware Q4",
		Scenario:    "ransomware_response",
		Environment: "production",
		RTOMinutes:  intPtr(45),
		RPOMinutes:  floatPtr(15),
	}, operator)
	require.NoError(t, err)

	assert.Equal(t, int64(3), v.ID)
	assert.Equal(t, model.DrillStatusScheduled, v.Status)
	assert.Equal(t, model.ScenarioRansomwareResponse, v.Scenario)
	assert.Equal(t, 45, *v.Objectives.RTOMinutes)
	assert.Equal(t, "ops@example.com", *v.InitiatedBy)
	assert.Equal(t, []string{}, v.IssuesFound)
	assert.True(t, db.lastTx().committed)
	db.AssertExpectations(t)
}

func TestRecoveryDrillService_Schedule_Duplicate(t *testing.T) {
	db := &mockDB{}
	svc := newTestDrillService(db)
	ctx := context.Background()

	db.On("Exec", ctx, sqlContains("pg_advisory_xact_lock"), mock.Anything).Return(pgconn.NewCommandTag("SELECT 1"), nil).Once()
	db.On("QueryRow", ctx, sqlContains("drill_key = $1 FOR UPDATE"), mock.Anything).
		Return(valuesRow(drillValues(storedDrill(t, model.DrillStatusScheduled))...)).Once()

	_, err := svc.Schedule(ctx, ScheduleRecoveryDrillInput{DrillKey: "prod-ransomware-q4", Name: "n", Environment: "production"}, operator)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, db.lastTx().rolledBack)
}

func TestRecoveryDrillService_StartThenComplete(t *testing.T) {
	db := &mockDB{}
	svc := newTestDrillService(db)
	ctx := context.Background()

	restoreStart := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	restoreEnd := time.Date(2024, 1, 2, 10, 20, 0, 0, time.UTC)

	db.On("QueryRow", ctx, sqlContains("drill_key = $1 FOR UPDATE"), mock.Anything).
		Return(valuesRow(drillValues(storedDrill(t, model.DrillStatusScheduled))...)).Once()
	db.On("QueryRow", ctx, sqlContains("UPDATE disaster_recovery_drills"), mock.Anything).
		Return(valuesRow(testNow)).Once()

	started, err := svc.Start(ctx, "prod-ransomware-q4", StartRecoveryDrillInput{RestoreStartedAt: &restoreStart}, operator)
	require.NoError(t, err)
	assert.Equal(t, model.DrillStatusRunning, started.Status)
	assert.Equal(t, "2024-01-02T10:00:00.000Z", *started.RestoreStartedAt)

	running := storedDrill(t, model.DrillStatusRunning)
	running.StartedAt = timePtr(restoreStart)
	running.RestoreStartedAt = timePtr(restoreStart)
	db.On("QueryRow", ctx, sqlContains("drill_key = $1 FOR UPDATE"), mock.Anything).
		Return(valuesRow(drillValues(running)...)).Once()
	db.On("QueryRow", ctx, sqlContains("UPDATE disaster_recovery_drills"), mock.Anything).
		Return(valuesRow(testNow)).Once()

	done, err := svc.Complete(ctx, "prod-ransomware-q4", CompleteRecoveryDrillInput{
		RestoreCompletedAt: &restoreEnd,
		DataLossSeconds:    int64Ptr(120),
	}, operator)
	require.NoError(t, err)

	assert.Equal(t, model.DrillStatusPassed, done.Status)
	assert.Equal(t, int64(1200000), *done.Restore.DurationMs)
	assert.Equal(t, 20, *done.Objectives.RTOMinutes)
	assert.Equal(t, int64(120), *done.Restore.DataLossSeconds)
	db.AssertExpectations(t)
}

func TestRecoveryDrillService_Cancel_Conflict(t *testing.T) {
	db := &mockDB{}
	svc := newTestDrillService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("FROM disaster_recovery_drills WHERE id = $1 FOR UPDATE"), mock.Anything).
		Return(valuesRow(drillValues(storedDrill(t, model.DrillStatusPassed))...)).Once()

	_, err := svc.Cancel(ctx, "9", CancelRecoveryDrillInput{}, operator)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, db.lastTx().rolledBack)
}

func TestRecoveryDrillService_Fail(t *testing.T) {
	db := &mockDB{}
	svc := newTestDrillService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("drill_key = $1 FOR UPDATE"), mock.Anything).
		Return(valuesRow(drillValues(storedDrill(t, model.DrillStatusRunning))...)).Once()
	db.On("QueryRow", ctx, sqlContains("UPDATE disaster_recovery_drills"), mock.Anything).
		Return(valuesRow(testNow)).Once()

	v, err := svc.Fail(ctx, "prod-ransomware-q4", FailRecoveryDrillInput{FailureReason: strPtr("restore timed out")}, operator)
	require.NoError(t, err)
	assert.Equal(t, model.DrillStatusFailed, v.Status)
	assert.Equal(t, []string{"restore timed out"}, v.IssuesFound)
}

func TestRecoveryDrillService_Get_NotFound(t *testing.T) {
	db := &mockDB{}
	svc := newTestDrillService(db)
	ctx := context.Background()

	db.On("QueryRow", ctx, sqlContains("WHERE drill_key = $1"), mock.Anything).Return(errRow(pgx.ErrNoRows)).Once()

	_, err := svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecoveryDrillService_List(t *testing.T) {
	db := &mockDB{}
	svc := newTestDrillService(db)
	ctx := context.Background()

	db.On("Query", ctx, sqlContains("scenario = $1"), []any{"ransomware_response", 5}).
		Return(newMockRows(fillDest(drillValues(storedDrill(t, model.DrillStatusPassed))...)), nil).Once()

	views, err := svc.List(ctx, DrillFilter{Scenario: "ransomware_response", Limit: 5})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "prod-ransomware-q4", views[0].Key)
}

func TestRecoveryDrillService_List_InvalidFilter(t *testing.T) {
	svc := newTestDrillService(&mockDB{})

	_, err := svc.List(context.Background(), DrillFilter{Status: "done"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.List(context.Background(), DrillFilter{Scenario: "meteor"})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.List(context.Background(), DrillFilter{Limit: -1})
	assert.ErrorIs(t, err, ErrValidation)
}
