package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/edvin/drtrack/internal/core"
	"github.com/edvin/drtrack/internal/model"
)

type mockSnapshots struct {
	mock.Mock
}

func (m *mockSnapshots) view(args mock.Arguments) (*model.BackupSnapshotView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BackupSnapshotView), args.Error(1)
}

func (m *mockSnapshots) Schedule(ctx context.Context, in core.ScheduleBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return m.view(m.Called(ctx, in, ac))
}

func (m *mockSnapshots) MarkRunning(ctx context.Context, ref string, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return m.view(m.Called(ctx, ref, ac))
}

func (m *mockSnapshots) Complete(ctx context.Context, ref string, in core.CompleteBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return m.view(m.Called(ctx, ref, in, ac))
}

func (m *mockSnapshots) Fail(ctx context.Context, ref string, in core.FailBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return m.view(m.Called(ctx, ref, in, ac))
}

func (m *mockSnapshots) Verify(ctx context.Context, ref string, in core.VerifyBackupSnapshotInput, ac model.AuditContext) (*model.BackupSnapshotView, error) {
	return m.view(m.Called(ctx, ref, in, ac))
}

func (m *mockSnapshots) Get(ctx context.Context, ref string) (*model.BackupSnapshotView, error) {
	return m.view(m.Called(ctx, ref))
}

func (m *mockSnapshots) List(ctx context.Context, f core.SnapshotFilter) ([]model.BackupSnapshotView, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BackupSnapshotView), args.Error(1)
}

type mockDrills struct {
	mock.Mock
}

func (m *mockDrills) view(args mock.Arguments) (*model.RecoveryDrillView, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RecoveryDrillView), args.Error(1)
}

func (m *mockDrills) Schedule(ctx context.Context, in core.ScheduleRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return m.view(m.Called(ctx, in, ac))
}

func (m *mockDrills) Start(ctx context.Context, ref string, in core.StartRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return m.view(m.Called(ctx, ref, in, ac))
}

func (m *mockDrills) Complete(ctx context.Context, ref string, in core.CompleteRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return m.view(m.Called(ctx, ref, in, ac))
}

func (m *mockDrills) Fail(ctx context.Context, ref string, in core.FailRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return m.view(m.Called(ctx, ref, in, ac))
}

func (m *mockDrills) Cancel(ctx context.Context, ref string, in core.CancelRecoveryDrillInput, ac model.AuditContext) (*model.RecoveryDrillView, error) {
	return m.view(m.Called(ctx, ref, in, ac))
}

func (m *mockDrills) Get(ctx context.Context, ref string) (*model.RecoveryDrillView, error) {
	return m.view(m.Called(ctx, ref))
}

func (m *mockDrills) List(ctx context.Context, f core.DrillFilter) ([]model.RecoveryDrillView, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RecoveryDrillView), args.Error(1)
}

type mockOverview struct {
	mock.Mock
}

func (m *mockOverview) Get(ctx context.Context) (*core.Overview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Overview), args.Error(1)
}
