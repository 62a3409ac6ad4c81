package core

import (
	"context"

	"github.com/edvin/drtrack/internal/model"
)

// TransitionObserver is notified after a lifecycle change commits. from is
// empty for newly scheduled records.
type TransitionObserver func(ctx context.Context, rec model.Record, from string)

type Services struct {
	BackupSnapshot *BackupSnapshotService
	RecoveryDrill  *RecoveryDrillService
	Overview       *OverviewService
	APIKey         *APIKeyService
}

// NewServices wires every service on db. observer may be nil.
func NewServices(db DB, observer TransitionObserver) *Services {
	snapshots := NewBackupSnapshotService(db).WithObserver(observer)
	drills := NewRecoveryDrillService(db).WithObserver(observer)
	return &Services{
		BackupSnapshot: snapshots,
		RecoveryDrill:  drills,
		Overview:       NewOverviewService(snapshots, drills),
		APIKey:         NewAPIKeyService(db),
	}
}
