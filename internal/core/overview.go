package core

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/drtrack/internal/model"
)

const (
	overviewSampleSize = 250
	overviewRecentSize = 10
)

// Overview is the dashboard read model covering backups and drills.
type Overview struct {
	Backups BackupOverview `json:"backups"`
	Drills  DrillOverview  `json:"drills"`
}

type BackupOverview struct {
	Summary BackupHealthSummary        `json:"summary"`
	Recent  []model.BackupSnapshotView `json:"recent"`
}

type DrillOverview struct {
	Summary DrillReadinessSummary     `json:"summary"`
	Recent  []model.RecoveryDrillView `json:"recent"`
}

// OverviewService builds the combined backup and drill overview.
type OverviewService struct {
	snapshots *BackupSnapshotService
	drills    *RecoveryDrillService
	now       func() time.Time
}

// NewOverviewService creates a new OverviewService.
func NewOverviewService(snapshots *BackupSnapshotService, drills *RecoveryDrillService) *OverviewService {
	return &OverviewService{snapshots: snapshots, drills: drills, now: time.Now}
}

// Get loads the most recent snapshots and drills and summarizes them. The two
// reads run in parallel on a pool and one after the other inside a caller's
// transaction. Reads take no locks.
func (s *OverviewService) Get(ctx context.Context) (*Overview, error) {
	var (
		snaps  []model.BackupSnapshot
		drills []model.RecoveryDrill
	)

	g, gctx := errgroup.WithContext(ctx)
	if _, ok := s.snapshots.db.(pgx.Tx); ok {
		// A transaction holds a single connection.
		g.SetLimit(1)
	}
	g.Go(func() error {
		var err error
		snaps, err = s.snapshots.ListRecords(gctx, SnapshotFilter{Limit: overviewSampleSize})
		return err
	})
	g.Go(func() error {
		var err error
		drills, err = s.drills.ListRecords(gctx, DrillFilter{Limit: overviewSampleSize})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	out := &Overview{
		Backups: BackupOverview{
			Summary: SummarizeBackupHealth(snaps),
			Recent:  make([]model.BackupSnapshotView, 0, overviewRecentSize),
		},
		Drills: DrillOverview{
			Summary: SummarizeDrillReadiness(drills, s.now()),
			Recent:  make([]model.RecoveryDrillView, 0, overviewRecentSize),
		},
	}
	for i := 0; i < len(snaps) && i < overviewRecentSize; i++ {
		out.Backups.Recent = append(out.Backups.Recent, model.PublicSnapshot(&snaps[i]))
	}
	for i := 0; i < len(drills) && i < overviewRecentSize; i++ {
		out.Drills.Recent = append(out.Drills.Recent, model.PublicDrill(&drills[i]))
	}
	return out, nil
}
