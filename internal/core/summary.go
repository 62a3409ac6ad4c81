package core

import (
	"time"

	"github.com/edvin/drtrack/internal/model"
)

// readinessWindow is how far back a passed drill still counts as current.
const readinessWindow = 90 * 24 * time.Hour

// BackupHealthSummary aggregates a set of snapshots for dashboards.
type BackupHealthSummary struct {
	Total            int            `json:"total"`
	ByStatus         map[string]int `json:"byStatus"`
	Verified         int            `json:"verified"`
	Unhealthy        int            `json:"unhealthy"`
	LatestSuccessAt  *string        `json:"latestSuccessAt"`
	OldestSnapshotAt *string        `json:"oldestSnapshotAt"`
}

// DrillReadinessSummary aggregates a set of drills for dashboards.
type DrillReadinessSummary struct {
	Total               int            `json:"total"`
	ByStatus            map[string]int `json:"byStatus"`
	PassedWithinQuarter int            `json:"passedWithinQuarter"`
	OutstandingIssues   int            `json:"outstandingIssues"`
	LatestVerifiedAt    *string        `json:"latestVerifiedAt"`
}

func zeroCounts(statuses []string) map[string]int {
	counts := make(map[string]int, len(statuses))
	for _, s := range statuses {
		counts[s] = 0
	}
	return counts
}

// SummarizeBackupHealth tallies snapshots by status. Statuses outside the
// known set count as pending so the buckets always add up to Total.
func SummarizeBackupHealth(snaps []model.BackupSnapshot) BackupHealthSummary {
	sum := BackupHealthSummary{
		Total:    len(snaps),
		ByStatus: zeroCounts(model.SnapshotStatuses),
	}

	var latest, oldest *time.Time
	for i := range snaps {
		s := &snaps[i]

		status := s.Status
		if !model.IsEnumMember(status, model.SnapshotStatuses) {
			status = model.SnapshotStatusPending
		}
		sum.ByStatus[status]++

		if s.VerificationStatus == model.VerificationVerified {
			sum.Verified++
		}
		if status == model.SnapshotStatusFailed || status == model.SnapshotStatusExpired {
			sum.Unhealthy++
		}
		if status == model.SnapshotStatusSuccess && s.CompletedAt != nil && (latest == nil || s.CompletedAt.After(*latest)) {
			latest = s.CompletedAt
		}
		if s.StartedAt != nil && (oldest == nil || s.StartedAt.Before(*oldest)) {
			oldest = s.StartedAt
		}
	}

	sum.LatestSuccessAt = model.ISOTime(latest)
	sum.OldestSnapshotAt = model.ISOTime(oldest)
	return sum
}

// SummarizeDrillReadiness tallies drills by status and counts the passed
// drills verified within the last 90 days before now.
func SummarizeDrillReadiness(drills []model.RecoveryDrill, now time.Time) DrillReadinessSummary {
	sum := DrillReadinessSummary{
		Total:    len(drills),
		ByStatus: zeroCounts(model.DrillStatuses),
	}
	cutoff := now.Add(-readinessWindow)

	var latest *time.Time
	for i := range drills {
		d := &drills[i]

		status := d.Status
		if !model.IsEnumMember(status, model.DrillStatuses) {
			status = model.DrillStatusScheduled
		}
		sum.ByStatus[status]++

		if status == model.DrillStatusPassed {
			if d.VerifiedAt != nil && !d.VerifiedAt.Before(cutoff) {
				sum.PassedWithinQuarter++
			}
			if d.VerifiedAt != nil && (latest == nil || d.VerifiedAt.After(*latest)) {
				latest = d.VerifiedAt
			}
		} else if len(d.IssuesFound) > 0 {
			sum.OutstandingIssues++
		}
	}

	sum.LatestVerifiedAt = model.ISOTime(latest)
	return sum
}
