package core

import (
	"math"
	"time"

	"github.com/edvin/drtrack/internal/model"
)

const (
	defaultDrillFailureReason = "Recovery drill failed"

	// restoreWindowFallback stands in for the restore window when a drill
	// finishes without any restore timestamps.
	restoreWindowFallback = 30 * time.Minute
)

// ScheduleRecoveryDrillInput registers a new drill.
type ScheduleRecoveryDrillInput struct {
	DrillKey    string
	Name        string
	Scenario    string
	Status      string
	Environment string
	Region      *string
	RTOMinutes  *int
	RPOMinutes  *float64
	StartedAt   *time.Time
	Summary     *string
	IssuesFound []string
	EvidenceURI *string
	Metadata    map[string]any
}

// StartRecoveryDrillInput moves a drill to running.
type StartRecoveryDrillInput struct {
	StartedAt        *time.Time
	RestoreStartedAt *time.Time
	Metadata         map[string]any
}

// CompleteRecoveryDrillInput reports a drill outcome. Nil fields are derived
// from the stored record.
type CompleteRecoveryDrillInput struct {
	Status             *string
	CompletedAt        *time.Time
	VerifiedAt         *time.Time
	RestoreStartedAt   *time.Time
	RestoreCompletedAt *time.Time
	RestoreDurationMs  *int64
	RTOMinutes         *int
	RPOMinutes         *float64
	DataLossSeconds    *int64
	Summary            *string
	IssuesFound        []string
	EvidenceURI        *string
	Metadata           map[string]any
}

// FailRecoveryDrillInput is CompleteRecoveryDrillInput plus the reason that
// gets appended to issuesFound when no explicit list is given.
type FailRecoveryDrillInput struct {
	CompleteRecoveryDrillInput
	FailureReason *string
}

// CancelRecoveryDrillInput abandons a drill that has not finished.
type CancelRecoveryDrillInput struct {
	Reason   *string
	Metadata map[string]any
}

func (in ScheduleRecoveryDrillInput) drill() (*model.RecoveryDrill, error) {
	d := &model.RecoveryDrill{
		Key:         in.DrillKey,
		Name:        in.Name,
		Scenario:    in.Scenario,
		Status:      in.Status,
		Environment: in.Environment,
		Region:      in.Region,
		RTOMinutes:  in.RTOMinutes,
		RPOMinutes:  in.RPOMinutes,
		StartedAt:   in.StartedAt,
		Summary:     in.Summary,
		IssuesFound: in.IssuesFound,
		EvidenceURI: in.EvidenceURI,
	}
	d.Normalize()

	switch {
	case d.Key == "":
		return nil, validationError("drillKey is required")
	case d.Name == "":
		return nil, validationError("name is required")
	case d.Environment == "":
		return nil, validationError("environment is required")
	}
	return d, nil
}

func drillIsOpen(d *model.RecoveryDrill) bool {
	return d.Status == model.DrillStatusScheduled || d.Status == model.DrillStatusRunning
}

func applyDrillStart(d *model.RecoveryDrill, in StartRecoveryDrillInput, now time.Time) error {
	if !drillIsOpen(d) {
		return conflictError("recovery drill %s is %s and cannot be started", d.Key, d.Status)
	}
	d.Status = model.DrillStatusRunning
	if d.StartedAt == nil {
		startedAt := now
		if in.StartedAt != nil {
			startedAt = *in.StartedAt
		}
		d.StartedAt = &startedAt
	}
	if in.RestoreStartedAt != nil {
		d.RestoreStartedAt = in.RestoreStartedAt
	}
	return nil
}

func applyDrillComplete(d *model.RecoveryDrill, in CompleteRecoveryDrillInput, now time.Time) (bool, error) {
	if !drillIsOpen(d) {
		return false, conflictError("recovery drill %s is %s and cannot be completed", d.Key, d.Status)
	}
	status := ""
	if in.Status != nil {
		status = *in.Status
	}
	synthesized := applyDrillOutcome(d, in, model.SanitizeDrillStatus(status, model.DrillStatusPassed), now)
	return synthesized, nil
}

func applyDrillFail(d *model.RecoveryDrill, in FailRecoveryDrillInput, now time.Time) bool {
	synthesized := applyDrillOutcome(d, in.CompleteRecoveryDrillInput, model.DrillStatusFailed, now)
	if in.IssuesFound == nil {
		reason := defaultDrillFailureReason
		if in.FailureReason != nil && *in.FailureReason != "" {
			reason = *in.FailureReason
		}
		d.IssuesFound = append(append([]string{}, d.IssuesFound...), reason)
	}
	return synthesized
}

func applyDrillCancel(d *model.RecoveryDrill, in CancelRecoveryDrillInput, now time.Time) error {
	if !drillIsOpen(d) {
		return conflictError("recovery drill %s is %s and cannot be cancelled", d.Key, d.Status)
	}
	d.Status = model.DrillStatusCancelled
	if d.CompletedAt == nil {
		d.CompletedAt = &now
	}
	d.Summary = orString(in.Reason, d.Summary)
	return nil
}

// applyDrillOutcome resolves the timing fields of a finished drill and sets
// its final status. It reports whether the restore start had to be
// synthesized.
func applyDrillOutcome(d *model.RecoveryDrill, in CompleteRecoveryDrillInput, status string, now time.Time) bool {
	completedAt := now
	if in.CompletedAt != nil {
		completedAt = *in.CompletedAt
	}
	verifiedAt := completedAt
	if in.VerifiedAt != nil {
		verifiedAt = *in.VerifiedAt
	}

	restoreStarted, restoreCompleted, synthesized := deriveRestoreWindow(
		orTime(in.RestoreStartedAt, d.RestoreStartedAt),
		orTime(in.RestoreCompletedAt, d.RestoreCompletedAt),
		completedAt,
	)

	duration := in.RestoreDurationMs
	if duration == nil {
		duration = durationMs(&restoreStarted, &restoreCompleted)
	} else if *duration < 0 {
		duration = nil
	}

	rto := in.RTOMinutes
	if rto == nil {
		basis := duration
		if basis == nil {
			basis = durationMs(d.StartedAt, &completedAt)
		}
		if basis != nil {
			m := ceilMinutes(*basis)
			rto = &m
		} else {
			rto = d.RTOMinutes
		}
	}

	rpo := d.RPOMinutes
	if in.RPOMinutes != nil {
		rpo = in.RPOMinutes
	}

	dataLoss := in.DataLossSeconds
	if dataLoss == nil {
		var seconds int64
		if rpo != nil {
			seconds = int64(math.Round(*rpo * 60))
		}
		dataLoss = &seconds
	}

	d.CompletedAt = &completedAt
	d.VerifiedAt = &verifiedAt
	d.RestoreStartedAt = &restoreStarted
	d.RestoreCompletedAt = &restoreCompleted
	d.RestoreDurationMs = duration
	d.RTOMinutes = rto
	d.RPOMinutes = rpo
	d.DataLossSeconds = dataLoss
	d.Summary = orString(in.Summary, d.Summary)
	d.EvidenceURI = orString(in.EvidenceURI, d.EvidenceURI)
	if in.IssuesFound != nil {
		d.IssuesFound = in.IssuesFound
	}
	d.Status = status
	return synthesized
}

// deriveRestoreWindow fills a missing restore end with the completion time
// and a missing restore start with end minus restoreWindowFallback.
func deriveRestoreWindow(started, completed *time.Time, completedAt time.Time) (time.Time, time.Time, bool) {
	end := completedAt
	if completed != nil {
		end = *completed
	}
	if started != nil {
		return *started, end, false
	}
	return end.Add(-restoreWindowFallback), end, true
}

// durationMs returns to-from in milliseconds, or nil when either bound is
// missing or the interval is negative.
func durationMs(from, to *time.Time) *int64 {
	if from == nil || to == nil {
		return nil
	}
	ms := to.Sub(*from).Milliseconds()
	if ms < 0 {
		return nil
	}
	return &ms
}

func ceilMinutes(ms int64) int {
	return int(math.Ceil(float64(ms) / float64(time.Minute/time.Millisecond)))
}
