package model

import (
	"math"
	"strings"
	"time"
)

// RecoveryDrill is one rehearsal of a disaster recovery scenario.
type RecoveryDrill struct {
	ID                 int64
	Key                string
	Name               string
	Scenario           string
	Status             string
	Environment        string
	Region             *string
	RTOMinutes         *int
	RPOMinutes         *float64
	StartedAt          *time.Time
	RestoreStartedAt   *time.Time
	RestoreCompletedAt *time.Time
	CompletedAt        *time.Time
	VerifiedAt         *time.Time
	RestoreDurationMs  *int64
	DataLossSeconds    *int64
	Summary            *string
	IssuesFound        []string
	EvidenceURI        *string
	InitiatedBy        *string
	InitiatedFrom      *string
	Metadata           map[string]any
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Normalize mirrors BackupSnapshot.Normalize for drills. Negative timings
// collapse to nil.
func (d *RecoveryDrill) Normalize() {
	d.Key = NormalizeKey(d.Key)
	d.Name = strings.TrimSpace(d.Name)
	d.Scenario = SanitizeScenario(d.Scenario, ScenarioRegionalOutage)
	d.Status = SanitizeDrillStatus(d.Status, DrillStatusScheduled)
	d.Environment = strings.TrimSpace(d.Environment)
	d.Region = trimmedPtr(d.Region)
	d.Summary = trimmedPtr(d.Summary)
	d.EvidenceURI = trimmedPtr(d.EvidenceURI)
	d.InitiatedBy = trimmedPtr(d.InitiatedBy)
	d.InitiatedFrom = trimmedPtr(d.InitiatedFrom)

	if d.RTOMinutes != nil && *d.RTOMinutes < 0 {
		d.RTOMinutes = nil
	}
	if d.RPOMinutes != nil && (*d.RPOMinutes < 0 || math.IsNaN(*d.RPOMinutes) || math.IsInf(*d.RPOMinutes, 0)) {
		d.RPOMinutes = nil
	}
	if d.RestoreDurationMs != nil && *d.RestoreDurationMs < 0 {
		d.RestoreDurationMs = nil
	}
	if d.DataLossSeconds != nil && *d.DataLossSeconds < 0 {
		d.DataLossSeconds = nil
	}

	issues := make([]string, 0, len(d.IssuesFound))
	for _, issue := range d.IssuesFound {
		if t := strings.TrimSpace(issue); t != "" {
			issues = append(issues, t)
		}
	}
	d.IssuesFound = issues

	if d.Metadata == nil {
		d.Metadata = map[string]any{}
	}
}

// RecoveryDrillView is the public JSON representation of a drill.
type RecoveryDrillView struct {
	ID                 int64          `json:"id"`
	Key                string         `json:"key"`
	Name               string         `json:"name"`
	Scenario           string         `json:"scenario"`
	Status             string         `json:"status"`
	Environment        string         `json:"environment"`
	Region             *string        `json:"region"`
	Objectives         ObjectivesView `json:"objectives"`
	Restore            RestoreView    `json:"restore"`
	InitiatedBy        *string        `json:"initiatedBy"`
	InitiatedFrom      *string        `json:"initiatedFrom"`
	StartedAt          *string        `json:"startedAt"`
	RestoreStartedAt   *string        `json:"restoreStartedAt"`
	RestoreCompletedAt *string        `json:"restoreCompletedAt"`
	CompletedAt        *string        `json:"completedAt"`
	VerifiedAt         *string        `json:"verifiedAt"`
	Summary            *string        `json:"summary"`
	IssuesFound        []string       `json:"issuesFound"`
	EvidenceURI        *string        `json:"evidenceUri"`
	Metadata           map[string]any `json:"metadata"`
	CreatedAt          *string        `json:"createdAt"`
	UpdatedAt          *string        `json:"updatedAt"`
}

type ObjectivesView struct {
	RTOMinutes *int     `json:"rtoMinutes"`
	RPOMinutes *float64 `json:"rpoMinutes"`
}

type RestoreView struct {
	DurationMs      *int64 `json:"durationMs"`
	DataLossSeconds *int64 `json:"dataLossSeconds"`
}

// PublicDrill maps a drill to its public representation.
func PublicDrill(d *RecoveryDrill) RecoveryDrillView {
	issues := d.IssuesFound
	if issues == nil {
		issues = []string{}
	}
	return RecoveryDrillView{
		ID:          d.ID,
		Key:         d.Key,
		Name:        d.Name,
		Scenario:    d.Scenario,
		Status:      d.Status,
		Environment: d.Environment,
		Region:      d.Region,
		Objectives: ObjectivesView{
			RTOMinutes: d.RTOMinutes,
			RPOMinutes: d.RPOMinutes,
		},
		Restore: RestoreView{
			DurationMs:      d.RestoreDurationMs,
			DataLossSeconds: d.DataLossSeconds,
		},
		InitiatedBy:        d.InitiatedBy,
		InitiatedFrom:      d.InitiatedFrom,
		StartedAt:          ISOTime(d.StartedAt),
		RestoreStartedAt:   ISOTime(d.RestoreStartedAt),
		RestoreCompletedAt: ISOTime(d.RestoreCompletedAt),
		CompletedAt:        ISOTime(d.CompletedAt),
		VerifiedAt:         ISOTime(d.VerifiedAt),
		Summary:            d.Summary,
		IssuesFound:        issues,
		EvidenceURI:        d.EvidenceURI,
		Metadata:           nonNilMap(d.Metadata),
		CreatedAt:          ISOTimeValue(d.CreatedAt),
		UpdatedAt:          ISOTimeValue(d.UpdatedAt),
	}
}
