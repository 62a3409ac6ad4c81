package request

import "time"

type ScheduleRecoveryDrill struct {
	DrillKey    string         `json:"drillKey" validate:"required,reckey"`
	Name        string         `json:"name" validate:"required"`
	Scenario    string         `json:"scenario" validate:"omitempty,oneof=regional_outage ransomware_response config_corruption operator_error cloud_provider_failure data_center_loss"`
	Status      string         `json:"status" validate:"omitempty,oneof=scheduled running passed failed cancelled"`
	Environment string         `json:"environment" validate:"required"`
	Region      *string        `json:"region"`
	RTOMinutes  Int            `json:"rtoMinutes"`
	RPOMinutes  Float          `json:"rpoMinutes"`
	StartedAt   *time.Time     `json:"startedAt"`
	Summary     *string        `json:"summary"`
	IssuesFound []string       `json:"issuesFound"`
	EvidenceURI *string        `json:"evidenceUri"`
	Metadata    map[string]any `json:"metadata"`
}

type StartRecoveryDrill struct {
	StartedAt        *time.Time     `json:"startedAt"`
	RestoreStartedAt *time.Time     `json:"restoreStartedAt"`
	Metadata         map[string]any `json:"metadata"`
}

// DrillOutcome carries the timing and objective fields shared by the
// complete and fail endpoints.
type DrillOutcome struct {
	CompletedAt        *time.Time     `json:"completedAt"`
	VerifiedAt         *time.Time     `json:"verifiedAt"`
	RestoreStartedAt   *time.Time     `json:"restoreStartedAt"`
	RestoreCompletedAt *time.Time     `json:"restoreCompletedAt"`
	RestoreDurationMs  Int            `json:"restoreDurationMs"`
	RTOMinutes         Int            `json:"rtoMinutes"`
	RPOMinutes         Float          `json:"rpoMinutes"`
	DataLossSeconds    Int            `json:"dataLossSeconds"`
	Summary            *string        `json:"summary"`
	IssuesFound        []string       `json:"issuesFound"`
	EvidenceURI        *string        `json:"evidenceUri"`
	Metadata           map[string]any `json:"metadata"`
}

type CompleteRecoveryDrill struct {
	DrillOutcome
	Status *string `json:"status" validate:"omitempty,oneof=passed failed"`
}

type FailRecoveryDrill struct {
	DrillOutcome
	FailureReason *string `json:"failureReason"`
}

type CancelRecoveryDrill struct {
	Reason   *string        `json:"reason"`
	Metadata map[string]any `json:"metadata"`
}
