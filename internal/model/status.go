package model

// Backup snapshot types.
const (
	BackupTypeFull         = "full"
	BackupTypeIncremental  = "incremental"
	BackupTypeDifferential = "differential"
	BackupTypeLogical      = "logical"
	BackupTypePhysical     = "physical"
)

// Backup snapshot lifecycle statuses.
const (
	SnapshotStatusPending = "pending"
	SnapshotStatusRunning = "running"
	SnapshotStatusSuccess = "success"
	SnapshotStatusFailed  = "failed"
	SnapshotStatusExpired = "expired"
)

// Verification sub-states of a backup snapshot.
const (
	VerificationUnverified = "unverified"
	VerificationInProgress = "in_progress"
	VerificationVerified   = "verified"
	VerificationFailed     = "failed"
)

// Disaster recovery drill statuses.
const (
	DrillStatusScheduled = "scheduled"
	DrillStatusRunning   = "running"
	DrillStatusPassed    = "passed"
	DrillStatusFailed    = "failed"
	DrillStatusCancelled = "cancelled"
)

// Disaster recovery drill scenarios.
const (
	ScenarioRegionalOutage       = "regional_outage"
	ScenarioRansomwareResponse   = "ransomware_response"
	ScenarioConfigCorruption     = "config_corruption"
	ScenarioOperatorError        = "operator_error"
	ScenarioCloudProviderFailure = "cloud_provider_failure"
	ScenarioDataCenterLoss       = "data_center_loss"
)

// Ordered enum sets. Order matters for summaries and error messages.
var (
	BackupTypes = []string{
		BackupTypeFull, BackupTypeIncremental, BackupTypeDifferential,
		BackupTypeLogical, BackupTypePhysical,
	}
	SnapshotStatuses = []string{
		SnapshotStatusPending, SnapshotStatusRunning, SnapshotStatusSuccess,
		SnapshotStatusFailed, SnapshotStatusExpired,
	}
	VerificationStatuses = []string{
		VerificationUnverified, VerificationInProgress, VerificationVerified, VerificationFailed,
	}
	DrillStatuses = []string{
		DrillStatusScheduled, DrillStatusRunning, DrillStatusPassed,
		DrillStatusFailed, DrillStatusCancelled,
	}
	DrillScenarios = []string{
		ScenarioRegionalOutage, ScenarioRansomwareResponse, ScenarioConfigCorruption,
		ScenarioOperatorError, ScenarioCloudProviderFailure, ScenarioDataCenterLoss,
	}
)

const (
	DefaultRetentionDays = 30
	MaxKeyLength         = 160
)
