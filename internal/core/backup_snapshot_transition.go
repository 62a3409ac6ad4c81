package core

import (
	"time"

	"github.com/edvin/drtrack/internal/model"
)

const (
	defaultBackupFailureReason       = "Backup failed"
	defaultVerificationFailureReason = "Backup verification failed"
)

// ScheduleBackupSnapshotInput registers a new backup attempt.
type ScheduleBackupSnapshotInput struct {
	SnapshotKey        string
	BackupType         string
	Source             string
	Environment        string
	Region             *string
	Status             string
	VerificationStatus string
	StorageLocationKey *string
	StorageClass       *string
	StorageURI         *string
	Checksum           *string
	ChecksumAlgorithm  *string
	SizeBytes          *int64
	RetentionDays      *int
	StartedAt          *time.Time
	Notes              *string
	DatasetScope       map[string]any
	Metadata           map[string]any
}

// CompleteBackupSnapshotInput reports the end of a backup run. Nil fields
// keep the stored value.
type CompleteBackupSnapshotInput struct {
	CompletedAt        *time.Time
	VerificationStatus *string
	Status             *string
	RetentionDays      *int
	SizeBytes          *int64
	Checksum           *string
	ChecksumAlgorithm  *string
	StorageURI         *string
	StorageClass       *string
	StorageLocationKey *string
	Notes              *string
	FailureReason      *string
	Metadata           map[string]any
}

// FailBackupSnapshotInput reports a failed backup run.
type FailBackupSnapshotInput struct {
	CompletedAt        *time.Time
	VerificationStatus *string
	FailureReason      *string
	Notes              *string
	Metadata           map[string]any
}

// VerifyBackupSnapshotInput records the outcome of an integrity check.
type VerifyBackupSnapshotInput struct {
	VerificationStatus *string
	Status             *string
	RetentionDays      *int
	FailureReason      *string
	Notes              *string
	Metadata           map[string]any
}

func (in ScheduleBackupSnapshotInput) snapshot() (*model.BackupSnapshot, error) {
	s := &model.BackupSnapshot{
		Key:                in.SnapshotKey,
		BackupType:         in.BackupType,
		Source:             in.Source,
		Environment:        in.Environment,
		Region:             in.Region,
		Status:             in.Status,
		VerificationStatus: in.VerificationStatus,
		StorageLocationKey: in.StorageLocationKey,
		StorageClass:       in.StorageClass,
		StorageURI:         in.StorageURI,
		Checksum:           in.Checksum,
		ChecksumAlgorithm:  in.ChecksumAlgorithm,
		SizeBytes:          in.SizeBytes,
		StartedAt:          in.StartedAt,
		Notes:              in.Notes,
		DatasetScope:       in.DatasetScope,
	}
	if in.RetentionDays != nil {
		s.RetentionDays = *in.RetentionDays
	}
	s.Normalize()

	switch {
	case s.Key == "":
		return nil, validationError("snapshotKey is required")
	case s.Source == "":
		return nil, validationError("source is required")
	case s.Environment == "":
		return nil, validationError("environment is required")
	}
	return s, nil
}

func applySnapshotRunning(s *model.BackupSnapshot, now time.Time) error {
	if s.Status != model.SnapshotStatusPending && s.Status != model.SnapshotStatusRunning {
		return conflictError("backup snapshot %s is %s and cannot be marked running", s.Key, s.Status)
	}
	s.Status = model.SnapshotStatusRunning
	if s.StartedAt == nil {
		s.StartedAt = &now
	}
	return nil
}

func applySnapshotComplete(s *model.BackupSnapshot, in CompleteBackupSnapshotInput, now time.Time) error {
	if s.Status != model.SnapshotStatusPending && s.Status != model.SnapshotStatusRunning {
		return conflictError("backup snapshot %s is %s and cannot be completed", s.Key, s.Status)
	}

	completedAt := now
	if in.CompletedAt != nil {
		completedAt = *in.CompletedAt
	}
	s.CompletedAt = &completedAt

	if in.VerificationStatus != nil {
		s.VerificationStatus = model.SanitizeVerificationStatus(*in.VerificationStatus, s.VerificationStatus)
	}
	if s.VerificationStatus == model.VerificationVerified || s.VerificationStatus == model.VerificationFailed {
		s.VerifiedAt = &completedAt
	}

	status := model.SnapshotStatusSuccess
	if s.VerificationStatus == model.VerificationFailed {
		status = model.SnapshotStatusFailed
	}
	if in.Status != nil {
		status = model.SanitizeSnapshotStatus(*in.Status, status)
	}

	if in.RetentionDays != nil && *in.RetentionDays > 0 {
		s.RetentionDays = *in.RetentionDays
	}
	s.SizeBytes = orInt64(in.SizeBytes, s.SizeBytes)
	s.Checksum = orString(in.Checksum, s.Checksum)
	s.ChecksumAlgorithm = orString(in.ChecksumAlgorithm, s.ChecksumAlgorithm)
	s.StorageURI = orString(in.StorageURI, s.StorageURI)
	s.StorageClass = orString(in.StorageClass, s.StorageClass)
	s.StorageLocationKey = orString(in.StorageLocationKey, s.StorageLocationKey)
	s.Notes = orString(in.Notes, s.Notes)

	settleSnapshotStatus(s, status, in.FailureReason, defaultBackupFailureReason, now)
	return nil
}

func applySnapshotFail(s *model.BackupSnapshot, in FailBackupSnapshotInput, now time.Time) {
	completedAt := now
	if in.CompletedAt != nil {
		completedAt = *in.CompletedAt
	}
	s.CompletedAt = &completedAt

	verification := ""
	if in.VerificationStatus != nil {
		verification = *in.VerificationStatus
	}
	s.VerificationStatus = model.SanitizeVerificationStatus(verification, model.VerificationFailed)
	s.Notes = orString(in.Notes, s.Notes)

	reason := in.FailureReason
	if reason == nil {
		r := defaultBackupFailureReason
		reason = &r
	}
	settleSnapshotStatus(s, model.SnapshotStatusFailed, reason, defaultBackupFailureReason, now)
}

func applySnapshotVerify(s *model.BackupSnapshot, in VerifyBackupSnapshotInput, now time.Time) {
	target := ""
	if in.VerificationStatus != nil {
		target = *in.VerificationStatus
	}
	s.VerificationStatus = model.SanitizeVerificationStatus(target, model.VerificationVerified)
	s.VerifiedAt = &now

	// Retention applies even without a success transition so operators can
	// adjust it ahead of one.
	if in.RetentionDays != nil && *in.RetentionDays > 0 {
		s.RetentionDays = *in.RetentionDays
	}
	s.Notes = orString(in.Notes, s.Notes)

	status := s.Status
	switch s.VerificationStatus {
	case model.VerificationVerified:
		status = model.SnapshotStatusSuccess
	case model.VerificationFailed:
		status = model.SnapshotStatusFailed
	}
	if in.Status != nil {
		status = model.SanitizeSnapshotStatus(*in.Status, status)
	}

	settleSnapshotStatus(s, status, in.FailureReason, defaultVerificationFailureReason, now)
}

// settleSnapshotStatus applies the final status together with the fields
// that depend on it: expiry exists only on success, failures carry a reason.
// Expiry counts from the stored completion time, or from now when there is
// none; completedAt itself is left as stored.
func settleSnapshotStatus(s *model.BackupSnapshot, status string, reason *string, defaultReason string, now time.Time) {
	s.Status = status
	switch status {
	case model.SnapshotStatusSuccess:
		completedAt := timeOr(s.CompletedAt, now)
		expiresAt := model.ExpiryFor(completedAt, s.RetentionDays)
		s.ExpiresAt = &expiresAt
		s.FailureReason = nil
	case model.SnapshotStatusFailed:
		s.ExpiresAt = nil
		s.FailureReason = orString(reason, s.FailureReason)
		if s.FailureReason == nil {
			r := defaultReason
			s.FailureReason = &r
		}
	default:
		s.ExpiresAt = nil
	}
}

func timeOr(t *time.Time, fallback time.Time) time.Time {
	if t == nil {
		return fallback
	}
	return *t
}
