package model

import (
	"strings"
	"time"
)

// BackupSnapshot is one backup attempt for a data source in an environment.
// The engine only tracks state reported by an external backup pipeline.
type BackupSnapshot struct {
	ID                 int64
	Key                string
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
	RetentionDays      int
	InitiatedBy        *string
	InitiatedFrom      *string
	StartedAt          *time.Time
	CompletedAt        *time.Time
	ExpiresAt          *time.Time
	VerifiedAt         *time.Time
	FailureReason      *string
	Notes              *string
	DatasetScope       map[string]any
	Metadata           map[string]any
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Normalize brings every field into its legal domain. It never fails:
// unknown enum values fall back to their defaults. It runs before every
// insert and update.
func (s *BackupSnapshot) Normalize() {
	s.Key = NormalizeKey(s.Key)
	s.BackupType = SanitizeBackupType(s.BackupType, BackupTypeFull)
	s.Source = strings.TrimSpace(s.Source)
	s.Environment = strings.TrimSpace(s.Environment)
	s.Region = trimmedPtr(s.Region)
	s.Status = SanitizeSnapshotStatus(s.Status, SnapshotStatusPending)
	s.VerificationStatus = SanitizeVerificationStatus(s.VerificationStatus, VerificationUnverified)
	s.StorageLocationKey = trimmedPtr(s.StorageLocationKey)
	s.StorageClass = trimmedPtr(s.StorageClass)
	s.StorageURI = trimmedPtr(s.StorageURI)
	s.Checksum = trimmedPtr(s.Checksum)
	s.ChecksumAlgorithm = trimmedPtr(s.ChecksumAlgorithm)
	s.InitiatedBy = trimmedPtr(s.InitiatedBy)
	s.InitiatedFrom = trimmedPtr(s.InitiatedFrom)
	s.FailureReason = trimmedPtr(s.FailureReason)
	s.Notes = trimmedPtr(s.Notes)

	if s.RetentionDays <= 0 {
		s.RetentionDays = DefaultRetentionDays
	}
	if s.SizeBytes != nil && *s.SizeBytes < 0 {
		s.SizeBytes = nil
	}
	if s.DatasetScope == nil {
		s.DatasetScope = map[string]any{}
	}
	if s.Metadata == nil {
		s.Metadata = map[string]any{}
	}
	if s.Status != SnapshotStatusSuccess {
		s.ExpiresAt = nil
	}
}

// IsHealthy reports whether the snapshot succeeded or is still running.
func (s *BackupSnapshot) IsHealthy() bool {
	return s.Status == SnapshotStatusSuccess || s.Status == SnapshotStatusRunning
}

// ExpiryFor returns completedAt shifted by retentionDays whole days.
func ExpiryFor(completedAt time.Time, retentionDays int) time.Time {
	return completedAt.Add(time.Duration(retentionDays) * 24 * time.Hour)
}

// BackupSnapshotView is the public JSON representation of a snapshot.
type BackupSnapshotView struct {
	ID            int64            `json:"id"`
	Key           string           `json:"key"`
	Type          string           `json:"type"`
	Source        string           `json:"source"`
	Environment   string           `json:"environment"`
	Region        *string          `json:"region"`
	Status        string           `json:"status"`
	Storage       StorageView      `json:"storage"`
	Checksum      *ChecksumView    `json:"checksum"`
	RetentionDays int              `json:"retentionDays"`
	InitiatedBy   *string          `json:"initiatedBy"`
	InitiatedFrom *string          `json:"initiatedFrom"`
	Verification  VerificationView `json:"verification"`
	StartedAt     *string          `json:"startedAt"`
	CompletedAt   *string          `json:"completedAt"`
	ExpiresAt     *string          `json:"expiresAt"`
	SizeBytes     *int64           `json:"sizeBytes"`
	FailureReason *string          `json:"failureReason"`
	Notes         *string          `json:"notes"`
	DatasetScope  map[string]any   `json:"datasetScope"`
	Metadata      map[string]any   `json:"metadata"`
	CreatedAt     *string          `json:"createdAt"`
	UpdatedAt     *string          `json:"updatedAt"`
}

type StorageView struct {
	LocationKey *string `json:"locationKey"`
	Class       *string `json:"class"`
	URI         *string `json:"uri"`
}

type ChecksumView struct {
	Value     string  `json:"value"`
	Algorithm *string `json:"algorithm"`
}

type VerificationView struct {
	Status     string  `json:"status"`
	VerifiedAt *string `json:"verifiedAt"`
}

// PublicSnapshot maps a snapshot to its public representation.
func PublicSnapshot(s *BackupSnapshot) BackupSnapshotView {
	v := BackupSnapshotView{
		ID:          s.ID,
		Key:         s.Key,
		Type:        s.BackupType,
		Source:      s.Source,
		Environment: s.Environment,
		Region:      s.Region,
		Status:      s.Status,
		Storage: StorageView{
			LocationKey: s.StorageLocationKey,
			Class:       s.StorageClass,
			URI:         s.StorageURI,
		},
		RetentionDays: s.RetentionDays,
		InitiatedBy:   s.InitiatedBy,
		InitiatedFrom: s.InitiatedFrom,
		Verification: VerificationView{
			Status:     s.VerificationStatus,
			VerifiedAt: ISOTime(s.VerifiedAt),
		},
		StartedAt:     ISOTime(s.StartedAt),
		CompletedAt:   ISOTime(s.CompletedAt),
		ExpiresAt:     ISOTime(s.ExpiresAt),
		SizeBytes:     s.SizeBytes,
		FailureReason: s.FailureReason,
		Notes:         s.Notes,
		DatasetScope:  nonNilMap(s.DatasetScope),
		Metadata:      nonNilMap(s.Metadata),
		CreatedAt:     ISOTimeValue(s.CreatedAt),
		UpdatedAt:     ISOTimeValue(s.UpdatedAt),
	}
	if s.Checksum != nil {
		v.Checksum = &ChecksumView{Value: *s.Checksum, Algorithm: s.ChecksumAlgorithm}
	}
	return v
}
