package request

import "time"

type ScheduleBackupSnapshot struct {
	SnapshotKey        string         `json:"snapshotKey" validate:"required,reckey"`
	BackupType         string         `json:"backupType" validate:"omitempty,oneof=full incremental differential logical physical"`
	Source             string         `json:"source" validate:"required"`
	Environment        string         `json:"environment" validate:"required"`
	Region             *string        `json:"region"`
	Status             string         `json:"status" validate:"omitempty,oneof=pending running success failed expired"`
	VerificationStatus string         `json:"verificationStatus" validate:"omitempty,oneof=unverified in_progress verified failed"`
	StorageLocationKey *string        `json:"storageLocationKey"`
	StorageClass       *string        `json:"storageClass"`
	StorageURI         *string        `json:"storageUri"`
	Checksum           *string        `json:"checksum"`
	ChecksumAlgorithm  *string        `json:"checksumAlgorithm"`
	SizeBytes          Int            `json:"sizeBytes"`
	RetentionDays      Int            `json:"retentionDays"`
	StartedAt          *time.Time     `json:"startedAt"`
	Notes              *string        `json:"notes"`
	DatasetScope       map[string]any `json:"datasetScope"`
	Metadata           map[string]any `json:"metadata"`
}

type CompleteBackupSnapshot struct {
	CompletedAt        *time.Time     `json:"completedAt"`
	VerificationStatus *string        `json:"verificationStatus" validate:"omitempty,oneof=unverified in_progress verified failed"`
	Status             *string        `json:"status" validate:"omitempty,oneof=success failed"`
	RetentionDays      Int            `json:"retentionDays"`
	SizeBytes          Int            `json:"sizeBytes"`
	Checksum           *string        `json:"checksum"`
	ChecksumAlgorithm  *string        `json:"checksumAlgorithm"`
	StorageURI         *string        `json:"storageUri"`
	StorageClass       *string        `json:"storageClass"`
	StorageLocationKey *string        `json:"storageLocationKey"`
	Notes              *string        `json:"notes"`
	FailureReason      *string        `json:"failureReason"`
	Metadata           map[string]any `json:"metadata"`
}

type FailBackupSnapshot struct {
	CompletedAt        *time.Time     `json:"completedAt"`
	VerificationStatus *string        `json:"verificationStatus" validate:"omitempty,oneof=unverified in_progress verified failed"`
	FailureReason      *string        `json:"failureReason"`
	Notes              *string        `json:"notes"`
	Metadata           map[string]any `json:"metadata"`
}

type VerifyBackupSnapshot struct {
	VerificationStatus *string        `json:"verificationStatus" validate:"omitempty,oneof=unverified in_progress verified failed"`
	Status             *string        `json:"status" validate:"omitempty,oneof=pending running success failed expired"`
	RetentionDays      Int            `json:"retentionDays"`
	FailureReason      *string        `json:"failureReason"`
	Notes              *string        `json:"notes"`
	Metadata           map[string]any `json:"metadata"`
}
