package core

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/drtrack/internal/model"
)

var testNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

func strPtr(s string) *string       { return &s }
func intPtr(i int) *int             { return &i }
func int64Ptr(i int64) *int64       { return &i }
func floatPtr(f float64) *float64   { return &f }
func timePtr(t time.Time) *time.Time { return &t }

func pendingSnapshot() *model.BackupSnapshot {
	s := &model.BackupSnapshot{
		ID:          1,
		Key:         "prod-full-2024-10-01",
		Source:      "primary-db",
		Environment: "production",
	}
	s.Normalize()
	return s
}

func TestScheduleBackupSnapshotInput_Defaults(t *testing.T) {
	s, err := ScheduleBackupSnapshotInput{
		SnapshotKey: "  Prod Full/2024 ",
		BackupType:  "bogus",
		Source:      "primary-db",
		Environment: "production",
	}.snapshot()
	require.NoError(t, err)

	assert.Equal(t, "prod-full-2024", s.Key)
	assert.Equal(t, model.BackupTypeFull, s.BackupType)
	assert.Equal(t, model.SnapshotStatusPending, s.Status)
	assert.Equal(t, model.VerificationUnverified, s.VerificationStatus)
	assert.Equal(t, model.DefaultRetentionDays, s.RetentionDays)
	assert.Nil(t, s.ExpiresAt)
}

func TestScheduleBackupSnapshotInput_RequiredFields(t *testing.T) {
	tests := []struct {
		name string
		in   ScheduleBackupSnapshotInput
		msg  string
	}{
		{"key", ScheduleBackupSnapshotInput{SnapshotKey: " ** ", Source: "db", Environment: "prod"}, "snapshotKey"},
		{"source", ScheduleBackupSnapshotInput{SnapshotKey: "k", Environment: "prod"}, "source"},
		{"environment", ScheduleBackupSnapshotInput{SnapshotKey: "k", Source: "db"}, "environment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.in.snapshot()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestApplySnapshotRunning(t *testing.T) {
	s := pendingSnapshot()
	require.NoError(t, applySnapshotRunning(s, testNow))
	assert.Equal(t, model.SnapshotStatusRunning, s.Status)
	assert.Equal(t, testNow, *s.StartedAt)

	// A second call keeps the original start.
	require.NoError(t, applySnapshotRunning(s, testNow.Add(time.Hour)))
	assert.Equal(t, testNow, *s.StartedAt)
}

func TestApplySnapshotRunning_RejectsFinished(t *testing.T) {
	s := pendingSnapshot()
	s.Status = model.SnapshotStatusSuccess
	err := applySnapshotRunning(s, testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestApplySnapshotComplete_Verified(t *testing.T) {
	s := pendingSnapshot()
	s.RetentionDays = 45
	require.NoError(t, applySnapshotRunning(s, testNow.Add(-time.Hour)))

	err := applySnapshotComplete(s, CompleteBackupSnapshotInput{
		SizeBytes:          int64Ptr(1572864),
		Checksum:           strPtr("abc123"),
		VerificationStatus: strPtr("verified"),
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, model.SnapshotStatusSuccess, s.Status)
	assert.Equal(t, model.VerificationVerified, s.VerificationStatus)
	assert.Equal(t, testNow, *s.VerifiedAt)
	assert.Equal(t, testNow, *s.CompletedAt)
	require.NotNil(t, s.ExpiresAt)
	assert.Equal(t, testNow.Add(45*24*time.Hour), *s.ExpiresAt)
	assert.Nil(t, s.FailureReason)
	assert.Equal(t, int64(1572864), *s.SizeBytes)
	assert.Equal(t, "abc123", *s.Checksum)
}

func TestApplySnapshotComplete_FailedVerification(t *testing.T) {
	s := pendingSnapshot()
	err := applySnapshotComplete(s, CompleteBackupSnapshotInput{
		VerificationStatus: strPtr("failed"),
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, model.SnapshotStatusFailed, s.Status)
	assert.Nil(t, s.ExpiresAt)
	require.NotNil(t, s.FailureReason)
	assert.Equal(t, defaultBackupFailureReason, *s.FailureReason)
}

func TestApplySnapshotComplete_ExplicitStatusOverride(t *testing.T) {
	s := pendingSnapshot()
	err := applySnapshotComplete(s, CompleteBackupSnapshotInput{
		Status:        strPtr("failed"),
		FailureReason: strPtr("disk full"),
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, model.SnapshotStatusFailed, s.Status)
	assert.Equal(t, "disk full", *s.FailureReason)
	assert.Nil(t, s.ExpiresAt)
}

func TestApplySnapshotComplete_RetentionOverride(t *testing.T) {
	s := pendingSnapshot()
	completed := testNow.Add(-2 * time.Hour)
	err := applySnapshotComplete(s, CompleteBackupSnapshotInput{
		CompletedAt:   &completed,
		RetentionDays: intPtr(7),
	}, testNow)
	require.NoError(t, err)

	assert.Equal(t, 7, s.RetentionDays)
	assert.Equal(t, completed.Add(7*24*time.Hour), *s.ExpiresAt)
	// Unverified leaves verifiedAt unset.
	assert.Nil(t, s.VerifiedAt)
}

func TestApplySnapshotComplete_RejectsFinished(t *testing.T) {
	for _, status := range []string{model.SnapshotStatusSuccess, model.SnapshotStatusFailed, model.SnapshotStatusExpired} {
		s := pendingSnapshot()
		s.Status = status
		err := applySnapshotComplete(s, CompleteBackupSnapshotInput{}, testNow)
		assert.ErrorIs(t, err, ErrConflict, status)
	}
}

func TestApplySnapshotFail_Defaults(t *testing.T) {
	s := pendingSnapshot()
	applySnapshotFail(s, FailBackupSnapshotInput{}, testNow)

	assert.Equal(t, model.SnapshotStatusFailed, s.Status)
	assert.Equal(t, model.VerificationFailed, s.VerificationStatus)
	assert.Equal(t, testNow, *s.CompletedAt)
	assert.Equal(t, defaultBackupFailureReason, *s.FailureReason)
	assert.Nil(t, s.ExpiresAt)
}

func TestApplySnapshotFail_FromSuccessClearsExpiry(t *testing.T) {
	s := pendingSnapshot()
	require.NoError(t, applySnapshotComplete(s, CompleteBackupSnapshotInput{}, testNow))
	require.NotNil(t, s.ExpiresAt)

	applySnapshotFail(s, FailBackupSnapshotInput{
		FailureReason:      strPtr("corrupt archive"),
		VerificationStatus: strPtr("in_progress"),
	}, testNow.Add(time.Hour))

	assert.Equal(t, model.SnapshotStatusFailed, s.Status)
	assert.Equal(t, model.VerificationInProgress, s.VerificationStatus)
	assert.Equal(t, "corrupt archive", *s.FailureReason)
	assert.Nil(t, s.ExpiresAt)
}

func TestApplySnapshotVerify_RecoversFailedSnapshot(t *testing.T) {
	s := pendingSnapshot()
	applySnapshotFail(s, FailBackupSnapshotInput{}, testNow)

	later := testNow.Add(time.Hour)
	applySnapshotVerify(s, VerifyBackupSnapshotInput{}, later)

	assert.Equal(t, model.SnapshotStatusSuccess, s.Status)
	assert.Equal(t, model.VerificationVerified, s.VerificationStatus)
	assert.Equal(t, later, *s.VerifiedAt)
	assert.Nil(t, s.FailureReason)
	// Expiry counts from the stored completion time.
	assert.Equal(t, testNow.Add(30*24*time.Hour), *s.ExpiresAt)
}

func TestApplySnapshotVerify_ExpiryFromNowWhenNeverCompleted(t *testing.T) {
	s := pendingSnapshot()
	// A clock far from the wall clock shows expiry uses the injected time.
	past := time.Date(2001, 2, 3, 4, 5, 6, 0, time.UTC)
	applySnapshotVerify(s, VerifyBackupSnapshotInput{RetentionDays: intPtr(10)}, past)

	assert.Equal(t, model.SnapshotStatusSuccess, s.Status)
	assert.Nil(t, s.CompletedAt)
	assert.Equal(t, past.Add(10*24*time.Hour), *s.ExpiresAt)
}

func TestApplySnapshotVerify_Failed(t *testing.T) {
	s := pendingSnapshot()
	require.NoError(t, applySnapshotComplete(s, CompleteBackupSnapshotInput{}, testNow))

	applySnapshotVerify(s, VerifyBackupSnapshotInput{VerificationStatus: strPtr("failed")}, testNow)

	assert.Equal(t, model.SnapshotStatusFailed, s.Status)
	assert.Equal(t, defaultVerificationFailureReason, *s.FailureReason)
	assert.Nil(t, s.ExpiresAt)
}

func TestApplySnapshotVerify_InProgressKeepsStatus(t *testing.T) {
	s := pendingSnapshot()
	require.NoError(t, applySnapshotRunning(s, testNow))

	applySnapshotVerify(s, VerifyBackupSnapshotInput{VerificationStatus: strPtr("in_progress")}, testNow)

	assert.Equal(t, model.SnapshotStatusRunning, s.Status)
	assert.Nil(t, s.ExpiresAt)
}

// Expiry is set exactly when the status is success, whatever path led there.
func TestSnapshotExpiryOnlyOnSuccess(t *testing.T) {
	steps := []func(*model.BackupSnapshot){
		func(s *model.BackupSnapshot) { _ = applySnapshotRunning(s, testNow) },
		func(s *model.BackupSnapshot) { _ = applySnapshotComplete(s, CompleteBackupSnapshotInput{}, testNow) },
		func(s *model.BackupSnapshot) { applySnapshotFail(s, FailBackupSnapshotInput{}, testNow) },
		func(s *model.BackupSnapshot) { applySnapshotVerify(s, VerifyBackupSnapshotInput{}, testNow) },
		func(s *model.BackupSnapshot) {
			applySnapshotVerify(s, VerifyBackupSnapshotInput{VerificationStatus: strPtr("failed")}, testNow)
		},
		func(s *model.BackupSnapshot) {
			applySnapshotVerify(s, VerifyBackupSnapshotInput{Status: strPtr("expired")}, testNow)
		},
	}
	for i := range steps {
		for j := range steps {
			s := pendingSnapshot()
			steps[i](s)
			steps[j](s)
			s.Normalize()
			assert.Equal(t, s.Status == model.SnapshotStatusSuccess, s.ExpiresAt != nil, "steps %d,%d status %s", i, j, s.Status)
			if s.Status == model.SnapshotStatusFailed {
				assert.NotNil(t, s.FailureReason)
			}
		}
	}
}
