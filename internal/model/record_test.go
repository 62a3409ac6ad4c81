package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_DispatchesOnKind(t *testing.T) {
	snap := SnapshotRecord(&BackupSnapshot{Key: "s1", Status: SnapshotStatusRunning, Environment: "staging"})
	drill := DrillRecord(&RecoveryDrill{Key: "d1", Status: DrillStatusPassed, Environment: "production"})

	assert.Equal(t, "s1", snap.Key())
	assert.Equal(t, "running", snap.Status())
	assert.Equal(t, "staging", snap.Environment())
	assert.IsType(t, BackupSnapshotView{}, snap.Public())

	assert.Equal(t, "d1", drill.Key())
	assert.Equal(t, "passed", drill.Status())
	assert.Equal(t, "production", drill.Environment())
	assert.IsType(t, RecoveryDrillView{}, drill.Public())
}

func TestRecord_MismatchedKindIsEmpty(t *testing.T) {
	r := Record{Kind: KindRecoveryDrill, Snapshot: &BackupSnapshot{Key: "s1"}}
	assert.Equal(t, "", r.Key())
	assert.Nil(t, r.Public())

	assert.Equal(t, "", Record{Kind: "unknown"}.Status())
}
