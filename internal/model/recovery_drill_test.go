package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecoveryDrill_Normalize(t *testing.T) {
	rto := -1
	dur := int64(-500)
	d := &RecoveryDrill{
		Key:               "Prod Ransomware Q4",
		Name:              "  Ransomware tabletop ",
		Scenario:          "alien_invasion",
		Status:            "",
		Environment:       "production",
		RTOMinutes:        &rto,
		RestoreDurationMs: &dur,
		IssuesFound:       []string{" dns ttl too long ", "", "  "},
	}
	d.Normalize()

	assert.Equal(t, "prod-ransomware-q4", d.Key)
	assert.Equal(t, "Ransomware tabletop", d.Name)
	assert.Equal(t, ScenarioRegionalOutage, d.Scenario)
	assert.Equal(t, DrillStatusScheduled, d.Status)
	assert.Nil(t, d.RTOMinutes)
	assert.Nil(t, d.RestoreDurationMs)
	assert.Equal(t, []string{"dns ttl too long"}, d.IssuesFound)
	assert.NotNil(t, d.Metadata)
}

func TestRecoveryDrill_Normalize_NilIssuesBecomeEmpty(t *testing.T) {
	d := &RecoveryDrill{}
	d.Normalize()
	assert.NotNil(t, d.IssuesFound)
	assert.Empty(t, d.IssuesFound)
}

func TestPublicDrill(t *testing.T) {
	start := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)
	rto := 20
	rpo := 15.0
	dur := int64(1_200_000)
	loss := int64(120)
	d := &RecoveryDrill{
		ID:                 3,
		Key:                "prod-ransomware-q4",
		Name:               "Ransomware",
		Scenario:           ScenarioRansomwareResponse,
		Status:             DrillStatusPassed,
		Environment:        "production",
		RTOMinutes:         &rto,
		RPOMinutes:         &rpo,
		RestoreStartedAt:   &start,
		RestoreCompletedAt: &end,
		RestoreDurationMs:  &dur,
		DataLossSeconds:    &loss,
	}

	v := PublicDrill(d)
	assert.Equal(t, 20, *v.Objectives.RTOMinutes)
	assert.Equal(t, 15.0, *v.Objectives.RPOMinutes)
	assert.Equal(t, int64(1_200_000), *v.Restore.DurationMs)
	assert.Equal(t, "2024-01-02T10:20:00.000Z", *v.RestoreCompletedAt)
	assert.Equal(t, []string{}, v.IssuesFound)

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"objectives":{"rtoMinutes":20,"rpoMinutes":15}`)
	assert.Contains(t, string(raw), `"restore":{"durationMs":1200000,"dataLossSeconds":120}`)
	assert.Contains(t, string(raw), `"evidenceUri":null`)
}
