package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/edvin/drtrack/internal/core"
)

func TestOverviewGet(t *testing.T) {
	svc := &mockOverview{}
	svc.On("Get", mock.Anything).Return(&core.Overview{
		Backups: core.BackupOverview{Summary: core.BackupHealthSummary{Total: 3, Unhealthy: 1}},
		Drills:  core.DrillOverview{Summary: core.DrillReadinessSummary{Total: 1, PassedWithinQuarter: 1}},
	}, nil)

	rec := httptest.NewRecorder()
	NewOverview(svc).Get(rec, newRequest(http.MethodGet, "/overview", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3.0, body["backups"]["summary"]["total"])
	assert.Equal(t, 1.0, body["drills"]["summary"]["passedWithinQuarter"])
}

func TestOverviewGet_Error(t *testing.T) {
	svc := &mockOverview{}
	svc.On("Get", mock.Anything).Return(nil, errors.New("list snapshots: timeout"))

	rec := httptest.NewRecorder()
	NewOverview(svc).Get(rec, newRequest(http.MethodGet, "/overview", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
