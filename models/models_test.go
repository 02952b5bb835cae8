package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCaseStatus(t *testing.T) {
	s, err := ParseCaseStatus(" in_progress ")
	require.NoError(t, err)
	assert.Equal(t, CaseStatusInProgress, s)

	s, err = ParseCaseStatus("")
	require.NoError(t, err)
	assert.Equal(t, CaseStatus(""), s)

	_, err = ParseCaseStatus("DONE")
	assert.Error(t, err)
}

func TestCaseStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to CaseStatus
		ok       bool
	}{
		{CaseStatusPlanned, CaseStatusInProgress, true},
		{CaseStatusPlanned, CaseStatusCompleted, true},
		{CaseStatusInProgress, CaseStatusCancelled, true},
		{CaseStatusInProgress, CaseStatusPlanned, false},
		{CaseStatusCompleted, CaseStatusInProgress, false},
		{CaseStatusCompleted, CaseStatusCompleted, true},
		{CaseStatusCancelled, CaseStatusPlanned, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
	assert.True(t, CaseStatusCancelled.Terminal())
	assert.False(t, CaseStatusInProgress.Terminal())
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-15"`), &d))
	assert.Equal(t, "2024-01-15", d.String())
	assert.Equal(t, "2024-01-01", d.AddDays(-14).String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-15"`, string(out))

	out, err = json.Marshal(Date{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	assert.Error(t, json.Unmarshal([]byte(`"15/01/2024"`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 2, 26, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-02-26", d.String())

	require.NoError(t, d.Scan([]byte("2025-01-14T00:00:00Z")))
	assert.Equal(t, "2025-01-14", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
