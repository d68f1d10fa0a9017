package joiner_test

import (
	"bytes"
	"testing"
	"time"

	"agent-performance/joiner"
	"agent-performance/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoin(t *testing.T) {
	day := models.NewDate(2024, time.January, 5)
	nextDay := models.NewDate(2024, time.January, 6)

	agents := []models.AgentRecord{
		{AgentID: "A1", OrgID: "O1", FirstName: "Ada", LastName: "Lovelace", OfficeLocation: "London"},
		{AgentID: "A1", OrgID: "O1", FirstName: "Duplicate", LastName: "Row"},
		{AgentID: "A2", OrgID: "O2", FirstName: "Grace", LastName: "Hopper"},
	}
	disposition := []models.DispositionRecord{
		{AgentID: "A1", OrgID: "O1", CallDate: day, LoginTime: "09:00"},
		{AgentID: "A1", OrgID: "O1", CallDate: nextDay},
		{AgentID: "A3", OrgID: "O1", LoginTime: "09:00"},
	}

	tests := map[string]struct {
		call          models.CallRecord
		expectedAgent *models.AgentRecord
		presence      int
	}{
		"MatchedAgentLoggedIn": {
			call:          models.CallRecord{CallID: "c1", AgentID: "A1", OrgID: "O1", CallDate: day},
			expectedAgent: &agents[0],
			presence:      1,
		},
		"MatchedAgentNoLoginTime": {
			call:          models.CallRecord{CallID: "c2", AgentID: "A1", OrgID: "O1", CallDate: nextDay},
			expectedAgent: &agents[0],
			presence:      0,
		},
		"OrgMismatchHasNoMetadata": {
			call:     models.CallRecord{CallID: "c3", AgentID: "A2", OrgID: "O1", CallDate: day},
			presence: 0,
		},
		"MissingDateNeverMatchesMissingDate": {
			call:     models.CallRecord{CallID: "c4", AgentID: "A3", OrgID: "O1"},
			presence: 0,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := joiner.Join([]models.CallRecord{tt.call}, agents, disposition, zerolog.Nop())
			require.Len(t, got, 1)
			assert.Equal(t, tt.call, got[0].Call)
			assert.Equal(t, tt.expectedAgent, got[0].Agent)
			assert.Equal(t, tt.presence, got[0].Presence)
		})
	}
}

func TestJoin_PreservesRowCountAndOrder(t *testing.T) {
	day := models.NewDate(2024, time.January, 5)
	calls := []models.CallRecord{
		{CallID: "c1", AgentID: "A1", OrgID: "O1", CallDate: day},
		{CallID: "c2", AgentID: "ghost", OrgID: "O1", CallDate: day},
		{CallID: "c3", AgentID: "A1", OrgID: "O1"},
		{CallID: "c1", AgentID: "A1", OrgID: "O1", CallDate: day},
	}

	for name, agents := range map[string][]models.AgentRecord{
		"EmptyRoster": nil,
		"DuplicatedRoster": {
			{AgentID: "A1", OrgID: "O1", FirstName: "Ada"},
			{AgentID: "A1", OrgID: "O1", FirstName: "Ada"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := joiner.Join(calls, agents, nil, zerolog.Nop())
			require.Len(t, got, len(calls))
			for i := range calls {
				assert.Equal(t, calls[i], got[i].Call)
			}
		})
	}
}

func TestJoin_LogsMissingMetadataAtInfo(t *testing.T) {
	var buf bytes.Buffer
	calls := []models.CallRecord{
		{CallID: "c1", AgentID: "A1", OrgID: "O1"},
		{CallID: "c2", AgentID: "A2", OrgID: "O1"},
	}
	agents := []models.AgentRecord{{AgentID: "A1", OrgID: "O1", FirstName: "Ada"}}

	joiner.Join(calls, agents, nil, zerolog.New(&buf))

	assert.Contains(t, buf.String(), `"level":"info"`)
	assert.Contains(t, buf.String(), `"calls":1`)
	assert.Contains(t, buf.String(), "calls missing agent metadata")
}
