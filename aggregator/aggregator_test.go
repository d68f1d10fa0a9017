package aggregator_test

import (
	"testing"
	"time"

	"agent-performance/aggregator"
	"agent-performance/errors"
	"agent-performance/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func minutes(v float64) models.NullFloat {
	return models.NullFloat{Value: v, Valid: true}
}

func newAggregator(t *testing.T, statuses ...string) *aggregator.Aggregator {
	t.Helper()
	if len(statuses) == 0 {
		statuses = aggregator.DefaultSuccessStatuses
	}
	agg, err := aggregator.New(statuses, zerolog.Nop())
	require.NoError(t, err)
	return agg
}

func TestSummarize(t *testing.T) {
	day := models.NewDate(2024, time.January, 5)
	ada := &models.AgentRecord{AgentID: "A1", OrgID: "O1", FirstName: "Ada", LastName: "Lovelace", OfficeLocation: "London"}

	tests := map[string]struct {
		input    []models.JoinedRecord
		expected []models.AgentDaySummary
	}{
		"ThreeCallsOneAgentDay": {
			input: []models.JoinedRecord{
				{Call: models.CallRecord{CallID: "c1", AgentID: "A1", OrgID: "O1", InstallmentID: "L1", Status: "Completed", Duration: minutes(5), CallDate: day}, Agent: ada, Presence: 1},
				{Call: models.CallRecord{CallID: "c2", AgentID: "A1", OrgID: "O1", InstallmentID: "L1", Status: "no_answer", Duration: minutes(0), CallDate: day}, Agent: ada, Presence: 1},
				{Call: models.CallRecord{CallID: "c3", AgentID: "A1", OrgID: "O1", InstallmentID: "L2", Status: "Connected", Duration: minutes(10), CallDate: day}, Agent: ada, Presence: 1},
			},
			expected: []models.AgentDaySummary{
				{
					CallDate:        day,
					AgentID:         "A1",
					FirstName:       "Ada",
					LastName:        "Lovelace",
					OfficeLocation:  "London",
					OrgID:           "O1",
					TotalCalls:      3,
					UniqueLoans:     2,
					SuccessfulCalls: 2,
					AvgDurationMin:  minutes(5),
					Presence:        1,
					ConnectRate:     0.667,
				},
			},
		},
		"MissingRosterStillCounted": {
			input: []models.JoinedRecord{
				{Call: models.CallRecord{CallID: "c1", AgentID: "ghost", OrgID: "O9", InstallmentID: "", Status: "busy", Duration: minutes(1.234), CallDate: day}},
			},
			expected: []models.AgentDaySummary{
				{
					CallDate:       day,
					AgentID:        "ghost",
					OrgID:          "O9",
					TotalCalls:     1,
					AvgDurationMin: minutes(1.23),
				},
			},
		},
		"PresenceIsMaxAcrossGroup": {
			input: []models.JoinedRecord{
				{Call: models.CallRecord{CallID: "c1", AgentID: "A1", OrgID: "O1", Status: "completed", CallDate: day}, Presence: 0},
				{Call: models.CallRecord{CallID: "c2", AgentID: "A1", OrgID: "O1", Status: "COMPLETED", CallDate: day}, Presence: 1},
			},
			expected: []models.AgentDaySummary{
				{CallDate: day, AgentID: "A1", OrgID: "O1", TotalCalls: 2, SuccessfulCalls: 2, Presence: 1, ConnectRate: 1},
			},
		},
		"FirstNonMissingMetadataWins": {
			input: []models.JoinedRecord{
				{Call: models.CallRecord{CallID: "c1", AgentID: "A1", OrgID: "O1", CallDate: day}},
				{Call: models.CallRecord{CallID: "c2", AgentID: "A1", OrgID: "O1", CallDate: day}, Agent: ada},
				{Call: models.CallRecord{CallID: "c3", AgentID: "A1", OrgID: "O1", CallDate: day}, Agent: &models.AgentRecord{FirstName: "Other"}},
			},
			expected: []models.AgentDaySummary{
				{CallDate: day, AgentID: "A1", FirstName: "Ada", LastName: "Lovelace", OfficeLocation: "London", OrgID: "O1", TotalCalls: 3},
			},
		},
		"NullDatesFormOwnGroupSortedLast": {
			input: []models.JoinedRecord{
				{Call: models.CallRecord{CallID: "c1", AgentID: "B", OrgID: "O1"}},
				{Call: models.CallRecord{CallID: "c2", AgentID: "B", OrgID: "O1", CallDate: day}},
				{Call: models.CallRecord{CallID: "c3", AgentID: "A", OrgID: "O1", CallDate: models.NewDate(2024, time.January, 6)}},
				{Call: models.CallRecord{CallID: "c4", AgentID: "A", OrgID: "O1", CallDate: day}},
				{Call: models.CallRecord{CallID: "c5", AgentID: "B", OrgID: "O1"}},
			},
			expected: []models.AgentDaySummary{
				{CallDate: day, AgentID: "A", OrgID: "O1", TotalCalls: 1},
				{CallDate: day, AgentID: "B", OrgID: "O1", TotalCalls: 1},
				{CallDate: models.NewDate(2024, time.January, 6), AgentID: "A", OrgID: "O1", TotalCalls: 1},
				{AgentID: "B", OrgID: "O1", TotalCalls: 2},
			},
		},
		"EmptyInput": {
			input:    nil,
			expected: []models.AgentDaySummary{},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := newAggregator(t).Summarize(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSummarize_Invariants(t *testing.T) {
	statuses := []string{"Completed", "no_answer", "CONNECTED", "busy", ""}
	var records []models.JoinedRecord
	for i := 0; i < 50; i++ {
		date := models.NewDate(2024, time.January, 1+i%4)
		if i%7 == 0 {
			date = models.NullDate{}
		}
		records = append(records, models.JoinedRecord{
			Call: models.CallRecord{
				CallID:   string(rune('a' + i%26)),
				AgentID:  []string{"A1", "A2", "A3"}[i%3],
				OrgID:    "O1",
				Status:   statuses[i%len(statuses)],
				Duration: minutes(float64(i % 9)),
				CallDate: date,
			},
			Presence: i % 2,
		})
	}

	summary := newAggregator(t).Summarize(records)

	total := 0
	for _, s := range summary {
		total += s.TotalCalls
		assert.GreaterOrEqual(t, s.TotalCalls, 1)
		assert.GreaterOrEqual(t, s.ConnectRate, 0.0)
		assert.LessOrEqual(t, s.ConnectRate, 1.0)
		assert.Contains(t, []int{0, 1}, s.Presence)
		if s.SuccessfulCalls == 0 {
			assert.Equal(t, 0.0, s.ConnectRate)
		}
	}
	assert.Equal(t, len(records), total)
}

func TestNew_SuccessStatuses(t *testing.T) {
	day := models.NewDate(2024, time.January, 5)
	records := []models.JoinedRecord{
		{Call: models.CallRecord{AgentID: "A1", Status: "Completed", CallDate: day}},
		{Call: models.CallRecord{AgentID: "A1", Status: "Promise_To_Pay", CallDate: day}},
	}

	got := newAggregator(t, "PROMISE_TO_PAY").Summarize(records)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].SuccessfulCalls)
	assert.Equal(t, 0.5, got[0].ConnectRate)

	_, err := aggregator.New([]string{""}, zerolog.Nop())
	assert.ErrorIs(t, err, errors.ErrNoSuccessStatuses)
}
