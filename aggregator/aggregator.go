package aggregator

import (
	"agent-performance/errors"
	"agent-performance/metrics"
	"agent-performance/models"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultSuccessStatuses are the status labels counted as successful calls.
var DefaultSuccessStatuses = []string{"completed", "connected"}

// Aggregator summarises joined calls per (call_date, agent_id).
type Aggregator struct {
	success map[string]struct{}
	logger  zerolog.Logger
}

// New returns an Aggregator counting calls whose lowercased status is one of
// successStatuses (compared case-insensitively).
func New(successStatuses []string, logger zerolog.Logger) (*Aggregator, error) {
	success := make(map[string]struct{}, len(successStatuses))
	for _, s := range successStatuses {
		if s == "" {
			continue
		}
		success[strings.ToLower(s)] = struct{}{}
	}
	if len(success) == 0 {
		return nil, errors.ErrNoSuccessStatuses
	}
	return &Aggregator{
		success: success,
		logger:  logger.With().Str("component", "aggregator").Logger(),
	}, nil
}

type groupKey struct {
	date    string
	agentID string
}

// group accumulates one agent-day while rows stream in.
type group struct {
	summary     models.AgentDaySummary
	loans       map[string]struct{}
	durationSum float64
	durationN   int
}

// Summarize groups records by (call_date, agent_id), rows with a missing date forming
// their own group per agent. Output is sorted by date (missing last) then agent_id.
func (a *Aggregator) Summarize(records []models.JoinedRecord) []models.AgentDaySummary {
	start := time.Now()
	defer func() {
		metrics.AggregateDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	groups := make(map[groupKey]*group)
	for _, rec := range records {
		key := groupKey{rec.Call.CallDate.String(), rec.Call.AgentID}
		g, ok := groups[key]
		if !ok {
			g = &group{
				summary: models.AgentDaySummary{
					CallDate: rec.Call.CallDate,
					AgentID:  rec.Call.AgentID,
				},
				loans: make(map[string]struct{}),
			}
			groups[key] = g
		}
		a.add(g, rec)
	}

	summary := make([]models.AgentDaySummary, 0, len(groups))
	agents := make(map[string]struct{})
	for _, g := range groups {
		s := g.summary
		s.UniqueLoans = len(g.loans)
		if g.durationN > 0 {
			s.AvgDurationMin = models.NullFloat{Value: round(g.durationSum/float64(g.durationN), 2), Valid: true}
		}
		s.ConnectRate = round(float64(s.SuccessfulCalls)/float64(s.TotalCalls), 3)
		summary = append(summary, s)
		agents[s.AgentID] = struct{}{}
	}

	sort.SliceStable(summary, func(i, j int) bool {
		if summary[i].CallDate.String() != summary[j].CallDate.String() {
			return summary[i].CallDate.Before(summary[j].CallDate)
		}
		return summary[i].AgentID < summary[j].AgentID
	})

	metrics.SummaryRows.Set(float64(len(summary)))
	metrics.ActiveAgents.Set(float64(len(agents)))
	a.logger.Debug().
		Int("records", len(records)).
		Int("groups", len(summary)).
		Msg("aggregation complete")

	return summary
}

func (a *Aggregator) add(g *group, rec models.JoinedRecord) {
	s := &g.summary
	s.TotalCalls++

	if s.OrgID == "" {
		s.OrgID = rec.Call.OrgID
	}
	if rec.Agent != nil {
		s.FirstName = first(s.FirstName, rec.Agent.FirstName)
		s.LastName = first(s.LastName, rec.Agent.LastName)
		s.OfficeLocation = first(s.OfficeLocation, rec.Agent.OfficeLocation)
	}

	if !models.IsMissing(rec.Call.InstallmentID) {
		g.loans[rec.Call.InstallmentID] = struct{}{}
	}
	if _, ok := a.success[strings.ToLower(rec.Call.Status)]; ok && !models.IsMissing(rec.Call.Status) {
		s.SuccessfulCalls++
	}
	if rec.Call.Duration.Valid {
		g.durationSum += rec.Call.Duration.Value
		g.durationN++
	}
	if rec.Presence > s.Presence {
		s.Presence = rec.Presence
	}
}

// first keeps the current value unless it is still missing.
func first(current, candidate string) string {
	if current != "" {
		return current
	}
	return candidate
}

// round rounds half to even at the given number of decimals.
func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.RoundToEven(v*p) / p
}
