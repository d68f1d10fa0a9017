package joiner

import (
	"agent-performance/metrics"
	"agent-performance/models"
	"time"

	"github.com/rs/zerolog"
)

type agentKey struct {
	agentID string
	orgID   string
}

type dayKey struct {
	agentID string
	orgID   string
	date    string
}

// Join left-joins calls to the roster on (agent_id, org_id) and then to the
// disposition records on (agent_id, org_id, call_date). Every call yields exactly
// one JoinedRecord, in input order. Duplicate right-hand keys resolve to the first
// row; a missing call_date never matches.
func Join(calls []models.CallRecord, agents []models.AgentRecord, disposition []models.DispositionRecord, logger zerolog.Logger) []models.JoinedRecord {
	start := time.Now()
	defer func() {
		metrics.JoinDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	roster := indexAgents(agents)
	logins := indexDisposition(disposition)

	joined := make([]models.JoinedRecord, len(calls))
	missingMeta := 0
	presentCalls := 0
	for i, call := range calls {
		rec := models.JoinedRecord{Call: call}

		if agent, ok := roster[agentKey{call.AgentID, call.OrgID}]; ok {
			rec.Agent = agent
		}
		if rec.Agent == nil || models.IsMissing(rec.Agent.FirstName) {
			missingMeta++
		}

		if call.CallDate.Valid {
			if d, ok := logins[dayKey{call.AgentID, call.OrgID, call.CallDate.String()}]; ok {
				rec.LoginTime = d.LoginTime
			}
		}
		if !models.IsMissing(rec.LoginTime) {
			rec.Presence = 1
			presentCalls++
		}

		joined[i] = rec
	}

	if missingMeta > 0 {
		logger.Info().Int("calls", missingMeta).Msg("calls missing agent metadata")
	}
	metrics.CallsMissingMetadata.Set(float64(missingMeta))
	metrics.CallsWithPresence.Set(float64(presentCalls))

	return joined
}

func indexAgents(agents []models.AgentRecord) map[agentKey]*models.AgentRecord {
	idx := make(map[agentKey]*models.AgentRecord, len(agents))
	for i := range agents {
		key := agentKey{agents[i].AgentID, agents[i].OrgID}
		if _, exists := idx[key]; !exists {
			idx[key] = &agents[i]
		}
	}
	return idx
}

func indexDisposition(records []models.DispositionRecord) map[dayKey]models.DispositionRecord {
	idx := make(map[dayKey]models.DispositionRecord, len(records))
	for _, d := range records {
		if !d.CallDate.Valid {
			continue
		}
		key := dayKey{d.AgentID, d.OrgID, d.CallDate.String()}
		if _, exists := idx[key]; !exists {
			idx[key] = d
		}
	}
	return idx
}
