package parser

import (
	"agent-performance/models"
	"strconv"
	"strings"
)

// CallRecords extracts typed call rows from a validated call-log table.
func CallRecords(t *models.Table) []models.CallRecord {
	cols := columnIndexes(t, models.CallLogsSchema.Required)
	records := make([]models.CallRecord, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = models.CallRecord{
			CallID:        row[cols["call_id"]],
			AgentID:       row[cols["agent_id"]],
			OrgID:         row[cols["org_id"]],
			InstallmentID: row[cols["installment_id"]],
			Status:        row[cols["status"]],
			Duration:      parseFloat(row[cols["duration"]]),
			CreatedTS:     row[cols["created_ts"]],
			CallDate:      t.Dates[i],
		}
	}
	return records
}

// AgentRecords extracts typed roster rows. Missing metadata cells become "".
func AgentRecords(t *models.Table) []models.AgentRecord {
	cols := columnIndexes(t, models.AgentRosterSchema.Required)
	records := make([]models.AgentRecord, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = models.AgentRecord{
			AgentID:        row[cols["agent_id"]],
			OrgID:          row[cols["org_id"]],
			FirstName:      present(row[cols["users_first_name"]]),
			LastName:       present(row[cols["users_last_name"]]),
			OfficeLocation: present(row[cols["users_office_location"]]),
		}
	}
	return records
}

// DispositionRecords extracts typed disposition rows.
func DispositionRecords(t *models.Table) []models.DispositionRecord {
	cols := columnIndexes(t, models.DispositionSchema.Required)
	records := make([]models.DispositionRecord, len(t.Rows))
	for i, row := range t.Rows {
		records[i] = models.DispositionRecord{
			AgentID:   row[cols["agent_id"]],
			OrgID:     row[cols["org_id"]],
			CallDate:  t.Dates[i],
			LoginTime: present(row[cols["login_time"]]),
		}
	}
	return records
}

func columnIndexes(t *models.Table, columns []string) map[string]int {
	idx := make(map[string]int, len(columns))
	for _, c := range columns {
		idx[c] = t.Index(c)
	}
	return idx
}

func present(value string) string {
	if models.IsMissing(value) {
		return ""
	}
	return value
}

func parseFloat(value string) models.NullFloat {
	if models.IsMissing(value) {
		return models.NullFloat{}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return models.NullFloat{}
	}
	return models.NullFloat{Value: f, Valid: true}
}
