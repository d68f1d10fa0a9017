package formatter

import (
	"agent-performance/models"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SummaryRow is the JSON shape of one agent-day; missing values encode as null.
type SummaryRow struct {
	CallDate        *string  `json:"call_date"`
	AgentID         string   `json:"agent_id"`
	FirstName       *string  `json:"users_first_name"`
	LastName        *string  `json:"users_last_name"`
	OfficeLocation  *string  `json:"users_office_location"`
	OrgID           string   `json:"org_id"`
	TotalCalls      int      `json:"total_calls"`
	UniqueLoans     int      `json:"unique_loans"`
	SuccessfulCalls int      `json:"successful_calls"`
	AvgDurationMin  *float64 `json:"avg_duration_min"`
	Presence        int      `json:"presence"`
	ConnectRate     float64  `json:"connect_rate"`
}

// FormatMessage returns the notification text for the summary of reportDate.
func FormatMessage(summary []models.AgentDaySummary, reportDate string) string {
	header := fmt.Sprintf("Agent Summary for %s", reportDate)
	if len(summary) == 0 {
		return header + "\nNo calls were logged."
	}

	top := summary[0]
	agents := make(map[string]struct{})
	var durationSum float64
	durationN := 0
	for _, s := range summary {
		if s.ConnectRate > top.ConnectRate {
			top = s
		}
		agents[s.AgentID] = struct{}{}
		if s.AvgDurationMin.Valid {
			durationSum += s.AvgDurationMin.Value
			durationN++
		}
	}

	avgDuration := "nan"
	if durationN > 0 {
		avgDuration = fmt.Sprintf("%.1f", durationSum/float64(durationN))
	}

	var sb strings.Builder
	sb.WriteString(header + "\n")
	sb.WriteString(fmt.Sprintf("*Top Performer*: %s (%.0f%% connect rate)\n", displayName(top), top.ConnectRate*100))
	sb.WriteString(fmt.Sprintf("*Total Active Agents*: %d\n", len(agents)))
	sb.WriteString(fmt.Sprintf("*Average Duration*: %s min", avgDuration))
	return sb.String()
}

// FormatCSV returns the CSV representation of the summary, header row first.
func FormatCSV(summary []models.AgentDaySummary) string {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	writer.Write(models.SummaryColumns)
	for _, s := range summary {
		writer.Write([]string{
			s.CallDate.String(),
			s.AgentID,
			s.FirstName,
			s.LastName,
			s.OfficeLocation,
			s.OrgID,
			strconv.Itoa(s.TotalCalls),
			strconv.Itoa(s.UniqueLoans),
			strconv.Itoa(s.SuccessfulCalls),
			formatNullFloat(s.AvgDurationMin),
			strconv.Itoa(s.Presence),
			formatFloat(s.ConnectRate),
		})
	}

	writer.Flush()
	return sb.String()
}

// FormatJSON returns the JSON representation of the summary.
func FormatJSON(summary []models.AgentDaySummary) string {
	rows := make([]SummaryRow, len(summary))
	for i, s := range summary {
		rows[i] = SummaryRow{
			CallDate:        optional(s.CallDate.String()),
			AgentID:         s.AgentID,
			FirstName:       optional(s.FirstName),
			LastName:        optional(s.LastName),
			OfficeLocation:  optional(s.OfficeLocation),
			OrgID:           s.OrgID,
			TotalCalls:      s.TotalCalls,
			UniqueLoans:     s.UniqueLoans,
			SuccessfulCalls: s.SuccessfulCalls,
			Presence:        s.Presence,
			ConnectRate:     s.ConnectRate,
		}
		if s.AvgDurationMin.Valid {
			v := s.AvgDurationMin.Value
			rows[i].AvgDurationMin = &v
		}
	}
	jsonBytes, _ := json.MarshalIndent(rows, "", "  ")
	return string(jsonBytes)
}

// displayName falls back to the agent id when the roster had no name.
func displayName(s models.AgentDaySummary) string {
	name := strings.TrimSpace(s.FirstName + " " + s.LastName)
	if name == "" {
		return s.AgentID
	}
	return name
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func formatNullFloat(v models.NullFloat) string {
	if !v.Valid {
		return ""
	}
	return formatFloat(v.Value)
}

// formatFloat keeps a trailing ".0" on whole numbers so float columns stay recognisable.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
