package models

import "time"

// DateLayout is the canonical calendar-date representation used for join keys and output.
const DateLayout = "2006-01-02"

// NullDate is a calendar date that may be missing (an unparseable or absent call_date).
type NullDate struct {
	Time  time.Time
	Valid bool
}

// NewDate returns a valid NullDate truncated to midnight UTC.
func NewDate(year int, month time.Month, day int) NullDate {
	return NullDate{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

// String returns the date as YYYY-MM-DD, or "" when missing.
func (d NullDate) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format(DateLayout)
}

// Before orders valid dates chronologically and missing dates last.
func (d NullDate) Before(other NullDate) bool {
	switch {
	case d.Valid && other.Valid:
		return d.Time.Before(other.Time)
	case d.Valid:
		return true
	default:
		return false
	}
}

// NullFloat is a numeric value that may be missing.
type NullFloat struct {
	Value float64
	Valid bool
}

// Schema names an input table and the columns it must carry.
type Schema struct {
	Name     string
	Required []string
	// DayFirstDates selects day-month-year parsing for call_date; otherwise year-month-day.
	DayFirstDates bool
}

// Input schemas for the three source tables.
var (
	CallLogsSchema = Schema{
		Name: "Call Logs",
		Required: []string{
			"call_id", "agent_id", "org_id", "installment_id",
			"status", "duration", "created_ts", "call_date",
		},
		DayFirstDates: true,
	}
	AgentRosterSchema = Schema{
		Name: "Agent Roster",
		Required: []string{
			"agent_id", "users_first_name", "users_last_name",
			"users_office_location", "org_id",
		},
	}
	DispositionSchema = Schema{
		Name:     "Disposition Summary",
		Required: []string{"agent_id", "org_id", "call_date", "login_time"},
	}
)

// Table is a validated, normalised input table. Rows hold cell values in Columns order;
// when the table has a call_date column its cells are rewritten to YYYY-MM-DD (or "")
// and Dates carries the parsed value per row.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
	Dates   []NullDate
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// CallRecord is one row of the call log.
type CallRecord struct {
	CallID        string
	AgentID       string
	OrgID         string
	InstallmentID string
	Status        string
	Duration      NullFloat
	CreatedTS     string
	CallDate      NullDate
}

// AgentRecord is one row of the agent roster. Empty strings mean missing values.
type AgentRecord struct {
	AgentID        string
	OrgID          string
	FirstName      string
	LastName       string
	OfficeLocation string
}

// DispositionRecord is an agent's login record for one calendar day.
type DispositionRecord struct {
	AgentID   string
	OrgID     string
	CallDate  NullDate
	LoginTime string
}

// LoggedIn reports whether a login time was recorded.
func (d DispositionRecord) LoggedIn() bool {
	return !IsMissing(d.LoginTime)
}

// JoinedRecord is a call enriched with roster metadata and the day's presence flag.
type JoinedRecord struct {
	Call CallRecord
	// Agent is nil when the roster has no row for (agent_id, org_id).
	Agent     *AgentRecord
	LoginTime string
	Presence  int
}

// AgentDaySummary is the per (call_date, agent_id) performance row.
type AgentDaySummary struct {
	CallDate        NullDate
	AgentID         string
	FirstName       string
	LastName        string
	OfficeLocation  string
	OrgID           string
	TotalCalls      int
	UniqueLoans     int
	SuccessfulCalls int
	AvgDurationMin  NullFloat
	Presence        int
	ConnectRate     float64
}

// SummaryColumns is the header of the summary artifact.
var SummaryColumns = []string{
	"call_date", "agent_id", "users_first_name", "users_last_name",
	"users_office_location", "org_id", "total_calls", "unique_loans",
	"successful_calls", "avg_duration_min", "presence", "connect_rate",
}

var missingTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "<NA>": {},
	"1.#IND": {}, "1.#QNAN": {}, "-1.#IND": {}, "-1.#QNAN": {},
}

// IsMissing reports whether a raw cell value denotes a missing value.
func IsMissing(value string) bool {
	_, ok := missingTokens[value]
	return ok
}
