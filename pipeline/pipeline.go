package pipeline

import (
	"agent-performance/aggregator"
	"agent-performance/joiner"
	"agent-performance/metrics"
	"agent-performance/models"
	"agent-performance/parser"
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Sources are the three raw input tables.
type Sources struct {
	CallLogs    io.Reader
	AgentRoster io.Reader
	Disposition io.Reader
}

// Paths are the three input files.
type Paths struct {
	CallLogs    string
	AgentRoster string
	Disposition string
}

// Result is the output of one run.
type Result struct {
	Summary    []models.AgentDaySummary
	ReportDate string
	Calls      int
	Joined     int
}

// Runner executes the load, join and aggregate stages for one batch.
type Runner struct {
	loader     *parser.Loader
	aggregator *aggregator.Aggregator
	logger     zerolog.Logger
	now        func() time.Time
}

// NewRunner builds a Runner counting successStatuses as successful calls.
func NewRunner(successStatuses []string, logger zerolog.Logger) (*Runner, error) {
	agg, err := aggregator.New(successStatuses, logger)
	if err != nil {
		return nil, err
	}
	return &Runner{
		loader:     parser.NewLoader(logger),
		aggregator: agg,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// RunFiles opens the input files and runs the pipeline over them.
func (r *Runner) RunFiles(paths Paths) (*Result, error) {
	calls, err := r.loader.LoadFile(paths.CallLogs, models.CallLogsSchema)
	if err != nil {
		return nil, err
	}
	roster, err := r.loader.LoadFile(paths.AgentRoster, models.AgentRosterSchema)
	if err != nil {
		return nil, err
	}
	disp, err := r.loader.LoadFile(paths.Disposition, models.DispositionSchema)
	if err != nil {
		return nil, err
	}
	return r.process(calls, roster, disp), nil
}

// Run loads the three sources and runs the pipeline. A schema or parse error on any
// input aborts before joining.
func (r *Runner) Run(src Sources) (*Result, error) {
	calls, err := r.loader.Load(src.CallLogs, models.CallLogsSchema)
	if err != nil {
		return nil, err
	}
	roster, err := r.loader.Load(src.AgentRoster, models.AgentRosterSchema)
	if err != nil {
		return nil, err
	}
	disp, err := r.loader.Load(src.Disposition, models.DispositionSchema)
	if err != nil {
		return nil, err
	}
	return r.process(calls, roster, disp), nil
}

func (r *Runner) process(callTable, rosterTable, dispTable *models.Table) *Result {
	metrics.ResetRunGauges()

	calls := parser.CallRecords(callTable)
	reportDate := ReportDate(calls, r.now())

	if n := countNonPositive(calls); n > 0 {
		r.logger.Warn().Int("rows", n).Msg("rows have non-positive duration")
		metrics.NonPositiveDurations.Set(float64(n))
	}

	joined := joiner.Join(calls, parser.AgentRecords(rosterTable), parser.DispositionRecords(dispTable), r.logger)
	summary := r.aggregator.Summarize(joined)

	r.logger.Info().
		Int("calls", len(calls)).
		Int("summary_rows", len(summary)).
		Str("report_date", reportDate).
		Msg("pipeline complete")

	return &Result{
		Summary:    summary,
		ReportDate: reportDate,
		Calls:      len(calls),
		Joined:     len(joined),
	}
}

// ReportDate is the latest valid call date, or now's date when no call has one.
func ReportDate(calls []models.CallRecord, now time.Time) string {
	var latest models.NullDate
	for _, c := range calls {
		if c.CallDate.Valid && (!latest.Valid || c.CallDate.Time.After(latest.Time)) {
			latest = c.CallDate
		}
	}
	if latest.Valid {
		return latest.String()
	}
	return now.Format(models.DateLayout)
}

func countNonPositive(calls []models.CallRecord) int {
	n := 0
	for _, c := range calls {
		if c.Duration.Valid && c.Duration.Value <= 0 {
			n++
		}
	}
	return n
}
