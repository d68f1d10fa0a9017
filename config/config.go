package config

import (
	"agent-performance/aggregator"
	"agent-performance/errors"
	"agent-performance/notifier"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. AGENTPERF_LOG_LEVEL.
const EnvPrefix = "AGENTPERF"

// Config holds all configuration for one pipeline run.
type Config struct {
	CallLogs        string
	AgentRoster     string
	Disposition     string
	Out             string
	Format          string
	LogLevel        string
	LogFile         string
	SlackWebhook    string
	NotifyTimeout   time.Duration
	SuccessStatuses []string
	MetricsAddr     string
	PushURL         string
	Wait            bool
}

var validFormats = map[string]bool{"csv": true, "json": true}

// Load builds the configuration from, in increasing precedence: defaults, the YAML
// file named by -config, environment (a .env file is loaded if present), and flags
// set explicitly in args.
func Load(args []string, output io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("agent-performance", flag.ContinueOnError)
	fs.SetOutput(output)

	// Define flags
	fs.String("call-logs", "", "Path to call_logs.csv (required)")
	fs.String("agent-roster", "", "Path to agent_roster.csv (required)")
	fs.String("disposition", "", "Path to disposition_summary.csv (required)")
	fs.String("out", "agent_performance_summary.csv", "Output file")
	fs.String("format", "csv", "Output format: csv|json")
	fs.String("log-level", "info", "Logging level: debug|info|warn|error")
	fs.String("log-file", "", "Append JSON logs to this file in addition to stdout")
	fs.String("slack-webhook", "", "Slack webhook URL (overrides SLACK_WEBHOOK_URL env)")
	fs.Duration("notify-timeout", notifier.DefaultTimeout, "Timeout for the webhook request")
	fs.String("success-statuses", strings.Join(aggregator.DefaultSuccessStatuses, ","), "Comma-separated status labels counted as successful calls")
	fs.String("metrics-addr", "", "Address to expose Prometheus metrics (e.g., :9090)")
	fs.String("push-url", "", "Pushgateway URL to push metrics to (e.g., http://localhost:9091)")
	fs.Bool("wait", false, "Keep process running after completion to allow for metric scraping")
	configFile := fs.String("config", "", "Optional YAML config file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	v := viper.New()
	fs.VisitAll(func(f *flag.Flag) {
		if f.Name != "config" {
			v.SetDefault(key(f.Name), f.DefValue)
		}
	})

	if *configFile != "" {
		v.SetConfigFile(*configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("slack_webhook", EnvPrefix+"_SLACK_WEBHOOK", "SLACK_WEBHOOK_URL"); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name != "config" {
			v.Set(key(f.Name), f.Value.String())
		}
	})

	cfg := &Config{
		CallLogs:        v.GetString("call_logs"),
		AgentRoster:     v.GetString("agent_roster"),
		Disposition:     v.GetString("disposition"),
		Out:             v.GetString("out"),
		Format:          strings.ToLower(v.GetString("format")),
		LogLevel:        strings.ToLower(v.GetString("log_level")),
		LogFile:         v.GetString("log_file"),
		SlackWebhook:    v.GetString("slack_webhook"),
		NotifyTimeout:   v.GetDuration("notify_timeout"),
		SuccessStatuses: splitList(v.Get("success_statuses")),
		MetricsAddr:     v.GetString("metrics_addr"),
		PushURL:         v.GetString("push_url"),
		Wait:            v.GetBool("wait"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks required inputs and enumerated values.
func (c *Config) Validate() error {
	for flagName, path := range map[string]string{
		"call-logs":    c.CallLogs,
		"agent-roster": c.AgentRoster,
		"disposition":  c.Disposition,
	} {
		if path == "" {
			return fmt.Errorf("-%s: %w", flagName, errors.ErrMissingInputPath)
		}
	}
	if !validFormats[c.Format] {
		return fmt.Errorf("%w: %q (want csv or json)", errors.ErrUnsupportedFormat, c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if len(c.SuccessStatuses) == 0 {
		return errors.ErrNoSuccessStatuses
	}
	if c.NotifyTimeout <= 0 {
		return fmt.Errorf("-notify-timeout %s: %w", c.NotifyTimeout, errors.ErrInvalidTimeout)
	}
	return nil
}

// Level returns the zerolog level named by LogLevel. "warning" is accepted for warn.
func (c *Config) Level() (zerolog.Level, error) {
	name := c.LogLevel
	if name == "warning" {
		name = "warn"
	}
	switch name {
	case "debug", "info", "warn", "error":
	default:
		return zerolog.NoLevel, fmt.Errorf("%w: %q", errors.ErrUnsupportedLogLevel, c.LogLevel)
	}
	return zerolog.ParseLevel(name)
}

// key maps a flag name to its viper key.
func key(flagName string) string {
	return strings.ReplaceAll(flagName, "-", "_")
}

// splitList accepts a comma-separated string or a YAML list.
func splitList(value interface{}) []string {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			raw = append(raw, fmt.Sprint(item))
		}
	}

	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
