package main

import (
	"agent-performance/config"
	apperrors "agent-performance/errors"
	"agent-performance/formatter"
	"agent-performance/metrics"
	"agent-performance/notifier"
	"agent-performance/pipeline"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	// Start metrics server if address provided
	if cfg.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
			logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
			if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil {
				logger.Error().Err(err).Msg("metrics server error")
			}
		}()
	}

	if err := run(cfg, logger, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("pipeline failed")
		closeLog()
		os.Exit(1)
	}

	// Handle metrics pushing or waiting
	if cfg.PushURL != "" {
		jobName := "agent_performance"
		if err := push.New(cfg.PushURL, jobName).Gatherer(metrics.Registry).Push(); err != nil {
			logger.Error().Err(err).Msg("error pushing to Pushgateway")
		} else {
			logger.Info().Msg("metrics successfully pushed to Pushgateway")
		}
	}

	if cfg.Wait && cfg.MetricsAddr != "" {
		logger.Info().Msg("process kept alive for metric scraping, press Ctrl+C to exit")
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
	} else if cfg.MetricsAddr != "" && cfg.PushURL == "" {
		// Small delay to allow a final scrape; batch runs should prefer the pushgateway
		time.Sleep(100 * time.Millisecond)
	}
}

// run executes one batch: build the summary, write it, print and deliver the message.
// Only load failures are returned; delivery problems are logged.
func run(cfg *config.Config, logger zerolog.Logger, stdout io.Writer) error {
	runner, err := pipeline.NewRunner(cfg.SuccessStatuses, logger)
	if err != nil {
		return err
	}

	result, err := runner.RunFiles(pipeline.Paths{
		CallLogs:    cfg.CallLogs,
		AgentRoster: cfg.AgentRoster,
		Disposition: cfg.Disposition,
	})
	if err != nil {
		return err
	}

	var artifact string
	switch cfg.Format {
	case "json":
		artifact = formatter.FormatJSON(result.Summary)
	default: // "csv"
		artifact = formatter.FormatCSV(result.Summary)
	}
	if dir := filepath.Dir(cfg.Out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cfg.Out, []byte(artifact), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	logger.Info().Str("path", cfg.Out).Int("rows", len(result.Summary)).Msg("report written")

	msg := formatter.FormatMessage(result.Summary, result.ReportDate)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.NotifyTimeout)
	defer cancel()
	slack := notifier.NewSlack(cfg.SlackWebhook, cfg.NotifyTimeout, logger)
	if err := slack.Send(ctx, msg); err != nil {
		logDeliveryError(logger, err)
	}

	fmt.Fprintf(stdout, "\n%s\n\n", msg)
	return nil
}

func logDeliveryError(logger zerolog.Logger, err error) {
	var de *apperrors.DeliveryError
	if errors.As(err, &de) && errors.Is(err, apperrors.ErrDeliveryRejected) {
		logger.Warn().Int("status", de.StatusCode).Str("body", de.Body).Msg("slack notification issue")
		return
	}
	logger.Error().Err(err).Msg("error sending slack notification")
}

// newLogger builds the run-scoped logger: console on stdout plus an optional JSON file.
func newLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return zerolog.Nop(), func() {}, err
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	closeFn := func() {}
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Nop(), closeFn, err
		}
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, err
		}
		out = zerolog.MultiLevelWriter(out, f)
		closeFn = func() { _ = f.Close() }
	}

	logger := zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()
	return logger, closeFn, nil
}
