package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/feedtap/internal/browser"
	"github.com/aleister1102/feedtap/internal/common"
	"github.com/aleister1102/feedtap/internal/config"
	"github.com/aleister1102/feedtap/internal/endpoint"
	"github.com/aleister1102/feedtap/internal/logger"
	"github.com/aleister1102/feedtap/internal/models"
	"github.com/aleister1102/feedtap/internal/monitor"
	"github.com/aleister1102/feedtap/internal/redact"

	"github.com/go-rod/rod"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Report is what one run prints or writes.
type Report struct {
	RunID        string                           `json:"run_id"`
	StartURL     string                           `json:"start_url"`
	WaitEndpoint endpoint.Endpoint                `json:"wait_endpoint"`
	Expected     int                              `json:"expected"`
	Satisfied    bool                             `json:"satisfied"`
	Attempts     int                              `json:"attempts"`
	Summary      monitor.Summary                  `json:"summary"`
	Notes        []models.Note                    `json:"notes"`
	Interactions []models.InteractionConfirmation `json:"interactions,omitempty"`
	Comments     []models.Comment                 `json:"comments,omitempty"`
}

func main() {
	flags, err := ParseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile, zerolog.Nop())
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not load global config using path '%s': %v", flags.GlobalConfigFile, err)
	}
	applyFlagOverrides(gCfg, flags)

	if err := config.ValidateConfig(gCfg); err != nil {
		log.Fatalf("[FATAL] Main: Configuration validation failed: %v", err)
	}

	runID := uuid.NewString()
	zLogger, err := logger.NewWithRunID(gCfg.LogConfig, runID)
	if err != nil {
		log.Fatalf("[FATAL] Main: Could not initialize logger: %v", err)
	}
	zLogger.Info().Msg("Logger initialized successfully.")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigChan:
			zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, stopping run...")
			cancel()
		case <-ctx.Done():
		}
	}()

	report, err := run(ctx, gCfg, flags, runID, zLogger)
	if err != nil {
		zLogger.Error().Err(err).Msg("Run failed")
		os.Exit(1)
	}

	if err := writeReport(report, gCfg.RunConfig.OutputFile, zLogger); err != nil {
		zLogger.Error().Err(err).Msg("Failed to write report")
		os.Exit(1)
	}
	if !report.Satisfied {
		os.Exit(3)
	}
}

// applyFlagOverrides lets command line flags take precedence over the config file.
func applyFlagOverrides(gCfg *config.GlobalConfig, flags AppFlags) {
	if flags.StartURL != "" {
		gCfg.RunConfig.StartURL = flags.StartURL
	}
	if flags.WaitEndpoint != "" {
		gCfg.RunConfig.WaitEndpoint = flags.WaitEndpoint
	}
	if flags.ExpectedCount > 0 {
		gCfg.RunConfig.ExpectedCount = flags.ExpectedCount
	}
	if flags.OutputFile != "" {
		gCfg.RunConfig.OutputFile = flags.OutputFile
	}
	if flags.WaitTimeoutSecs > 0 {
		gCfg.MonitorConfig.DefaultWaitTimeoutSecs = flags.WaitTimeoutSecs
	}
}

func run(ctx context.Context, gCfg *config.GlobalConfig, flags AppFlags, runID string, zLogger zerolog.Logger) (*Report, error) {
	runCfg := gCfg.RunConfig
	waitEndpoint, ok := endpoint.Parse(runCfg.WaitEndpoint)
	if !ok {
		return nil, common.NewValidationError("run_config.wait_endpoint", runCfg.WaitEndpoint, "unknown endpoint")
	}

	opts, err := monitor.OptionsFromConfig(&gCfg.MonitorConfig, zLogger)
	if err != nil {
		return nil, common.WrapError(err, "failed to build monitor options")
	}
	opts.OnInteraction = func(c models.InteractionConfirmation) {
		zLogger.Info().
			Str("action", c.Action.String()).
			Str("note_id", c.NoteID).
			Msg("Interaction confirmed")
	}
	redactor := opts.Redactor

	mon := monitor.NewMonitor(opts, zLogger)
	defer mon.Dispose()

	var cleanup []teardownStep
	defer func() {
		if err := teardown(cleanup); err != nil {
			zLogger.Warn().Err(err).Msg("Teardown incomplete")
		}
	}()

	manager := browser.NewManager(gCfg.BrowserConfig, zLogger)
	if err := manager.Start(); err != nil {
		return nil, common.WrapError(err, "failed to start browser")
	}
	cleanup = append(cleanup, teardownStep{name: "stop browser", fn: manager.Stop})

	page, err := manager.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	cleanup = append(cleanup, teardownStep{name: "close page", fn: page.Close})

	if !mon.SetupMonitor(browser.NewPageSource(page, zLogger), nil) {
		return nil, common.NewError("failed to set up response monitoring")
	}

	report := &Report{
		RunID:        runID,
		StartURL:     redactor.URL(runCfg.StartURL),
		WaitEndpoint: waitEndpoint,
		Expected:     runCfg.ExpectedCount,
	}

	maxAttempts := runCfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	waitTimeout := time.Duration(gCfg.MonitorConfig.DefaultWaitTimeoutSecs) * time.Second
	if waitTimeout <= 0 {
		waitTimeout = monitor.DefaultWaitTimeout
	}

	for attempt := 1; attempt <= maxAttempts && ctx.Err() == nil; attempt++ {
		report.Attempts = attempt
		// every attempt reloads the page so the feed requests are issued again
		if err := manager.Navigate(ctx, page, runCfg.StartURL); err != nil {
			zLogger.Warn().Err(err).Int("attempt", attempt).Msg("Navigation failed")
		}

		waitCtx, waitCancel := context.WithTimeout(ctx, waitTimeout)
		report.Satisfied = mon.WaitForResponsesContext(waitCtx, waitEndpoint, runCfg.ExpectedCount)
		waitCancel()
		if report.Satisfied {
			break
		}

		zLogger.Warn().
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Str("endpoint", waitEndpoint.String()).
			Int("captured", mon.ResponseCount(waitEndpoint)).
			Msg("Expected responses not captured, retrying")
	}

	if !report.Satisfied && flags.Timings {
		logResourceTimings(page, redactor, zLogger)
	}

	mon.StopMonitoring()
	report.Summary = mon.Summary()
	report.Notes = mon.GetAllEntities()
	for _, ep := range endpoint.All() {
		report.Interactions = append(report.Interactions, mon.GetInteractions(ep)...)
		report.Comments = append(report.Comments, mon.GetComments(ep)...)
	}

	zLogger.Info().
		Bool("satisfied", report.Satisfied).
		Int("attempts", report.Attempts).
		Int("notes", len(report.Notes)).
		Int("unique", report.Summary.Dedup.Unique).
		Int("duplicates", report.Summary.Dedup.Duplicates).
		Msg("Run finished")
	return report, nil
}

type teardownStep struct {
	name string
	fn   func() error
}

// teardown runs steps in reverse order of acquisition. Every step runs even
// when an earlier one fails.
func teardown(steps []teardownStep) error {
	var ec common.ErrorCollector
	for i := len(steps) - 1; i >= 0; i-- {
		ec.AddWithContext(steps[i].fn(), steps[i].name)
	}
	return ec.Error()
}

func logResourceTimings(page *rod.Page, redactor *redact.Redactor, zLogger zerolog.Logger) {
	timings, err := browser.ResourceTimings(page)
	if err != nil {
		zLogger.Warn().Err(err).Msg("Failed to read resource timings")
		return
	}
	apiCalls := browser.FilterTimings(timings, func(t browser.ResourceTiming) bool {
		return t.InitiatorType == "fetch" || t.InitiatorType == "xmlhttprequest"
	})
	for _, t := range apiCalls {
		zLogger.Info().
			Str("url", redactor.URL(t.Name)).
			Float64("duration_ms", t.DurationMs).
			Msg("Resource fetched")
	}
	zLogger.Info().Int("total", len(timings)).Int("api_calls", len(apiCalls)).Msg("Resource timing summary")
}

func writeReport(report *Report, outputFile string, zLogger zerolog.Logger) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return common.WrapError(err, "failed to marshal report")
	}
	if outputFile == "" {
		_, err := fmt.Fprintln(os.Stdout, string(data))
		return err
	}
	if err := common.NewFileManager(zLogger).WriteFile(outputFile, data, 0644); err != nil {
		return err
	}
	zLogger.Info().Str("path", outputFile).Msg("Report written")
	return nil
}
