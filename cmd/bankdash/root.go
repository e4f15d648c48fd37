package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aristath/bankdash/internal/config"
	"github.com/aristath/bankdash/internal/dashboard"
	"github.com/aristath/bankdash/internal/di"
	"github.com/aristath/bankdash/internal/events"
	"github.com/aristath/bankdash/pkg/logger"
	"github.com/spf13/cobra"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("reported")

type globalOptions struct {
	apiURL   string
	timeout  time.Duration
	logLevel string
	out      io.Writer
	errOut   io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &globalOptions{out: out, errOut: errOut}
	defaults := config.FromEnv()

	rootCmd := &cobra.Command{
		Use:           "bankdash",
		Short:         "Query the banking transactions API the way the dashboard does",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", defaults.API.BaseURL, "banking API base URL")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaults.API.Timeout, "per-request timeout")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(dashboardCmd(opts))
	rootCmd.AddCommand(transactionsCmd(opts))
	rootCmd.AddCommand(customersCmd(opts))
	rootCmd.AddCommand(fraudCmd(opts))
	rootCmd.AddCommand(statsCmd(opts))
	rootCmd.AddCommand(predictCmd(opts))

	return rootCmd
}

// orchestrator builds a single-use orchestrator from the environment and flags.
func (o *globalOptions) orchestrator() (*dashboard.Orchestrator, error) {
	cfg := config.FromEnv()
	cfg.API.BaseURL = o.apiURL
	cfg.API.Timeout = o.timeout
	cfg.LogLevel = o.logLevel
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true, Output: o.errOut})
	container, _, err := di.Wire(cfg, log)
	if err != nil {
		return nil, err
	}
	return di.NewOrchestrator(container, events.NewBus(), log), nil
}

// report prints the published error message, or view of the snapshot as indented JSON.
func (o *globalOptions) report(orch *dashboard.Orchestrator, view func(s dashboard.State) any) error {
	s := orch.Snapshot()
	if s.ErrorMessage != "" {
		fmt.Fprintln(o.errOut, s.ErrorMessage)
		return errReported
	}

	data, err := json.MarshalIndent(view(s), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	fmt.Fprintln(o.out, string(data))
	return nil
}
