package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/config"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/domain/repository"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/infrastructure/resilience"
	"github.com/vikash-mehta62/radiology-final-09-sub003/internal/prober"
)

type app struct {
	stdout   io.Writer
	deps     deps
	exitCode int

	envFile string
	target  string
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "visionprobe",
		Short:         "Check connectivity to the AI vision services",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          a.runCheck,
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "dotenv file to read (default .env)")
	root.PersistentFlags().StringVar(&a.target, "target", "", "service to check: gemini, medsiglip or all (overrides VP_TARGET)")

	root.AddCommand(a.watchCommand(), a.historyCommand())
	return root
}

func (a *app) loadConfig() (*config.Config, error) {
	var overrides map[string]string
	if a.target != "" {
		overrides = map[string]string{"VP_TARGET": a.target}
	}
	return config.Load(a.envFile, overrides)
}

// setup loads and validates config, then builds probers sharing an optional history store.
func (a *app) setup(ctx context.Context, wrap func(*config.Config, repository.ConnectionTester) repository.ConnectionTester) (*config.Config, []*prober.Prober, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	var opts []prober.Option
	var history repository.HistoryRepository
	if cfg.HistoryDSN != "" {
		history, err = a.deps.openHistory(ctx, cfg.HistoryDSN)
		if err != nil {
			// History is auxiliary; the check still runs without it.
			log.Printf("[History] ⚠️ Disabled: %v", err)
		} else {
			opts = append(opts, prober.WithHistory(history))
		}
	}

	targets, err := a.deps.buildTargets(ctx, cfg)
	if err != nil {
		if history != nil {
			_ = history.Close()
		}
		return nil, nil, nil, err
	}

	probers := make([]*prober.Prober, 0, len(targets))
	for _, t := range targets {
		tester := t.tester
		if wrap != nil {
			tester = wrap(cfg, tester)
		}
		probers = append(probers, prober.New(t.name, tester, opts...))
	}

	cleanup := func() {
		for _, t := range targets {
			if t.close == nil {
				continue
			}
			if err := t.close(); err != nil {
				log.Printf("[System] ⚠️ Failed to close %s client: %v", t.name, err)
			}
		}
		if history != nil {
			if err := history.Close(); err != nil {
				log.Printf("[History] ⚠️ Failed to close store: %v", err)
			}
		}
	}
	return cfg, probers, cleanup, nil
}

func (a *app) runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, probers, cleanup, err := a.setup(ctx, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	if timeout := cfg.RequestTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	title := "Testing Gemini Vision API Connection"
	switch cfg.Target {
	case config.TargetMedSigLIP:
		title = "Testing MedSigLIP Service Connection"
	case config.TargetAll:
		title = "Testing AI Vision Service Connections"
	}

	runner := &prober.Runner{Out: a.stdout, Title: title}
	_, a.exitCode = runner.Run(ctx, probers...)
	return nil
}

func (a *app) watchCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Repeat the connectivity check until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			guard := func(cfg *config.Config, t repository.ConnectionTester) repository.ConnectionTester {
				return resilience.Guard(t, resilience.NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerOpenTimeout()))
			}
			cfg, probers, cleanup, err := a.setup(cmd.Context(), guard)
			if err != nil {
				return err
			}
			defer cleanup()

			if interval <= 0 {
				interval = cfg.WatchInterval()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := &prober.Watcher{Out: a.stdout, Interval: interval, Probers: probers}
			w.Run(ctx)
			a.exitCode = 0
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between checks (default VP_WATCH_INTERVAL_SEC)")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded connectivity check outcomes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if cfg.HistoryDSN == "" {
				return errors.New("VP_HISTORY_DSN is not set")
			}

			filter, err := historyFilter(cfg.Target, cmd.Flags().Changed("target"))
			if err != nil {
				return err
			}

			store, err := a.deps.openHistory(cmd.Context(), cfg.HistoryDSN)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			records, err := store.Recent(cmd.Context(), filter, limit)
			if err != nil {
				return err
			}

			printHistory(a.stdout, records)
			a.exitCode = 0
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of records to show")
	return cmd
}

// historyFilter maps the --target flag to a store filter; "all" matches every target.
func historyFilter(target string, explicit bool) (string, error) {
	if !explicit {
		return "", nil
	}
	switch target {
	case config.TargetGemini, config.TargetMedSigLIP:
		return target, nil
	case config.TargetAll:
		return "", nil
	default:
		return "", fmt.Errorf("--target must be one of %s, %s, %s (got %q)", config.TargetGemini, config.TargetMedSigLIP, config.TargetAll, target)
	}
}

func printHistory(w io.Writer, records []repository.ProbeRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No connectivity checks recorded yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CHECKED AT\tTARGET\tRESULT\tLATENCY\tDETAIL")
	for _, r := range records {
		mark := "✅"
		detail := r.Model
		if !r.Success() {
			mark = "❌"
			detail = r.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\n",
			r.CheckedAt.Local().Format(time.RFC3339), r.Target, mark, r.Kind, r.Latency, detail)
	}
	_ = tw.Flush()
}
