// Package cli implements the drowse command: load config and profiles,
// simulate every helper, export and archive the runs, print a report.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/pthm-cable/drowse/box"
	"github.com/pthm-cable/drowse/config"
	"github.com/pthm-cable/drowse/profile"
	"github.com/pthm-cable/drowse/sim"
	"github.com/pthm-cable/drowse/storage"
	"github.com/pthm-cable/drowse/telemetry"
)

// Config holds drowse command configuration.
type Config struct {
	ConfigPath  string `env:"DROWSE_CONFIG"`
	ProfilePath string `env:"DROWSE_PROFILE"`
	OutputDir   string `env:"DROWSE_OUTPUT_DIR"`
	DBPath      string `env:"DROWSE_DB"`
	LogLevel    string `env:"DROWSE_LOG_LEVEL"` // Empty uses telemetry.log_level
	Lang        string `env:"DROWSE_LANG" envDefault:"en"`
	ListRuns    int    `env:"DROWSE_LIST_RUNS"`
	ShowRun     int64  `env:"DROWSE_SHOW_RUN"`
}

// ParseConfig reads the environment, then lets flags override it.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "path to config.yaml (empty = use defaults)")
	fs.StringVar(&cfg.ProfilePath, "profile", cfg.ProfilePath, "path to the helper profile YAML")
	fs.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "output directory for CSV tables and config snapshot")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite file archiving runs (empty = disabled)")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.Lang, "lang", cfg.Lang, "language tag for report number formatting")
	fs.IntVar(&cfg.ListRuns, "list-runs", cfg.ListRuns, "list the N newest archived runs and exit")
	fs.Int64Var(&cfg.ShowRun, "show-run", cfg.ShowRun, "print one archived run and exit")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run executes the drowse command.
func Run(ctx context.Context, cfg Config, out io.Writer, errOut io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	if errOut == nil {
		errOut = io.Discard
	}

	if err := config.Init(cfg.ConfigPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gameCfg := config.Cfg()

	logger, err := newLogger(errOut, cfg.LogLevel, gameCfg.Telemetry.LogLevel)
	if err != nil {
		return err
	}
	rep := newReporter(out, cfg.Lang)

	if cfg.ListRuns > 0 || cfg.ShowRun > 0 {
		return archiveQuery(ctx, cfg, rep)
	}

	if strings.TrimSpace(cfg.ProfilePath) == "" {
		return errors.New("profile path is required")
	}
	file, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return err
	}

	curve, err := sim.CurveFromConfig(gameCfg)
	if err != nil {
		return fmt.Errorf("load curve: %w", err)
	}
	balance := sim.BalanceFromConfig(gameCfg)

	b := box.New(sim.Options{Balance: &balance})
	defer b.Close()
	for _, h := range file.Helpers {
		r, err := h.Resolve(gameCfg, curve)
		if err != nil {
			return err
		}
		b.Add(box.Member{Label: r.Label, Params: file.Parameters, Rates: r.Rates, Inventory: r.Inventory})
	}

	logger.Info("simulating",
		"helpers", len(file.Helpers),
		"curve_version", gameCfg.CurveVersion,
		"period_h", float64(file.Parameters.Period),
	)
	failed := b.RunAll()
	entries := b.Entries()

	om, err := telemetry.NewOutputManager(cfg.OutputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(gameCfg); err != nil {
		return fmt.Errorf("write config snapshot: %w", err)
	}

	var store *storage.Store
	if cfg.DBPath != "" {
		store, err = storage.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	for _, e := range entries {
		if e.Err != nil {
			logger.Error("simulation failed", "label", e.Member.Label, "error", e.Err)
			continue
		}
		logger.Info("simulated", "label", e.Member.Label, "elapsed", e.Elapsed, "result", e.Result)

		if err := om.WriteRun(e.Member.Label, e.Member.Params, e.Result); err != nil {
			return err
		}
		if store != nil {
			id, err := store.SaveRun(ctx, storage.Run{
				Label:     e.Member.Label,
				Params:    e.Member.Params,
				Rates:     e.Member.Rates,
				Inventory: e.Member.Inventory,
				Result:    e.Result,
			})
			if err != nil {
				return err
			}
			logger.Debug("archived run", "label", e.Member.Label, "id", id)
		}
	}

	rep.results(entries, gameCfg.Inventory.FillQuantiles)
	if len(entries) > 1 {
		rep.spread(b.EfficiencySpread())
	}
	if om != nil {
		logger.Info("wrote output", "dir", om.Dir())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d helpers failed", failed, len(entries))
	}
	return nil
}

func archiveQuery(ctx context.Context, cfg Config, rep *reporter) error {
	if cfg.DBPath == "" {
		return errors.New("db path is required to query archived runs")
	}
	store, err := storage.Open(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.ShowRun > 0 {
		run, err := store.GetRun(ctx, cfg.ShowRun)
		if err != nil {
			return fmt.Errorf("run %d: %w", cfg.ShowRun, err)
		}
		rep.run(run)
		return nil
	}

	runs, err := store.ListRuns(ctx, "", cfg.ListRuns)
	if err != nil {
		return err
	}
	rep.runs(runs)
	return nil
}

func newLogger(w io.Writer, flagLevel, cfgLevel string) (*slog.Logger, error) {
	levelName := flagLevel
	if levelName == "" {
		levelName = cfgLevel
	}
	var level slog.Level
	if levelName != "" {
		if err := level.UnmarshalText([]byte(levelName)); err != nil {
			return nil, fmt.Errorf("log level: %w", err)
		}
	}
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger, nil
}
