package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cdshelf/internal/catalog"
	"cdshelf/internal/config"
	"cdshelf/internal/preflight"
	"cdshelf/internal/slot"
)

type statusReport struct {
	ConfigPath  string             `json:"config_path"`
	Backend     string             `json:"backend"`
	DataDir     string             `json:"data_dir"`
	Checks      []preflight.Result `json:"checks"`
	Records     int                `json:"records"`
	Favorites   int                `json:"favorites"`
	LoadWarning string             `json:"load_warning,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show storage health and catalog summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := statusReport{
				ConfigPath: ctx.configPath,
				Backend:    cfg.Storage.Backend,
				DataDir:    cfg.Paths.DataDir,
				Records:    -1,
			}

			if cfg.Storage.Backend != config.BackendMemory {
				lock := preflight.CheckWriterLock(cfg.Paths.DataDir)
				report.Checks = append(report.Checks, lock)
				if !lock.Passed {
					report.Checks = append(report.Checks, preflight.RunAll(cmd.Context(), cfg, nil)...)
					return writeStatus(cmd, ctx, report)
				}
			}

			err = ctx.withSession(cmd, func(sl slot.Slot, store *catalog.Store) error {
				report.Checks = append(report.Checks, preflight.RunAll(cmd.Context(), cfg, sl)...)
				report.Records = store.Len()
				for _, r := range store.Records() {
					if r.Favorite {
						report.Favorites++
					}
				}
				if warn := store.LoadWarning(); warn != nil {
					report.LoadWarning = warn.Error()
				}
				return nil
			})
			if err != nil && !errors.Is(err, slot.ErrLocked) {
				return err
			}
			return writeStatus(cmd, ctx, report)
		},
	}
}

func writeStatus(cmd *cobra.Command, ctx *commandContext, report statusReport) error {
	if ctx.jsonOutput() {
		return writeJSON(cmd, report)
	}

	out := cmd.OutOrStdout()
	sheet := newStatusSheet(out)

	configDetail := report.ConfigPath
	if configDetail == "" {
		configDetail = "defaults"
	}
	sheet.section("Configuration")
	sheet.row("Config", levelInfo, configDetail)
	sheet.row("Backend", levelInfo, report.Backend)
	sheet.row("Data path", levelInfo, report.DataDir)

	sheet.section("Checks")
	sheet.checks(report.Checks)

	sheet.section("Catalog")
	if report.Records < 0 {
		sheet.row("Records", levelWarn, "unavailable")
	} else {
		sheet.row("Records", levelInfo, itoa(report.Records))
		sheet.row("Favorites", levelInfo, itoa(report.Favorites))
	}
	if report.LoadWarning != "" {
		sheet.row("Stored data", levelWarn, report.LoadWarning)
	}
	sheet.row("Healthy", healthLevel(report), yesNo(!preflight.Failed(report.Checks)))

	fmt.Fprintln(out, sheet.String())
	return nil
}

func healthLevel(report statusReport) level {
	if preflight.Failed(report.Checks) {
		return levelError
	}
	if report.LoadWarning != "" {
		return levelWarn
	}
	return levelOK
}
