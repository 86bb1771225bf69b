package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cdshelf/internal/catalog"
	"cdshelf/internal/config"
	"cdshelf/internal/logging"
	"cdshelf/internal/slot"
)

type commandContext struct {
	configFlag  *string
	jsonFlag    *bool
	verboseFlag *bool

	configOnce sync.Once
	config     *config.Config
	configPath string
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		jsonFlag:    jsonFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, _, err := config.Load(c.configFlagValue())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
	})
	return c.config, c.configErr
}

func (c *commandContext) configFlagValue() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// ensureLogger builds the command logger. Logs go to the log file; stderr
// only receives them with --verbose so command output stays clean.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		outputs := []string{filepath.Join(cfg.Paths.LogDir, logging.LogFileName)}
		if c.verboseFlag != nil && *c.verboseFlag {
			outputs = append(outputs, "stderr")
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: outputs,
		})
		if err != nil {
			c.loggerErr = fmt.Errorf("init logger: %w", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) formatter() (*catalog.Formatter, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return catalog.NewFormatter(cfg.Language(), cfg.Display.CurrencySymbol, cfg.Display.FavoriteMarker), nil
}

// withSession takes the writer lock, opens the slot and loads the catalog
// for the duration of fn.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(slot.Slot, *catalog.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	var lock *slot.Lock
	if cfg.Storage.Backend != config.BackendMemory {
		lock, err = slot.AcquireLock(cfg.Paths.DataDir)
		if err != nil {
			return err
		}
		defer lock.Release()
	}

	sl, err := slot.Open(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer sl.Close()

	store, err := catalog.New(sl,
		catalog.WithLogger(logger),
		catalog.WithLocale(cfg.Language()),
		catalog.WithIndent(cfg.Export.Indent),
	)
	if err != nil {
		return err
	}
	if err := store.Load(cmd.Context()); err != nil {
		return err
	}
	if warn := store.LoadWarning(); warn != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", warn)
	}
	return fn(sl, store)
}

func (c *commandContext) withStore(cmd *cobra.Command, fn func(*catalog.Store) error) error {
	return c.withSession(cmd, func(_ slot.Slot, store *catalog.Store) error {
		return fn(store)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
