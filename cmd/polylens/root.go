package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/polylens/internal/app"
	"github.com/alanyoungcy/polylens/internal/config"
	"github.com/alanyoungcy/polylens/internal/present"
)

const defaultConfigPath = "config.toml"

// cli holds global flags and the state PersistentPreRunE builds from them.
type cli struct {
	configPath string
	jsonOut    bool

	out    io.Writer
	errOut io.Writer

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	c := &cli{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "polylens",
		Short:         "Find, rank and chart Polymarket prediction markets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.configPath, "config", defaultConfigPath, "path to TOML configuration file (optional)")
	root.PersistentFlags().BoolVar(&c.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		c.serveCmd(),
		c.searchCmd(),
		c.viewCmd(),
		c.trendingCmd(),
		c.recentCmd(),
		c.historyCmd(),
	)
	return root
}

// setup loads configuration and builds the logger. A missing file at the
// default path means defaults plus environment; an explicit path must exist.
func (c *cli) setup(cmd *cobra.Command) error {
	path := c.configPath
	if path == defaultConfigPath && !cmd.Flags().Changed("config") && !config.FileExists(path) {
		path = ""
	}

	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = newLogger(c.errOut, cfg.LogLevel)
	slog.SetDefault(c.logger)
	return nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func (c *cli) services() *app.Services {
	return app.NewServices(c.cfg, c.logger)
}

func (c *cli) printer() *present.Printer {
	return present.NewPrinter(c.out)
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
