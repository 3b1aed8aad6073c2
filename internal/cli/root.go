// Package cli wires configuration, storage and the user interfaces behind
// the taskdesk command line.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Joseda-hg/taskdesk/internal/config"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	backend    string
	web        bool
	webOnly    bool
	port       int
}

func newRootCmd(version string) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "taskdesk",
		Short: "Multi-user task tracker",
		Long: `taskdesk keeps a shared list of tasks assigned to registered users.

Run without a subcommand to open the terminal UI.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, opts)
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file path")
	flags.StringVar(&opts.dbPath, "db", "", "sqlite db path")
	flags.StringVar(&opts.backend, "backend", "", "storage backend (file or sqlite)")
	flags.IntVar(&opts.port, "port", 0, "web server port")
	rootCmd.Flags().BoolVar(&opts.web, "web", false, "enable web server")
	rootCmd.Flags().BoolVar(&opts.webOnly, "web-only", false, "run web server only")

	rootCmd.AddCommand(newStatsCmd(opts))
	rootCmd.AddCommand(newReportCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))
	return rootCmd
}

// Execute runs the root command.
func Execute(version string) error {
	if err := newRootCmd(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// loadConfig merges the config file with flag overrides and writes the
// result back so later runs reuse it.
func loadConfig(opts *options) (config.Config, string, error) {
	cfgPath := opts.configPath
	if cfgPath == "" {
		path, err := config.DefaultConfigPath()
		if err != nil {
			return config.Config{}, "", err
		}
		cfgPath = path
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", err
	}

	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}
	if opts.backend != "" {
		cfg.Backend = opts.backend
	}
	if opts.web || opts.webOnly {
		cfg.WebEnabled = true
	}
	if opts.port != 0 {
		cfg.WebPort = opts.port
	}
	cfg.ResolvePaths(filepath.Dir(cfgPath))
	if err := cfg.Validate(); err != nil {
		return config.Config{}, "", err
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return config.Config{}, "", err
	}
	return cfg, cfgPath, nil
}
