// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/oncoform/survival-mcp/internal/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "survival-mcp"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	a := newApp()
	if err := runCommand(a, rootCmd(a)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags are the persistent overrides applied over the config file.
type flags struct {
	configPath string
	schemaPath string
	modelPath  string
	logLevel   string
	logDev     bool
}

// runCommand executes cmd and flushes the logger on every exit path.
func runCommand(a *app, cmd *cobra.Command) error {
	err := cmd.Execute()
	_ = a.logger.Sync()
	return err
}

func rootCmd(a *app) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Breast-cancer survival prediction service",
		Long: `survival-mcp validates and encodes a patient's clinical attributes against
a fixed field schema and asks a trained classifier whether the patient is
predicted Alive or Dead.

The same pipeline is exposed over HTTP (serve), as MCP tools over stdio (mcp)
and as a one-shot command (predict).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			logger, err := a.newLogger(cfg.Log.Level, cfg.Log.Development)
			if err != nil {
				return err
			}
			a.config = cfg
			a.logger = logger
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	pf.StringVar(&f.schemaPath, "schema", "", "Field schema file (defaults to the embedded schema)")
	pf.StringVar(&f.modelPath, "model", "", "Model artifact file")
	pf.StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.BoolVar(&f.logDev, "log-dev", false, "Human-readable development logging")

	cmd.AddCommand(
		serveCmd(a),
		mcpCmd(a),
		predictCmd(a),
		schemaCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}

// loadConfig reads the config file, if any, and applies explicitly set flags
// over it.
func loadConfig(cmd *cobra.Command, f flags) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.LoadFromFile(f.configPath); err != nil {
			return nil, err
		}
	}

	pf := cmd.Flags()
	if pf.Changed("schema") {
		cfg.SchemaPath = f.schemaPath
	}
	if pf.Changed("model") {
		cfg.ModelPath = f.modelPath
	}
	if pf.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if pf.Changed("log-dev") {
		cfg.Log.Development = f.logDev
	}
	return cfg, nil
}
