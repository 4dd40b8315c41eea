/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/yarnpin/pkg/buildinfo"
	"github.com/fulmenhq/yarnpin/pkg/config"
	"github.com/fulmenhq/yarnpin/pkg/exitcode"
	"github.com/fulmenhq/yarnpin/pkg/logger"
	"github.com/fulmenhq/yarnpin/pkg/resolutions"
)

// app carries state shared by one command tree.
type app struct {
	cfg *config.Config
}

// newRootCommand creates a fresh root command instance with all subcommands.
// This factory pattern allows tests to create isolated command trees without shared state.
func newRootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "yarnpin <target-folder>",
		Short: "Pin the web3 module family in a package manifest via yarn resolutions",
		Long: `Yarnpin rewrites <target-folder>/package.json so that yarn resolves every
pinned module, at any depth, to the next minor release of the version found in
./original.package.json. Direct declarations of those modules are removed.

Examples:
   yarnpin packages/app            # Pin modules in packages/app/package.json
   yarnpin packages/app --no-op    # Show the report and patch without writing
   yarnpin verify packages/app     # Check an already pinned manifest
   yarnpin modules                 # List pinned modules and their patterns`,
		Args:              targetArg,
		PersistentPreRunE: a.setup,
		RunE:              a.runPin,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Add global flags
	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().Bool("no-op", false, "Run without writing the manifest (prints the patch instead)")
	cmd.PersistentFlags().String("config", "", "Config file (default .yarnpin.{yaml,yml,json,toml} in the working directory)")
	cmd.PersistentFlags().String("source", "", "Source manifest providing the version (default original.package.json)")
	cmd.PersistentFlags().String("format", "", "Report format (text|json|table)")
	cmd.PersistentFlags().String("log-file", "", "Also write logs to this rotating file")

	cmd.Flags().String("indent", "", "Indentation of the written manifest (default four spaces)")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("yarnpin {{.Version}}\n")

	registerSubcommands(cmd, a)
	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(cmd *cobra.Command, a *app) {
	cmd.AddCommand(newVerifyCommand(a))
	cmd.AddCommand(newModulesCommand(a))
	cmd.AddCommand(newVersionCommand())
}

// Execute builds the command tree and runs it.
// This is called by main.main().
func Execute() {
	err := newRootCommand().Execute()
	if err != nil {
		code := exitCodeFor(err)
		logger.Error("Command execution failed",
			logger.Err(err),
			logger.String("exit", exitcode.String(code)))
		logger.Close()
		os.Exit(code)
	}
	logger.Close()
}

// targetArg requires exactly one target folder.
func targetArg(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return fmt.Errorf("%w (usage: %s)", resolutions.ErrMissingArgument, cmd.UseLine())
	}
	if len(args) > 1 {
		return fmt.Errorf("%w: accepts 1 target folder, received %d", config.ErrInvalidConfig, len(args))
	}
	return nil
}

// setup initializes logging and loads configuration before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	initializeLogger(cmd, logger.FileConfig{})

	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(config.LoadOptions{ConfigFile: configFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	a.cfg = cfg

	if cfg.Log.File != "" {
		initializeLogger(cmd, logger.FileConfig{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
	}
	return nil
}

func (a *app) patcher(target string) *resolutions.Patcher {
	return resolutions.NewPatcher(resolutions.Options{
		Target:        target,
		SourcePath:    a.cfg.Source,
		ManifestName:  a.cfg.ManifestName,
		Modules:       a.cfg.Modules,
		PatternPrefix: a.cfg.PatternPrefix,
		Indent:        a.cfg.Indent,
	})
}

func (a *app) runPin(cmd *cobra.Command, args []string) error {
	noOp, _ := cmd.Flags().GetBool("no-op")

	p := a.patcher(args[0])
	res, err := p.Prepare()
	if err != nil {
		return err
	}

	report := resolutions.NewReport(res)
	if noOp {
		report.Patch = res.Plan.Operations
	}
	if err := resolutions.Render(cmd.OutOrStdout(), report, a.cfg.Format); err != nil {
		return err
	}

	if noOp {
		logger.Info("Manifest left unchanged", logger.String("manifest", res.ManifestPath))
		return nil
	}

	if err := p.Commit(res); err != nil {
		return err
	}
	logger.Info("Pinned modules",
		logger.String("manifest", res.ManifestPath),
		logger.String("version", res.Version),
		logger.Int("removed", len(res.Plan.Removed)))
	return nil
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command, file logger.FileConfig) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	noOp, _ := cmd.Flags().GetBool("no-op")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "yarnpin",
		NoOp:      noOp,
		File:      file,
	}

	if err := logger.Initialize(cfg); err != nil {
		// Fallback to stderr
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}
