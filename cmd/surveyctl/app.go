package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mitchellh/colorstring"
	"github.com/spf13/cobra"

	"sosurvey/internal/config"
	"sosurvey/internal/infrastructure"
	"sosurvey/internal/survey"
	"sosurvey/internal/validation"
)

// globalOptions are the flags shared by every command.
type globalOptions struct {
	configFile string
	logFile    string
	baseDir    string
	verbose    bool
	noColor    bool
	noProgress bool
}

// app is the state a command runs with, built once per invocation.
type app struct {
	opts   *globalOptions
	cfg    *config.Config
	paths  *config.Paths
	logger *slog.Logger
	loader *survey.Loader
	// archiveDir resolves relative archive paths of the lookup table.
	archiveDir string
	validator  *validation.FileValidator
	color      *colorstring.Colorize

	ctx    context.Context
	out    io.Writer
	errOut io.Writer
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.logFile != "" {
		cfg.Logging.FilePath = opts.logFile
	}
	if opts.verbose {
		cfg.Logging.Verbose = true
		cfg.Logging.Level = "debug"
	}

	baseDir := opts.baseDir
	if baseDir == "" {
		if baseDir, err = os.Getwd(); err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
	}
	paths := config.ForConfig(baseDir, cfg)
	if cfg.Logging.FilePath != "" {
		cfg.Logging.FilePath = paths.Resolve(cfg.Logging.FilePath)
	}

	if _, err := infrastructure.InitializeLoggerWithConsole(cfg.Logging, cmd.ErrOrStderr()); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	logger := infrastructure.WithComponent(infrastructure.LoggerWithContext(ctx), cmd.Name())
	paths.LogPathResolution(logger)

	loaderCfg := survey.LoaderConfigFrom(cfg.Survey)
	if loaderCfg.BaseDir != "" {
		loaderCfg.BaseDir = paths.Resolve(loaderCfg.BaseDir)
	} else {
		loaderCfg.BaseDir = paths.BaseDir
	}
	loader, err := survey.NewLazyLoader(paths.LookupFile, logger, loaderCfg)
	if err != nil {
		return nil, err
	}

	return &app{
		opts:       opts,
		cfg:        cfg,
		paths:      paths,
		logger:     logger,
		loader:     loader,
		archiveDir: loaderCfg.BaseDir,
		validator:  validation.NewFileValidator(logger),
		color: &colorstring.Colorize{
			Colors:  colorstring.DefaultColors,
			Disable: opts.noColor,
			Reset:   true,
		},
		ctx:    ctx,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}, nil
}

// reportConfig returns the chart settings with the output directory resolved.
func (a *app) reportConfig() config.ReportConfig {
	rc := a.cfg.Report
	rc.OutDir = a.paths.ReportsDir
	return rc
}

// archivePath resolves the archive of a lookup entry.
func (a *app) archivePath(entry survey.Entry) string {
	if filepath.IsAbs(entry.ArchivePath) {
		return entry.ArchivePath
	}
	return filepath.Join(a.archiveDir, entry.ArchivePath)
}

// separator returns the split separator for a command, "" when splitting is off.
func (a *app) separator(cmd *cobra.Command, sep string, noSplit bool) string {
	if noSplit {
		return ""
	}
	if !cmd.Flags().Changed("sep") && a.cfg.Survey.Separator != "" {
		return a.cfg.Survey.Separator
	}
	return sep
}

func (a *app) close() {
	if err := infrastructure.CloseLogFile(); err != nil {
		fmt.Fprintf(a.errOut, "failed to close log file: %v\n", err)
	}
}
