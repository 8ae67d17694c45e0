package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the directories the tools read from and write to.
// Unlike an installed service, the notebook workflow resolves everything
// against a working directory.
type Paths struct {
	BaseDir    string
	DataDir    string
	InputDir   string
	ReportsDir string
	LogsDir    string
	LookupFile string
}

// GetPaths returns the paths rooted at the current working directory
func GetPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewPaths(wd), nil
}

// NewPaths returns the paths rooted at baseDir
func NewPaths(baseDir string) *Paths {
	dataDir := filepath.Join(baseDir, "data")
	return &Paths{
		BaseDir:    baseDir,
		DataDir:    dataDir,
		InputDir:   filepath.Join(baseDir, DefaultInputDir),
		ReportsDir: filepath.Join(baseDir, DefaultReportsDir),
		LogsDir:    filepath.Join(baseDir, "logs"),
		LookupFile: filepath.Join(baseDir, DefaultLookupPath),
	}
}

// ForConfig returns paths rooted at baseDir with the configured lookup
// file and report directory applied.
func ForConfig(baseDir string, cfg *Config) *Paths {
	p := NewPaths(baseDir)
	if cfg == nil {
		return p
	}
	if cfg.Survey.LookupPath != "" {
		p.LookupFile = p.Resolve(cfg.Survey.LookupPath)
	}
	if cfg.Report.OutDir != "" {
		p.ReportsDir = p.Resolve(cfg.Report.OutDir)
	}
	return p
}

// Resolve joins relative paths onto BaseDir and leaves absolute ones alone
func (p *Paths) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ReportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}
	return nil
}

// GetInputPath returns the path for a survey input file
func (p *Paths) GetInputPath(filename string) string {
	return filepath.Join(p.InputDir, filename)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("input", p.InputDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("files",
			slog.String("lookup", p.LookupFile),
			slog.Bool("lookup_exists", FileExists(p.LookupFile)),
		))
}
