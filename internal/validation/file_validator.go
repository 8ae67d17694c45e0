package validation

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileValidator checks survey inputs and report outputs before the tools
// touch them.
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateOutputDirectory ensures output directory exists or can be created
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	// Verify it's writable by creating a test file
	testFile := filepath.Join(dir, ".write_test")
	file, err := os.Create(testFile)
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	file.Close()
	os.Remove(testFile)

	v.logger.Debug("Output directory validated",
		slog.String("directory", dir))
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("file", path))
		return fmt.Errorf("file %s does not exist", path)
	}
	if err != nil {
		v.logger.Error("Failed to stat file",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return fmt.Errorf("%s is a directory, not a file", path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateSurveyArchive checks that path is a readable zip archive holding a
// CSV member called member.
func (v *FileValidator) ValidateSurveyArchive(path, member string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	if ext := strings.ToLower(filepath.Ext(member)); ext != ".csv" {
		v.logger.Error("Survey member is not a CSV file",
			slog.String("member", member),
			slog.String("extension", ext))
		return fmt.Errorf("member %s is not a CSV file (extension: %s)", member, ext)
	}

	zr, err := zip.OpenReader(path)
	if err != nil {
		v.logger.Error("File is not a zip archive",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("file %s is not a zip archive: %w", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == member {
			v.logger.Debug("Survey archive validated",
				slog.String("file", path),
				slog.String("member", member),
				slog.Uint64("size", f.UncompressedSize64))
			return nil
		}
	}

	v.logger.Error("Survey member missing from archive",
		slog.String("file", path),
		slog.String("member", member))
	return fmt.Errorf("archive %s has no member %s", path, member)
}
