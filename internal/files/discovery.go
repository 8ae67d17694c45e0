package files

import (
	"archive/zip"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// yearPattern finds a survey year such as 2011 or 2019 in a file name.
var yearPattern = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// SurveyArchive is a zip archive holding the results of one survey year.
type SurveyArchive struct {
	Year   string
	Path   string
	Member string
}

// Discovery finds survey archives below a base path.
type Discovery struct {
	basePath string
	logger   *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string, logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{basePath: basePath, logger: logger.With(slog.String("component", "discovery"))}
}

// FindArchives lists the zip files in dir, sorted by name.
func (d *Discovery) FindArchives(dir string) ([]FileInfo, error) {
	fullPath := dir
	if !filepath.IsAbs(dir) {
		fullPath = filepath.Join(d.basePath, dir)
	}

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".zip") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, entry.Name()),
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})
	return files, nil
}

// FindSurveyArchives inspects every zip in dir and returns the ones whose
// name carries a year and that contain a results CSV. When two archives
// claim the same year the first by name wins.
func (d *Discovery) FindSurveyArchives(dir string) ([]SurveyArchive, error) {
	files, err := d.FindArchives(dir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var archives []SurveyArchive
	for _, file := range files {
		year := YearFromName(file.Name)
		if year == "" {
			d.logger.Debug("Skipping archive without year", slog.String("file", file.Name))
			continue
		}
		if seen[year] {
			d.logger.Warn("Duplicate survey year",
				slog.String("year", year),
				slog.String("file", file.Name))
			continue
		}

		member, err := ResultsMember(file.Path)
		if err != nil {
			d.logger.Warn("Skipping archive",
				slog.String("file", file.Name),
				slog.String("error", err.Error()))
			continue
		}

		seen[year] = true
		archives = append(archives, SurveyArchive{Year: year, Path: file.Path, Member: member})
	}

	sort.Slice(archives, func(i, j int) bool {
		return archives[i].Year < archives[j].Year
	})
	return archives, nil
}

// YearFromName extracts the first plausible year from a file name.
func YearFromName(name string) string {
	m := yearPattern.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return ""
	}
	return m[1]
}

// ResultsMember picks the CSV member holding the survey answers: one whose
// name mentions "results", otherwise the only CSV in the archive.
func ResultsMember(archivePath string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	var csvs []string
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}
		if strings.Contains(strings.ToLower(filepath.Base(f.Name)), "results") &&
			!strings.Contains(strings.ToLower(filepath.Base(f.Name)), "schema") {
			return f.Name, nil
		}
		csvs = append(csvs, f.Name)
	}

	switch len(csvs) {
	case 0:
		return "", fmt.Errorf("no csv member in %s", filepath.Base(archivePath))
	case 1:
		return csvs[0], nil
	default:
		return "", fmt.Errorf("ambiguous csv members in %s: %s", filepath.Base(archivePath), strings.Join(csvs, ", "))
	}
}
