package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sosurvey/internal/analysis"
	"sosurvey/internal/config"
)

// maxSheetName is the longest sheet name Excel accepts.
const maxSheetName = 31

// WorkbookExporter writes answer distributions to an xlsx workbook, one
// sheet per column.
type WorkbookExporter struct {
	paths *config.Paths
	// Chart adds a native column chart next to each table.
	Chart  bool
	logger *slog.Logger
}

// NewWorkbookExporter creates a workbook exporter writing below the reports
// directory.
func NewWorkbookExporter(paths *config.Paths, logger *slog.Logger) *WorkbookExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookExporter{
		paths:  paths,
		Chart:  true,
		logger: logger.With(slog.String("component", "workbook_exporter")),
	}
}

// WriteFractions writes every distribution to its own sheet and returns the
// path of the saved workbook.
func (e *WorkbookExporter) WriteFractions(filePath string, sheets ...analysis.Fractions) (string, error) {
	if len(sheets) == 0 {
		return "", fmt.Errorf("no distributions to export")
	}

	fullPath := filePath
	if !filepath.IsAbs(filePath) && e.paths != nil {
		fullPath = e.paths.GetReportPath(filePath)
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return "", fmt.Errorf("failed to create percent style: %w", err)
	}

	used := make(map[string]bool)
	for i, fr := range sheets {
		name := uniqueSheetName(fr.Column, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return "", fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("failed to create sheet %q: %w", name, err)
		}

		if err := e.writeSheet(f, name, fr, percent); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Workbook written",
		slog.String("file", fullPath),
		slog.Int("sheets", len(sheets)))
	return fullPath, nil
}

func (e *WorkbookExporter) writeSheet(f *excelize.File, sheet string, fr analysis.Fractions, percent int) error {
	header := make([]interface{}, len(FractionsHeader))
	for i, h := range FractionsHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, a := range fr.Answers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{a.Answer, a.Count, a.Fraction}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if len(fr.Answers) == 0 {
		return nil
	}

	last := len(fr.Answers) + 1
	if err := f.SetCellStyle(sheet, "C2", fmt.Sprintf("C%d", last), percent); err != nil {
		return fmt.Errorf("failed to style fractions: %w", err)
	}

	if !e.Chart {
		return nil
	}
	quoted := "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$C$1", quoted),
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", quoted, last),
			Values:     fmt.Sprintf("%s!$C$2:$C$%d", quoted, last),
		}},
		Title:  []excelize.RichTextRun{{Text: fr.Column}},
		Legend: excelize.ChartLegend{Position: "none"},
	}
	if err := f.AddChart(sheet, "E2", chart); err != nil {
		return fmt.Errorf("failed to add chart: %w", err)
	}
	return nil
}

// uniqueSheetName turns a column name into a valid, unused sheet name.
func uniqueSheetName(column string, index int, used map[string]bool) string {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, column)
	name = strings.Trim(name, "'")
	if name == "" {
		name = fmt.Sprintf("Sheet%d", index+1)
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}

	base := name
	for n := 2; used[strings.ToLower(name)]; n++ {
		suffix := fmt.Sprintf("~%d", n)
		r := []rune(base)
		if len(r)+len(suffix) > maxSheetName {
			r = r[:maxSheetName-len(suffix)]
		}
		name = string(r) + suffix
	}
	used[strings.ToLower(name)] = true
	return name
}
