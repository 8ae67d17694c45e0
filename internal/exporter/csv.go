package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"sosurvey/internal/analysis"
	"sosurvey/internal/config"
)

// FractionsHeader is the header row of an answer distribution export.
var FractionsHeader = []string{"Answer", "Count", "Fraction"}

// CSVWriter writes CSV files below the reports directory.
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger.With(slog.String("component", "csv_writer"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	Append    bool
	BOMPrefix bool // UTF-8 BOM so spreadsheet tools detect the encoding
}

// WriteCSV writes data to a CSV file with the given options
func (w *CSVWriter) WriteCSV(filePath string, options WriteOptions) error {
	fullPath := w.resolvePath(filePath)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY
	if options.Append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}

	file, err := os.OpenFile(fullPath, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if options.BOMPrefix && !options.Append {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(file)
	if !options.Append && len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFractions writes an answer distribution, one answer per row in the
// distribution's order.
func (w *CSVWriter) WriteFractions(filePath string, f analysis.Fractions) (string, error) {
	records := make([][]string, 0, len(f.Answers))
	for _, a := range f.Answers {
		records = append(records, FractionRecord(a))
	}

	if err := w.WriteCSV(filePath, WriteOptions{Headers: FractionsHeader, Records: records}); err != nil {
		return "", err
	}
	return w.resolvePath(filePath), nil
}

// WriteTrend writes one row per answer with its fraction in every year.
func (w *CSVWriter) WriteTrend(filePath string, t analysis.Trend) (string, error) {
	headers := append([]string{"Answer"}, t.Years...)
	stream, err := w.CreateStreamWriter(filePath, headers)
	if err != nil {
		return "", err
	}

	for _, answer := range t.Answers {
		record := make([]string, 0, len(t.Years)+1)
		record = append(record, answer)
		for _, v := range t.Values[answer] {
			record = append(record, formatFraction(v))
		}
		if err := stream.WriteRecord(record); err != nil {
			stream.Close()
			return "", fmt.Errorf("failed to write answer %q: %w", answer, err)
		}
	}

	if err := stream.Close(); err != nil {
		return "", err
	}
	return w.resolvePath(filePath), nil
}

// StreamWriter writes CSV records one at a time.
type StreamWriter struct {
	file   *os.File
	writer *csv.Writer
}

// CreateStreamWriter creates a new streaming CSV writer
func (w *CSVWriter) CreateStreamWriter(filePath string, headers []string) (*StreamWriter, error) {
	fullPath := w.resolvePath(filePath)

	w.logger.Debug("Creating CSV stream writer",
		slog.String("full_path", fullPath),
		slog.Int("header_count", len(headers)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	writer := csv.NewWriter(file)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}

	return &StreamWriter{file: file, writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Close flushes and closes the stream writer
func (s *StreamWriter) Close() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// FractionRecord formats one answer as a CSV record.
func FractionRecord(a analysis.AnswerCount) []string {
	return []string{a.Answer, strconv.Itoa(a.Count), formatFraction(a.Fraction)}
}

// resolvePath leaves absolute paths alone and puts relative ones below the
// reports directory.
func (w *CSVWriter) resolvePath(filePath string) string {
	if filepath.IsAbs(filePath) || w.paths == nil {
		return filePath
	}
	return w.paths.GetReportPath(filePath)
}
