package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"sosurvey/internal/analysis"
	"sosurvey/pkg/contracts"
	"sosurvey/pkg/contracts/domain"
)

// BuildReport wraps an answer distribution into the report document.
func BuildReport(year string, f analysis.Fractions, sep string, files ...string) domain.Report {
	stats := make([]domain.AnswerStat, len(f.Answers))
	for i, a := range f.Answers {
		stats[i] = domain.AnswerStat{
			Answer:   a.Answer,
			Count:    a.Count,
			Fraction: a.Fraction,
			Percent:  100 * a.Fraction,
		}
	}

	return domain.Report{
		ID:          uuid.NewString(),
		Title:       fmt.Sprintf("%s %s", f.Column, year),
		Year:        year,
		Column:      f.Column,
		Separator:   sep,
		Respondents: f.Respondents,
		Answers:     stats,
		Files:       files,
		GeneratedAt: time.Now().UTC(),
		Format:      contracts.DataFormatVersion,
	}
}

// WriteReport validates report and writes it as indented JSON.
func WriteReport(w io.Writer, report domain.Report) error {
	if err := report.Validate(); err != nil {
		return fmt.Errorf("invalid report: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
