package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SurveyYear describes where one year of survey results is stored.
type SurveyYear struct {
	Year    string `json:"year" validate:"required,numeric"`
	Archive string `json:"archive" validate:"required"`
	Member  string `json:"member" validate:"required"`
}

// AnswerStat is one row of an answer distribution.
type AnswerStat struct {
	Answer   string  `json:"answer"`
	Count    int     `json:"count" validate:"gte=0"`
	Fraction float64 `json:"fraction" validate:"gte=0"`
	Percent  float64 `json:"percent" validate:"gte=0"`
}

// Report is the document written for one analysed column.
type Report struct {
	ID          string       `json:"id" validate:"required,uuid"`
	Title       string       `json:"title"`
	Year        string       `json:"year" validate:"required"`
	Column      string       `json:"column" validate:"required"`
	Separator   string       `json:"separator,omitempty"`
	Respondents int          `json:"respondents" validate:"gte=0"`
	Answers     []AnswerStat `json:"answers" validate:"dive"`
	Files       []string     `json:"files,omitempty"`
	GeneratedAt time.Time    `json:"generated_at"`
	Format      string       `json:"format_version"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a report.
func (r Report) Validate() error {
	return validate.Struct(r)
}

// Validate checks the struct tags of a survey year.
func (y SurveyYear) Validate() error {
	return validate.Struct(y)
}
