package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_Validate(t *testing.T) {
	report := Report{
		ID:          uuid.NewString(),
		Year:        "2019",
		Column:      "LanguageWorkedWith",
		Respondents: 2,
		Answers: []AnswerStat{
			{Answer: "Go", Count: 2, Fraction: 1, Percent: 100},
		},
		GeneratedAt: time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, report.Validate())

	bad := report
	bad.ID = "not-a-uuid"
	assert.Error(t, bad.Validate())

	bad = report
	bad.Answers = []AnswerStat{{Answer: "Go", Count: -1}}
	assert.Error(t, bad.Validate())
}

func TestReport_JSON(t *testing.T) {
	report := Report{
		ID:      "5f0c2f1e-4c1a-4f5e-9a43-0c8f6d1f2b7a",
		Year:    "2019",
		Column:  "Hobby",
		Answers: []AnswerStat{{Answer: "Yes", Count: 3, Fraction: 0.75, Percent: 75}},
		Format:  "v1",
	}

	data, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"format_version":"v1"`)
	assert.Contains(t, string(data), `"answers":[{"answer":"Yes","count":3,"fraction":0.75,"percent":75}]`)
	assert.NotContains(t, string(data), "separator")
}

func TestSurveyYear_Validate(t *testing.T) {
	assert.NoError(t, SurveyYear{Year: "2019", Archive: "2019.zip", Member: "survey_results_public.csv"}.Validate())
	assert.Error(t, SurveyYear{Year: "twenty", Archive: "a.zip", Member: "b.csv"}.Validate())
	assert.Error(t, SurveyYear{Year: "2019"}.Validate())
}
