package main

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sosurvey/internal/errors"
	"sosurvey/internal/infrastructure"
	"sosurvey/internal/survey"
	"sosurvey/pkg/contracts/domain"
)

const (
	results2018 = "Respondent,LanguageWorkedWith\n" +
		"1,Go;Rust\n" +
		"2,Rust\n" +
		"3,NA\n"
	results2019 = "Respondent,LanguageWorkedWith,Hobbyist,ConvertedComp\n" +
		"1,Go;Python,Yes,NA\n" +
		"2,Go,No,NA\n" +
		"3,,Yes,\n"
	resultsMember = "survey_results_public.csv"
)

func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range members {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

// setupWorkspace lays out two survey years the way the default config expects
// and returns the base directory.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	input := filepath.Join(base, "data", "input", "stackoverflow")

	writeZip(t, filepath.Join(input, "developer_survey_2018.zip"), map[string]string{
		resultsMember:               results2018,
		"survey_results_schema.csv": "Column,Question\n",
	})
	writeZip(t, filepath.Join(input, "developer_survey_2019.zip"), map[string]string{
		resultsMember: results2019,
	})

	lookup := survey.NewLookup(map[string]survey.Entry{
		"2018": {ArchivePath: "data/input/stackoverflow/developer_survey_2018.zip", MemberName: resultsMember},
		"2019": {ArchivePath: "data/input/stackoverflow/developer_survey_2019.zip", MemberName: resultsMember},
	})
	f, err := os.Create(filepath.Join(input, "survey_pathes.json"))
	require.NoError(t, err)
	_, err = lookup.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return base
}

// run executes surveyctl against base and returns stdout and stderr.
func run(t *testing.T, base string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("SOSURVEY_LOGGING_NAME", "stdout")
	infrastructure.ResetLoggerForTesting()
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	var stdout, stderr bytes.Buffer
	root := newRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{"--base-dir", base, "--no-color", "--no-progress"}, args...))

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestYearsCommand(t *testing.T) {
	base := setupWorkspace(t)

	out, _, err := run(t, base, "years")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "2018"))
	assert.Contains(t, lines[1], "developer_survey_2019.zip")
	assert.NotContains(t, out, "[bold]")

	out, _, err = run(t, base, "years", "--json")
	require.NoError(t, err)
	var years []domain.SurveyYear
	require.NoError(t, json.Unmarshal([]byte(out), &years))
	require.Len(t, years, 2)
	assert.Equal(t, "2019", years[1].Year)
	assert.Equal(t, resultsMember, years[1].Member)
}

func TestFractionsCommand_Table(t *testing.T) {
	base := setupWorkspace(t)

	out, stderr, err := run(t, base, "fractions", "--year", "2019", "--column", "LanguageWorkedWith")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Fraction")
	assert.Contains(t, lines[1], "Go")
	assert.Contains(t, lines[1], "100.0%")
	assert.Contains(t, lines[2], "Python")
	assert.Contains(t, lines[2], "50.0%")
	assert.Equal(t, "2 respondents answered LanguageWorkedWith", lines[3])

	// log records stay off stdout
	assert.Contains(t, stderr, "Fractions computed")
	assert.NotContains(t, out, "Fractions computed")
}

func TestFractionsCommand_NoSplitTop(t *testing.T) {
	base := setupWorkspace(t)

	out, _, err := run(t, base, "fractions", "--year", "2019", "--column", "LanguageWorkedWith", "--no-split", "--top", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Go;Python")
	assert.Contains(t, lines[1], "50.0%")
}

func TestFractionsCommand_JSONAndCSV(t *testing.T) {
	base := setupWorkspace(t)

	out, _, err := run(t, base, "fractions", "--year", "2018", "--column", "LanguageWorkedWith", "--csv", "langs_2018.csv", "--json")
	require.NoError(t, err)

	var report domain.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "2018", report.Year)
	assert.Equal(t, "LanguageWorkedWith", report.Column)
	assert.Equal(t, ";", report.Separator)
	assert.Equal(t, 2, report.Respondents)
	require.Len(t, report.Answers, 2)
	assert.Equal(t, "Rust", report.Answers[0].Answer)
	assert.Equal(t, 2, report.Answers[0].Count)
	assert.InDelta(t, 1.0, report.Answers[0].Fraction, 1e-9)
	assert.Equal(t, "Go", report.Answers[1].Answer)
	assert.InDelta(t, 0.5, report.Answers[1].Fraction, 1e-9)

	csvPath := filepath.Join(base, "reports", "langs_2018.csv")
	require.Equal(t, []string{csvPath}, report.Files)

	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Answer", "Count", "Fraction"}, records[0])
	assert.Equal(t, []string{"Rust", "2", "1.000000"}, records[1])
	assert.Equal(t, []string{"Go", "1", "0.500000"}, records[2])
}

func TestFractionsCommand_PlotWithoutAnswers(t *testing.T) {
	base := setupWorkspace(t)

	out, stderr, err := run(t, base, "fractions", "--year", "2019", "--column", "ConvertedComp", "--plot")
	require.NoError(t, err)

	assert.Contains(t, out, "0 respondents answered ConvertedComp")
	assert.NotContains(t, out, "wrote")
	assert.Contains(t, stderr, "No answers to plot")
	assert.NoDirExists(t, filepath.Join(base, "reports"))
}

func TestFractionsCommand_Errors(t *testing.T) {
	base := setupWorkspace(t)

	t.Run("unknown year", func(t *testing.T) {
		_, _, err := run(t, base, "fractions", "--year", "1999", "--column", "LanguageWorkedWith")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
	})

	t.Run("unknown column", func(t *testing.T) {
		_, _, err := run(t, base, "fractions", "--year", "2019", "--column", "Salary")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrColumnNotFound)
	})

	t.Run("missing flags", func(t *testing.T) {
		_, _, err := run(t, base, "fractions", "--year", "2019")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "column")
	})
}

func TestCompareCommand(t *testing.T) {
	base := setupWorkspace(t)

	out, _, err := run(t, base, "compare", "--column", "LanguageWorkedWith", "--answers", "Go,Rust", "--csv", "trend.csv")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, []string{"Answer", "2018", "2019"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Go", "50.0%", "100.0%"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Rust", "100.0%", "0.0%"}, strings.Fields(lines[2]))
	assert.Contains(t, lines[3], filepath.Join(base, "reports", "trend.csv"))

	data, err := os.ReadFile(filepath.Join(base, "reports", "trend.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Answer,2018,2019\nGo,0.500000,1.000000\nRust,1.000000,0.000000\n", string(data))
}

func TestCompareCommand_TopAnswers(t *testing.T) {
	base := setupWorkspace(t)

	out, _, err := run(t, base, "compare", "--years", "2019", "--column", "LanguageWorkedWith", "--top", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"Go", "100.0%"}, strings.Fields(lines[1]))
}

func TestIndexCommand(t *testing.T) {
	base := setupWorkspace(t)

	out, _, err := run(t, base, "index")
	require.NoError(t, err)

	lookup, err := survey.ReadLookup(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, []string{"2018", "2019"}, lookup.Years())
	entry, ok := lookup.Get("2018")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("data", "input", "stackoverflow", "developer_survey_2018.zip"), entry.ArchivePath)
	assert.Equal(t, resultsMember, entry.MemberName)
}

func TestIndexCommand_Write(t *testing.T) {
	base := setupWorkspace(t)
	lookupFile := filepath.Join(base, "data", "input", "stackoverflow", "survey_pathes.json")
	require.NoError(t, os.Remove(lookupFile))

	out, _, err := run(t, base, "index", "--write")
	require.NoError(t, err)
	assert.Contains(t, out, "(2 years)")

	lookup, err := survey.LoadLookup(lookupFile)
	require.NoError(t, err)
	assert.Equal(t, 2, lookup.Len())
}

func TestCheckCommand(t *testing.T) {
	base := setupWorkspace(t)

	out, _, err := run(t, base, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "ok   2018")
	assert.Contains(t, out, "ok   2019")

	require.NoError(t, os.Remove(filepath.Join(base, "data", "input", "stackoverflow", "developer_survey_2019.zip")))
	out, _, err = run(t, base, "check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	assert.Contains(t, out, "FAIL 2019")
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "surveyctl v"))
}
