package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sosurvey/internal/analysis"
	"sosurvey/internal/config"
)

func setupTestEnv(t *testing.T) (*CSVWriter, *config.Paths) {
	t.Helper()
	paths := config.NewPaths(t.TempDir())
	return NewCSVWriter(paths, nil), paths
}

func sampleFractions() analysis.Fractions {
	return analysis.Fractions{
		Column:      "LanguageWorkedWith",
		Respondents: 3,
		Answers: []analysis.AnswerCount{
			{Answer: "a", Count: 2, Fraction: 2.0 / 3},
			{Answer: "b", Count: 1, Fraction: 1.0 / 3},
			{Answer: "C, C++", Count: 1, Fraction: 1.0 / 3},
		},
	}
}

func TestNewCSVWriter(t *testing.T) {
	paths := &config.Paths{}
	writer := NewCSVWriter(paths, nil)

	assert.NotNil(t, writer)
	assert.Equal(t, paths, writer.paths)
	assert.NotNil(t, writer.logger)
}

func TestCSVWriter_WriteCSV(t *testing.T) {
	writer, paths := setupTestEnv(t)

	tests := []struct {
		name     string
		filePath string
		options  WriteOptions
		validate func(t *testing.T, content []byte)
	}{
		{
			name:     "basic write with headers",
			filePath: "test_basic.csv",
			options: WriteOptions{
				Headers: []string{"Country", "Respondents"},
				Records: [][]string{
					{"Germany", "5866"},
					{"Österreich", "1030"},
				},
			},
			validate: func(t *testing.T, content []byte) {
				lines := strings.Split(strings.TrimSpace(string(content)), "\n")
				assert.Equal(t, []string{"Country,Respondents", "Germany,5866", "Österreich,1030"}, lines)
			},
		},
		{
			name:     "write with BOM prefix",
			filePath: "test_bom.csv",
			options: WriteOptions{
				Headers:   []string{"Answer"},
				Records:   [][]string{{"Go"}},
				BOMPrefix: true,
			},
			validate: func(t *testing.T, content []byte) {
				assert.True(t, bytes.HasPrefix(content, []byte{0xEF, 0xBB, 0xBF}))
				assert.Equal(t, "Answer\nGo\n", string(content[3:]))
			},
		},
		{
			name:     "nested path below reports",
			filePath: filepath.Join("2019", "hobby.csv"),
			options: WriteOptions{
				Records: [][]string{{"Yes"}, {"No"}},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Yes\nNo\n", string(content))
			},
		},
		{
			name:     "empty records",
			filePath: "test_empty.csv",
			options: WriteOptions{
				Headers: []string{"Col1", "Col2"},
				Records: [][]string{},
			},
			validate: func(t *testing.T, content []byte) {
				assert.Equal(t, "Col1,Col2\n", string(content))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, writer.WriteCSV(tt.filePath, tt.options))

			content, err := os.ReadFile(paths.GetReportPath(tt.filePath))
			require.NoError(t, err)
			tt.validate(t, content)
		})
	}
}

func TestCSVWriter_WriteCSV_Append(t *testing.T) {
	writer, paths := setupTestEnv(t)

	require.NoError(t, writer.WriteCSV("append.csv", WriteOptions{
		Headers: []string{"Answer"},
		Records: [][]string{{"Go"}},
	}))
	require.NoError(t, writer.WriteCSV("append.csv", WriteOptions{
		Headers: []string{"ignored"},
		Records: [][]string{{"Rust"}},
		Append:  true,
	}))

	content, err := os.ReadFile(paths.GetReportPath("append.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Answer\nGo\nRust\n", string(content))
}

func TestCSVWriter_WriteFractions(t *testing.T) {
	writer, paths := setupTestEnv(t)

	path, err := writer.WriteFractions("languages.csv", sampleFractions())
	require.NoError(t, err)
	assert.Equal(t, paths.GetReportPath("languages.csv"), path)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Answer", "Count", "Fraction"},
		{"a", "2", "0.666667"},
		{"b", "1", "0.333333"},
		{"C, C++", "1", "0.333333"},
	}, records)
}

func TestCSVWriter_WriteFractions_AbsolutePath(t *testing.T) {
	writer, _ := setupTestEnv(t)
	target := filepath.Join(t.TempDir(), "out", "empty.csv")

	path, err := writer.WriteFractions(target, analysis.Fractions{Column: "Hobby"})
	require.NoError(t, err)
	assert.Equal(t, target, path)

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "Answer,Count,Fraction\n", string(content))
}

func TestCSVWriter_WriteTrend(t *testing.T) {
	writer, _ := setupTestEnv(t)
	trend := analysis.Trend{
		Years:   []string{"2018", "2019"},
		Answers: []string{"Python", "Go"},
		Values: map[string][]float64{
			"Python": {0.38, 0.41},
			"Go":     {0, 0.08},
		},
	}

	path, err := writer.WriteTrend("trend.csv", trend)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"Answer,2018,2019\nPython,0.380000,0.410000\nGo,0.000000,0.080000\n",
		string(content))
}

func TestStreamWriter(t *testing.T) {
	writer, paths := setupTestEnv(t)

	stream, err := writer.CreateStreamWriter("stream.csv", []string{"Year", "Respondents"})
	require.NoError(t, err)
	require.NoError(t, stream.WriteRecord([]string{"2018", "98855"}))
	require.NoError(t, stream.WriteRecord([]string{"2019", "88883"}))
	require.NoError(t, stream.Close())

	content, err := os.ReadFile(paths.GetReportPath("stream.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Year,Respondents\n2018,98855\n2019,88883\n", string(content))
}

func TestCSVWriter_CreateStreamWriter_InvalidPath(t *testing.T) {
	writer, paths := setupTestEnv(t)

	// a regular file where the directory should be
	blocker := paths.GetReportPath("blocker")
	require.NoError(t, os.MkdirAll(filepath.Dir(blocker), 0755))
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	_, err := writer.CreateStreamWriter(filepath.Join("blocker", "out.csv"), nil)
	assert.Error(t, err)
}
