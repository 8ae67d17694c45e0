package validation

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileValidator_ValidateOutputDirectory(t *testing.T) {
	v := NewFileValidator(nil)
	dir := filepath.Join(t.TempDir(), "reports", "2019")

	require.NoError(t, v.ValidateOutputDirectory(dir))
	assert.DirExists(t, dir)
	assert.NoFileExists(t, filepath.Join(dir, ".write_test"))

	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	assert.Error(t, v.ValidateOutputDirectory(filepath.Join(blocker, "sub")))
}

func TestFileValidator_ValidateFile(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()
	file := filepath.Join(dir, "survey_pathes.json")
	require.NoError(t, os.WriteFile(file, []byte("{}"), 0644))

	assert.NoError(t, v.ValidateFile(file))
	assert.ErrorContains(t, v.ValidateFile(filepath.Join(dir, "missing.json")), "does not exist")
	assert.ErrorContains(t, v.ValidateFile(dir), "is a directory")
}

func TestFileValidator_ValidateSurveyArchive(t *testing.T) {
	v := NewFileValidator(nil)
	dir := t.TempDir()

	archive := filepath.Join(dir, "2019.zip")
	f, err := os.Create(archive)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("survey_results_public.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte("Respondent\n1\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	notZip := filepath.Join(dir, "2018.zip")
	require.NoError(t, os.WriteFile(notZip, []byte("plain text"), 0644))

	tests := []struct {
		name    string
		path    string
		member  string
		wantErr string
	}{
		{"valid", archive, "survey_results_public.csv", ""},
		{"missing member", archive, "survey_results_schema.csv", "has no member"},
		{"not a csv member", archive, "README.txt", "not a CSV file"},
		{"not a zip", notZip, "survey_results_public.csv", "not a zip archive"},
		{"missing archive", filepath.Join(dir, "2017.zip"), "survey_results_public.csv", "does not exist"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateSurveyArchive(tt.path, tt.member)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
