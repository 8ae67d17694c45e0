package survey

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/exp/maps"

	apperrors "sosurvey/internal/errors"
)

// Entry locates one survey year: a zip archive and the CSV member inside it.
type Entry struct {
	ArchivePath string `json:"zpth"`
	MemberName  string `json:"fname"`
}

// Lookup maps survey year keys to their archive entries.
// A Lookup is never modified after it has been read, so it can be shared
// freely between goroutines.
type Lookup struct {
	entries map[string]Entry
}

// NewLookup builds a Lookup from an in-memory mapping. The map is copied.
func NewLookup(entries map[string]Entry) *Lookup {
	return &Lookup{entries: maps.Clone(entries)}
}

// LoadLookup reads the JSON lookup document at path.
func LoadLookup(path string) (*Lookup, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("survey lookup file").
				WithContext("path", path)
		}
		return nil, apperrors.NewStorageError("failed to open survey lookup file", err).
			WithContext("path", path)
	}
	defer f.Close()

	lookup, err := ReadLookup(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lookup, nil
}

// ReadLookup decodes a lookup document of the form
//
//	{"2019": {"zpth": "data/2019.zip", "fname": "survey_results_public.csv"}}
func ReadLookup(r io.Reader) (*Lookup, error) {
	entries := make(map[string]Entry)
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, apperrors.NewParsingError("failed to decode survey lookup", err)
	}
	for year, entry := range entries {
		if entry.ArchivePath == "" || entry.MemberName == "" {
			return nil, apperrors.NewAppValidationError(
				fmt.Sprintf("survey lookup entry %q needs both zpth and fname", year))
		}
	}
	return &Lookup{entries: entries}, nil
}

// Get returns the entry for a year key.
func (l *Lookup) Get(year string) (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	e, ok := l.entries[year]
	return e, ok
}

// Years returns the year keys in ascending order.
func (l *Lookup) Years() []string {
	if l == nil {
		return nil
	}
	keys := maps.Keys(l.entries)
	sort.Strings(keys)
	return keys
}

// Len returns the number of years in the lookup.
func (l *Lookup) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// WriteTo encodes the lookup as indented JSON.
func (l *Lookup) WriteTo(w io.Writer) (int64, error) {
	data, err := json.MarshalIndent(l.entries, "", "    ")
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	n, err := w.Write(data)
	return int64(n), err
}
