package analysis

import (
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	apperrors "sosurvey/internal/errors"
)

// DefaultSeparator splits multi-select answers such as "Go;Python;Rust".
const DefaultSeparator = ";"

// AnswerCount is one distinct answer with the number of respondents who
// gave it and that number divided by the respondents who answered at all.
type AnswerCount struct {
	Answer   string  `json:"answer"`
	Count    int     `json:"count"`
	Fraction float64 `json:"fraction"`
}

// Fractions is the answer distribution of one column, most frequent first.
//
// In split mode a respondent can contribute to several answers, so the
// fractions may add up to more than 1.
type Fractions struct {
	Column      string        `json:"column"`
	Respondents int           `json:"respondents"`
	Answers     []AnswerCount `json:"answers"`
}

// Len returns the number of distinct answers.
func (f Fractions) Len() int { return len(f.Answers) }

// Get returns the fraction for answer.
func (f Fractions) Get(answer string) (float64, bool) {
	for _, a := range f.Answers {
		if a.Answer == answer {
			return a.Fraction, true
		}
	}
	return 0, false
}

// Map returns the fractions keyed by answer.
func (f Fractions) Map() map[string]float64 {
	m := make(map[string]float64, len(f.Answers))
	for _, a := range f.Answers {
		m[a.Answer] = a.Fraction
	}
	return m
}

// Sum adds up all fractions.
func (f Fractions) Sum() float64 {
	var sum float64
	for _, a := range f.Answers {
		sum += a.Fraction
	}
	return sum
}

// Labels returns the answers in order.
func (f Fractions) Labels() []string {
	labels := make([]string, len(f.Answers))
	for i, a := range f.Answers {
		labels[i] = a.Answer
	}
	return labels
}

// Values returns the fractions in order.
func (f Fractions) Values() []float64 {
	values := make([]float64, len(f.Answers))
	for i, a := range f.Answers {
		values[i] = a.Fraction
	}
	return values
}

// Top returns the n most frequent answers. n <= 0 keeps everything.
func (f Fractions) Top(n int) Fractions {
	if n <= 0 || n >= len(f.Answers) {
		return f
	}
	f.Answers = slices.Clone(f.Answers[:n])
	return f
}

// column returns the named series or ErrColumnNotFound.
func column(df dataframe.DataFrame, name string) (series.Series, error) {
	if df.Err != nil {
		return series.Series{}, df.Err
	}
	if !slices.Contains(df.Names(), name) {
		return series.Series{}, apperrors.NewColumnNotFoundError(name)
	}
	s := df.Col(name)
	if s.Err != nil {
		return series.Series{}, s.Err
	}
	return s, nil
}

// isEmptyDataset reports whether df is the no-such-year sentinel.
func isEmptyDataset(df dataframe.DataFrame) bool {
	return df.Err == nil && df.Ncol() == 0 && df.Nrow() == 0
}

// DropMissing returns a new DataFrame without the rows whose value in
// column is missing. df itself is left unchanged.
func DropMissing(df dataframe.DataFrame, columnName string) (dataframe.DataFrame, error) {
	s, err := column(df, columnName)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	keep := make([]int, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if !s.Elem(i).IsNA() {
			keep = append(keep, i)
		}
	}

	out := df.Subset(keep)
	if out.Err != nil {
		return dataframe.DataFrame{}, out.Err
	}
	return out, nil
}

// AnsweredValues returns the non-missing values of column as strings.
func AnsweredValues(df dataframe.DataFrame, columnName string) ([]string, error) {
	if isEmptyDataset(df) {
		return nil, nil
	}
	s, err := column(df, columnName)
	if err != nil {
		return nil, err
	}

	values := make([]string, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			continue
		}
		values = append(values, elemText(el))
	}
	return values, nil
}

// elemText formats an answer the way it was written. gota prints floats
// with %f, so 1.5 would otherwise become "1.500000".
func elemText(el series.Element) string {
	if el.Type() == series.Float {
		return strconv.FormatFloat(el.Float(), 'f', -1, 64)
	}
	return el.String()
}

// FractionOfAnswers computes, for every distinct answer in column, the
// fraction of respondents who gave it. Respondents are the rows where the
// column is not missing.
//
// With a non-empty sep every cell is split on sep and each piece counts as a
// separate answer. With an empty sep whole cells are counted and the
// fractions sum to 1. No answered rows yields empty Fractions.
func FractionOfAnswers(df dataframe.DataFrame, columnName, sep string) (Fractions, error) {
	values, err := AnsweredValues(df, columnName)
	if err != nil {
		return Fractions{}, err
	}

	return Fractions{
		Column:      columnName,
		Respondents: len(values),
		Answers:     CountAnswers(values, sep),
	}, nil
}

// CountAnswers counts the answers in values, splitting each value on sep
// when sep is non-empty, and divides every count by len(values).
// Answers are ordered by descending count; ties keep first-seen order.
func CountAnswers(values []string, sep string) []AnswerCount {
	if len(values) == 0 {
		return []AnswerCount{}
	}

	index := make(map[string]int)
	var counts []AnswerCount
	add := func(answer string) {
		if i, ok := index[answer]; ok {
			counts[i].Count++
			return
		}
		index[answer] = len(counts)
		counts = append(counts, AnswerCount{Answer: answer, Count: 1})
	}

	for _, v := range values {
		if sep == "" {
			add(v)
			continue
		}
		for _, piece := range strings.Split(v, sep) {
			add(piece)
		}
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})

	denominator := float64(len(values))
	for i := range counts {
		counts[i].Fraction = float64(counts[i].Count) / denominator
	}
	return counts
}
