package report

import (
	"fmt"
	"math"

	"sosurvey/internal/analysis"
)

// Column is one named data series of a Table.
type Column struct {
	Name   string
	Values []float64
}

// Table is the chart input: row labels along the category axis and one or
// more columns of values, each plotted as its own bar group or line.
type Table struct {
	Labels  []string
	Columns []Column
}

// SeriesTable builds a single-column table.
func SeriesTable(name string, labels []string, values []float64) Table {
	return Table{
		Labels:  labels,
		Columns: []Column{{Name: name, Values: values}},
	}
}

// FractionsTable turns an answer distribution into a single-column table in
// its own order.
func FractionsTable(f analysis.Fractions) Table {
	return SeriesTable(f.Column, f.Labels(), f.Values())
}

// TrendTable puts the years on the category axis and one column per answer.
func TrendTable(t analysis.Trend) Table {
	table := Table{Labels: t.Years}
	for _, answer := range t.Answers {
		table.Columns = append(table.Columns, Column{Name: answer, Values: t.Values[answer]})
	}
	return table
}

// Validate checks that every column has one value per label.
func (t Table) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table has no columns")
	}
	for _, c := range t.Columns {
		if len(c.Values) != len(t.Labels) {
			return fmt.Errorf("column %q has %d values for %d labels", c.Name, len(c.Values), len(t.Labels))
		}
	}
	return nil
}

// Range returns the smallest and largest finite value in the table.
func (t Table) Range() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, c := range t.Columns {
		for _, v := range c.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	if min > max {
		return 0, 0
	}
	return min, max
}
