package exporter

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"sosurvey/internal/analysis"
)

// WriteTable prints an answer distribution as an aligned text table.
func WriteTable(w io.Writer, f analysis.Fractions) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "%s\t%s\t%s\t\n", FractionsHeader[0], FractionsHeader[1], FractionsHeader[2])
	for _, a := range f.Answers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", a.Answer, strconv.Itoa(a.Count), formatPercent(a.Fraction))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d respondents answered %s\n", f.Respondents, f.Column)
	return err
}

// WriteTrend prints a year-by-answer table of percentages.
func WriteTrend(w io.Writer, t analysis.Trend) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Answer\t")
	for _, year := range t.Years {
		fmt.Fprintf(tw, "%s\t", year)
	}
	fmt.Fprintln(tw)
	for _, answer := range t.Answers {
		fmt.Fprintf(tw, "%s\t", answer)
		for _, v := range t.Values[answer] {
			fmt.Fprintf(tw, "%s\t", formatPercent(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
