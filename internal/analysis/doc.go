// Package analysis computes answer statistics over survey datasets.
//
// Survey questions that allow several answers store them in one cell,
// separated by ";". FractionOfAnswers splits those cells and reports, for
// each answer, the share of respondents who picked it:
//
//	f, err := analysis.FractionOfAnswers(df, "LanguageWorkedWith", analysis.DefaultSeparator)
//	for _, a := range f.Top(10).Answers {
//	    fmt.Printf("%-20s %5.1f%%\n", a.Answer, 100*a.Fraction)
//	}
//
// Respondents who skipped the question are not counted. The input
// DataFrame is never modified; DropMissing returns a filtered copy.
package analysis
