package analysis

import (
	"sort"
)

// Trend lines up the fractions of the same answers across survey years.
type Trend struct {
	Years   []string
	Answers []string
	// Values[answer][i] is the fraction for Years[i]; 0 when the answer
	// does not occur that year.
	Values map[string][]float64
}

// CompareYears builds a Trend from per-year fractions. Without explicit
// answers every answer seen in any year is included, ordered by the sum of
// its fractions over all years.
func CompareYears(byYear map[string]Fractions, answers ...string) Trend {
	years := make([]string, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Strings(years)

	if len(answers) == 0 {
		answers = rankAnswers(byYear, years)
	}

	values := make(map[string][]float64, len(answers))
	for _, answer := range answers {
		row := make([]float64, len(years))
		for i, year := range years {
			row[i], _ = byYear[year].Get(answer)
		}
		values[answer] = row
	}

	return Trend{Years: years, Answers: answers, Values: values}
}

func rankAnswers(byYear map[string]Fractions, years []string) []string {
	totals := make(map[string]float64)
	var order []string
	for _, year := range years {
		for _, a := range byYear[year].Answers {
			if _, seen := totals[a.Answer]; !seen {
				order = append(order, a.Answer)
			}
			totals[a.Answer] += a.Fraction
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]] > totals[order[j]]
	})
	return order
}
