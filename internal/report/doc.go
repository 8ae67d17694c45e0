// Package report renders the charts of the survey report with gonum/plot.
//
// All charts share one look: label and title font sizes, a transparent
// background and a fixed width. Files are named after the chart title.
package report
