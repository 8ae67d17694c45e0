// Package exporter writes answer statistics to files and terminals.
//
// CSVWriter produces plain CSV below the reports directory, WorkbookExporter
// an xlsx workbook with one sheet and chart per column, and WriteTable an
// aligned text table for the command line.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths, logger)
//	path, err := writer.WriteFractions("languages_2019.csv", fractions)
//
//	workbook := exporter.NewWorkbookExporter(paths, logger)
//	path, err = workbook.WriteFractions("survey_2019.xlsx", languages, hobby)
package exporter
