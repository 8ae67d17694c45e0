package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"

	"sosurvey/internal/analysis"
	apperrors "sosurvey/internal/errors"
	"sosurvey/internal/exporter"
	"sosurvey/internal/files"
	"sosurvey/internal/report"
	"sosurvey/internal/survey"
	"sosurvey/pkg/contracts"
	"sosurvey/pkg/contracts/domain"
)

func newRootCommand() *cobra.Command {
	opts := &globalOptions{}
	var a *app

	root := &cobra.Command{
		Use:           "surveyctl",
		Short:         "Answer statistics over yearly developer survey results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			a, err = newApp(cmd, opts)
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a != nil {
				a.close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (yaml or toml)")
	flags.StringVar(&opts.logFile, "log-file", "", "log file of the default logger")
	flags.StringVar(&opts.baseDir, "base-dir", "", "directory relative paths are resolved against (default: working directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "timestamped debug logging")
	flags.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&opts.noProgress, "no-progress", false, "hide progress bars")

	current := func() *app { return a }
	root.AddCommand(
		newYearsCommand(current),
		newFractionsCommand(current),
		newCompareCommand(current),
		newIndexCommand(current),
		newCheckCommand(current),
		newVersionCommand(),
	)
	return root
}

func newYearsCommand(current func() *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "years",
		Short: "List the survey years in the lookup table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			lookup, err := a.loader.Lookup()
			if err != nil {
				return err
			}

			years := make([]domain.SurveyYear, 0, lookup.Len())
			for _, year := range lookup.Years() {
				entry, _ := lookup.Get(year)
				years = append(years, domain.SurveyYear{Year: year, Archive: entry.ArchivePath, Member: entry.MemberName})
			}

			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(years)
			}
			for _, y := range years {
				fmt.Fprintln(a.out, a.color.Color(fmt.Sprintf("[bold]%s[reset]  %s [dark_gray](%s)", y.Year, y.Archive, y.Member)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the years as JSON")
	return cmd
}

type fractionsOptions struct {
	year       string
	column     string
	sep        string
	noSplit    bool
	top        int
	csvPath    string
	xlsxPath   string
	plot       bool
	horizontal bool
	colorMap   bool
	asJSON     bool
}

func newFractionsCommand(current func() *app) *cobra.Command {
	o := &fractionsOptions{}

	cmd := &cobra.Command{
		Use:   "fractions",
		Short: "Share of respondents giving each answer to a question",
		Example: `  surveyctl fractions --year 2019 --column LanguageWorkedWith --top 10 --plot
  surveyctl fractions --year 2018 --column Hobby --no-split --csv hobby_2018.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFractions(cmd, current(), o)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.year, "year", "", "survey year")
	f.StringVar(&o.column, "column", "", "question column")
	f.StringVar(&o.sep, "sep", analysis.DefaultSeparator, "separator of multi-select answers")
	f.BoolVar(&o.noSplit, "no-split", false, "count whole cells instead of splitting them")
	f.IntVar(&o.top, "top", 0, "only keep the n most frequent answers")
	f.StringVar(&o.csvPath, "csv", "", "write the distribution to this CSV file")
	f.StringVar(&o.xlsxPath, "xlsx", "", "write the distribution to this xlsx workbook")
	f.BoolVar(&o.plot, "plot", false, "render a bar chart into the reports directory")
	f.BoolVar(&o.horizontal, "horizontal", false, "draw horizontal bars")
	f.BoolVar(&o.colorMap, "color-map", false, "color bars by value")
	f.BoolVar(&o.asJSON, "json", false, "print the report document as JSON")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func runFractions(cmd *cobra.Command, a *app, o *fractionsOptions) error {
	ok, err := a.loader.Has(o.year)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("survey year %s", o.year))
	}

	df, err := a.loader.Load(a.ctx, o.year)
	if err != nil {
		return err
	}

	sep := a.separator(cmd, o.sep, o.noSplit)
	fractions, err := analysis.FractionOfAnswers(df, o.column, sep)
	if err != nil {
		return err
	}
	fractions = fractions.Top(o.top)

	a.logger.Info("Fractions computed",
		slog.String("year", o.year),
		slog.String("column", o.column),
		slog.Int("respondents", fractions.Respondents),
		slog.Int("answers", fractions.Len()))

	var written []string
	if o.csvPath != "" {
		path, err := exporter.NewCSVWriter(a.paths, a.logger).WriteFractions(o.csvPath, fractions)
		if err != nil {
			return err
		}
		written = append(written, path)
	}
	if o.xlsxPath != "" {
		path, err := exporter.NewWorkbookExporter(a.paths, a.logger).WriteFractions(o.xlsxPath, fractions)
		if err != nil {
			return err
		}
		written = append(written, path)
	}
	if o.plot && fractions.Len() == 0 {
		a.logger.Warn("No answers to plot", slog.String("column", o.column), slog.String("year", o.year))
	} else if o.plot {
		path, err := plotFractions(a, o, fractions)
		if err != nil {
			return err
		}
		written = append(written, path)
	}

	if o.asJSON {
		return exporter.WriteReport(a.out, exporter.BuildReport(o.year, fractions, sep, written...))
	}
	if err := exporter.WriteTable(a.out, fractions); err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintln(a.out, a.color.Color("[green]wrote[reset] "+path))
	}
	return nil
}

func plotFractions(a *app, o *fractionsOptions, f analysis.Fractions) (string, error) {
	rc := a.reportConfig()
	if err := a.validator.ValidateOutputDirectory(rc.OutDir); err != nil {
		return "", err
	}
	plotter, err := report.NewPlotter(rc, a.logger)
	if err != nil {
		return "", err
	}

	opts := report.Options{
		Title:       fmt.Sprintf("%s %s", o.column, o.year),
		YTitle:      "share of respondents",
		UseColorMap: o.colorMap,
	}
	if o.horizontal {
		opts.XTitle, opts.YTitle = opts.YTitle, ""
		return plotter.HorizontalBarPlot(report.FractionsTable(f), opts)
	}
	return plotter.BarPlot(report.FractionsTable(f), opts)
}

type compareOptions struct {
	years   []string
	column  string
	answers []string
	sep     string
	noSplit bool
	top     int
	csvPath string
	plot    bool
}

func newCompareCommand(current func() *app) *cobra.Command {
	o := &compareOptions{}

	cmd := &cobra.Command{
		Use:     "compare",
		Short:   "Compare answer shares of one question across survey years",
		Example: `  surveyctl compare --years 2017,2018,2019 --column LanguageWorkedWith --answers Go,Rust --plot`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCompare(cmd, current(), o)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&o.years, "years", nil, "survey years (default: every year in the lookup)")
	f.StringVar(&o.column, "column", "", "question column")
	f.StringSliceVar(&o.answers, "answers", nil, "answers to follow (default: the most frequent ones)")
	f.StringVar(&o.sep, "sep", analysis.DefaultSeparator, "separator of multi-select answers")
	f.BoolVar(&o.noSplit, "no-split", false, "count whole cells instead of splitting them")
	f.IntVar(&o.top, "top", 5, "number of answers to follow when --answers is empty")
	f.StringVar(&o.csvPath, "csv", "", "write the comparison to this CSV file")
	f.BoolVar(&o.plot, "plot", false, "render a line chart into the reports directory")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func runCompare(cmd *cobra.Command, a *app, o *compareOptions) error {
	years := o.years
	if len(years) == 0 {
		all, err := a.loader.Years()
		if err != nil {
			return err
		}
		years = all
	}
	if len(years) == 0 {
		return apperrors.NewNotFoundError("survey years")
	}

	keys := make([]any, len(years))
	for i, y := range years {
		keys[i] = y
		if ok, err := a.loader.Has(y); err != nil {
			return err
		} else if !ok {
			a.logger.Warn("Survey year not in lookup", slog.String("year", y))
		}
	}

	var done func(string)
	if !a.opts.noProgress {
		bar := progressbar.NewOptions(len(keys),
			progressbar.OptionSetWriter(a.errOut),
			progressbar.OptionSetWidth(30),
		)
		done = func(string) { _ = bar.Add(1) }
		defer func() {
			_ = bar.Finish()
			fmt.Fprintln(a.errOut)
		}()
	}

	frames, err := a.loader.LoadManyFunc(a.ctx, keys, done)
	if err != nil {
		return err
	}

	sep := a.separator(cmd, o.sep, o.noSplit)
	byYear := make(map[string]analysis.Fractions, len(frames))
	for year, df := range frames {
		f, err := analysis.FractionOfAnswers(df, o.column, sep)
		if err != nil {
			return fmt.Errorf("survey %s: %w", year, err)
		}
		byYear[year] = f
	}

	trend := analysis.CompareYears(byYear, o.answers...)
	if len(o.answers) == 0 && o.top > 0 && len(trend.Answers) > o.top {
		trend = analysis.CompareYears(byYear, trend.Answers[:o.top]...)
	}

	if err := exporter.WriteTrend(a.out, trend); err != nil {
		return err
	}

	if o.csvPath != "" {
		path, err := exporter.NewCSVWriter(a.paths, a.logger).WriteTrend(o.csvPath, trend)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.color.Color("[green]wrote[reset] "+path))
	}
	if o.plot {
		rc := a.reportConfig()
		if err := a.validator.ValidateOutputDirectory(rc.OutDir); err != nil {
			return err
		}
		plotter, err := report.NewPlotter(rc, a.logger)
		if err != nil {
			return err
		}
		path, err := plotter.LinePlot(report.TrendTable(trend), report.Options{
			Title:  fmt.Sprintf("%s over time", o.column),
			XTitle: "survey year",
			YTitle: "share of respondents",
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.out, a.color.Color("[green]wrote[reset] "+path))
	}
	return nil
}

func newIndexCommand(current func() *app) *cobra.Command {
	var (
		dir   string
		write bool
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build the lookup table from a directory of survey archives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if dir == "" {
				dir = a.paths.InputDir
			}

			archives, err := files.NewDiscovery(a.paths.BaseDir, a.logger).FindSurveyArchives(dir)
			if err != nil {
				return err
			}

			entries := make(map[string]survey.Entry, len(archives))
			for _, archive := range archives {
				path := archive.Path
				if rel, err := filepath.Rel(a.archiveDir, path); err == nil && !strings.HasPrefix(rel, "..") {
					path = rel
				}
				year := domain.SurveyYear{Year: archive.Year, Archive: path, Member: archive.Member}
				if err := year.Validate(); err != nil {
					return apperrors.NewAppValidationError(fmt.Sprintf("archive %s: %v", archive.Path, err))
				}
				entries[year.Year] = survey.Entry{ArchivePath: year.Archive, MemberName: year.Member}
			}
			lookup := survey.NewLookup(entries)

			if !write {
				_, err := lookup.WriteTo(a.out)
				return err
			}

			if err := os.MkdirAll(filepath.Dir(a.paths.LookupFile), 0755); err != nil {
				return apperrors.NewStorageError("failed to create lookup directory", err)
			}
			out, err := os.Create(a.paths.LookupFile)
			if err != nil {
				return apperrors.NewStorageError("failed to create lookup file", err)
			}
			if _, err := lookup.WriteTo(out); err != nil {
				out.Close()
				return apperrors.NewStorageError("failed to write lookup file", err)
			}
			if err := out.Close(); err != nil {
				return apperrors.NewStorageError("failed to write lookup file", err)
			}

			a.logger.Info("Lookup written",
				slog.String("file", a.paths.LookupFile),
				slog.Int("years", lookup.Len()))
			fmt.Fprintln(a.out, a.color.Color(fmt.Sprintf("[green]wrote[reset] %s (%d years)", a.paths.LookupFile, lookup.Len())))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the archives (default: the input directory)")
	cmd.Flags().BoolVar(&write, "write", false, "write the lookup file instead of printing it")
	return cmd
}

func newCheckCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify that every archive in the lookup table is readable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := current()
			if err := a.validator.ValidateFile(a.paths.LookupFile); err != nil {
				return err
			}
			lookup, err := a.loader.Lookup()
			if err != nil {
				return err
			}

			failed := 0
			for _, year := range lookup.Years() {
				entry, _ := lookup.Get(year)
				if err := a.validator.ValidateSurveyArchive(a.archivePath(entry), entry.MemberName); err != nil {
					failed++
					fmt.Fprintln(a.out, a.color.Color(fmt.Sprintf("[red]FAIL[reset] %s: %v", year, err)))
					continue
				}
				fmt.Fprintln(a.out, a.color.Color(fmt.Sprintf("[green]ok[reset]   %s", year)))
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d survey archives failed validation", failed, lookup.Len())
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		// the version needs neither config nor logging
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.ReadBuildInfo())
		},
	}
}
