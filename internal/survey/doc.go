// Package survey loads yearly developer-survey results out of zip archives.
//
// A JSON lookup file names, for every survey year, the archive that holds
// the results and the CSV member inside it:
//
//	{
//	    "2019": {"zpth": "data/input/stackoverflow/developer_survey_2019.zip",
//	             "fname": "survey_results_public.csv"}
//	}
//
// Loader reads that file once and then turns a year into a gota DataFrame:
//
//	loader, _ := survey.NewLazyLoader(cfg.Survey.LookupPath, logger, survey.LoaderConfigFrom(cfg.Survey))
//	df, err := loader.Load(ctx, 2019)
//
// Years that are not in the lookup produce an empty DataFrame rather than an
// error. Members are decoded from latin-1 unless configured otherwise.
package survey
