// Package files discovers survey archives on disk.
//
// Yearly survey downloads are zip files named after their year, each holding
// a results CSV next to schema files and READMEs. Discovery turns a directory
// of such downloads into the year, archive and member triples the survey
// lookup table is built from:
//
//	discovery := files.NewDiscovery(baseDir, logger)
//	archives, err := discovery.FindSurveyArchives("data/input/stackoverflow")
package files
