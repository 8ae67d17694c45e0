// Package config provides centralized configuration for the survey tools.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. Configuration file (YAML)
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern SOSURVEY_<SECTION>_<FIELD>:
//
//	SOSURVEY_SURVEY_LOOKUP_PATH=./data/input/stackoverflow/survey_pathes.json
//	SOSURVEY_SURVEY_ENCODING=latin-1
//	SOSURVEY_LOGGING_LEVEL=debug
//	SOSURVEY_REPORT_FORMAT=svg
//
// # Path Management
//
// Paths resolves the lookup file, report directory and log directory
// against a base directory (the working directory by default):
//
//	paths, _ := config.GetPaths()
//	out := paths.GetReportPath("languages.png")
//
// # Validation
//
// Load validates the merged configuration with struct tags, so an
// unsupported chart format or log level fails at startup.
//
// # Testing
//
// Use config.Default() for a configuration that needs neither environment
// variables nor files.
package config
