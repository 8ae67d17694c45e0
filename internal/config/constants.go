package config

// Application constants
const (
	// Survey input
	DefaultLookupPath = "./data/input/stackoverflow/survey_pathes.json"
	DefaultInputDir   = "data/input/stackoverflow"
	DefaultEncoding   = "latin-1"
	DefaultSeparator  = ";"

	// Output
	DefaultReportsDir = "reports"
	DefaultLogFile    = "log.txt"
	DefaultChartName  = "no_name"

	// Rotating log file. lumberjack counts megabytes and cannot rotate below
	// 1 MB, so this is the smallest size it can express.
	LogFileMaxSizeMB  = 1
	LogFileMaxBackups = 3
)

// DefaultMissingValues are the CSV cell values treated as unanswered.
var DefaultMissingValues = []string{"", "NA", "NaN", "N/A", "<nil>"}
