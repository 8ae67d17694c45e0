package contracts

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version is the release of the surveyctl toolkit.
const Version = "0.3.0"

// DataFormatVersion tags exported report documents. It changes when a field
// of domain.Report changes meaning.
const DataFormatVersion = "v1"

// Release builds set these with
// -ldflags "-X sosurvey/pkg/contracts.GitCommit=... -X sosurvey/pkg/contracts.BuildTime=...".
// Otherwise they are filled from the VCS stamp of the binary, when present.
var (
	GitCommit = ""
	BuildTime = ""
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit,omitempty"`
	Built      string `json:"built,omitempty"`
	Modified   bool   `json:"modified,omitempty"`
	GoVersion  string `json:"go_version"`
	DataFormat string `json:"data_format"`
}

// ReadBuildInfo collects the version of the running binary.
func ReadBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:    Version,
		Commit:     GitCommit,
		Built:      BuildTime,
		GoVersion:  runtime.Version(),
		DataFormat: DataFormatVersion,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Built == "" {
				info.Built = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String renders the build as one line, e.g.
// "surveyctl v0.3.0 (commit 1a2b3c4d5e6f, go1.23.0, report format v1)".
func (b BuildInfo) String() string {
	parts := make([]string, 0, 4)
	if b.Commit != "" {
		commit := b.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		if b.Modified {
			commit += "+dirty"
		}
		parts = append(parts, "commit "+commit)
	}
	if b.Built != "" {
		parts = append(parts, "built "+b.Built)
	}
	parts = append(parts, b.GoVersion, "report format "+b.DataFormat)
	return fmt.Sprintf("surveyctl v%s (%s)", b.Version, strings.Join(parts, ", "))
}
