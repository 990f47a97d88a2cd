// Package version reports build information for the /api/version endpoint
// and the startup log.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

// Set via -ldflags "-X fingenius/internal/version.Version=..."
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// Info describes the running binary
type Info struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Revision  string `json:"revision,omitempty"`
	Modified  bool   `json:"modified"`
}

// Get collects version details, filling VCS fields from the embedded build info
func Get() Info {
	info := Info{Version: Version, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String returns a one-line summary such as "dev (go1.24.0, 1a2b3c4d)"
func (i Info) String() string {
	details := []string{i.GoVersion}
	if i.Revision != "" {
		rev := i.Revision
		if len(rev) > 8 {
			rev = rev[:8]
		}
		if i.Modified {
			rev += "+dirty"
		}
		details = append(details, rev)
	}
	if i.BuildTime != "unknown" {
		details = append(details, "built "+i.BuildTime)
	}
	return fmt.Sprintf("%s (%s)", i.Version, strings.Join(details, ", "))
}
