// Package version reports which netaudit build is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X github.com/pankaj-dahiya-devops/netaudit/internal/version.Version=v1.2.0"
// and likewise for Commit and Date. A plain "go build" or "go install" leaves
// them unset and Info falls back to the VCS stamp Go embeds in the binary.
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

// Info returns the text printed by "netaudit version".
func Info() string {
	bi, _ := debug.ReadBuildInfo()
	commit, date := stamp(bi, Commit, Date)
	return fmt.Sprintf("netaudit %s\ncommit: %s\nbuilt: %s\ngo: %s\n", Version, commit, date, runtime.Version())
}

// stamp fills an unset commit or date from the vcs.* build settings. A
// modified working tree marks the commit "-dirty".
func stamp(bi *debug.BuildInfo, commit, date string) (string, string) {
	if bi != nil && (commit == "" || date == "") {
		var rev, at string
		dirty := false
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				rev = s.Value
			case "vcs.time":
				at = s.Value
			case "vcs.modified":
				dirty = s.Value == "true"
			}
		}
		if commit == "" && rev != "" {
			if len(rev) > 12 {
				rev = rev[:12]
			}
			if dirty {
				rev += "-dirty"
			}
			commit = rev
		}
		if date == "" {
			date = at
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if date == "" {
		date = "unknown"
	}
	return commit, date
}
