package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := resolveBuild(debug.ReadBuildInfo)
		if versionJSON {
			return outputJSON(cmd.OutOrStdout(), info)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "debugkit %s\n", info.Version)
		fmt.Fprintf(w, "  commit:   %s\n", info.Commit)
		fmt.Fprintf(w, "  built:    %s\n", info.Built)
		fmt.Fprintf(w, "  go:       %s %s\n", info.Go, info.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(versionCmd)
}

type buildDetails struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Built    string `json:"built"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// resolveBuild prefers the values stamped by the release build and falls
// back to what the Go toolchain embedded for go install and plain builds.
func resolveBuild(read func() (*debug.BuildInfo, bool)) buildDetails {
	d := buildDetails{
		Version:  stamped(appVersion, "dev"),
		Commit:   stamped(appCommit, "none"),
		Built:    stamped(appDate, "unknown"),
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := read()
	if !ok || bi == nil {
		return withUnknowns(d)
	}
	if bi.GoVersion != "" {
		d.Go = bi.GoVersion
	}
	if d.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		d.Version = bi.Main.Version
	}
	var fromVCS, dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if d.Commit == "" {
				d.Commit = shortRevision(s.Value)
				fromVCS = true
			}
		case "vcs.time":
			if d.Built == "" {
				d.Built = s.Value
			}
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if fromVCS && dirty {
		d.Commit += "-dirty"
	}
	return withUnknowns(d)
}

// stamped returns v unless it is empty or the placeholder main starts with.
func stamped(v, placeholder string) string {
	if v == placeholder {
		return ""
	}
	return v
}

func shortRevision(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

func withUnknowns(d buildDetails) buildDetails {
	if d.Version == "" {
		d.Version = "dev"
	}
	if d.Commit == "" {
		d.Commit = "none"
	}
	if d.Built == "" {
		d.Built = "unknown"
	}
	return d
}
