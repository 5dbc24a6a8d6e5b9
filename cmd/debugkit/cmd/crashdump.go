package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/debugkit/internal/fault"
)

var (
	crashDumpDir  string
	crashDumpJSON bool
)

var crashDumpCmd = &cobra.Command{
	Use:   "crashdump",
	Short: "Show the most recent crash dump",
	RunE:  runCrashDump,
}

func init() {
	crashDumpCmd.Flags().StringVar(&crashDumpDir, "dir", "", "crash dump directory (default from config)")
	crashDumpCmd.Flags().BoolVar(&crashDumpJSON, "json", false, "print the raw dump")

	rootCmd.AddCommand(crashDumpCmd)
}

func runCrashDump(cmd *cobra.Command, _ []string) error {
	dir := crashDumpDir
	if dir == "" {
		settings, err := loadSettings()
		if err != nil {
			return err
		}
		dir = settings.CrashDumpDir()
	}

	dump, err := fault.LoadLatestCrashDump(dir)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if crashDumpJSON {
		return outputJSON(out, dump)
	}

	ex := dump.Exception
	fmt.Fprintf(out, "Crash %s (%s)\n", dump.ID, humanize.Time(dump.Timestamp))
	fmt.Fprintf(out, "  %s: %s\n", ex.Type, ex.Message)
	fmt.Fprintf(out, "  at %s:%d\n", ex.File, ex.Line)
	fmt.Fprintf(out, "  pid %d, %s %s/%s\n", dump.ProcessID, dump.GoVersion, dump.GOOS, dump.GOARCH)
	if dump.Host.MemTotal > 0 {
		fmt.Fprintf(out, "  memory %s of %s used\n",
			humanize.IBytes(dump.Host.MemUsed), humanize.IBytes(dump.Host.MemTotal))
	}
	if dump.Host.OpenFDs > 0 {
		fmt.Fprintf(out, "  %d open file descriptors (limit %d)\n", dump.Host.OpenFDs, dump.Host.MaxFDs)
	}
	if dump.Host.DiskFree > 0 {
		fmt.Fprintf(out, "  %s free next to the dump\n", humanize.IBytes(dump.Host.DiskFree))
	}
	fmt.Fprintf(out, "  %d recent log entries, %d errors\n", len(dump.RecentLogs), len(dump.Errors))
	if dump.StackTrace != "" && !quiet {
		fmt.Fprintf(out, "\n%s\n", dump.StackTrace)
	}
	return nil
}
