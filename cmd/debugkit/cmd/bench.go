package cmd

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/debugkit"
	"github.com/hugo-lorenzo-mato/debugkit/internal/config"
)

var (
	benchName   string
	benchRepeat int
	benchJSON   bool
)

var benchCmd = &cobra.Command{
	Use:   "bench [flags] -- command [args...]",
	Short: "Run a command as a benchmark session",
	Long: `Run a command one or more times, each run inside its own benchmark
session and fault boundary. Results and failures are logged through the
configured sink. Memory figures come from benchmark.memory_source and
describe this process, not the child.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().StringVar(&benchName, "name", "", "session name (default: command base name)")
	benchCmd.Flags().IntVarP(&benchRepeat, "repeat", "r", 1, "number of runs")
	benchCmd.Flags().BoolVar(&benchJSON, "json", false, "output results as JSON")

	rootCmd.AddCommand(benchCmd)
}

type benchRun struct {
	Session    string        `json:"session"`
	Time       time.Duration `json:"time_ns"`
	Memory     int64         `json:"memory"`
	PeakMemory uint64        `json:"peak_memory"`
	Error      string        `json:"error,omitempty"`
}

func runBench(cmd *cobra.Command, args []string) error {
	if benchRepeat < 1 {
		return fmt.Errorf("--repeat must be at least 1, got %d", benchRepeat)
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	settings.Set(config.KeyBenchmarking, true)

	d := debugkit.New(settings,
		debugkit.WithLogger(newLogger().WithComponent("bench")),
		debugkit.WithConsole(cmd.ErrOrStderr()),
	)
	defer d.Shutdown()

	name := benchName
	if name == "" {
		name = filepath.Base(args[0])
	}
	ctx := contextOf(cmd)
	line := strings.Join(args, " ")

	runs := make([]benchRun, 0, benchRepeat)
	failed := 0
	for i := 1; i <= benchRepeat; i++ {
		session := name
		if benchRepeat > 1 {
			session = fmt.Sprintf("%s#%d", name, i)
		}
		run := benchRun{Session: session}

		err := d.Guard(func() error {
			d.StartBenchmark(session)
			child := exec.CommandContext(ctx, args[0], args[1:]...)
			child.Stdout = cmd.ErrOrStderr()
			child.Stderr = cmd.ErrOrStderr()
			runErr := child.Run()

			res, err := d.StopBenchmark(session)
			if err != nil {
				return err
			}
			run.Time, run.Memory, run.PeakMemory = res.Time, res.Memory, res.PeakMemory
			if runErr != nil {
				return debugkit.NewFaultf(debugkit.SeverityUserWarning,
					"benchmark %s: %s: %v", session, line, runErr)
			}
			return d.Info("benchmark finished", "session", session, "command", line, "result", res.String())
		})
		if err != nil {
			run.Error = err.Error()
			failed++
		}
		runs = append(runs, run)
	}

	if benchJSON {
		if err := outputJSON(cmd.OutOrStdout(), runs); err != nil {
			return err
		}
	} else {
		printBenchRuns(cmd, runs)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d runs failed", failed, len(runs))
	}
	return nil
}

func printBenchRuns(cmd *cobra.Command, runs []benchRun) {
	out := cmd.OutOrStdout()
	var total, fastest, slowest time.Duration
	for i, r := range runs {
		status := ""
		if r.Error != "" {
			status = "  FAILED"
		}
		res := debugkit.Result{Time: r.Time, Memory: r.Memory, PeakMemory: r.PeakMemory}
		fmt.Fprintf(out, "%-24s %s%s\n", r.Session, res, status)

		total += r.Time
		if i == 0 || r.Time < fastest {
			fastest = r.Time
		}
		if r.Time > slowest {
			slowest = r.Time
		}
	}
	if len(runs) > 1 && !quiet {
		mean := total / time.Duration(len(runs))
		fmt.Fprintf(out, "%s runs: min %s, mean %s, max %s\n",
			humanize.Comma(int64(len(runs))), fastest.Round(time.Microsecond),
			mean.Round(time.Microsecond), slowest.Round(time.Microsecond))
	}
}
