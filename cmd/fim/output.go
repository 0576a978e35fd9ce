package main

import (
	"fmt"
	"io"
	"path/filepath"

	"fim/internal/tracker"
	"fim/shared/types"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	yellow = color.New(color.FgYellow).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
)

// printReport lists modified files before untracked ones, each group in
// path order, with paths shown relative to cwd.
func printReport(out io.Writer, cwd string, report *tracker.Report) {
	if report.Clean() {
		fmt.Fprintln(out, "No modified files found!")
		return
	}

	if len(report.Modified) > 0 {
		fmt.Fprintln(out, "Modified files:")
		for _, p := range report.Modified {
			fmt.Fprintf(out, "\t%s %s\n", yellow(shared.Modified.Short()), displayPath(cwd, p))
		}
		fmt.Fprintln(out)
	}

	if len(report.Untracked) > 0 {
		fmt.Fprintln(out, "Untracked files:")
		fmt.Fprintln(out, "  (use \"fim add <path>...\" to record a baseline)")
		for _, p := range report.Untracked {
			fmt.Fprintf(out, "\t%s %s\n", blue(shared.Untracked.Short()), displayPath(cwd, p))
		}
		fmt.Fprintln(out)
	}
}

// printChange prints one watch transition. A file that went back to its
// baseline is shown with a check mark.
func printChange(out io.Writer, cwd string, c shared.Change) {
	var marker string
	switch c.Status {
	case shared.Modified:
		marker = yellow(c.Status.Short())
	case shared.Untracked:
		marker = blue(c.Status.Short())
	default:
		marker = green("✓")
	}
	fmt.Fprintf(out, "%s %s\n", marker, displayPath(cwd, c.Path))
}

func printFailures(cmd *cobra.Command, n int) {
	if n == 0 {
		return
	}
	color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(),
		"warning: %d %s could not be read (see log above)\n", n, plural(n, "entry", "entries"))
}

func displayPath(cwd, p string) string {
	rel, err := filepath.Rel(cwd, p)
	if err != nil {
		return p
	}
	return rel
}
