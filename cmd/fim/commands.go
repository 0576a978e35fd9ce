package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	fimerrors "fim/internal/errors"
	"fim/internal/repo"
	"fim/shared/types"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// exactArgs rejects any argument count other than n with the given exit code.
func exactArgs(n, code int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return fimerrors.Usage(code, fmt.Sprintf("%q accepts %d arg(s), received %d\nUsage: %s",
				cmd.CommandPath(), n, len(args), cmd.UseLine()))
		}
		return nil
	}
}

func (a *app) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new fim repository in the current directory",
		Args:  exactArgs(0, fimerrors.ExitInitArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := repo.Initialize(a.cwd, a.cfg)
			if err != nil {
				return err
			}

			a.logger.Info("initialized repository", zap.String("store", store))
			fmt.Fprintln(cmd.OutOrStdout(), "Initialized empty fim repository in", store)
			return nil
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>",
		Short: "Record the current fingerprint of a file or every file under a directory",
		Args:  exactArgs(1, fimerrors.ExitAddArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			result, err := r.Tracker.Add(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Tracked %d %s\n", result.Files, plural(result.Files, "file", "files"))
			printFailures(cmd, len(result.Failures))
			return nil
		},
	}
}

func (a *app) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show modified and untracked files under the current directory",
		Args:  exactArgs(0, fimerrors.ExitStatusArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			report, err := r.Tracker.Status(a.cwd)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), a.cwd, report)
			printFailures(cmd, len(report.Failures))
			return nil
		},
	}
}

func (a *app) untrackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "untrack <path>",
		Short: "Forget the recorded fingerprints for a file or directory",
		Args:  exactArgs(1, fimerrors.ExitUntrackArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			result, err := r.Tracker.Untrack(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Untracked %d %s\n", result.Files, plural(result.Files, "file", "files"))
			printFailures(cmd, len(result.Failures))
			return nil
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write every manifest record into a zstd-compressed archive",
		Args:  exactArgs(1, fimerrors.ExitExportArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			path := args[0]
			f, err := os.Create(path)
			if err != nil {
				return fimerrors.FileSystem(path, err)
			}

			stats, err := r.Manifest.Export(f)
			if cerr := f.Close(); err == nil && cerr != nil {
				err = fimerrors.FileSystem(path, cerr)
			}
			if err != nil {
				os.Remove(path)
				return fmt.Errorf("exporting manifest: %w", err)
			}

			if stats.Skipped > 0 {
				a.logger.Warn("corrupt records left out of export", zap.Int("count", stats.Skipped))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s to %s\n",
				stats.Records, plural(stats.Records, "record", "records"), path)
			return nil
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load manifest records from an archive written by export",
		Args:  exactArgs(1, fimerrors.ExitImportArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			path := args[0]
			f, err := os.Open(path)
			if err != nil {
				return fimerrors.FileSystem(path, err)
			}
			defer f.Close()

			n, err := r.Manifest.Import(f)
			if err != nil {
				return fmt.Errorf("importing %s after %d records: %w", path, n, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d %s from %s\n", n, plural(n, "record", "records"), path)
			return nil
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Report files as they become modified or untracked",
		Args:  exactArgs(0, fimerrors.ExitWatchArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.openRepo()
			if err != nil {
				return err
			}
			defer r.Close()

			w, err := r.Tracker.NewWatcher(a.cwd, a.cfg.WatchCacheSize)
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s (press Ctrl+C to stop)\n", a.cwd)
			return w.Run(ctx, func(c shared.Change) {
				printChange(out, a.cwd, c)
			})
		},
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
