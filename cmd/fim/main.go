// cmd/fim/main.go
package main

import (
	"fmt"
	"os"

	"fim/internal/config"
	fimerrors "fim/internal/errors"
	"fim/internal/logging"
	"fim/internal/repo"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// app is the state shared by every command of one invocation.
type app struct {
	v          *viper.Viper
	configPath string

	cwd    string
	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "fim",
		Short: "fim is a minimal file integrity monitor",
		Long: `fim records a baseline fingerprint (mtime, size, content digest) for every
file under a working tree and reports which files were modified and which
are untracked when compared against that baseline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return fimerrors.Usage(fimerrors.ExitUsage,
					fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
			return fimerrors.Usage(fimerrors.ExitUsage, "missing command")
		},
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				a.logger.Sync()
			}
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fimerrors.Usage(fimerrors.ExitUsage, err.Error())
	})

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default is ./"+config.FileName+".yaml)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default warn)")
	flags.String("backend", "", "manifest backend: file or badger (default file)")
	a.v.BindPFlag("log_level", flags.Lookup("log-level"))
	a.v.BindPFlag("backend", flags.Lookup("backend"))

	rootCmd.AddCommand(
		a.initCmd(),
		a.addCmd(),
		a.statusCmd(),
		a.untrackCmd(),
		a.exportCmd(),
		a.importCmd(),
		a.watchCmd(),
	)

	return rootCmd
}

// setup loads configuration and builds the run-tagged logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fimerrors.Internal(fmt.Errorf("getting current directory: %w", err))
	}
	a.cwd = cwd

	cfg, err := config.Load(a.v, cwd, a.configPath)
	if err != nil {
		return fimerrors.Usage(fimerrors.ExitUsage, err.Error())
	}
	a.cfg = cfg

	log, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return fimerrors.Internal(fmt.Errorf("initializing logger: %w", err))
	}

	ctx := logging.NewRunContext(cmd.Context())
	cmd.SetContext(ctx)
	a.logger = log.WithRunID(ctx).With(zap.String("command", cmd.Name()))
	a.logger.Debug("configuration loaded",
		zap.String("store_dir", cfg.StoreDir),
		zap.String("backend", cfg.Backend),
		zap.String("config", a.v.ConfigFileUsed()))

	return nil
}

// openRepo opens the repository rooted at the invocation directory.
func (a *app) openRepo() (*repo.Repo, error) {
	return repo.Open(a.cwd, a.cfg, a.logger)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(fimerrors.ExitCode(err))
	}
}
