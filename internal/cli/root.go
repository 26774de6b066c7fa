package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/envfile"
	"github.com/michalnik/money-collector/internal/infra/logger"
	"github.com/michalnik/money-collector/internal/infra/tomlconfig"
	"github.com/michalnik/money-collector/internal/ui/tui"
	"github.com/michalnik/money-collector/internal/usecase"
)

// rootOptions holds the persistent flags and what the bootstrap resolved from them.
type rootOptions struct {
	debug      bool
	configFlag string
	envFile    string

	configPath string
	cleanup    func() error

	// in is the prompt input; nil means the terminal.
	in io.Reader
}

func (o *rootOptions) close() {
	if o.cleanup != nil {
		_ = o.cleanup()
		o.cleanup = nil
	}
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := &rootOptions{}
	cmd := newRootCmd(opts)
	err := cmd.ExecuteContext(ctx)
	if err == nil || domain.IsCancelled(err) {
		opts.close()
		return
	}

	logger.L().Error("cli.failed", "err", err)

	// Flag and argument errors come straight from cobra and are already readable.
	msg := err.Error()
	var oe *domain.OpError
	if errors.As(err, &oe) {
		msg = tui.UserMessage(err)
	}
	fmt.Fprintln(os.Stderr, "Error:", msg)
	if logger.IsReady() == nil {
		fmt.Fprintln(os.Stderr, "Details:", logger.Path())
	}
	opts.close()
	os.Exit(1)
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collector",
		Short: "Collect money: issue, send and pay Fakturoid invoices",
		Long: "collector walks you through invoicing a client in Fakturoid: pick a client,\n" +
			"issue an invoice, mail the PDF and record payments.\n" +
			"Run without a subcommand for the interactive session.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.bootstrap()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.loadApp(cmd, true)
			if err != nil {
				return err
			}
			session := usecase.NewSession(usecase.SessionDeps{
				API:     a.api,
				Mailer:  a.mailer,
				Journal: a.journal,
				Prompt:  a.prompt,
				Config:  a.cfg,
				Log:     a.log,
			})
			return session.Run(cmd.Context())
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVar(&opts.debug, "debug", false, "enable verbose logging to <config dir>/logs/collector.log")
	pf.StringVar(&opts.configFlag, "config", "", "config file (default $COLLECTOR_CONFIG or ~/.config/money-collector/config.ini)")
	pf.StringVar(&opts.envFile, "env-file", ".env", "environment file loaded before the config")

	cmd.AddCommand(
		clientsCmd(opts),
		invoicesCmd(opts),
		journalCmd(opts),
		configCmd(opts),
		versionCmd(),
	)
	return cmd
}

// bootstrap loads .env files, resolves the config path and opens the log.
// Variables already set in the process are never overridden.
func (o *rootOptions) bootstrap() error {
	if _, err := envfile.Load(o.envFile); err != nil {
		return err
	}

	path, err := tomlconfig.ResolvePath(o.configFlag, os.Getenv)
	if err != nil {
		return err
	}
	dir := tomlconfig.Dir(path)

	// The path is fixed before this file is read.
	if _, err := envfile.Load(filepath.Join(dir, ".env")); err != nil {
		return err
	}
	o.configPath = path

	o.close()
	cleanup, err := logger.Setup(logger.Config{Dir: dir, Debug: o.debug})
	if err != nil {
		// A read-only config dir must not stop invoicing; logs are dropped.
		return nil
	}
	o.cleanup = cleanup
	logger.L().Debug("cli.bootstrap", "config", path)
	return nil
}
