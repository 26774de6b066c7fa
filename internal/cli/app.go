package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/fakturoid"
	"github.com/michalnik/money-collector/internal/infra/journal"
	"github.com/michalnik/money-collector/internal/infra/logger"
	"github.com/michalnik/money-collector/internal/infra/markdown"
	"github.com/michalnik/money-collector/internal/infra/smtpmail"
	"github.com/michalnik/money-collector/internal/infra/tomlconfig"
	"github.com/michalnik/money-collector/internal/ui/tui"
	"github.com/michalnik/money-collector/internal/usecase"
)

// appCtx holds the adapters one command works with. They are built once per
// process and handed to the use cases through ports.
type appCtx struct {
	cfg     domain.Config
	api     *fakturoid.Client
	mailer  *smtpmail.Sender
	journal *journal.Store
	prompt  *tui.Prompter
	log     *slog.Logger
}

func (o *rootOptions) store() *tomlconfig.Store {
	return tomlconfig.NewStore(o.configPath)
}

func (o *rootOptions) prompter(cmd *cobra.Command) *tui.Prompter {
	return tui.NewPrompter(tui.Deps{
		In:     o.in,
		Out:    cmd.OutOrStdout(),
		Logger: logger.L(),
	})
}

func (o *rootOptions) journal() *journal.Store {
	return journal.NewStore(tomlconfig.Dir(o.configPath))
}

// loadConfig reads the file and the environment overrides. When there is no
// file and the environment is incomplete, interactive callers get the setup
// wizard; everyone else gets the validation error.
func (o *rootOptions) loadConfig(cmd *cobra.Command, interactive bool) (domain.Config, error) {
	store := o.store()
	cfg, err := store.Load()
	if err != nil {
		return cfg, err
	}

	verr := cfg.Validate()
	if verr == nil {
		return cfg, nil
	}
	if !interactive || store.Exists() {
		return cfg, verr
	}

	p := o.prompter(cmd)
	p.Say("No configuration found, let's create one.")
	return usecase.NewSetupConfig(store, p).Execute(cfg)
}

func (o *rootOptions) loadApp(cmd *cobra.Command, interactive bool) (*appCtx, error) {
	cfg, err := o.loadConfig(cmd, interactive)
	if err != nil {
		return nil, err
	}

	log := logger.L()
	return &appCtx{
		cfg:     cfg,
		api:     fakturoid.New(cfg.Fakturoid, fakturoid.WithLogger(log)),
		mailer:  smtpmail.New(cfg.Email, markdown.NewRenderer(), smtpmail.WithLogger(log)),
		journal: o.journal(),
		prompt:  o.prompter(cmd),
		log:     log,
	}, nil
}
