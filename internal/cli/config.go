package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/michalnik/money-collector/internal/app/template"
	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/infra/tomlconfig"
	"github.com/michalnik/money-collector/internal/usecase"
)

func configCmd(opts *rootOptions) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Show or set up the configuration",
	}

	c.AddCommand(configShowCmd(opts), configSetupCmd(opts), configPathCmd(opts))
	return c
}

// configView is the displayed form of the config, keyed like config.ini.
type configView struct {
	Fakturoid struct {
		ApplicationName string `json:"application_name"`
		Email           string `json:"email"`
		Account         string `json:"account"`
		ClientID        string `json:"client_id"`
		ClientSecret    string `json:"client_secret"`
		BaseURL         string `json:"base_url"`
	} `json:"fakturoid"`
	Email struct {
		SMTPUser     string `json:"smtp_user"`
		SMTPPassword string `json:"smtp_password"`
		SMTPServer   string `json:"smtp_server"`
		SMTPPort     int    `json:"smtp_port"`
		CC           string `json:"cc"`
		Subject      string `json:"subject"`
		Body         string `json:"body"`
	} `json:"email"`
	Defaults struct {
		Due             int      `json:"due"`
		UnitNames       []string `json:"unit_names"`
		ItemDescription string   `json:"item_description"`
	} `json:"defaults"`
}

func newConfigView(cfg domain.Config) configView {
	cfg = tomlconfig.Masked(cfg)

	var v configView
	v.Fakturoid.ApplicationName = cfg.Fakturoid.ApplicationName
	v.Fakturoid.Email = cfg.Fakturoid.Email
	v.Fakturoid.Account = cfg.Fakturoid.Account
	v.Fakturoid.ClientID = cfg.Fakturoid.ClientID
	v.Fakturoid.ClientSecret = cfg.Fakturoid.ClientSecret
	v.Fakturoid.BaseURL = cfg.Fakturoid.BaseURL

	v.Email.SMTPUser = cfg.Email.SMTPUser
	v.Email.SMTPPassword = cfg.Email.SMTPPassword
	v.Email.SMTPServer = cfg.Email.SMTPServer
	v.Email.SMTPPort = cfg.Email.SMTPPort
	v.Email.CC = cfg.Email.CopyTo()
	v.Email.Subject = cfg.Email.Subject
	v.Email.Body = cfg.Email.Body

	v.Defaults.Due = cfg.Defaults.Due
	v.Defaults.UnitNames = cfg.Defaults.UnitNames
	v.Defaults.ItemDescription = cfg.Defaults.ItemDescription
	return v
}

func (v configView) pretty(path string) string {
	var b strings.Builder
	row := func(k, val string) { fmt.Fprintf(&b, "  %-18s %s\n", k, val) }

	fmt.Fprintf(&b, "File: %s\n\n[fakturoid]\n", path)
	row("application_name", v.Fakturoid.ApplicationName)
	row("email", v.Fakturoid.Email)
	row("account", v.Fakturoid.Account)
	row("client_id", v.Fakturoid.ClientID)
	row("client_secret", v.Fakturoid.ClientSecret)
	row("base_url", v.Fakturoid.BaseURL)

	b.WriteString("\n[email]\n")
	row("smtp_user", v.Email.SMTPUser)
	row("smtp_password", v.Email.SMTPPassword)
	row("smtp_server", v.Email.SMTPServer)
	row("smtp_port", strconv.Itoa(v.Email.SMTPPort))
	row("cc", v.Email.CC)
	row("subject", strconv.Quote(v.Email.Subject))
	row("body", strconv.Quote(v.Email.Body))

	b.WriteString("\n[defaults]\n")
	row("due", strconv.Itoa(v.Defaults.Due))
	row("unit_names", strings.Join(v.Defaults.UnitNames, ", "))
	row("item_description", strconv.Quote(v.Defaults.ItemDescription))
	return strings.TrimRight(b.String(), "\n")
}

func configShowCmd(opts *rootOptions) *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.store().Load()
			if err != nil {
				return err
			}
			v := newConfigView(cfg)
			if err := out.print(cmd.OutOrStdout(), v, func() string { return v.pretty(opts.configPath) }); err != nil {
				return err
			}
			w := cmd.ErrOrStderr()
			if verr := cfg.Validate(); verr != nil {
				fmt.Fprintf(w, "warning: %v\n", verr)
			}
			for _, name := range unknownPlaceholders(cfg.Email) {
				fmt.Fprintf(w, "warning: mail template uses unknown placeholder {{%s}}\n", name)
			}
			return nil
		},
	}

	out.register(cmd)
	return cmd
}

// unknownPlaceholders lists template names that sending would fail on.
func unknownPlaceholders(e domain.EmailConfig) []string {
	known := usecase.MailVars(domain.Subject{}, domain.User{}, domain.Invoice{})
	var out []string
	for _, name := range template.Placeholders(e.Subject + "\n" + e.Body) {
		if _, ok := domain.Get(known, name); !ok {
			out = append(out, name)
		}
	}
	return out
}

func configSetupCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Run the setup wizard and write the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store := opts.store()
			base, err := store.Load()
			if err != nil {
				base = domain.DefaultConfig()
			}
			_, err = usecase.NewSetupConfig(store, opts.prompter(cmd)).Execute(base)
			return err
		},
	}
}

func configPathCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the resolved config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), opts.configPath)
		},
	}
}
