package tomlconfig

// fileConfig mirrors config.ini. Keys match what the setup wizard writes;
// the optional ones are omitted when they hold defaults.
type fileConfig struct {
	Fakturoid fakturoidTable `toml:"fakturoid"`
	Email     emailTable     `toml:"email"`
	Defaults  *defaultsTable `toml:"defaults,omitempty"`
}

type fakturoidTable struct {
	ApplicationName string `toml:"application_name"`
	Email           string `toml:"email"`
	Account         string `toml:"account"`
	ClientID        string `toml:"client_id"`
	ClientSecret    string `toml:"client_secret"`
	BaseURL         string `toml:"base_url,omitempty"`
}

type emailTable struct {
	SMTPUser     string `toml:"smtp_user"`
	SMTPPassword string `toml:"smtp_password"`
	SMTPServer   string `toml:"smtp_server"`
	SMTPPort     int    `toml:"smtp_port"`
	Subject      string `toml:"subject,omitempty"`
	Body         string `toml:"body,omitempty"`
	CC           string `toml:"cc,omitempty"`
}

type defaultsTable struct {
	Due             int      `toml:"due,omitempty"`
	UnitNames       []string `toml:"unit_names,omitempty"`
	ItemDescription string   `toml:"item_description,omitempty"`
}
