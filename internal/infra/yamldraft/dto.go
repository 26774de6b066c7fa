package yamldraft

type yamlDraft struct {
	IssuedOn string     `yaml:"issued_on"`
	Due      int        `yaml:"due"`
	Lines    []yamlLine `yaml:"lines"`
}

type yamlLine struct {
	Description string   `yaml:"description"`
	Quantity    *float64 `yaml:"quantity"`
	UnitName    string   `yaml:"unit_name"`
	UnitPrice   *float64 `yaml:"unit_price"`
}
