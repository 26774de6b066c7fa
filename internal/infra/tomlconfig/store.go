// Package tomlconfig stores the collector configuration as a TOML file.
package tomlconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/michalnik/money-collector/internal/domain"
	"github.com/michalnik/money-collector/internal/ports"
)

// Environment variables that override file values.
const (
	EnvApplicationName = "FAKTUROID_APPLICATION_NAME"
	EnvEmail           = "FAKTUROID_EMAIL"
	EnvAccount         = "FAKTUROID_ACCOUNT"
	EnvClientID        = "FAKTUROID_CLIENT_ID"
	EnvClientSecret    = "FAKTUROID_CLIENT_SECRET"
	EnvBaseURL         = "FAKTUROID_BASE_URL"
	EnvSMTPUser        = "SMTP_USER"
	EnvSMTPPassword    = "SMTP_PASSWORD"
	EnvSMTPServer      = "SMTP_SERVER"
	EnvSMTPPort        = "SMTP_PORT"
)

type Store struct {
	path   string
	getenv func(string) string
}

type Option func(*Store)

// WithEnv replaces os.Getenv as the source of overrides.
func WithEnv(getenv func(string) string) Option {
	return func(s *Store) { s.getenv = getenv }
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path, getenv: os.Getenv}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ports.ConfigStore = (*Store)(nil)

func (s *Store) Path() string { return s.path }

func (s *Store) Exists() bool {
	info, err := os.Stat(s.path)
	return err == nil && !info.IsDir()
}

// Load reads the file when present and applies environment overrides on top.
// A missing file is not an error; the caller validates the result.
func (s *Store) Load() (domain.Config, error) {
	cfg := domain.DefaultConfig()

	b, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		var fc fileConfig
		if _, err := toml.Decode(string(b), &fc); err != nil {
			return cfg, &domain.OpError{Op: "tomlconfig.load", Kind: domain.KindInvalidConfig, Path: s.path, Err: err}
		}
		applyFile(&cfg, fc)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, &domain.OpError{Op: "tomlconfig.load", Kind: domain.KindExecution, Path: s.path, Err: err}
	}

	if err := s.applyEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg with owner-only permissions.
func (s *Store) Save(cfg domain.Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(toFile(cfg)); err != nil {
		return &domain.OpError{Op: "tomlconfig.save", Kind: domain.KindExecution, Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &domain.OpError{Op: "tomlconfig.save", Kind: domain.KindExecution, Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return &domain.OpError{Op: "tomlconfig.save", Kind: domain.KindExecution, Path: dir, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		cleanup()
		return &domain.OpError{Op: "tomlconfig.save", Kind: domain.KindExecution, Path: tmpName, Err: err}
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		cleanup()
		return &domain.OpError{Op: "tomlconfig.save", Kind: domain.KindExecution, Path: tmpName, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &domain.OpError{Op: "tomlconfig.save", Kind: domain.KindExecution, Path: tmpName, Err: err}
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return &domain.OpError{Op: "tomlconfig.save", Kind: domain.KindExecution, Path: s.path, Err: err}
	}
	return nil
}

func applyFile(cfg *domain.Config, fc fileConfig) {
	f := fc.Fakturoid
	cfg.Fakturoid.ApplicationName = f.ApplicationName
	cfg.Fakturoid.Email = f.Email
	cfg.Fakturoid.Account = f.Account
	cfg.Fakturoid.ClientID = f.ClientID
	cfg.Fakturoid.ClientSecret = f.ClientSecret
	if f.BaseURL != "" {
		cfg.Fakturoid.BaseURL = f.BaseURL
	}

	e := fc.Email
	cfg.Email.SMTPUser = e.SMTPUser
	cfg.Email.SMTPPassword = e.SMTPPassword
	cfg.Email.SMTPServer = e.SMTPServer
	cfg.Email.SMTPPort = e.SMTPPort
	if e.Subject != "" {
		cfg.Email.Subject = e.Subject
	}
	if e.Body != "" {
		cfg.Email.Body = e.Body
	}
	cfg.Email.CC = e.CC

	if d := fc.Defaults; d != nil {
		if d.Due != 0 {
			cfg.Defaults.Due = d.Due
		}
		if len(d.UnitNames) > 0 {
			cfg.Defaults.UnitNames = d.UnitNames
		}
		if d.ItemDescription != "" {
			cfg.Defaults.ItemDescription = d.ItemDescription
		}
	}
}

func toFile(cfg domain.Config) fileConfig {
	def := domain.DefaultConfig()

	fc := fileConfig{
		Fakturoid: fakturoidTable{
			ApplicationName: cfg.Fakturoid.ApplicationName,
			Email:           cfg.Fakturoid.Email,
			Account:         cfg.Fakturoid.Account,
			ClientID:        cfg.Fakturoid.ClientID,
			ClientSecret:    cfg.Fakturoid.ClientSecret,
		},
		Email: emailTable{
			SMTPUser:     cfg.Email.SMTPUser,
			SMTPPassword: cfg.Email.SMTPPassword,
			SMTPServer:   cfg.Email.SMTPServer,
			SMTPPort:     cfg.Email.SMTPPort,
			CC:           cfg.Email.CC,
		},
	}
	if cfg.Fakturoid.BaseURL != def.Fakturoid.BaseURL {
		fc.Fakturoid.BaseURL = cfg.Fakturoid.BaseURL
	}
	if cfg.Email.Subject != def.Email.Subject {
		fc.Email.Subject = cfg.Email.Subject
	}
	if cfg.Email.Body != def.Email.Body {
		fc.Email.Body = cfg.Email.Body
	}

	var d defaultsTable
	if cfg.Defaults.Due != def.Defaults.Due {
		d.Due = cfg.Defaults.Due
	}
	if !slices.Equal(cfg.Defaults.UnitNames, def.Defaults.UnitNames) {
		d.UnitNames = cfg.Defaults.UnitNames
	}
	if cfg.Defaults.ItemDescription != def.Defaults.ItemDescription {
		d.ItemDescription = cfg.Defaults.ItemDescription
	}
	if d.Due != 0 || len(d.UnitNames) > 0 || d.ItemDescription != "" {
		fc.Defaults = &d
	}
	return fc
}

func (s *Store) applyEnv(cfg *domain.Config) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(s.getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Fakturoid.ApplicationName, EnvApplicationName)
	set(&cfg.Fakturoid.Email, EnvEmail)
	set(&cfg.Fakturoid.Account, EnvAccount)
	set(&cfg.Fakturoid.ClientID, EnvClientID)
	set(&cfg.Fakturoid.ClientSecret, EnvClientSecret)
	set(&cfg.Fakturoid.BaseURL, EnvBaseURL)
	set(&cfg.Email.SMTPUser, EnvSMTPUser)
	set(&cfg.Email.SMTPPassword, EnvSMTPPassword)
	set(&cfg.Email.SMTPServer, EnvSMTPServer)

	if v := strings.TrimSpace(s.getenv(EnvSMTPPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return &domain.OpError{
				Op:   "tomlconfig.env",
				Kind: domain.KindInvalidConfig,
				Path: EnvSMTPPort,
				Err:  fmt.Errorf("%q is not a port number: %w", v, domain.ErrInvalidConfig),
			}
		}
		cfg.Email.SMTPPort = port
	}
	return nil
}
