package ports

import "github.com/michalnik/money-collector/internal/domain"

// ConfigStore reads and writes the collector configuration.
type ConfigStore interface {
	Exists() bool
	Load() (domain.Config, error)
	Save(cfg domain.Config) error
	Path() string
}
