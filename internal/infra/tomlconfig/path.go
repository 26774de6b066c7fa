package tomlconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/michalnik/money-collector/internal/domain"
)

const (
	// EnvConfigPath points at an alternative config file.
	EnvConfigPath = "COLLECTOR_CONFIG"

	appDirName = "money-collector"
	fileName   = "config.ini"
)

// ResolvePath picks the config file: the explicit flag value, then
// $COLLECTOR_CONFIG, then ~/.config/money-collector/config.ini.
func ResolvePath(flagValue string, getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}

	candidate := strings.TrimSpace(flagValue)
	if candidate == "" {
		candidate = strings.TrimSpace(getenv(EnvConfigPath))
	}
	if candidate != "" {
		abs, err := filepath.Abs(expandHome(candidate, getenv))
		if err != nil {
			return "", &domain.OpError{Op: "tomlconfig.resolvepath", Kind: domain.KindExecution, Path: candidate, Err: err}
		}
		return abs, nil
	}

	home := getenv("HOME")
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return "", &domain.OpError{
				Op:   "tomlconfig.resolvepath",
				Kind: domain.KindInvalidConfig,
				Err:  errors.New("cannot determine home directory; use --config"),
			}
		}
		home = h
	}
	return filepath.Join(home, ".config", appDirName, fileName), nil
}

// Dir is the directory that holds the config file. Logs and the journal live next to it.
func Dir(configPath string) string {
	return filepath.Dir(configPath)
}

func expandHome(p string, getenv func(string) string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home := getenv("HOME")
	if home == "" {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
