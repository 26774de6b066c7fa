// Package envfile bootstraps process environment variables from .env files.
package envfile

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/michalnik/money-collector/internal/domain"
)

// Load reads each existing file in order. Variables that are already set,
// including ones set by an earlier file, are left untouched.
// It returns the files that were actually loaded.
func Load(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, &domain.OpError{Op: "envfile.load", Kind: domain.KindExecution, Path: p, Err: err}
		}
		if info.IsDir() {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, &domain.OpError{Op: "envfile.load", Kind: domain.KindInvalidConfig, Path: p, Err: err}
		}
		loaded = append(loaded, p)
	}
	return loaded, nil
}
