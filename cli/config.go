package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// YAML is a kong.ConfigurationLoader for YAML files. Keys are flag names;
// dashes may be written as underscores, and flags of a command may be nested
// under the command's name:
//
//	log-level: info
//	add:
//	  oracle: ledger
//	  history: ~/.ledgerentry_history
func YAML(r io.Reader) (kong.Resolver, error) {
	values := map[string]interface{}{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML configuration: %w", err)
	}

	var f kong.ResolverFunc = func(context *kong.Context, parent *kong.Path, flag *kong.Flag) (interface{}, error) {
		if cmd := commandName(parent); cmd != "" {
			if nested, ok := values[cmd].(map[string]interface{}); ok {
				if v, ok := lookup(nested, flag.Name); ok {
					return v, nil
				}
			}
		}
		if v, ok := lookup(values, flag.Name); ok {
			return v, nil
		}
		return nil, nil
	}
	return f, nil
}

func commandName(path *kong.Path) string {
	if path == nil || path.Command == nil {
		return ""
	}
	return path.Command.Name
}

func lookup(values map[string]interface{}, name string) (interface{}, bool) {
	if v, ok := values[name]; ok {
		return v, true
	}
	v, ok := values[strings.ReplaceAll(name, "-", "_")]
	return v, ok
}

// LoadDotEnv loads environment variables from .env style files. Missing files
// are skipped; variables already set in the environment win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}
