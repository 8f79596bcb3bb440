// Package config loads the bluewiki configuration.
//
// Values are read, by increasing priority, from the defaults, the YAML file
// and the BLUEWIKI_ environment variables. A `.env` file is loaded into the
// environment beforehand when present.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/mdouchement/bluewiki/internal/storage"
	"github.com/mdouchement/bluewiki/internal/tree"
	"github.com/pkg/errors"
)

// EnvPrefix is the prefix of the environment variables overriding the configuration.
// A double underscore separates the levels: BLUEWIKI_DATABASE__PATH sets database.path.
const EnvPrefix = "BLUEWIKI_"

var defaults = map[string]interface{}{
	"address":               "localhost:5000",
	"database.driver":       "storm",
	"database.path":         "bluewiki.db",
	"session.ttl":           "720h",
	"no_registration":       false,
	"log.level":             "info",
	"storage.driver":        "local",
	"storage.path":          "uploads",
	"storage.minio.use_ssl": true,
	"upload.max_size":       32 << 20,
}

// Load returns the configuration read from the given file.
// An empty filename only uses the defaults and the environment.
func Load(filename string) (*koanf.Koanf, error) {
	if err := dotenv(); err != nil {
		return nil, err
	}

	konf := koanf.New(".")
	if err := konf.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, errors.Wrap(err, "could not load defaults")
	}

	if filename != "" {
		if err := konf.Load(file.Provider(filename), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "could not load %s", filename)
		}
	}

	err := konf.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	return konf, errors.Wrap(err, "could not load environment")
}

// Pinned returns the entries appended to the root listing.
func Pinned(konf *koanf.Koanf) ([]tree.Entry, error) {
	if !konf.Exists("tree.pinned") {
		return tree.DefaultPinned(), nil
	}

	var entries []tree.Entry
	if err := konf.Unmarshal("tree.pinned", &entries); err != nil {
		return nil, errors.Wrap(err, "invalid tree.pinned")
	}
	for _, entry := range entries {
		if _, err := tree.Normalize(entry.Path); err != nil {
			return nil, errors.Wrapf(err, "invalid tree.pinned path %q", entry.Path)
		}
	}
	return entries, nil
}

// Storage returns the blob storage configuration.
func Storage(konf *koanf.Koanf) (storage.Config, error) {
	var cfg storage.Config
	err := konf.Unmarshal("storage", &cfg)
	return cfg, errors.Wrap(err, "invalid storage")
}

// SessionTTL returns the lifetime of a session.
func SessionTTL(konf *koanf.Koanf) (time.Duration, error) {
	ttl, err := time.ParseDuration(konf.String("session.ttl"))
	if err != nil {
		return 0, errors.Wrap(err, "invalid session.ttl")
	}
	if ttl <= 0 {
		return 0, errors.New("session.ttl must be positive")
	}
	return ttl, nil
}

func dotenv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return errors.Wrap(godotenv.Load(), "could not load .env")
}
