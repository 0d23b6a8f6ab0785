package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/relock/pkg/errors"
)

// =============================================================================
// Configuration
// =============================================================================

// defaultConfigFile is picked up from the working directory when no --config
// flag is given.
const defaultConfigFile = ".relock.toml"

// Config is the on-disk CLI configuration.
type Config struct {
	// ProjectModules are patterns for first-party packages that are always
	// re-examined during a relock, regardless of range stability.
	ProjectModules []string `toml:"project_modules"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	// Dir overrides the XDG cache directory for the file cache.
	Dir string `toml:"dir"`
	// RedisAddr switches the serve command to a Redis-backed cache.
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig controls the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
	// MongoURI switches snapshot persistence to MongoDB. When empty the
	// server uses a file store under the cache directory.
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads a TOML config file. An empty path means the default file,
// which is optional; an explicit path must exist.
func LoadConfig(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}
