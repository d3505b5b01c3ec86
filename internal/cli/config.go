package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/phonebook/internal/paths"
	"github.com/mesh-intelligence/phonebook/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "PHONEBOOK"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyLogLevel    = "log_level"
	cfgKeySeedWorkers = "seed.workers"
	cfgKeyPgHost      = "postgres.host"
	cfgKeyPgPort      = "postgres.port"
	cfgKeyPgUser      = "postgres.user"
	cfgKeyPgPassword  = "postgres.password"
	cfgKeyPgDatabase  = "postgres.database"
	cfgKeyPgSSLMode   = "postgres.sslmode"

	defaultLogLevel   = "warn"
	defaultPgHost     = "localhost"
	defaultPgPort     = 5432
	defaultPgDatabase = "phonebook"
	defaultPgSSLMode  = "disable"
)

// legacyEnv maps config keys to the DB_* variables also accepted for the
// postgres connection.
var legacyEnv = map[string]string{
	cfgKeyPgHost:     "DB_HOST",
	cfgKeyPgPort:     "DB_PORT",
	cfgKeyPgUser:     "DB_USER",
	cfgKeyPgPassword: "DB_PASSWORD",
	cfgKeyPgDatabase: "DB_NAME",
}

// settings is the decoded configuration.
type settings struct {
	Backend  string               `mapstructure:"backend"`
	DataDir  string               `mapstructure:"data_dir"`
	LogLevel string               `mapstructure:"log_level"`
	Postgres types.PostgresConfig `mapstructure:"postgres"`
	Seed     seedSettings         `mapstructure:"seed"`
}

type seedSettings struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// configFile is the layout of the config.yaml written on first run.
type configFile struct {
	Backend  string               `yaml:"backend"`
	DataDir  string               `yaml:"data_dir,omitempty"`
	LogLevel string               `yaml:"log_level"`
	Postgres types.PostgresConfig `yaml:"postgres"`
	Seed     seedSettings         `yaml:"seed"`
}

func defaultConfigFile() configFile {
	return configFile{
		Backend:  types.BackendSQLite,
		LogLevel: defaultLogLevel,
		Postgres: types.PostgresConfig{
			Host:     defaultPgHost,
			Port:     defaultPgPort,
			Database: defaultPgDatabase,
			SSLMode:  defaultPgSSLMode,
		},
	}
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. Environment variables override file values:
// PHONEBOOK_<KEY> for every key, with dots replaced by underscores, and the
// DB_* variables for the postgres connection.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}
	if err := writeConfigIfMissing(paths.ConfigFile(configDir)); err != nil {
		return nil, fmt.Errorf("writing default config: %w", err)
	}

	v := viper.New()
	def := defaultConfigFile()
	v.SetDefault(cfgKeyBackend, def.Backend)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyLogLevel, def.LogLevel)
	v.SetDefault(cfgKeySeedWorkers, 0)
	v.SetDefault(cfgKeyPgHost, def.Postgres.Host)
	v.SetDefault(cfgKeyPgPort, def.Postgres.Port)
	v.SetDefault(cfgKeyPgUser, "")
	v.SetDefault(cfgKeyPgPassword, "")
	v.SetDefault(cfgKeyPgDatabase, def.Postgres.Database)
	v.SetDefault(cfgKeyPgSSLMode, def.Postgres.SSLMode)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, err
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return v, nil
}

// loadSettings decodes the merged configuration.
func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decoding config: %w", err)
	}
	return s, nil
}

// writeConfigIfMissing creates config.yaml with defaults. An existing file is
// left alone.
func writeConfigIfMissing(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	data, err := yaml.Marshal(defaultConfigFile())
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# phonebook configuration\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
