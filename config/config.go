// Package config loads WattWise settings.
//
// Values are resolved by viper in increasing priority: built-in defaults,
// an optional YAML file, a .env file in the working directory, WATTWISE_*
// environment variables (dots become underscores, so model.path is
// WATTWISE_MODEL_PATH) and finally any bound command line flags.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	wwErrors "github.com/ezoic/wattwise/pkg/errors"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "WATTWISE"

// Setting keys.
const (
	KeyModelPath       = "model.path"
	KeyTrainingDays    = "training.days"
	KeyTrainingSeed    = "training.seed"
	KeyStoreDriver     = "store.driver"
	KeyStorePath       = "store.path"
	KeyStoreMaxHistory = "store.max_history"
	KeyServerAddr      = "server.addr"
	KeyIngestInterval  = "ingest.interval"
	KeyIngestCities    = "ingest.cities"
	KeyAdviceAPIKey    = "advice.api_key"
	KeyAdviceEndpoint  = "advice.endpoint"
	KeyAdviceModel     = "advice.model"
	KeyAdviceTimeout   = "advice.timeout"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the resolved configuration.
type Config struct {
	Model struct {
		Path string
	}
	Training struct {
		Days int
		Seed uint64
	}
	Store struct {
		Driver     string
		Path       string
		MaxHistory int
	}
	Server struct {
		Addr string
	}
	Ingest struct {
		Interval time.Duration
		Cities   []string
	}
	Advice struct {
		APIKey   string
		Endpoint string
		Model    string
		Timeout  time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyModelPath, "models/solar_prediction_model.gob")
	v.SetDefault(KeyTrainingDays, 365)
	v.SetDefault(KeyTrainingSeed, 42)
	v.SetDefault(KeyStoreDriver, DriverSQLite)
	v.SetDefault(KeyStorePath, "data/weather.db")
	v.SetDefault(KeyStoreMaxHistory, 1000)
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyIngestInterval, "15m")
	v.SetDefault(KeyIngestCities, "Mumbai")
	v.SetDefault(KeyAdviceAPIKey, "")
	v.SetDefault(KeyAdviceEndpoint, "https://generativelanguage.googleapis.com")
	v.SetDefault(KeyAdviceModel, "gemini-1.5-flash")
	v.SetDefault(KeyAdviceTimeout, "10s")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load resolves the configuration into v and returns it. configFile may be
// empty, in which case wattwise.yaml is looked up in . and ./config and is
// optional.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, wwErrors.Wrap(err, "failed to load .env")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The advice key is commonly exported under the provider's own name.
	if err := v.BindEnv(KeyAdviceAPIKey, EnvPrefix+"_ADVICE_API_KEY", "GEMINI_API_KEY"); err != nil {
		return nil, wwErrors.Wrap(err, "failed to bind advice key")
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, wwErrors.Wrapf(err, "failed to read config file %s", configFile)
		}
	} else {
		v.SetConfigName("wattwise")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, wwErrors.Wrap(err, "failed to read config file")
			}
		}
	}

	return FromViper(v)
}

// FromViper builds and validates a Config from the values in v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	cfg.Model.Path = v.GetString(KeyModelPath)
	cfg.Training.Days = v.GetInt(KeyTrainingDays)
	cfg.Training.Seed = v.GetUint64(KeyTrainingSeed)
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(v.GetString(KeyStoreDriver)))
	cfg.Store.Path = v.GetString(KeyStorePath)
	cfg.Store.MaxHistory = v.GetInt(KeyStoreMaxHistory)
	cfg.Server.Addr = v.GetString(KeyServerAddr)
	cfg.Ingest.Interval = v.GetDuration(KeyIngestInterval)
	cfg.Ingest.Cities = list(v.Get(KeyIngestCities))
	cfg.Advice.APIKey = v.GetString(KeyAdviceAPIKey)
	cfg.Advice.Endpoint = v.GetString(KeyAdviceEndpoint)
	cfg.Advice.Model = v.GetString(KeyAdviceModel)
	cfg.Advice.Timeout = v.GetDuration(KeyAdviceTimeout)
	cfg.Log.Level = v.GetString(KeyLogLevel)
	cfg.Log.Format = v.GetString(KeyLogFormat)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Model.Path == "":
		return wwErrors.NewValueError("config", KeyModelPath+" must not be empty")
	case c.Training.Days < 1:
		return wwErrors.NewValueError("config", KeyTrainingDays+" must be at least 1")
	case c.Store.Driver != DriverSQLite && c.Store.Driver != DriverMemory:
		return wwErrors.NewValueError("config", KeyStoreDriver+" must be sqlite or memory, got "+c.Store.Driver)
	case c.Store.Driver == DriverSQLite && c.Store.Path == "":
		return wwErrors.NewValueError("config", KeyStorePath+" must not be empty")
	case c.Ingest.Interval <= 0:
		return wwErrors.NewValueError("config", KeyIngestInterval+" must be positive")
	case c.Advice.Timeout <= 0:
		return wwErrors.NewValueError("config", KeyAdviceTimeout+" must be positive")
	}
	return nil
}

// AdviceEnabled reports whether an advice service key is configured.
func (c *Config) AdviceEnabled() bool {
	return c.Advice.APIKey != ""
}

// list accepts a YAML sequence or a comma separated string.
func list(raw interface{}) []string {
	var items []string
	switch v := raw.(type) {
	case string:
		items = strings.Split(v, ",")
	case []string:
		items = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
	}
	out := make([]string, 0, len(items))
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
