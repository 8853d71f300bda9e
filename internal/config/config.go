package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Supported store drivers.
const (
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
	DriverBadger = "badger"
)

// Config is the complete service configuration.
type Config struct {
	Addr      string      `mapstructure:"addr"`
	StaticDir string      `mapstructure:"static_dir"`
	Store     StoreConfig `mapstructure:"store"`
	Log       LogConfig   `mapstructure:"log"`
}

// StoreConfig selects and addresses the article store.
type StoreConfig struct {
	Driver         string        `mapstructure:"driver"`
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	RedisAddr      string        `mapstructure:"redis_addr"`
	RedisDB        int           `mapstructure:"redis_db"`
	BadgerPath     string        `mapstructure:"badger_path"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8000")
	v.SetDefault("static_dir", "build")
	v.SetDefault("store.driver", DriverMongo)
	v.SetDefault("store.uri", "mongodb://localhost:27017")
	v.SetDefault("store.database", "my-blog")
	v.SetDefault("store.redis_addr", "localhost:6379")
	v.SetDefault("store.redis_db", 0)
	v.SetDefault("store.badger_path", "./badger-data")
	v.SetDefault("store.connect_timeout", 5*time.Second)
	v.SetDefault("log.development", false)
}

// Load reads configuration from v, an optional config file and BLOG_*
// environment variables. configFile may be empty.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("blog")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks if the configuration is usable
func (c *Config) Validate() error {
	if c.Addr == "" {
		return &Error{Field: "addr", Message: "must not be empty"}
	}
	switch c.Store.Driver {
	case DriverMongo, DriverRedis, DriverBadger:
	default:
		return &Error{Field: "store.driver", Message: "unsupported driver " + c.Store.Driver}
	}
	return nil
}

// Error represents a configuration error
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}
