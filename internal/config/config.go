package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "LIFELEVEL"

type Config struct {
	DB        DBConfig        `mapstructure:"db"`
	User      UserConfig      `mapstructure:"user"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	Reminders RemindersConfig `mapstructure:"reminders"`
}

type DBConfig struct {
	Path      string `mapstructure:"path"`
	Ephemeral bool   `mapstructure:"ephemeral"`
}

type UserConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Timezone string `mapstructure:"timezone"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type ServerConfig struct {
	Addr  string `mapstructure:"addr"`
	CORS  bool   `mapstructure:"cors"`
	Debug bool   `mapstructure:"debug"`
}

type RemindersConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Spec    string `mapstructure:"spec"`
}

// New returns a viper instance with defaults and LIFELEVEL_* environment
// overrides (db.path -> LIFELEVEL_DB_PATH).
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("db.path", "")
	v.SetDefault("db.ephemeral", false)
	v.SetDefault("user.name", "")
	v.SetDefault("user.email", "")
	v.SetDefault("user.timezone", "Local")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.cors", true)
	v.SetDefault("server.debug", false)
	v.SetDefault("reminders.enabled", true)
	v.SetDefault("reminders.spec", "* * * * *")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads .env, then the config file (explicit path, or lifelevel.yaml in
// the working directory or ~/.config/lifelevel), into a Config.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	_ = godotenv.Load() // .env is optional

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("lifelevel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "lifelevel"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if c.Reminders.Enabled && strings.TrimSpace(c.Reminders.Spec) == "" {
		return errors.New("reminders.spec is required when reminders are enabled")
	}
	return nil
}

// Location resolves user.timezone; days for streaks are counted in it.
func (c *Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.User.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("user.timezone: %w", err)
	}
	return loc, nil
}
