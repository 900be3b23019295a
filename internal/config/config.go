// Package config wraps viper for the server and its plugins.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ngipak/infodesa/internal/plugin"
)

// EnvPrefix prefixes environment overrides, e.g. INFODESA_SERVER_PORT.
const EnvPrefix = "INFODESA"

// Compile-time interface guard.
var _ plugin.Config = (*Config)(nil)

// Config is a nil-safe view over a viper instance.
type Config struct {
	v *viper.Viper
}

// New wraps v. A nil viper behaves like an empty configuration.
func New(v *viper.Viper) *Config {
	if v == nil {
		v = viper.New()
	}
	return &Config{v: v}
}

func (c *Config) GetString(key string) string          { return c.v.GetString(key) }
func (c *Config) GetInt(key string) int                { return c.v.GetInt(key) }
func (c *Config) GetBool(key string) bool              { return c.v.GetBool(key) }
func (c *Config) GetDuration(key string) time.Duration { return c.v.GetDuration(key) }
func (c *Config) GetStringSlice(key string) []string   { return c.v.GetStringSlice(key) }
func (c *Config) IsSet(key string) bool                { return c.v.IsSet(key) }
func (c *Config) Unmarshal(target any) error           { return c.v.Unmarshal(target) }
func (c *Config) Viper() *viper.Viper                  { return c.v }

// Sub returns the section under key. A missing section yields an empty
// Config, never nil.
func (c *Config) Sub(key string) *Config {
	return New(c.v.Sub(key))
}

// Plugin returns the "plugins.<name>" section. Keys set only through
// defaults or the environment are carried over, since viper's Sub ignores
// them.
func (c *Config) Plugin(name string) *Config {
	prefix := "plugins." + name + "."
	sub := viper.New()
	for _, key := range c.v.AllKeys() {
		if strings.HasPrefix(key, prefix) {
			sub.Set(strings.TrimPrefix(key, prefix), c.v.Get(key))
		}
	}
	return New(sub)
}

// SetDefaults registers the default value of every known key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.cors_origins", []string{"http://localhost:5173"})

	v.SetDefault("log.level", "info")

	v.SetDefault("data.source", "sqlite")
	v.SetDefault("data.path", "infodesa.db")
	v.SetDefault("data.dsn", "")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("auth.issuer", "infodesa")

	v.SetDefault("storage.dir", "data/storage")
	v.SetDefault("storage.public_url", "/files")
	v.SetDefault("storage.max_image_bytes", 5<<20)

	v.SetDefault("ratelimit.per_minute", 10)
	v.SetDefault("ratelimit.burst", 5)

	for _, name := range []string{"auth", "umkm", "kesehatan", "laporan", "dashboard", "settings"} {
		v.SetDefault("plugins."+name+".enabled", true)
	}
}

// Load reads configuration from path (or ./infodesa.yaml when empty),
// a .env file if present, and INFODESA_* environment variables. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("infodesa")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/infodesa")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return New(v), nil
}
