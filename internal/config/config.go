// Package config implements centralized 12-factor configuration
// loading on Viper, struct-tagged and validated with
// go-playground/validator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/sshauthd/sshauthd/internal/mac"
	"github.com/sshauthd/sshauthd/internal/policy"
	"github.com/sshauthd/sshauthd/internal/registry"
)

// ServerConfig is the control-plane HTTP bind address, not the SSH
// listener itself.
type ServerConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// DatabaseConfig is the audit-log Postgres connection.
type DatabaseConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name" validate:"required"`
	SSLMode  string `mapstructure:"ssl_mode" validate:"required"`
}

// TicketConfig configures the post-success session ticket issuer.
type TicketConfig struct {
	SecretKey string        `mapstructure:"secret_key" validate:"required,min=16"`
	Audience  string        `mapstructure:"audience" validate:"required"`
	TTL       time.Duration `mapstructure:"ttl" validate:"required"`
}

// AuthConfig is the configuration the controller itself enforces.
type AuthConfig struct {
	Banner             string   `mapstructure:"banner"`
	MaxAuthTries       int      `mapstructure:"max_authtries" validate:"required,min=1"`
	AuthMethods        []string `mapstructure:"auth_methods"`
	MACAlgorithms      []string `mapstructure:"mac_algorithms" validate:"required"`
	BannerBugCompat    bool     `mapstructure:"banner_bug_compat"`
	RootAllowedMethods []string `mapstructure:"root_allowed_methods"`
}

type PrivsepConfig struct {
	MonitorAddr string `mapstructure:"monitor_addr"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Ticket   TicketConfig   `mapstructure:"ticket"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Privsep  PrivsepConfig  `mapstructure:"privsep"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7622)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "sshauthd")
	v.SetDefault("database.ssl_mode", "disable")

	v.SetDefault("ticket.secret_key", "change-me-please-32-bytes-min!!")
	v.SetDefault("ticket.audience", "sshauthd-session")
	v.SetDefault("ticket.ttl", 5*time.Minute)

	v.SetDefault("auth.banner", "none")
	v.SetDefault("auth.max_authtries", 6)
	v.SetDefault("auth.auth_methods", []string{})
	v.SetDefault("auth.mac_algorithms", mac.Names())
	v.SetDefault("auth.banner_bug_compat", false)
	v.SetDefault("auth.root_allowed_methods", []string{"publickey"})

	v.SetDefault("privsep.monitor_addr", "")
}

// Load reads configuration from environment variables (SSHAUTHD_*),
// applying defaults and then validating the result.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SSHAUTHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation: %w", err)
	}

	if !mac.Valid(strings.Join(cfg.Auth.MACAlgorithms, ",")) {
		return nil, fmt.Errorf("config: auth.mac_algorithms contains an unknown algorithm")
	}

	return &cfg, nil
}

// ValidateAuthMethods checks every configured multi-method list
// against reg before the controller is ever attached to a
// connection, so a bad auth_methods setting fails at startup instead
// of on the first real request.
func ValidateAuthMethods(reg *registry.Registry, lists []string) error {
	for _, list := range lists {
		if err := policy.Validate(reg, list, true); err != nil {
			return err
		}
	}
	return nil
}

// GetDSN builds the Postgres connection string the audit recorder uses.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// GetServerAddr builds the control-plane bind address.
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
