package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis"    validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Billing  BillingConfig  `mapstructure:"billing"  validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// RedisConfig contains connection settings for the session cache.
type RedisConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	// SessionTTLSeconds bounds how long a pending signup or recovery session
	// (and its one-time code) stays valid in the cache.
	SessionTTLSeconds int `mapstructure:"session_ttl_seconds" validate:"required,gt=0"`
}

// BillingConfig controls the periodic lease pass over open listings.
type BillingConfig struct {
	// CronSpec is the schedule for the lease pass in standard cron format.
	CronSpec string `mapstructure:"cron_spec" validate:"required"`
	// ConversionRate scales the city/section base rate into the charged amount.
	ConversionRate float64 `mapstructure:"conversion_rate" validate:"required,gt=0"`
	// Concurrency bounds how many listings are billed in parallel per pass.
	Concurrency int `mapstructure:"concurrency" validate:"required,gt=0"`
}
