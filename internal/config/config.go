package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"tcrbwatch/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Target    TargetConfig    `mapstructure:"target"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Alerting  AlertingConfig  `mapstructure:"alerting"`
	Email     EmailConfig     `mapstructure:"email"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	State     StateConfig     `mapstructure:"state"`
	Database  DatabaseConfig  `mapstructure:"database"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// TargetConfig identifies the monitored star.
type TargetConfig struct {
	Star      string  `mapstructure:"star"`
	RADeg     float64 `mapstructure:"ra_deg"`
	DecDeg    float64 `mapstructure:"dec_deg"`
	RadiusDeg float64 `mapstructure:"radius_deg"`
	Band      string  `mapstructure:"band"`
	Obstype   string  `mapstructure:"obstype"`
}

// ProvidersConfig orders and parameterises the photometry sources.
type ProvidersConfig struct {
	LookbackDays   float64         `mapstructure:"lookback_days"`
	MaxAgeDays     float64         `mapstructure:"max_age_days"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	LCG            ProviderConfig  `mapstructure:"lcg"`
	VSX            ProviderConfig  `mapstructure:"vsx"`
	SkyPatrol      SkyPatrolConfig `mapstructure:"skypatrol"`
}

// ProviderConfig covers a single HTTP photometry endpoint.
type ProviderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// SkyPatrolConfig covers the ASAS-SN SkyPatrol endpoint.
type SkyPatrolConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// AlertingConfig defines the trigger threshold and de-duplication knobs.
type AlertingConfig struct {
	Threshold float64       `mapstructure:"threshold"`
	Cooldown  time.Duration `mapstructure:"cooldown"`
	ForceTest bool          `mapstructure:"force_test"`
}

// EmailConfig captures SMTP submission settings.
type EmailConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	From       string        `mapstructure:"from"`
	Recipients []string      `mapstructure:"recipients"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// SchedulerConfig governs polling cadence.
type SchedulerConfig struct {
	Interval     time.Duration `mapstructure:"interval"`
	StartupDelay time.Duration `mapstructure:"startup_delay"`
}

// StateConfig locates the alert state file.
type StateConfig struct {
	Path string `mapstructure:"path"`
}

// DatabaseConfig encapsulates optional PostgreSQL connectivity for alert auditing.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TCRBWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "tcrbwatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.max_size_mb", 1)
	v.SetDefault("logging.file.max_backups", 3)

	v.SetDefault("target.star", "T CrB")
	v.SetDefault("target.ra_deg", 263.0545)
	v.SetDefault("target.dec_deg", 25.9208)
	v.SetDefault("target.radius_deg", 0.02)
	v.SetDefault("target.band", "V")
	v.SetDefault("target.obstype", "CCD")

	v.SetDefault("providers.lookback_days", 14.0)
	v.SetDefault("providers.max_age_days", 0.0)
	v.SetDefault("providers.request_timeout", "45s")
	v.SetDefault("providers.lcg.enabled", true)
	v.SetDefault("providers.lcg.base_url", "https://www.aavso.org/LCGv2/index.htm")
	v.SetDefault("providers.vsx.enabled", true)
	v.SetDefault("providers.vsx.base_url", "https://www.aavso.org/vsx/index.php")
	v.SetDefault("providers.skypatrol.enabled", false)
	v.SetDefault("providers.skypatrol.base_url", "https://asas-sn.ifa.hawaii.edu/skypatrol")

	v.SetDefault("alerting.threshold", 8.5)
	v.SetDefault("alerting.cooldown", "30m")
	v.SetDefault("alerting.force_test", false)

	v.SetDefault("email.enabled", true)
	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 465)
	v.SetDefault("email.timeout", "30s")

	v.SetDefault("scheduler.interval", "15m")
	v.SetDefault("scheduler.startup_delay", "0s")

	v.SetDefault("state.path", "tcrb_monitor/state.json")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Target.Star == "" {
		return fmt.Errorf("target.star is required")
	}
	if c.Target.Band == "" {
		return fmt.Errorf("target.band is required")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("scheduler.interval must be greater than zero")
	}
	if c.Providers.LookbackDays <= 0 {
		return fmt.Errorf("providers.lookback_days must be greater than zero")
	}
	if c.Providers.MaxAgeDays < 0 {
		return fmt.Errorf("providers.max_age_days cannot be negative")
	}
	if !c.Providers.LCG.Enabled && !c.Providers.VSX.Enabled && !c.Providers.SkyPatrol.Enabled {
		return fmt.Errorf("at least one photometry provider must be enabled")
	}
	if c.Alerting.Threshold <= 0 {
		return fmt.Errorf("alerting.threshold must be greater than zero")
	}
	if c.Alerting.Cooldown < 0 {
		return fmt.Errorf("alerting.cooldown cannot be negative")
	}
	if c.State.Path == "" {
		return fmt.Errorf("state.path is required")
	}
	if c.Email.Enabled {
		if c.Email.Host == "" || c.Email.Port == 0 {
			return fmt.Errorf("email.host and email.port are required when email is enabled")
		}
		if c.Email.From == "" {
			return fmt.Errorf("email.from is required when email is enabled")
		}
		if len(c.Email.Recipients) == 0 {
			return fmt.Errorf("email.recipients must not be empty when email is enabled")
		}
	}
	return nil
}
