package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Sheets   SheetsConfig   `yaml:"sheets" mapstructure:"sheets"`
	FTP      FTPConfig      `yaml:"ftp" mapstructure:"ftp"`
	Retry    RetryConfig    `yaml:"retry" mapstructure:"retry"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the customer/shop repository backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PipelineConfig configures the selection and month-assignment stages.
type PipelineConfig struct {
	// WindowMonths is the rolling contract window; customers with an event
	// date inside it are "recent".
	WindowMonths int `yaml:"window_months" mapstructure:"window_months"`
	// ReportStaleMonths is the second band used by the counts report.
	ReportStaleMonths int            `yaml:"report_stale_months" mapstructure:"report_stale_months"`
	Validity          ValidityConfig `yaml:"validity" mapstructure:"validity"`
}

// ValidityConfig holds the hygiene codes used by the validity filter.
type ValidityConfig struct {
	VacantFlag        string   `yaml:"vacant_flag" mapstructure:"vacant_flag"`
	VerifiedStatus    string   `yaml:"verified_status" mapstructure:"verified_status"`
	InactiveOccupancy string   `yaml:"inactive_occupancy" mapstructure:"inactive_occupancy"`
	HardFailCodes     []string `yaml:"hard_fail_codes" mapstructure:"hard_fail_codes"`
	AcceptedDPV       []string `yaml:"accepted_dpv" mapstructure:"accepted_dpv"`
}

// ExportConfig configures where mailing lists are written.
type ExportConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SheetsConfig configures the Google Sheets report sink.
type SheetsConfig struct {
	SpreadsheetID   string  `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	Sheet           string  `yaml:"sheet" mapstructure:"sheet"`
	StartRow        int     `yaml:"start_row" mapstructure:"start_row"`
	CredentialsFile string  `yaml:"credentials_file" mapstructure:"credentials_file"`
	RequestsPerSec  float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// FTPConfig configures the mail-house FTP drop.
type FTPConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Username    string `yaml:"username" mapstructure:"username"`
	Password    string `yaml:"password" mapstructure:"password"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// RetryConfig configures retries around repository reads and sinks.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("ROSTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.database_url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("pipeline.window_months", 48)
	v.SetDefault("pipeline.report_stale_months", 60)
	v.SetDefault("pipeline.validity.vacant_flag", "Y")
	v.SetDefault("pipeline.validity.verified_status", "V")
	v.SetDefault("pipeline.validity.inactive_occupancy", "02")
	v.SetDefault("pipeline.validity.hard_fail_codes", []string{"12.2", "12.3", "12.4"})
	v.SetDefault("pipeline.validity.accepted_dpv", []string{"Y", "S"})
	v.SetDefault("export.dir", "./mailing-lists")
	v.SetDefault("export.format", "csv")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.sheet", "Sheet1")
	v.SetDefault("sheets.start_row", 4)
	v.SetDefault("sheets.credentials_file", "")
	v.SetDefault("sheets.requests_per_sec", 1.0)
	v.SetDefault("ftp.url", "")
	v.SetDefault("ftp.username", "anonymous")
	v.SetDefault("ftp.password", "")
	v.SetDefault("ftp.timeout_secs", 30)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("retry.max_backoff_ms", 10000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.25)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Pipeline.WindowMonths <= 0 {
		return eris.Errorf("config: pipeline.window_months must be positive, got %d", c.Pipeline.WindowMonths)
	}
	if c.Pipeline.ReportStaleMonths < c.Pipeline.WindowMonths {
		return eris.Errorf("config: pipeline.report_stale_months (%d) must be >= window_months (%d)",
			c.Pipeline.ReportStaleMonths, c.Pipeline.WindowMonths)
	}
	switch c.Export.Format {
	case "csv", "xlsx":
	default:
		return eris.Errorf("config: unsupported export.format %q", c.Export.Format)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
