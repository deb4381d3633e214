package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Batch     BatchConfig     `mapstructure:"batch"`
	Extractor ExtractorConfig `mapstructure:"extractor"`
	Export    ExportConfig    `mapstructure:"export"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// BatchConfig holds batch driver configuration
type BatchConfig struct {
	InputDir string `mapstructure:"input_dir"`
	Workers  int    `mapstructure:"workers"`
}

// ExtractorConfig holds extraction engine configuration
type ExtractorConfig struct {
	// DefaultPaymentMethod fills MetodoPago when the document omits it.
	// The historical extractor variants disagreed on this value, so it is
	// surfaced here instead of being hard-coded.
	DefaultPaymentMethod string `mapstructure:"default_payment_method"`
	// Namespaces extends or overrides the built-in prefix->URI table,
	// e.g. to register a future complement generation.
	Namespaces map[string]string `mapstructure:"namespaces"`
}

// ExportConfig holds Excel report configuration
type ExportConfig struct {
	OutputDir  string `mapstructure:"output_dir"`
	ReportName string `mapstructure:"report_name"`
}

// DatabaseConfig holds processing-history database configuration
type DatabaseConfig struct {
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	MigrationsDir   string        `mapstructure:"migrations_dir"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	OutputPath string `mapstructure:"output_path"`
	Format     string `mapstructure:"format"`
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables
	bindEnvVars()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Batch defaults
	viper.SetDefault("batch.input_dir", "input_cfdi")
	viper.SetDefault("batch.workers", 4)

	// Extractor defaults
	viper.SetDefault("extractor.default_payment_method", "No especificado")

	// Export defaults
	viper.SetDefault("export.output_dir", "output_excel")
	viper.SetDefault("export.report_name", "reporte_cfdi.xlsx")

	// Database defaults
	viper.SetDefault("database.path", "data/cfdi.db")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("database.migrations_dir", "migrations")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", 30*time.Second)
	viper.SetDefault("server.write_timeout", 30*time.Second)

	// Logger defaults
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.output_path", "stdout")
	viper.SetDefault("logger.format", "json")
}

// bindEnvVars binds environment variables to configuration
func bindEnvVars() {
	viper.BindEnv("batch.input_dir", "CFDI_INPUT_DIR")
	viper.BindEnv("export.output_dir", "CFDI_OUTPUT_DIR")
	viper.BindEnv("database.path", "CFDI_DB_PATH")
	viper.BindEnv("server.port", "CFDI_SERVER_PORT")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Batch.InputDir == "" {
		return fmt.Errorf("batch.input_dir is required")
	}
	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive")
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("export.output_dir is required")
	}
	if c.Export.ReportName == "" {
		return fmt.Errorf("export.report_name is required")
	}
	if c.Extractor.DefaultPaymentMethod == "" {
		return fmt.Errorf("extractor.default_payment_method is required")
	}

	return nil
}
