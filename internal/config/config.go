package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Ledger    LedgerConfig    `yaml:"ledger"`
	Loan      LoanConfig      `yaml:"loan"`
	Streak    StreakConfig    `yaml:"streak"`
	Approval  ApprovalConfig  `yaml:"approval"`
	Audit     AuditConfig     `yaml:"audit"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains the ops HTTP server settings
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// DatabaseConfig contains PostgreSQL connection settings
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// LedgerConfig contains the external balance ledger API settings
type LedgerConfig struct {
	BaseURL        string `yaml:"base_url"`
	Token          string `yaml:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// LoanConfig contains loan engine settings
type LoanConfig struct {
	AnnualRatePercent string `yaml:"annual_rate_percent"` // fixed system-wide rate
	MaxActiveLoans    int    `yaml:"max_active_loans"`
}

// StreakConfig contains daily reward settings
type StreakConfig struct {
	Timezone         string  `yaml:"timezone"` // reference zone for calendar-day boundaries
	LuckyBonusChance float64 `yaml:"lucky_bonus_chance"`
}

// ApprovalConfig contains self-action approval settings
type ApprovalConfig struct {
	WindowMinutes int `yaml:"window_minutes"`
}

// AuditConfig contains audit log settings
type AuditConfig struct {
	SuspiciousThreshold int64 `yaml:"suspicious_threshold"`
}

// JWTConfig contains ops API token settings
type JWTConfig struct {
	Secret string `yaml:"secret"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireApprovals   string `yaml:"expire_approvals"`
	MarkOverdueLoans  string `yaml:"mark_overdue_loans"`
	ReportUnconfirmed string `yaml:"report_unconfirmed"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Override with environment variables if present
	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}

	// Ledger
	if val := os.Getenv("LEDGER_BASE_URL"); val != "" {
		c.Ledger.BaseURL = val
	}
	if val := os.Getenv("LEDGER_TOKEN"); val != "" {
		c.Ledger.Token = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Database validation
	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	// Ledger validation
	if c.Ledger.BaseURL == "" {
		return fmt.Errorf("ledger base URL is required")
	}
	if c.Ledger.Token == "" {
		return fmt.Errorf("ledger API token is required")
	}
	if c.Ledger.TimeoutSeconds == 0 {
		c.Ledger.TimeoutSeconds = 5
	}
	if c.Ledger.TimeoutSeconds < 3 || c.Ledger.TimeoutSeconds > 10 {
		return fmt.Errorf("ledger timeout must be between 3 and 10 seconds, got %d", c.Ledger.TimeoutSeconds)
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}

	// Loan defaults
	if c.Loan.AnnualRatePercent == "" {
		c.Loan.AnnualRatePercent = "5"
	}
	if c.Loan.MaxActiveLoans == 0 {
		c.Loan.MaxActiveLoans = 2
	}

	// Streak defaults
	if c.Streak.Timezone == "" {
		c.Streak.Timezone = "America/Mexico_City"
	}
	if c.Streak.LuckyBonusChance == 0 {
		c.Streak.LuckyBonusChance = 0.10
	}
	if c.Streak.LuckyBonusChance < 0 || c.Streak.LuckyBonusChance > 1 {
		return fmt.Errorf("lucky bonus chance must be within [0, 1], got %f", c.Streak.LuckyBonusChance)
	}

	// Approval defaults
	if c.Approval.WindowMinutes == 0 {
		c.Approval.WindowMinutes = 15
	}

	// Audit defaults
	if c.Audit.SuspiciousThreshold == 0 {
		c.Audit.SuspiciousThreshold = 100000
	}

	// Scheduler defaults
	if c.Scheduler.ExpireApprovals == "" {
		c.Scheduler.ExpireApprovals = "0 * * * * *" // every minute
	}
	if c.Scheduler.MarkOverdueLoans == "" {
		c.Scheduler.MarkOverdueLoans = "0 0 2 * * *" // 2 AM UTC
	}
	if c.Scheduler.ReportUnconfirmed == "" {
		c.Scheduler.ReportUnconfirmed = "0 */15 * * * *" // every 15 minutes
	}

	return nil
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the ops HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
