package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

type BackendType string

const (
	BackendTypeSheets BackendType = "sheets"
	BackendTypeSQLite BackendType = "sqlite"
	BackendTypeMemory BackendType = "memory"
)

type CacheType string

const (
	CacheTypeMemory CacheType = "memory"
	CacheTypeRedis  CacheType = "redis"
)

// Config holds the configuration for the giveaways server and its dependencies.
type Config struct {
	// Listen is the address the server will listen on.
	Listen string `yaml:"listen" mapstructure:"listen"`
	// ServerURL is the public base URL of the site, used in emails.
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
	// SessionKey is the key used to sign session cookies.
	SessionKey string `yaml:"session_key" mapstructure:"session_key"`
	// SessionName is the name of the session cookie.
	SessionName string `yaml:"session_name" mapstructure:"session_name"`
	// SecureCookies marks the session cookie as Secure.
	SecureCookies bool `yaml:"secure_cookies" mapstructure:"secure_cookies"`
	// AdminUsername is the one username that is granted admin rights at signup.
	AdminUsername string `yaml:"admin_username" mapstructure:"admin_username"`
	// Backend selects where the tables are stored.
	Backend *BackendConfig `yaml:"backend" mapstructure:"backend"`
	// Sheets holds the Google Sheets configuration.
	Sheets *SheetsConfig `yaml:"sheets" mapstructure:"sheets"`
	// Database holds the local sqlite backend configuration.
	Database *DatabaseConfig `yaml:"database" mapstructure:"database"`
	// Cache holds the lookup cache configuration.
	Cache *CacheConfig `yaml:"cache" mapstructure:"cache"`
	// Email holds the email notification configuration.
	Email *EmailConfig `yaml:"email" mapstructure:"email"`
	// Gravatar holds the configuration for Gravatar profile pictures.
	Gravatar *GravatarConfig `yaml:"gravatar" mapstructure:"gravatar"`
}

// BackendConfig selects the row store backend.
type BackendConfig struct {
	// Type is one of "sheets", "sqlite" or "memory".
	Type BackendType `yaml:"type" mapstructure:"type"`
}

// SheetsConfig holds the Google Sheets configuration.
type SheetsConfig struct {
	// SpreadsheetID is the ID of the spreadsheet document holding all tables.
	SpreadsheetID string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	// CredentialsFile is the path to a service account key file.
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	// CredentialsJSON is the raw service account key. Takes precedence over CredentialsFile.
	CredentialsJSON string `yaml:"credentials_json" mapstructure:"credentials_json"`
}

// DatabaseConfig holds the database configuration.
type DatabaseConfig struct {
	// Path is the path to the database file.
	Path string `yaml:"path" mapstructure:"path"`
}

// CacheConfig holds the configuration for the lookup cache.
type CacheConfig struct {
	// Type is the type of cache engine to use (e.g., "memory", "redis").
	Type CacheType `yaml:"type" mapstructure:"type"`
	// RedisURL is the address of the Redis server if using Redis.
	RedisURL string `yaml:"redis_url" mapstructure:"redis_url"`
	// TTL is how long a cached lookup stays fresh.
	TTL time.Duration `yaml:"ttl" mapstructure:"ttl"`
	// MaxEntries bounds the in-memory cache. Zero means unbounded.
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
	// SweepInterval is how often expired entries are removed.
	SweepInterval time.Duration `yaml:"sweep_interval" mapstructure:"sweep_interval"`
}

// EmailConfig holds the email notification configuration.
type EmailConfig struct {
	// Enabled indicates whether email notifications are enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// SMTPHost is the SMTP server host.
	SMTPHost string `yaml:"smtp_host" mapstructure:"smtp_host"`
	// SMTPPort is the SMTP server port.
	SMTPPort int `yaml:"smtp_port" mapstructure:"smtp_port"`
	// Username is the SMTP username.
	Username string `yaml:"username" mapstructure:"username"`
	// Password is the SMTP password.
	Password string `yaml:"password" mapstructure:"password"`
	// FromEmail is the email address from which notifications are sent.
	FromEmail string `yaml:"from_email" mapstructure:"from_email"`
	// FromName is the name from which notifications are sent.
	FromName string `yaml:"from_name" mapstructure:"from_name"`
	// UseTLS indicates whether to use STARTTLS for the SMTP connection.
	UseTLS bool `yaml:"use_tls" mapstructure:"use_tls"`
	// UseSSL indicates whether to use implicit TLS for the SMTP connection.
	UseSSL bool `yaml:"use_ssl" mapstructure:"use_ssl"`
	// InsecureSkipVerify indicates whether to skip TLS certificate verification.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify" mapstructure:"insecure_skip_verify"`
}

// GravatarConfig holds the configuration for Gravatar profile pictures.
type GravatarConfig struct {
	// Enabled indicates whether Gravatar support is enabled.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// DefaultImage is the default image to use when no Gravatar is found.
	// Valid values: "404", "mp", "identicon", "monsterid", "wavatar", "retro", "robohash", "blank"
	DefaultImage string `yaml:"default_image" mapstructure:"default_image"`
	// Rating is the maximum rating for Gravatar images.
	// Valid values: "g", "pg", "r", "x"
	Rating string `yaml:"rating" mapstructure:"rating"`
	// Size is the size of the Gravatar image in pixels (1-2048).
	Size int `yaml:"size" mapstructure:"size"`
}

// Load reads the configuration from the specified path and returns a Config struct.
// If path is empty, it will use default search paths for config files.
func Load(path string) (*Config, error) {
	v := viper.New()

	bindNestedEnv(v)

	setDefaults(v)

	v.SetConfigType("yaml")
	v.SetEnvPrefix("GIVEAWAYS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.giveaways")
		v.AddConfigPath("/etc/giveaways")
	}

	if err := v.ReadInConfig(); err != nil {
		// If no config file is found, use defaults and env
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Debug("Using config file", "file", v.ConfigFileUsed())
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	sanitizeConfig(&c)

	if err := validateConfig(&c); err != nil {
		return nil, err
	}

	return &c, nil
}

// setDefaults sets default values for the configuration.
func setDefaults(v *viper.Viper) {
	v.SetDefault("listen", "0.0.0.0:5000")
	v.SetDefault("server_url", "http://localhost:5000")
	v.SetDefault("session_key", "")
	v.SetDefault("session_name", "giveaways_session")
	v.SetDefault("secure_cookies", false)
	v.SetDefault("admin_username", "Pubzy")

	v.SetDefault("backend.type", BackendTypeSheets)
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials_file", "")

	v.SetDefault("database.path", "./data/giveaways.db")

	v.SetDefault("cache.type", CacheTypeMemory)
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl", time.Minute)
	v.SetDefault("cache.max_entries", 10000)
	v.SetDefault("cache.sweep_interval", 5*time.Minute)

	v.SetDefault("email.enabled", false)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from_name", "Pubzy Giveaways")
	v.SetDefault("email.use_tls", true)
	v.SetDefault("email.use_ssl", false)
	v.SetDefault("email.insecure_skip_verify", false)

	v.SetDefault("gravatar.enabled", false)
	v.SetDefault("gravatar.default_image", "identicon")
	v.SetDefault("gravatar.rating", "g")
	v.SetDefault("gravatar.size", 80)
}

// the service account key is usually handed over as one env var that predates the GIVEAWAYS_ prefix.
func bindNestedEnv(v *viper.Viper) {
	v.MustBindEnv("sheets.credentials_json", "GIVEAWAYS_SHEETS_CREDENTIALS_JSON", "GOOGLE_SERVICE_ACCOUNT_KEY")
}

// validateConfig validates the configuration.
func validateConfig(c *Config) error {
	if c == nil {
		return fmt.Errorf("missing config")
	}

	if c.SessionKey == "" {
		return fmt.Errorf("session key is required")
	}

	if c.AdminUsername == "" {
		return fmt.Errorf("admin username is required")
	}

	if c.Backend == nil {
		c.Backend = &BackendConfig{Type: BackendTypeSheets}
	}

	switch c.Backend.Type {
	case BackendTypeSheets:
		if c.Sheets == nil || c.Sheets.SpreadsheetID == "" {
			return fmt.Errorf("spreadsheet ID is required when the sheets backend is used")
		}
		if c.Sheets.CredentialsJSON == "" && c.Sheets.CredentialsFile == "" {
			return fmt.Errorf("sheets credentials are required when the sheets backend is used")
		}
	case BackendTypeSQLite:
		if c.Database == nil || c.Database.Path == "" {
			return fmt.Errorf("database path is required when the sqlite backend is used")
		}
	case BackendTypeMemory:
		log.Warn("memory backend selected, data will be lost on restart")
	default:
		return fmt.Errorf("unknown backend type %q", c.Backend.Type)
	}

	if c.Cache != nil {
		if c.Cache.Type == "" {
			return fmt.Errorf("cache type is required")
		}
		if c.Cache.Type == CacheTypeRedis && c.Cache.RedisURL == "" {
			return fmt.Errorf("Redis URL is required when Redis cache is enabled") //nolint:staticcheck
		}
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache ttl must be positive")
		}
	} else {
		c.Cache = &CacheConfig{
			Type:          CacheTypeMemory,
			TTL:           time.Minute,
			SweepInterval: 5 * time.Minute,
		}
	}

	if c.Email != nil && c.Email.Enabled {
		if c.Email.SMTPHost == "" {
			return fmt.Errorf("SMTP host is required when email is enabled") //nolint:staticcheck
		}
		if c.Email.FromEmail == "" {
			return fmt.Errorf("from email is required when email is enabled")
		}
	}

	return nil
}

// sanitizeConfig sanitizes the configuration values.
func sanitizeConfig(c *Config) {
	if c == nil {
		return
	}

	c.Listen = urlSanitize(c.Listen)
	c.AdminUsername = strings.TrimSpace(c.AdminUsername)

	if c.ServerURL != "" {
		c.ServerURL = urlSanitize(c.ServerURL)
	}

	if c.Sheets != nil {
		c.Sheets.SpreadsheetID = strings.TrimSpace(c.Sheets.SpreadsheetID)
	}
}

func urlSanitize(url string) string {
	return strings.TrimSuffix(strings.TrimSpace(url), "/")
}

// GetCacheTTL returns the lookup cache ttl with proper defaults.
func (c *Config) GetCacheTTL() time.Duration {
	if c == nil || c.Cache == nil || c.Cache.TTL <= 0 {
		return time.Minute
	}
	return c.Cache.TTL
}

// GetSweepInterval returns how often expired cache entries are swept.
func (c *CacheConfig) GetSweepInterval() time.Duration {
	if c == nil || c.SweepInterval <= 0 {
		return 5 * time.Minute
	}
	return c.SweepInterval
}
