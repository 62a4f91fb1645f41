package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/areaewhy/JoplinView/internal/parser"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Bucket BucketConfig      `yaml:"bucket"`
	Store  StoreConfig       `yaml:"store"`
	Sync   SyncConfig        `yaml:"sync"`
	Auth   AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Bucket.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.Sync.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// BucketConfig holds the note export source. Either an S3-compatible
// bucket (Endpoint + Name + credentials) or a local directory (Dir),
// never both. An unconfigured source is legal at startup; sync passes
// then fail with a config error until credentials arrive.
type BucketConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Name      string `yaml:"name"`
	Prefix    string `yaml:"prefix"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
	Dir       string `yaml:"dir"`
}

// Validate validates the bucket configuration.
func (c *BucketConfig) Validate() error {
	if c.Dir != "" && c.Endpoint != "" {
		return fmt.Errorf("bucket: dir and endpoint are mutually exclusive")
	}
	return nil
}

// S3Configured reports whether the S3 source is fully specified.
func (c *BucketConfig) S3Configured() bool {
	return c.Endpoint != "" && c.Name != "" && c.AccessKey != "" && c.SecretKey != ""
}

// StoreConfig holds SQLite database configuration.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SyncConfig holds reconciliation behavior.
type SyncConfig struct {
	// Dialect selects the metadata convention of the export objects.
	Dialect string `yaml:"dialect"`
	// NotebookFilter restricts notes to one source folder when set.
	NotebookFilter string `yaml:"notebook_filter"`
	// DedupeTitles enables the duplicate-title guard.
	DedupeTitles bool `yaml:"dedupe_titles"`
	// FetchConcurrency bounds parallel object fetches.
	FetchConcurrency int `yaml:"fetch_concurrency"`
	// ObjectTimeout bounds each bucket call.
	ObjectTimeout time.Duration `yaml:"object_timeout"`
	// Interval is the scheduled sync period; 0 disables the schedule.
	Interval time.Duration `yaml:"interval"`
	// CacheTTL is the snapshot freshness window.
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// Validate validates the sync configuration.
func (c *SyncConfig) Validate() error {
	if c.Dialect == "" {
		c.Dialect = parser.DialectJoplin
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Dialect, validation.In(parser.DialectJoplin, parser.DialectFrontMatter)),
		validation.Field(&c.FetchConcurrency, validation.Min(0)),
	)
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	// Normalise empty mode to "disabled" for backward compatibility.
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Bucket: BucketConfig{
			Region: "us-east-1",
			UseSSL: true,
		},
		Store: StoreConfig{
			Path: "./joplinview.db",
		},
		Sync: SyncConfig{
			Dialect:          parser.DialectJoplin,
			FetchConcurrency: 8,
			ObjectTimeout:    30 * time.Second,
			Interval:         time.Hour,
			CacheTTL:         time.Hour,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
