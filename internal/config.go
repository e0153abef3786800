package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Catalog    CatalogConfig     `yaml:"catalog"`
	Remote     RemoteConfig      `yaml:"remote"`
	Extraction ExtractionConfig  `yaml:"extraction"`
	Batch      BatchConfig       `yaml:"batch"`
	Auth       AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Remote.Validate(); err != nil {
		return err
	}
	if err := c.Extraction.Validate(); err != nil {
		return err
	}
	if err := c.Batch.Validate(); err != nil {
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

// CatalogConfig holds the local persistence paths: the SQLite mirror
// database, the root directory for parcel folders, and the inbox
// directory watched for incoming documents.
type CatalogConfig struct {
	MirrorPath  string `yaml:"mirror_path"`
	ParcelsRoot string `yaml:"parcels_root"`
	InboxPath   string `yaml:"inbox_path"`
}

// Validate validates the catalog configuration.
func (c *CatalogConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.MirrorPath, validation.Required),
		validation.Field(&c.ParcelsRoot, validation.Required),
	)
}

// RemoteConfig holds the Firestore backup configuration.
//
// When Enabled is false the application runs fully offline: records
// live in the in-process cache and the SQLite mirror only.
type RemoteConfig struct {
	Enabled bool   `yaml:"enabled"`
	Project string `yaml:"project"`
	User    string `yaml:"user"`
}

// Validate validates the remote configuration.
func (c *RemoteConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Project, validation.Required),
		validation.Field(&c.User, validation.Required),
	)
}

// ExtractionConfig holds the document extraction model settings. The
// API key is read from the environment variable named by APIKeyEnv so
// secrets stay out of config files.
type ExtractionConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Validate validates the extraction configuration.
func (c *ExtractionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.APIKeyEnv, validation.Required),
	)
}

// BatchConfig holds batch reconciliation settings. ItemDelayMS is the
// pause between documents in milliseconds, keeping the extraction API
// under its rate limit.
type BatchConfig struct {
	ItemDelayMS int  `yaml:"item_delay_ms"`
	AutoCreate  bool `yaml:"auto_create"`
}

// ItemDelay returns the inter-document pause as a duration.
func (c *BatchConfig) ItemDelay() time.Duration {
	return time.Duration(c.ItemDelayMS) * time.Millisecond
}

// Validate validates the batch configuration.
func (c *BatchConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ItemDelayMS, validation.Min(0)),
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
		Catalog: CatalogConfig{
			MirrorPath:  "./titlecrm.db",
			ParcelsRoot: "./parcels",
			InboxPath:   "./inbox",
		},
		Remote: RemoteConfig{
			Enabled: false,
		},
		Extraction: ExtractionConfig{
			Model:     "gemini-1.5-flash",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Batch: BatchConfig{
			ItemDelayMS: 800,
			AutoCreate:  true,
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
