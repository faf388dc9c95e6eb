package internal

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/esurat/internal/analysis"
	"github.com/starford/esurat/internal/apperr"
	"github.com/starford/esurat/internal/backend"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App         ApplicationConfig `yaml:"app"`
	Backend     BackendConfig     `yaml:"backend"`
	SQLite      SQLiteConfig      `yaml:"sqlite"`
	Mongo       MongoConfig       `yaml:"mongo"`
	Postgres    PostgresConfig    `yaml:"postgres"`
	Attachments AttachmentsConfig `yaml:"attachments"`
	Session     SessionConfig     `yaml:"session"`
	Auth        AuthConfig        `yaml:"auth"`
	Gemini      GeminiConfig      `yaml:"gemini"`
	Agenda      AgendaConfig      `yaml:"agenda"`
}

// Validate validates the configuration. Missing backend credentials are not
// an error here; CheckCredentials reports them so the server can show a
// notice instead of refusing to start.
func (c *Config) Validate() error {
	for _, v := range []interface{ Validate() error }{
		&c.App, &c.Backend, &c.SQLite, &c.Attachments, &c.Session, &c.Auth, &c.Gemini,
	} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CheckCredentials reports whether the selected backend has what it needs to
// connect. Values left empty, or set to "undefined" or "null" by an unfilled
// template, count as missing.
func (c *Config) CheckCredentials() error {
	var missing []string
	switch c.Backend.Driver {
	case backend.DriverMongo:
		if unset(c.Mongo.URI) {
			missing = append(missing, "mongo.uri")
		}
		if unset(c.Mongo.Database) {
			missing = append(missing, "mongo.database")
		}
	case backend.DriverPostgres:
		if unset(c.Postgres.DSN) {
			missing = append(missing, "postgres.dsn")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperr.ErrMisconfigured, strings.Join(missing, ", "))
	}
	return nil
}

func unset(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "undefined", "null":
		return true
	}
	return false
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

// BackendConfig selects the storage driver.
type BackendConfig struct {
	Driver string `yaml:"driver"`
}

// Validate validates the backend selection.
func (c *BackendConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.Required, validation.In(
			backend.DriverLocal, backend.DriverMemory, backend.DriverMongo, backend.DriverPostgres)),
	)
}

// SQLiteConfig is the file used by the local driver.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// MongoConfig holds the document database connection.
type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// PostgresConfig holds the relational database connection.
type PostgresConfig struct {
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// AttachmentsConfig is where uploaded scans are kept.
type AttachmentsConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the attachments configuration.
func (c *AttachmentsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// SessionConfig is the local file holding the CLI's signed-in user.
type SessionConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the session configuration.
func (c *SessionConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// AuthConfig holds the optional API token gate.
//
// Mode controls how the gate is enforced:
//   - "disabled" (default): no token required.
//   - "token": Bearer token required on /api; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
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

// AuthEnabled returns true when the token gate is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// GeminiConfig configures AI analysis. An empty APIKey disables it.
type GeminiConfig struct {
	APIKey  string        `yaml:"api_key"`
	Model   string        `yaml:"model"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the Gemini configuration.
func (c *GeminiConfig) Validate() error {
	if unset(c.APIKey) {
		c.APIKey = ""
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
	)
}

// AgendaConfig names the default signing official of new agendas.
type AgendaConfig struct {
	SignerName string `yaml:"signer_name"`
	SignerNIP  string `yaml:"signer_nip"`
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
		Backend: BackendConfig{
			Driver: backend.DriverLocal,
		},
		SQLite: SQLiteConfig{
			Path: "./data/esurat.db",
		},
		Mongo: MongoConfig{
			Database: "esurat",
		},
		Postgres: PostgresConfig{
			Migrate: true,
		},
		Attachments: AttachmentsConfig{
			Path: "./data/attachments",
		},
		Session: SessionConfig{
			Path: "./data/session.db",
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Gemini: GeminiConfig{
			Model:   analysis.DefaultModel,
			BaseURL: analysis.DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		Agenda: AgendaConfig{
			SignerName: "Novi Haryanto, S. Adm",
			SignerNIP:  "197111201991031003",
		},
	}
}
