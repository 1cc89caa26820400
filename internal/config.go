package internal

import (
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Output layouts.
const (
	LayoutFlat   = "flat"
	LayoutBundle = "bundle"
)

// DefaultLanguages are the code fence languages the target site highlights.
var DefaultLanguages = []string{"javascript", "typescript", "bash", "sh", "yaml", "hcl", "go", "python", "ruby"}

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app" envPrefix:"APP_"`
	Posts   PostsConfig       `yaml:"posts" envPrefix:"POSTS_"`
	Journal JournalConfig     `yaml:"journal" envPrefix:"JOURNAL_"`
	Verify  VerifyConfig      `yaml:"verify" envPrefix:"VERIFY_"`
	Auth    AuthConfig        `yaml:"auth" envPrefix:"AUTH_"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Posts.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level" env:"LOG_LEVEL"`
	HTTP     HTTPConfig `yaml:"http" envPrefix:"HTTP_"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port" env:"PORT"`
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

// PostsConfig locates the legacy posts and the converted output.
type PostsConfig struct {
	InputDir  string `yaml:"input_dir" env:"INPUT_DIR"`
	OutputDir string `yaml:"output_dir" env:"OUTPUT_DIR"`
	// Include is a doublestar pattern relative to InputDir.
	Include string `yaml:"include" env:"INCLUDE"`
	Layout  string `yaml:"layout" env:"LAYOUT"`
}

// Validate validates the posts configuration.
func (c *PostsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.InputDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Include, validation.Required, validation.By(validGlob)),
		validation.Field(&c.Layout, validation.Required, validation.In(LayoutFlat, LayoutBundle)),
	)
}

func validGlob(value interface{}) error {
	s, _ := value.(string)
	if !doublestar.ValidatePattern(s) {
		return fmt.Errorf("invalid glob pattern %q", s)
	}
	return nil
}

// JournalConfig holds the migration journal settings. An empty Path
// disables the journal.
type JournalConfig struct {
	Path        string `yaml:"path" env:"PATH"`
	Incremental bool   `yaml:"incremental" env:"INCREMENTAL"`
}

// Enabled reports whether a journal should be opened.
func (c *JournalConfig) Enabled() bool {
	return c.Path != ""
}

// VerifyConfig controls the post-conversion checks.
type VerifyConfig struct {
	Enabled   bool     `yaml:"enabled" env:"ENABLED"`
	Languages []string `yaml:"languages" env:"LANGUAGES"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode" env:"MODE"`
	Token string `yaml:"token" env:"TOKEN"`
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
		Posts: PostsConfig{
			InputDir:  "_posts",
			OutputDir: "src/content/blog",
			Include:   "*.md",
			Layout:    LayoutFlat,
		},
		Verify: VerifyConfig{
			Enabled:   true,
			Languages: append([]string(nil), DefaultLanguages...),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}
