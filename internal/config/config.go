// Package config loads gateway configuration from the environment.
//
// All settings come from WIKIJS_* environment variables with an optional
// local .env file. Precedence: environment variables first, then .env,
// then built-in defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds every tunable for the Wiki.js MCP gateway.
type Config struct {
	// APIURL is the base address of the Wiki.js instance, without
	// the /graphql suffix. Trailing slashes are stripped on load.
	APIURL string

	// APIToken is a static bearer token. Takes precedence over
	// username/password when both are configured.
	APIToken string

	// APIKey is an alternative name for the bearer token, honored
	// for compatibility with older deployments.
	APIKey string

	// Username and Password are used for a GraphQL login mutation
	// when no token is configured.
	Username string
	Password string

	// DBPath is the SQLite file holding file-to-page mappings.
	DBPath string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFile receives rotated log output in addition to stderr.
	LogFile string

	// RepositoryRoot overrides repository detection when set.
	RepositoryRoot string

	// DefaultSpaceName names the organization space used when a
	// repository has no stored context.
	DefaultSpaceName string

	// DefaultLocale is the locale used for page paths.
	DefaultLocale string
}

// Token returns the configured bearer token, preferring APIToken
// over the legacy APIKey name. Empty when neither is set.
func (c *Config) Token() string {
	if c.APIToken != "" {
		return c.APIToken
	}
	return c.APIKey
}

// HasCredentials reports whether any usable credential form is configured.
func (c *Config) HasCredentials() bool {
	return c.Token() != "" || (c.Username != "" && c.Password != "")
}

// Load reads configuration from the environment and an optional .env file.
func Load() *Config {
	v := viper.New()

	v.SetDefault("WIKIJS_API_URL", "http://localhost:3000")
	v.SetDefault("WIKIJS_TOKEN", "")
	v.SetDefault("WIKIJS_API_KEY", "")
	v.SetDefault("WIKIJS_USERNAME", "")
	v.SetDefault("WIKIJS_PASSWORD", "")
	v.SetDefault("WIKIJS_MCP_DB", "./wikijs_mappings.db")
	v.SetDefault("LOG_LEVEL", "INFO")
	v.SetDefault("LOG_FILE", "wikijs_mcp.log")
	v.SetDefault("REPOSITORY_ROOT", "./")
	v.SetDefault("DEFAULT_SPACE_NAME", "Documentation")
	v.SetDefault("DEFAULT_LOCALE", "en")

	v.AutomaticEnv()

	// A local .env file is optional; missing files are fine.
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig()

	return &Config{
		APIURL:           strings.TrimRight(v.GetString("WIKIJS_API_URL"), "/"),
		APIToken:         v.GetString("WIKIJS_TOKEN"),
		APIKey:           v.GetString("WIKIJS_API_KEY"),
		Username:         v.GetString("WIKIJS_USERNAME"),
		Password:         v.GetString("WIKIJS_PASSWORD"),
		DBPath:           v.GetString("WIKIJS_MCP_DB"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		LogFile:          v.GetString("LOG_FILE"),
		RepositoryRoot:   v.GetString("REPOSITORY_ROOT"),
		DefaultSpaceName: v.GetString("DEFAULT_SPACE_NAME"),
		DefaultLocale:    v.GetString("DEFAULT_LOCALE"),
	}
}
