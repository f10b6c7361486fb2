package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Auth modes for the generation API.
const (
	AuthModeOpen  = "open"
	AuthModeToken = "token"
)

// Config holds all application configuration
type Config struct {
	App    App    `mapstructure:"app"`
	AI     AI     `mapstructure:"ai"`
	Email  Email  `mapstructure:"email"`
	Server Server `mapstructure:"server"`
	Site   Site   `mapstructure:"site"`
	Store  Store  `mapstructure:"store"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds model provider configuration. Provider selects the active
// provider; Model overrides the provider's default model when set.
type AI struct {
	Provider    string         `mapstructure:"provider"`
	Model       string         `mapstructure:"model"`
	Temperature float64        `mapstructure:"temperature"`
	ZAI         ProviderConfig `mapstructure:"zai"`
	OpenAI      ProviderConfig `mapstructure:"openai"`
	Anthropic   ProviderConfig `mapstructure:"anthropic"`
	OpenRouter  ProviderConfig `mapstructure:"openrouter"`
	Gemini      ProviderConfig `mapstructure:"gemini"`
}

// ProviderConfig holds the credentials and endpoint for a single provider.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
}

// Email holds draft notification email configuration (Resend API).
type Email struct {
	Enabled bool          `mapstructure:"enabled"`
	APIKey  string        `mapstructure:"api_key"`
	From    string        `mapstructure:"from"`
	To      string        `mapstructure:"to"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Server holds HTTP server configuration.
type Server struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AuthMode        string        `mapstructure:"auth_mode"`
	APISecret       string        `mapstructure:"api_secret"`
	CORS            CORS          `mapstructure:"cors"`
}

// CORS holds cross-origin configuration for the API.
type CORS struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Site holds the public site URLs that publish and admin links point at.
type Site struct {
	BaseURL   string `mapstructure:"base_url"`
	AdminPath string `mapstructure:"admin_path"`
}

// AdminPostURL returns the admin editor URL for a post.
func (s Site) AdminPostURL(id string) string {
	return strings.TrimRight(s.BaseURL, "/") + s.AdminPath + "/" + id
}

// AdminURL returns the admin collection URL.
func (s Site) AdminURL() string {
	return strings.TrimRight(s.BaseURL, "/") + s.AdminPath
}

// BlogURL returns the public URL for a published post.
func (s Site) BlogURL(slug string) string {
	base := strings.TrimRight(s.BaseURL, "/")
	if slug == "" {
		return base + "/blog"
	}
	return base + "/blog/" + slug
}

// PublishURL returns the one-click publish link embedded in draft emails.
func (s Site) PublishURL(id, token string) string {
	return fmt.Sprintf("%s/api/blog/publish?id=%s&token=%s",
		strings.TrimRight(s.BaseURL, "/"), url.QueryEscape(id), url.QueryEscape(token))
}

// Store holds draft persistence configuration.
type Store struct {
	Directory string        `mapstructure:"directory"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".blogsmith")
		viper.SetConfigType("yaml")
	}

	// Set defaults
	setDefaults()

	// Bind environment variables
	bindEnvironmentVariables()

	// Enable automatic environment variable reading
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into struct
	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Apply post-processing
	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// AI defaults
	viper.SetDefault("ai.provider", "zai")
	viper.SetDefault("ai.temperature", 0.7)
	viper.SetDefault("ai.zai.base_url", "https://api.z.ai/api/coding/paas/v4")
	viper.SetDefault("ai.zai.model", "glm-4.7")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.model", "gpt-4o")
	viper.SetDefault("ai.anthropic.base_url", "https://api.anthropic.com/v1")
	viper.SetDefault("ai.anthropic.model", "claude-sonnet-4-20250514")
	viper.SetDefault("ai.openrouter.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("ai.openrouter.model", "anthropic/claude-sonnet-4-20250514")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")

	// Email defaults
	viper.SetDefault("email.enabled", true)
	viper.SetDefault("email.timeout", "30s")

	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.request_timeout", "90s")
	viper.SetDefault("server.shutdown_timeout", "10s")
	viper.SetDefault("server.cors.enabled", false)

	// Site defaults
	viper.SetDefault("site.base_url", "https://www.thenycoptometrist.com")
	viper.SetDefault("site.admin_path", "/admin/collections/blog-posts")

	// Store defaults
	viper.SetDefault("store.directory", ".blogsmith-data")
	viper.SetDefault("store.token_ttl", "168h")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.provider", []string{
		"AI_PROVIDER",
	})

	bindEnvKeys("ai.model", []string{
		"AI_MODEL",
	})

	// Provider API keys - support multiple formats
	bindEnvKeys("ai.zai.api_key", []string{
		"Z_AI_API_KEY",
		"ZAI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.anthropic.api_key", []string{
		"ANTHROPIC_API_KEY",
	})

	bindEnvKeys("ai.openrouter.api_key", []string{
		"OPENROUTER_API_KEY",
	})

	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	// Email (Resend)
	bindEnvKeys("email.api_key", []string{
		"RESEND_API_KEY",
	})

	bindEnvKeys("email.from", []string{
		"BLOG_EMAIL_FROM",
		"ANALYTICS_EMAIL_FROM",
	})

	bindEnvKeys("email.to", []string{
		"BLOG_EMAIL_RECIPIENT",
		"ANALYTICS_EMAIL_RECIPIENT",
	})

	// API auth secret
	bindEnvKeys("server.api_secret", []string{
		"BLOG_API_SECRET",
		"CRON_SECRET",
	})

	bindEnvKeys("server.port", []string{
		"PORT",
	})

	bindEnvKeys("site.base_url", []string{
		"SITE_BASE_URL",
	})

	// General settings
	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"BLOGSMITH_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Store.Directory != "" {
		config.Store.Directory = expandPath(config.Store.Directory)
	}

	// Unknown provider names fall back to the default with a warning so a
	// typo in AI_PROVIDER does not take blog generation down entirely.
	if !knownProvider(config.AI.Provider) {
		fmt.Printf("Warning: unknown AI provider %q, falling back to \"zai\"\n", config.AI.Provider)
		config.AI.Provider = "zai"
	}

	// Derive the auth mode when not set explicitly: a configured secret
	// means token auth, otherwise the API is open.
	if config.Server.AuthMode == "" {
		if config.Server.APISecret != "" {
			config.Server.AuthMode = AuthModeToken
		} else {
			config.Server.AuthMode = AuthModeOpen
		}
	}

	return nil
}

// knownProvider reports whether name is a supported AI provider.
func knownProvider(name string) bool {
	switch name {
	case "zai", "openai", "anthropic", "openrouter", "gemini":
		return true
	}
	return false
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	switch config.Server.AuthMode {
	case AuthModeOpen, AuthModeToken:
	default:
		errors = append(errors, fmt.Sprintf("Unknown server.auth_mode: %q. Supported: open, token", config.Server.AuthMode))
	}

	if config.Server.AuthMode == AuthModeToken && config.Server.APISecret == "" {
		errors = append(errors, "server.auth_mode is \"token\" but no API secret is configured. Set BLOG_API_SECRET or CRON_SECRET environment variable")
	}

	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		errors = append(errors, fmt.Sprintf("ai.temperature must be between 0 and 2, got %v", config.AI.Temperature))
	}

	// Email settings are validated as a group so a half-configured sender
	// fails loudly instead of at send time.
	if config.Email.Enabled && (config.Email.APIKey != "" || config.Email.From != "" || config.Email.To != "") {
		if config.Email.APIKey == "" {
			errors = append(errors, "Resend API key is required when email is configured. Set RESEND_API_KEY environment variable")
		}
		if config.Email.From == "" {
			errors = append(errors, "Email from address is required when email is configured. Set BLOG_EMAIL_FROM environment variable")
		}
		if config.Email.To == "" {
			errors = append(errors, "Email recipient is required when email is configured. Set BLOG_EMAIL_RECIPIENT environment variable")
		}
	}

	for key, d := range map[string]time.Duration{
		"server.read_timeout":     config.Server.ReadTimeout,
		"server.write_timeout":    config.Server.WriteTimeout,
		"server.request_timeout":  config.Server.RequestTimeout,
		"server.shutdown_timeout": config.Server.ShutdownTimeout,
		"email.timeout":           config.Email.Timeout,
		"store.token_ttl":         config.Store.TokenTTL,
	} {
		if d <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be a positive duration", key))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Convenience getters for commonly used configuration values
func GetApp() App       { return Get().App }
func GetAI() AI         { return Get().AI }
func GetEmail() Email   { return Get().Email }
func GetServer() Server { return Get().Server }
func GetSite() Site     { return Get().Site }
func GetStore() Store   { return Get().Store }

// Specific convenience getters for frequently accessed values
func GetAIProvider() string     { return Get().AI.Provider }
func GetSiteBaseURL() string    { return Get().Site.BaseURL }
func GetStoreDirectory() string { return Get().Store.Directory }
func IsDebugMode() bool         { return Get().App.Debug }

// ProviderFor returns the credentials block for the named provider.
func (a AI) ProviderFor(name string) (ProviderConfig, bool) {
	switch name {
	case "zai":
		return a.ZAI, true
	case "openai":
		return a.OpenAI, true
	case "anthropic":
		return a.Anthropic, true
	case "openrouter":
		return a.OpenRouter, true
	case "gemini":
		return a.Gemini, true
	}
	return ProviderConfig{}, false
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
