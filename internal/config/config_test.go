package config

import (
	"os"
	"strings"
	"testing"
)

// clearEnv unsets every variable the config package binds so tests are not
// affected by the host environment.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"AI_PROVIDER", "AI_MODEL",
		"Z_AI_API_KEY", "ZAI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY",
		"OPENROUTER_API_KEY", "GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY",
		"RESEND_API_KEY", "BLOG_EMAIL_FROM", "ANALYTICS_EMAIL_FROM",
		"BLOG_EMAIL_RECIPIENT", "ANALYTICS_EMAIL_RECIPIENT",
		"BLOG_API_SECRET", "CRON_SECRET", "PORT", "SITE_BASE_URL",
		"DEBUG", "BLOGSMITH_DEBUG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	Reset()
	defer Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Provider != "zai" {
		t.Errorf("Default provider = %q, want zai", cfg.AI.Provider)
	}
	if cfg.AI.Temperature != 0.7 {
		t.Errorf("Default temperature = %v, want 0.7", cfg.AI.Temperature)
	}
	if cfg.AI.ZAI.Model != "glm-4.7" {
		t.Errorf("Default zai model = %q, want glm-4.7", cfg.AI.ZAI.Model)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Default port = %d, want 8080", cfg.Server.Port)
	}
}

func TestAuthModeDerivation(t *testing.T) {
	clearEnv(t)
	Reset()
	defer Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.AuthMode != AuthModeOpen {
		t.Errorf("AuthMode without secret = %q, want open", cfg.Server.AuthMode)
	}

	Reset()
	t.Setenv("BLOG_API_SECRET", "s3cret")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load with secret failed: %v", err)
	}
	if cfg.Server.AuthMode != AuthModeToken {
		t.Errorf("AuthMode with secret = %q, want token", cfg.Server.AuthMode)
	}
	if cfg.Server.APISecret != "s3cret" {
		t.Errorf("APISecret = %q, want s3cret", cfg.Server.APISecret)
	}
}

func TestUnknownProviderFallsBack(t *testing.T) {
	clearEnv(t)
	Reset()
	defer Reset()
	t.Setenv("AI_PROVIDER", "mistral")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.AI.Provider != "zai" {
		t.Errorf("Unknown provider should fall back to zai, got %q", cfg.AI.Provider)
	}
}

func TestPartialEmailConfigFails(t *testing.T) {
	clearEnv(t)
	Reset()
	defer Reset()
	t.Setenv("RESEND_API_KEY", "re_123")

	_, err := Load("")
	if err == nil {
		t.Fatal("Expected error for partial email configuration")
	}
	if !strings.Contains(err.Error(), "from address is required") {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestProviderFor(t *testing.T) {
	ai := AI{
		ZAI:    ProviderConfig{APIKey: "z"},
		Gemini: ProviderConfig{APIKey: "g"},
	}

	if pc, ok := ai.ProviderFor("zai"); !ok || pc.APIKey != "z" {
		t.Errorf("ProviderFor(zai) = %+v, %v", pc, ok)
	}
	if pc, ok := ai.ProviderFor("gemini"); !ok || pc.APIKey != "g" {
		t.Errorf("ProviderFor(gemini) = %+v, %v", pc, ok)
	}
	if _, ok := ai.ProviderFor("mistral"); ok {
		t.Error("ProviderFor should reject unknown providers")
	}
}

func TestSiteURLs(t *testing.T) {
	site := Site{
		BaseURL:   "https://example.com/",
		AdminPath: "/admin/collections/blog-posts",
	}

	if got := site.AdminPostURL("abc"); got != "https://example.com/admin/collections/blog-posts/abc" {
		t.Errorf("AdminPostURL = %q", got)
	}
	if got := site.BlogURL("my-post"); got != "https://example.com/blog/my-post" {
		t.Errorf("BlogURL = %q", got)
	}
	if got := site.BlogURL(""); got != "https://example.com/blog" {
		t.Errorf("BlogURL empty slug = %q", got)
	}
	if got := site.PublishURL("id1", "tok&en"); got != "https://example.com/api/blog/publish?id=id1&token=tok%26en" {
		t.Errorf("PublishURL = %q", got)
	}
}
