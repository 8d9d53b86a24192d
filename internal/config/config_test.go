package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("AI_PROVIDER", "")
	t.Setenv("PORT", "")
	t.Setenv("VAPI_BASE_URL", "")
	t.Setenv("CALL_RETENTION", "")
	t.Setenv("MONGO_DB_NAME", "")
	t.Setenv("INTERVIEWS_COLLECTION", "")
	t.Setenv("QUESTIONS_PROMPT_VARIANT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Provider != "gemini" {
		t.Fatalf("expected provider gemini, got %s", cfg.Provider)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.VapiBaseURL != "https://api.vapi.ai" {
		t.Fatalf("unexpected vapi base url %s", cfg.VapiBaseURL)
	}
	if cfg.InterviewsCollection != "interviews" || cfg.MongoDatabase != "prepwise" {
		t.Fatalf("unexpected mongo defaults: %+v", cfg)
	}
	if cfg.CallRetention != 720*time.Hour {
		t.Fatalf("unexpected retention %s", cfg.CallRetention)
	}
	if cfg.PromptVariant != "default" {
		t.Fatalf("unexpected prompt variant %s", cfg.PromptVariant)
	}
}

func TestLoadConfig_PromptVariant(t *testing.T) {
	t.Setenv("QUESTIONS_PROMPT_VARIANT", "strict")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.PromptVariant != "strict" {
		t.Fatalf("expected strict variant, got %s", cfg.PromptVariant)
	}
}

func TestLoadConfig_MissingVapiKeyIsNotFatal(t *testing.T) {
	t.Setenv("VAPI_PRIVATE_KEY", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VapiPrivateKey != "" {
		t.Fatalf("expected empty private key")
	}
}

func TestLoadConfig_TrimsBaseURL(t *testing.T) {
	t.Setenv("VAPI_BASE_URL", "http://localhost:9999/")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.VapiBaseURL != "http://localhost:9999" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.VapiBaseURL)
	}
}

func TestLoadConfig_UnsupportedProvider(t *testing.T) {
	t.Setenv("AI_PROVIDER", "unknown")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestLoadConfig_InvalidRetention(t *testing.T) {
	t.Setenv("CALL_RETENTION", "forever")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for invalid retention")
	}
}

func TestPostgresDSN(t *testing.T) {
	if dsn := (PostgresConfig{}).DSN(); dsn != "" {
		t.Fatalf("expected empty dsn without host, got %q", dsn)
	}

	p := PostgresConfig{Host: "db", User: "u", Password: "p", DBName: "d", Port: "5432", SSLMode: "disable"}
	want := "host=db user=u password=p dbname=d port=5432 sslmode=disable"
	if got := p.DSN(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("UNIT_TEST_ENV", "value")
	if got := getEnvOrDefault("UNIT_TEST_ENV", "fallback"); got != "value" {
		t.Fatalf("expected env value, got %s", got)
	}

	t.Setenv("UNIT_TEST_ENV", "")
	if got := getEnvOrDefault("UNIT_TEST_ENV", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback value, got %s", got)
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected split result %v", got)
	}
}
