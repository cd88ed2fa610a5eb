package config

import (
	"errors"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("PORT", "")
	t.Setenv("RECIPE_POLICY", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.RecipePolicy != "lenient" || cfg.IncomeBasis != "created" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.LogJSON() {
		t.Fatalf("development should log to the console by default")
	}
}

func TestProductionRequiresJWTSecret(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); !errors.Is(err, ErrMissingJWTSecret) {
		t.Fatalf("expected missing secret error, got %v", err)
	}

	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("LOG_FORMAT", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.IsProduction() || !cfg.LogJSON() {
		t.Fatalf("production should default to JSON logs")
	}
}

func TestLogFormat(t *testing.T) {
	cases := []struct {
		env, format string
		want        bool
	}{
		{"development", "json", true},
		{"development", "", false},
		{"production", "console", false},
		{"prod", "", true},
	}
	for _, c := range cases {
		cfg := &Config{AppEnv: c.env, LogFormat: c.format}
		if got := cfg.LogJSON(); got != c.want {
			t.Fatalf("env=%s format=%q: expected %v got %v", c.env, c.format, c.want, got)
		}
	}
}

func TestPostgresUserAlias(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_USER", "")
	t.Setenv("POSTGRES_USER", "taller")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.User != "taller" {
		t.Fatalf("expected POSTGRES_USER fallback, got %q", cfg.Database.User)
	}
}
