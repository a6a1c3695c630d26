package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	os.Setenv("DB_PASSWORD", "test")
	t.Cleanup(os.Clearenv)
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Port: got %q, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.AccessTokenExpiry != 30*time.Minute {
		t.Errorf("AccessTokenExpiry: got %v, want 30m", cfg.Auth.AccessTokenExpiry)
	}
	if cfg.Verification.CodeTTL != 10*time.Minute {
		t.Errorf("CodeTTL: got %v, want 10m", cfg.Verification.CodeTTL)
	}
	if cfg.Verification.CleanupInterval != time.Hour {
		t.Errorf("CleanupInterval: got %v, want 1h", cfg.Verification.CleanupInterval)
	}
	if cfg.Database.Name != "flashoffers" {
		t.Errorf("Database.Name: got %q, want flashoffers", cfg.Database.Name)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without JWT_SECRET")
	}
}

func TestLoad_MissingDBPassword(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!!")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load() should fail without DB_PASSWORD")
	}
}

func TestLoad_ShortJWTSecretInProduction(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "short-secret-16ch")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load() should reject a short JWT_SECRET in production")
	}
}

func TestLoad_WeakJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "changeme")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Error("Load() should reject common weak JWT_SECRET values")
	}
}

func TestLoad_CustomDurations(t *testing.T) {
	setRequiredEnv(t)
	os.Setenv("VERIFICATION_CODE_TTL", "5m")
	os.Setenv("ACCESS_TOKEN_EXPIRY", "1h")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Verification.CodeTTL != 5*time.Minute {
		t.Errorf("CodeTTL: got %v, want 5m", cfg.Verification.CodeTTL)
	}
	if cfg.Auth.AccessTokenExpiry != time.Hour {
		t.Errorf("AccessTokenExpiry: got %v, want 1h", cfg.Auth.AccessTokenExpiry)
	}
}

func TestDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "api",
		Password: "hunter2",
		Name:     "flashoffers",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=api password=hunter2 dbname=flashoffers sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN(): got %q, want %q", got, want)
	}
}
