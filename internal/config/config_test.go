package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigFromFileWithDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  address: ":9000"
database:
  url: "user:pass@tcp(localhost:3306)/khidma?parseTime=true"
jwt:
  secret: "s3cret"
payments:
  commission_percent: 15
`)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Address != ":9000" {
		t.Fatalf("expected :9000, got %s", cfg.Server.Address)
	}
	if cfg.Payments.CommissionPercent != 15 {
		t.Fatalf("expected commission 15, got %d", cfg.Payments.CommissionPercent)
	}
	if cfg.Payments.Currency != defaultCurrency {
		t.Fatalf("expected default currency, got %s", cfg.Payments.Currency)
	}
	if cfg.JWT.AccessTTL != defaultAccessTTL {
		t.Fatalf("expected default access ttl, got %s", cfg.JWT.AccessTTL)
	}
	if cfg.Storage.Driver != "local" || cfg.Storage.LocalDir != "./uploads" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Server.WriteTimeout != 10*time.Second {
		t.Fatalf("unexpected write timeout %s", cfg.Server.WriteTimeout)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "from-file"
jwt:
  secret: "file-secret"
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DATABASE_URL", "from-env")
	t.Setenv("PORT", "8081")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("COMMISSION_PERCENT", "10")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.URL != "from-env" {
		t.Fatalf("expected env database url, got %s", cfg.Database.URL)
	}
	if cfg.Server.Address != ":8081" {
		t.Fatalf("expected :8081, got %s", cfg.Server.Address)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.Payments.CommissionPercent != 10 {
		t.Fatalf("expected commission 10, got %d", cfg.Payments.CommissionPercent)
	}
}

func TestLoadConfigRejectsMissingSecrets(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "dsn"
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for missing jwt secret")
	}
}

func TestLoadConfigRejectsBadInt(t *testing.T) {
	path := writeConfig(t, `
database:
  url: "dsn"
jwt:
  secret: "x"
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SMTP_PORT", "abc")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error for SMTP_PORT")
	}
}
