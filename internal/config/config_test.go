package config

import (
	"log/slog"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "DATABASE_DSN", "DB_HOST", "MIGRATIONS", "LOG_LEVEL", "SMTP_HOST", "SMTP_USER"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("driver = %q", cfg.Database.Driver)
	}
	if cfg.App.Migrations {
		t.Errorf("migrations should default to false")
	}
	if cfg.App.LogLevel != slog.LevelInfo {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Mail.RelayEnabled() {
		t.Errorf("relay should be disabled without SMTP_HOST/SMTP_USER")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "notanint")
	t.Setenv("MIGRATIONS", "YES")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "mailer")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_SECURE", "true")

	cfg := Load()
	if cfg.Server.Port != "9000" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15 {
		t.Errorf("invalid int should fall back to default, got %d", cfg.Server.ReadTimeout)
	}
	if !cfg.App.Migrations {
		t.Errorf("MIGRATIONS=YES should enable migrations")
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if !cfg.Mail.RelayEnabled() || cfg.Mail.Port != 465 || !cfg.Mail.Secure {
		t.Errorf("unexpected mail config: %+v", cfg.Mail)
	}
}

func TestRelayNeedsHostAndUser(t *testing.T) {
	tests := []struct {
		host, user string
		want       bool
	}{
		{"smtp.example.com", "u", true},
		{"smtp.example.com", "", false},
		{"", "u", false},
	}
	for _, tt := range tests {
		m := MailConfig{Host: tt.host, User: tt.user}
		if got := m.RelayEnabled(); got != tt.want {
			t.Errorf("RelayEnabled(%q,%q) = %v, want %v", tt.host, tt.user, got, tt.want)
		}
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "crm", SSLMode: "disable"}
	if got := d.DSN(); got != "host=db port=5432 user=u password=p dbname=crm sslmode=disable" {
		t.Errorf("DSN() = %q", got)
	}
	if got := d.URL(); got != "postgres://u:p@db:5432/crm?sslmode=disable" {
		t.Errorf("URL() = %q", got)
	}
	d.DSNRaw = "postgres://x:y@h:1/z"
	if d.DSN() != d.DSNRaw || d.URL() != d.DSNRaw {
		t.Errorf("DATABASE_DSN should win")
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"crm.db", "crm.db?_foreign_keys=on"},
		{"file::memory:?cache=shared", "file::memory:?cache=shared&_foreign_keys=on"},
		{"crm.db?_foreign_keys=off", "crm.db?_foreign_keys=off"},
	}
	for _, tt := range tests {
		if got := (DatabaseConfig{Path: tt.path}).SQLiteDSN(); got != tt.want {
			t.Errorf("SQLiteDSN(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
