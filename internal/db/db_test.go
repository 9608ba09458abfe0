package db

import (
	"testing"

	"github.com/diewo77/go-crm/internal/config"
)

func TestConnectSQLiteWithQueryPath(t *testing.T) {
	d, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: "file:" + t.Name() + "?mode=memory&cache=shared"})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	sqlDB, err := d.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	var fk int
	if err := d.Raw("PRAGMA foreign_keys").Scan(&fk).Error; err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if fk != 1 {
		t.Fatalf("foreign keys off, got %d", fk)
	}
	if err := Ping(d); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestConnectUnknownDriver(t *testing.T) {
	if _, err := Connect(config.DatabaseConfig{Driver: "oracle"}); err == nil {
		t.Fatal("expected an error for an unsupported driver")
	}
}
