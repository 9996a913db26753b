package db

import (
	"path/filepath"
	"testing"

	"github.com/estimo-app/estimo/internal/models"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "estimo-test.db")
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect, got %q", DialectName(conn))
	}

	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{Email: "a@b.c", EmailNormalized: "a@b.c", Password: "hash"}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	client := models.Client{OwnerID: user.ID, Name: "Acme"}
	if errCreate := conn.Create(&client).Error; errCreate != nil {
		t.Fatalf("create client: %v", errCreate)
	}
	quote := models.Quote{ClientID: client.ID, Name: "Q-1", Amount: 100, VATPercent: 21, PaymentStatus: models.PaymentStatusNew}
	if errCreate := conn.Create(&quote).Error; errCreate != nil {
		t.Fatalf("create quote: %v", errCreate)
	}
	if got := quote.Total(); got != 121 {
		t.Fatalf("expected total=121, got %v", got)
	}
}

func TestDetectDialectFromDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@localhost:5432/estimo": DialectPostgres,
		"host=localhost user=estimo dbname=estimo": DialectPostgres,
		"file:/tmp/estimo.db":  DialectSQLite,
		"sqlite:///tmp/e.db":   DialectSQLite,
		"estimo.db":            DialectSQLite,
	}
	for dsn, want := range cases {
		got, err := detectDialectFromDSN(dsn)
		if err != nil {
			t.Fatalf("detect %q: %v", dsn, err)
		}
		if got != want {
			t.Fatalf("detect %q = %q, want %q", dsn, got, want)
		}
	}
}
