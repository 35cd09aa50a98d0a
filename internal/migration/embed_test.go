package migration

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, entry := range entries {
		name := entry.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		t.Fatalf("expected at least one up migration")
	}
	for version := range ups {
		if !downs[version] {
			t.Fatalf("migration %s has no down script", version)
		}
	}
}

func TestInitMigrationDeclaresIdempotencyIndex(t *testing.T) {
	body, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/000001_init.up.sql")
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := string(body)
	for _, want := range []string{
		"ux_payments_invoice_reference",
		"ux_invoices_company_number",
		"ux_accounts_company_default_receivable",
		"NUMERIC(20,2)",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("init migration missing %q", want)
		}
	}
}
