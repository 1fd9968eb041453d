package db

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	database, err := Open("sqlite://" + filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestMigrateUp(t *testing.T) {
	database := openTestDB(t)

	if err := MigrateUp(database); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	// The schema is usable afterwards.
	var n int
	if err := database.Get(&n, "SELECT COUNT(*) FROM customers"); err != nil {
		t.Fatalf("customers table missing after migration: %v", err)
	}
	for _, table := range []string{"orders", "interactions", "segment_rules", "segments", "campaigns"} {
		if err := database.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Errorf("table %s missing after migration: %v", table, err)
		}
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	database := openTestDB(t)

	if err := MigrateUp(database); err != nil {
		t.Fatalf("first MigrateUp() error = %v, want nil", err)
	}
	if err := MigrateUp(database); err != nil {
		t.Fatalf("second MigrateUp() error = %v, want nil", err)
	}

	statuses, err := MigrateStatus(database)
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v, want nil", err)
	}
	for _, s := range statuses {
		if !s.Applied {
			t.Errorf("migration %s not applied after MigrateUp", s.ID)
		}
		if s.Checksum == "" {
			t.Errorf("migration %s has empty checksum", s.ID)
		}
	}
	if len(statuses) == 0 {
		t.Fatal("MigrateStatus() returned no migrations")
	}
}

func TestMigrateStatus_PendingBeforeUp(t *testing.T) {
	database := openTestDB(t)

	statuses, err := MigrateStatus(database)
	if err != nil {
		t.Fatalf("MigrateStatus() error = %v, want nil", err)
	}
	if len(statuses) == 0 {
		t.Fatal("MigrateStatus() returned no migrations")
	}
	for _, s := range statuses {
		if s.Applied {
			t.Errorf("migration %s reported applied before MigrateUp", s.ID)
		}
	}
}

func TestChecksumMismatchDetected(t *testing.T) {
	database := openTestDB(t)

	if err := MigrateUp(database); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	// Tamper with a recorded checksum; the next run must refuse.
	if _, err := database.Exec("UPDATE migrations SET checksum = 'deadbeef'"); err != nil {
		t.Fatalf("failed to tamper with checksum: %v", err)
	}
	if err := MigrateUp(database); err == nil {
		t.Fatal("MigrateUp() error = nil, want checksum mismatch")
	}
}

func TestLoadQueries(t *testing.T) {
	database := openTestDB(t)
	if err := MigrateUp(database); err != nil {
		t.Fatalf("MigrateUp() error = %v, want nil", err)
	}

	queries, err := LoadQueries(database)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v, want nil", err)
	}

	for _, name := range []string{
		"customer-aggregate",
		"create-rules", "get-rules",
		"create-segment", "get-segment", "list-segments", "update-segment-audience",
		"create-campaign", "get-campaign", "set-campaign-status", "begin-campaign", "apply-campaign-batch",
		"create-customer", "create-order", "create-interaction", "count-customers",
	} {
		if _, err := queries.Raw(name); err != nil {
			t.Errorf("Raw(%q) error = %v, want query present", name, err)
		}
	}
}
