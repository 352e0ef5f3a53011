package shared

import "testing"

func TestRunMigrations(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	// Running again must be a no-op.
	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations second run failed: %v", err)
	}

	for _, table := range []string{"sessions", "pills", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name)
		if err != nil {
			t.Errorf("expected table %s to exist: %v", table, err)
		}
	}
}

func TestRollbackMigration(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	if err := RollbackMigration(db); err != nil {
		t.Fatalf("RollbackMigration failed: %v", err)
	}

	var name string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = 'pills'").Scan(&name)
	if err == nil {
		t.Error("pills table should be dropped after rollback")
	}

	if err := RollbackMigration(db); err == nil {
		t.Error("rollback with no applied migrations should fail")
	}
}

func TestOrderPositionBinaryCollation(t *testing.T) {
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := RunMigrations(db); err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}

	// Digits must sort before uppercase before lowercase; a locale collation
	// would interleave them.
	var got string
	err = db.QueryRow(`
		SELECT group_concat(t, '') FROM (
			SELECT column1 AS t FROM (VALUES ('a'), ('0'), ('Z'), ('9'), ('A'))
			ORDER BY t COLLATE BINARY
		)
	`).Scan(&got)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}

	if got != "09AZa" {
		t.Errorf("binary collation sort = %q, want %q", got, "09AZa")
	}
}
