package journal

import (
	"path/filepath"
	"testing"
)

func TestJournalRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer j.Close()

	if j.RunID() == "" {
		t.Error("RunID is empty")
	}

	if err := j.Record("product", "prod_a", "prod_a_new", "migrated", ""); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := j.Record("product", "prod_b", "", "failed", "remote unavailable"); err != nil {
		t.Fatalf("Record: %v", err)
	}

	var count int
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM outcomes WHERE run_id = ?`, j.runID).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	var outcome, detail string
	err = j.db.QueryRow(`SELECT outcome, detail FROM outcomes WHERE old_id = ?`, "prod_b").Scan(&outcome, &detail)
	if err != nil {
		t.Fatalf("row query: %v", err)
	}
	if outcome != "failed" || detail != "remote unavailable" {
		t.Errorf("row = %q/%q", outcome, detail)
	}
}

func TestJournalReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	first, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := first.Record("coupon", "SPRING24", "SPRING24", "migrated", ""); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Each invocation gets its own run id over the same database.
	second, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if second.RunID() == first.RunID() {
		t.Error("run ids must differ across invocations")
	}

	var count int
	if err := second.db.QueryRow(`SELECT COUNT(*) FROM outcomes`).Scan(&count); err != nil {
		t.Fatalf("count query: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want rows to survive reopen", count)
	}
}
