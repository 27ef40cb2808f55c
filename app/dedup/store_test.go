package dedup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")

	fingerprints := []string{"aaa111", "bbb222", "EASTMONEY:AN001"}

	store := Open(path)
	store.Load()
	if store.Size() != 0 {
		t.Fatalf("Fresh store should be empty, got %d fingerprints", store.Size())
	}
	for _, fp := range fingerprints {
		store.Add(fp)
	}
	if err := store.Persist(0); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	store.Close()

	reloaded := Open(path)
	defer reloaded.Close()
	reloaded.Load()

	if reloaded.Size() != len(fingerprints) {
		t.Errorf("Expected %d fingerprints after reload, got %d", len(fingerprints), reloaded.Size())
	}
	for _, fp := range fingerprints {
		if !reloaded.Contains(fp) {
			t.Errorf("Fingerprint %s lost on round trip", fp)
		}
	}
	if reloaded.Contains("never-added") {
		t.Error("Contains should be false for unknown fingerprints")
	}
}

func TestStore_PersistIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")

	store := Open(path)
	defer store.Close()
	store.Load()

	store.Add("dup")
	if err := store.Persist(0); err != nil {
		t.Fatalf("First persist failed: %v", err)
	}

	// Adding the same fingerprint again and persisting must not duplicate.
	store.Add("dup")
	if err := store.Persist(0); err != nil {
		t.Fatalf("Second persist failed: %v", err)
	}

	var count int
	if err := store.db.QueryRow(`SELECT COUNT(*) FROM seen_announcements`).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 row, got %d", count)
	}
}

func TestStore_MissingFileIsEmptySet(t *testing.T) {
	store := Open(filepath.Join(t.TempDir(), "does-not-exist-yet.db"))
	defer store.Close()
	store.Load()

	if store.Size() != 0 {
		t.Errorf("Missing file should yield an empty set, got %d", store.Size())
	}
}

func TestStore_CorruptFileResetsMemory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")
	if err := os.WriteFile(path, []byte("this is not a sqlite database"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	store := Open(path)
	defer store.Close()
	store.Load()

	if store.Size() != 0 {
		t.Errorf("Corrupt store should reset to empty, got %d", store.Size())
	}

	// The reset store must be usable again.
	store.Add("fresh")
	if err := store.Persist(0); err != nil {
		t.Errorf("Persist after reset failed: %v", err)
	}
}

func TestStore_Prune(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")

	store := Open(path)
	defer store.Close()
	store.Load()

	store.Add("recent")
	if err := store.Persist(0); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	// Backdate one fingerprint past the prune horizon.
	old := time.Now().AddDate(0, 0, -400).UTC().Format("2006-01-02 15:04:05")
	if _, err := store.db.Exec(
		`INSERT INTO seen_announcements (fingerprint, first_seen) VALUES ('ancient', ?)`, old); err != nil {
		t.Fatalf("Failed to insert backdated fingerprint: %v", err)
	}

	if err := store.Persist(180); err != nil {
		t.Fatalf("Persist with pruning failed: %v", err)
	}

	var count int
	if err := store.db.QueryRow(
		`SELECT COUNT(*) FROM seen_announcements WHERE fingerprint = 'ancient'`).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 0 {
		t.Error("Backdated fingerprint should have been pruned")
	}

	if err := store.db.QueryRow(
		`SELECT COUNT(*) FROM seen_announcements WHERE fingerprint = 'recent'`).Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 1 {
		t.Error("Recent fingerprint should survive pruning")
	}
}

func TestStore_LastRunAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen.db")

	store := Open(path)
	defer store.Close()
	store.Load()

	if !store.LastRunAt().IsZero() {
		t.Error("LastRunAt should be zero before the first persisted run")
	}

	before := time.Now().Add(-time.Second)
	if err := store.Persist(0); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	got := store.LastRunAt()
	if got.IsZero() || got.Before(before.Add(-time.Minute)) {
		t.Errorf("LastRunAt should reflect the just-persisted run, got %v", got)
	}
}
