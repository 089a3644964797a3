package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLatestVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000003_scores_index.up.sql",
		"README.md",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000009_dir"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := LatestVersion(dir); got != 3 {
		t.Errorf("LatestVersion = %d, want 3", got)
	}
}

func TestLatestVersionMissingDir(t *testing.T) {
	if got := LatestVersion(filepath.Join(t.TempDir(), "nope")); got != 0 {
		t.Errorf("LatestVersion = %d, want 0", got)
	}
}

func TestShippedMigrationsArePaired(t *testing.T) {
	dir := filepath.Join("..", "..", "migrations")
	ups, _ := filepath.Glob(filepath.Join(dir, "*.up.sql"))
	if len(ups) == 0 {
		t.Fatal("no migrations shipped")
	}
	for _, up := range ups {
		down := up[:len(up)-len(".up.sql")] + ".down.sql"
		if _, err := os.Stat(down); err != nil {
			t.Errorf("%s has no down migration", filepath.Base(up))
		}
	}
}
