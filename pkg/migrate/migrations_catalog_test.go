package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_catalog.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no catalog migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS categories",
		"CREATE TABLE IF NOT EXISTS components",
		"CREATE TABLE IF NOT EXISTS prices",
		"FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE CASCADE",
		"FOREIGN KEY (component_id) REFERENCES components(id) ON DELETE CASCADE",
		"CHECK (costing >= 0)",
		"idx_prices_component_id",
		"DROP TABLE IF EXISTS prices",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
