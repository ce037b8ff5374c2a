package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQuotationsMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_quotations.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no quotations migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TYPE quotation_status AS ENUM ('draft', 'priced')",
		"CREATE TABLE IF NOT EXISTS quotations",
		"CHECK (camera_count > 0)",
		"FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE",
		"CREATE TABLE IF NOT EXISTS quotation_ai_features",
		"FOREIGN KEY (quotation_id) REFERENCES quotations(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS quotations",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
