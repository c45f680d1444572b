package database

import "testing"

func TestParseMigrationFilename(t *testing.T) {
	cases := []struct {
		name        string
		filename    string
		wantVersion string
		wantUp      bool
		wantOK      bool
	}{
		{"up migration", "20260210_120000_initial_schema.up.sql", "20260210_120000", true, true},
		{"down migration", "20260210_120000_initial_schema.down.sql", "20260210_120000", false, true},
		{"multi-word name", "20260301_090000_add_sequence_tables.up.sql", "20260301_090000", true, true},
		{"no direction", "20260210_120000_initial_schema.sql", "", false, false},
		{"not sql", "20260210_120000_initial_schema.up.txt", "", false, false},
		{"missing timestamp", "notes.up.sql", "", false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			version, isUp, ok := parseMigrationFilename(tc.filename)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if !ok {
				return
			}
			if version != tc.wantVersion {
				t.Errorf("version = %q, want %q", version, tc.wantVersion)
			}
			if isUp != tc.wantUp {
				t.Errorf("isUp = %v, want %v", isUp, tc.wantUp)
			}
		})
	}
}

func TestExtractMigrationName(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"20260210_120000_initial_schema.up.sql", "initial_schema"},
		{"20260301_090000_add_sequence_tables.down.sql", "add_sequence_tables"},
		{"short.sql", "short"},
	}

	for _, tc := range cases {
		if got := extractMigrationName(tc.filename); got != tc.want {
			t.Errorf("extractMigrationName(%q) = %q, want %q", tc.filename, got, tc.want)
		}
	}
}
