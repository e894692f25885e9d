package postgres

import (
	"strings"
	"testing"
)

func TestRenderSchema_UsesPrefixedTables(t *testing.T) {
	ddl, err := RenderSchema(NewTableNames("test_"))
	if err != nil {
		t.Fatalf("RenderSchema() error = %v", err)
	}

	for _, table := range NewTableNames("test_").All() {
		if !strings.Contains(ddl, "CREATE TABLE IF NOT EXISTS "+table+" (") {
			t.Errorf("schema missing table %q", table)
		}
	}
	if strings.Contains(ddl, "{{") {
		t.Error("schema contains unrendered template actions")
	}
}

func TestNewTableNames(t *testing.T) {
	tables := NewTableNames("dev_")
	if tables.Folders != "dev_folders" {
		t.Errorf("Folders = %q, want dev_folders", tables.Folders)
	}
	if tables.Audio != "dev_audio_recordings" {
		t.Errorf("Audio = %q, want dev_audio_recordings", tables.Audio)
	}
	if got := len(tables.All()); got != 8 {
		t.Errorf("All() returned %d tables, want 8", got)
	}
}
