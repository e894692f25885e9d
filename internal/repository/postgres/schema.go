package postgres

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"text/template"
)

//go:embed schema.sql
var schemaSQL string

var schemaTemplate = template.Must(template.New("schema").Parse(schemaSQL))

// RenderSchema returns the DDL for the given table names
func RenderSchema(tables *TableNames) (string, error) {
	var buf bytes.Buffer
	if err := schemaTemplate.Execute(&buf, tables); err != nil {
		return "", fmt.Errorf("render schema: %w", err)
	}
	return buf.String(), nil
}

// EnsureSchema creates missing tables and indexes. Existing tables are left untouched.
func EnsureSchema(ctx context.Context, config *RepositoryConfig) error {
	ddl, err := RenderSchema(config.Tables)
	if err != nil {
		return err
	}
	if _, err := config.Pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	config.Logger.Info("schema ensured", "folders_table", config.Tables.Folders)
	return nil
}

// DropTables removes every table for the configured prefix
func DropTables(ctx context.Context, config *RepositoryConfig) error {
	for _, table := range config.Tables.All() {
		if _, err := config.Pool.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)); err != nil {
			return fmt.Errorf("drop %s: %w", table, err)
		}
		config.Logger.Info("table dropped", "table", table)
	}
	return nil
}
