package postgresengine

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/AntonStoeckl/library-loans-go/ledger"
)

//go:embed schema.sql
var schemaSQL string

// Schema returns the DDL that Migrate applies.
func Schema() string {
	return schemaSQL
}

// Migrate creates the tables and indexes if they do not exist yet. It is safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context) error {
	statements := splitStatements(schemaSQL)

	for _, statement := range statements {
		if _, err := s.exec(ctx, s.db, "migrate", statement); err != nil {
			return errors.Join(ledger.ErrMigrationFailed, err)
		}
	}

	s.logOperation(ctx, logMsgSchemaApplied, logAttrStatements, len(statements))

	return nil
}

func splitStatements(script string) []string {
	parts := strings.Split(script, ";")
	statements := make([]string, 0, len(parts))

	for _, part := range parts {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}

	return statements
}
