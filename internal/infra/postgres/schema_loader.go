package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"startup-apply-service/internal/domain"
)

// SchemaLoader loads form schema JSONB from Postgres.
type SchemaLoader struct {
	pool *pgxpool.Pool
}

func NewSchemaLoader(pool *pgxpool.Pool) *SchemaLoader {
	return &SchemaLoader{pool: pool}
}

func (l *SchemaLoader) LoadSchema(ctx context.Context, formID string) (domain.FormSchema, error) {
	var raw []byte
	err := l.pool.QueryRow(ctx, `SELECT data FROM form_schemas WHERE id=$1`, formID).Scan(&raw)
	if err != nil {
		return domain.FormSchema{}, fmt.Errorf("load form schema: %w", err)
	}
	var schema domain.FormSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return domain.FormSchema{}, fmt.Errorf("unmarshal form schema: %w", err)
	}
	schema.ID = formID
	if err := schema.Validate(); err != nil {
		return domain.FormSchema{}, fmt.Errorf("form schema %s: %w", formID, err)
	}
	return schema, nil
}
