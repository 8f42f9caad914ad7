package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"startup-apply-service/internal/domain"
)

// SchemaLoader fetches form schemas from a backing store (e.g., Postgres).
type SchemaLoader interface {
	LoadSchema(ctx context.Context, formID string) (domain.FormSchema, error)
}

// SchemaRepository caches full schema documents in Redis and falls back to a
// loader on cache miss. Schemas are stored as: SET form:{formID}:schema {json}
type SchemaRepository struct {
	client *redis.Client
	loader SchemaLoader
	ttl    time.Duration
	sf     singleflight.Group
}

func NewSchemaRepository(client *redis.Client, loader SchemaLoader, ttl time.Duration) *SchemaRepository {
	return &SchemaRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
	}
}

func (r *SchemaRepository) GetSchema(ctx context.Context, formID string) (domain.FormSchema, error) {
	key := r.schemaKey(formID)

	if schema, ok := r.cached(ctx, key); ok {
		return schema, nil
	}

	result, err, _ := r.sf.Do(formID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if schema, ok := r.cached(ctx, key); ok {
			return schema, nil
		}

		schema, err := r.loader.LoadSchema(ctx, formID)
		if err != nil {
			return domain.FormSchema{}, err
		}

		raw, err := json.Marshal(schema)
		if err != nil {
			return domain.FormSchema{}, fmt.Errorf("encode schema: %w", err)
		}
		// best-effort cache fill
		_ = r.client.Set(ctx, key, raw, r.ttlWithJitter()).Err()

		return schema, nil
	})
	if err != nil {
		return domain.FormSchema{}, err
	}
	return result.(domain.FormSchema), nil
}

func (r *SchemaRepository) cached(ctx context.Context, key string) (domain.FormSchema, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil || len(raw) == 0 {
		return domain.FormSchema{}, false
	}
	var schema domain.FormSchema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return domain.FormSchema{}, false
	}
	if err := schema.Validate(); err != nil {
		// A corrupt cache entry falls through to the loader.
		return domain.FormSchema{}, false
	}
	return schema, true
}

func (r *SchemaRepository) schemaKey(formID string) string {
	return "form:" + formID + ":schema"
}

func (r *SchemaRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// The global source is used because loads for different forms can
	// jitter concurrently.
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
