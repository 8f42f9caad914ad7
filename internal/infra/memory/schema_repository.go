package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"startup-apply-service/internal/domain"
)

// SchemaLoader fetches form schemas from a backing store (e.g., Postgres).
type SchemaLoader interface {
	LoadSchema(ctx context.Context, formID string) (domain.FormSchema, error)
}

// SchemaRepository caches schemas with TTL to avoid repeated store hits.
// Schemas are effectively static, so a generous TTL is fine.
type SchemaRepository struct {
	loader SchemaLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	cache map[string]cachedSchema
}

type cachedSchema struct {
	schema    domain.FormSchema
	expiresAt time.Time
}

func NewSchemaRepository(loader SchemaLoader, ttl time.Duration) *SchemaRepository {
	return &SchemaRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		cache:  make(map[string]cachedSchema),
	}
}

func (r *SchemaRepository) GetSchema(ctx context.Context, formID string) (domain.FormSchema, error) {
	now := r.clock()

	r.mu.RLock()
	if entry, ok := r.cache[formID]; ok && entry.expiresAt.After(now) {
		r.mu.RUnlock()
		return entry.schema, nil
	}
	r.mu.RUnlock()

	result, err, _ := r.sf.Do(formID, func() (interface{}, error) {
		now := r.clock()
		r.mu.RLock()
		if entry, ok := r.cache[formID]; ok && entry.expiresAt.After(now) {
			r.mu.RUnlock()
			return entry.schema, nil
		}
		r.mu.RUnlock()

		schema, err := r.loader.LoadSchema(ctx, formID)
		if err != nil {
			return domain.FormSchema{}, err
		}

		r.mu.Lock()
		r.cache[formID] = cachedSchema{
			schema:    schema,
			expiresAt: now.Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return schema, nil
	})
	if err != nil {
		return domain.FormSchema{}, err
	}
	return result.(domain.FormSchema), nil
}

// StaticSchemaLoader is a loader backed by an in-memory map, used for the
// built-in forms and in tests.
type StaticSchemaLoader struct {
	schemas map[string]domain.FormSchema
}

func NewStaticSchemaLoader(schemas map[string]domain.FormSchema) *StaticSchemaLoader {
	return &StaticSchemaLoader{schemas: schemas}
}

func (l *StaticSchemaLoader) LoadSchema(_ context.Context, formID string) (domain.FormSchema, error) {
	if schema, ok := l.schemas[formID]; ok {
		return schema, nil
	}
	return domain.FormSchema{}, domain.ErrFormNotFound
}

func (r *SchemaRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// Up to 10% jitter to spread expirations. The global source is used
	// because loads for different forms can jitter concurrently.
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(rand.Int63n(jitterMax+1))
}
