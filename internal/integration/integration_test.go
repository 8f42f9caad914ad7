package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"startup-apply-service/internal/app"
	"startup-apply-service/internal/domain"
	"startup-apply-service/internal/forms"
	pgstore "startup-apply-service/internal/infra/postgres"
	pgmigrations "startup-apply-service/internal/infra/postgres/migrations"
	infraredis "startup-apply-service/internal/infra/redis"
	"startup-apply-service/internal/webhook"
)

func TestSubmitApplicationEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	pgURL, pgCleanup := startPostgres(t, ctx)
	defer pgCleanup()
	redisURL, redisCleanup := startRedis(t, ctx)
	defer redisCleanup()

	seedSchema(t, ctx, pgURL, forms.StartupApplication())

	var deliveries int
	webhookServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deliveries++
		var body map[string]map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		if body["startup"]["name"] != "Acme" {
			t.Errorf("unexpected webhook payload: %v", body)
		}
		w.Write([]byte(`{"id":"rcpt-1"}`))
	}))
	defer webhookServer.Close()

	pool, err := pgxpool.Connect(ctx, pgURL)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	loader := pgstore.NewSchemaLoader(pool)

	redisClient, err := redisClientFromURL(redisURL)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	schemaRepo := infraredis.NewSchemaRepository(redisClient, loader, 5*time.Minute)
	sessionStore := infraredis.NewSessionStore(redisClient, 5*time.Minute)
	submitter := webhook.NewClient(webhookServer.URL, 5*time.Second)
	archive := pgstore.NewSubmissionArchive(pool)
	service := app.NewFormService(sessionStore, schemaRepo, submitter, archive)

	if _, _, err := service.Open(ctx, forms.StartupApplicationID, "applicant-1"); err != nil {
		t.Fatalf("open: %v", err)
	}

	answers := map[string]string{
		domain.FieldEmail:     "founder@acme.io",
		domain.FieldBrandName: "Acme",
		domain.FieldLegalName: "Acme Inc",
		domain.FieldFoundedIn: "2019",
		domain.FieldBrief:     "We build widgets",
		domain.FieldDomain:    "fintech",
		domain.FieldAddress:   "123 St",
		domain.FieldStage:     "MVP",
		domain.FieldWebsite:   "acme.io",
		domain.FieldLinkedIn:  "linkedin.com/in/founder",
	}
	for field, value := range answers {
		if _, err := service.SetField(ctx, forms.StartupApplicationID, "applicant-1", field, value); err != nil {
			t.Fatalf("set %s: %v", field, err)
		}
	}

	outcome, err := service.Submit(ctx, forms.StartupApplicationID, "applicant-1")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !outcome.Submitted {
		t.Fatalf("expected submitted outcome, got %+v", outcome)
	}
	if deliveries != 1 {
		t.Fatalf("expected one webhook delivery, got %d", deliveries)
	}

	var archived int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM applications`).Scan(&archived); err != nil {
		t.Fatalf("count applications: %v", err)
	}
	if archived != 1 {
		t.Fatalf("expected one archived application, got %d", archived)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "apply", "POSTGRES_PASSWORD": "applypass", "POSTGRES_DB": "applydb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://apply:applypass@%s:%s/applydb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func seedSchema(t *testing.T, ctx context.Context, dsn string, schema domain.FormSchema) {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	data, err := json.Marshal(schema)
	if err != nil {
		t.Fatalf("marshal schema: %v", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO form_schemas (id, data) VALUES (? , ?::jsonb) ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data`, schema.ID, string(data)); err != nil {
		t.Fatalf("insert schema: %v", err)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
