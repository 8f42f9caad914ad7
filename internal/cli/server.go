package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"startup-apply-service/internal/app"
	"startup-apply-service/internal/config"
	"startup-apply-service/internal/domain"
	"startup-apply-service/internal/forms"
	"startup-apply-service/internal/infra/memory"
	pgstore "startup-apply-service/internal/infra/postgres"
	redisstore "startup-apply-service/internal/infra/redis"
	transport "startup-apply-service/internal/transport/http"
	"startup-apply-service/internal/webhook"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the application intake server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Webhook.URL == "" {
		return fmt.Errorf("webhook url not configured")
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.SchemaLoader = memory.NewStaticSchemaLoader(builtinForms())
	if pool != nil {
		loader = pgstore.NewSchemaLoader(pool)
	}

	schemaTTL := config.TTLDuration(cfg.Schema.TTL, time.Hour)
	var schemaRepo app.SchemaRepository
	if redisClient != nil {
		schemaRepo = redisstore.NewSchemaRepository(redisClient, loader, schemaTTL)
	} else {
		schemaRepo = memory.NewSchemaRepository(loader, schemaTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	submitter := webhook.NewClient(cfg.Webhook.URL, config.TTLDuration(cfg.Webhook.Timeout, webhook.DefaultTimeout))

	var archive app.Archive
	if pool != nil {
		archive = pgstore.NewSubmissionArchive(pool)
	}

	service := app.NewFormService(store, schemaRepo, submitter, archive)
	wsHandler := transport.NewWSHandler(service)
	restHandler := transport.NewHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	restHandler.Register(mux)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting apply service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// builtinForms ships the forms served when no schema store is configured.
func builtinForms() map[string]domain.FormSchema {
	startup := forms.StartupApplication()
	return map[string]domain.FormSchema{
		startup.ID: startup,
	}
}
