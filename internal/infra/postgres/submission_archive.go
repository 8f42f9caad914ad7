package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"startup-apply-service/internal/domain"
)

// SubmissionArchive records forwarded application payloads in Postgres. The
// webhook stays the system of record; the archive is an audit trail.
type SubmissionArchive struct {
	pool *pgxpool.Pool
}

func NewSubmissionArchive(pool *pgxpool.Pool) *SubmissionArchive {
	return &SubmissionArchive{pool: pool}
}

func (a *SubmissionArchive) SaveApplication(ctx context.Context, formID string, payload domain.ApplicationPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode application: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO applications (id, form_id, payload, submitted_at) VALUES ($1, $2, $3, $4)`,
		uuid.NewString(), formID, raw, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("archive application: %w", err)
	}
	return nil
}
