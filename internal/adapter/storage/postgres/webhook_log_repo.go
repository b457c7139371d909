package postgres

import (
	"context"
	"fmt"

	"topup-pro/internal/core/domain"
)

// WebhookLogRepo implements ports.WebhookLogRepository. The table is
// append-only: no update or delete statements exist in this package.
type WebhookLogRepo struct {
	pool Pool
}

// NewWebhookLogRepo creates a new WebhookLogRepo.
func NewWebhookLogRepo(pool Pool) *WebhookLogRepo {
	return &WebhookLogRepo{pool: pool}
}

// Append inserts one webhook delivery record.
func (r *WebhookLogRepo) Append(ctx context.Context, l *domain.WebhookLog) error {
	query := `INSERT INTO webhook_logs (id, provider, event_type, reference, status, error, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.Provider, l.EventType, l.Reference, l.Status, l.Error, l.Payload, l.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert webhook log: %w", err)
	}
	return nil
}

// ListByReference returns every delivery recorded for a reference,
// newest first.
func (r *WebhookLogRepo) ListByReference(ctx context.Context, reference string) ([]domain.WebhookLog, error) {
	query := `SELECT id, provider, event_type, reference, status, error, payload, created_at
		FROM webhook_logs WHERE reference = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, reference)
	if err != nil {
		return nil, fmt.Errorf("list webhook logs: %w", err)
	}
	defer rows.Close()

	var logs []domain.WebhookLog
	for rows.Next() {
		var l domain.WebhookLog
		if err := rows.Scan(&l.ID, &l.Provider, &l.EventType, &l.Reference, &l.Status, &l.Error, &l.Payload, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook log rows: %w", err)
	}
	return logs, nil
}
