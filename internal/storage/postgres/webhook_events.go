package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/polkiloo/schoolpay/internal/domain/model"
)

type webhookEventRepository struct {
	storage *Storage
}

// Begin records a delivery. Redeliveries of events that were applied or
// ignored are not returned by the upsert and report false.
func (r *webhookEventRepository) Begin(ctx context.Context, event model.GatewayEvent) (bool, error) {
	const query = `INSERT INTO webhook_events (event_id, event_type, payload, outcome)
                   VALUES ($1, $2, $3, $4)
                   ON CONFLICT (event_id) DO UPDATE
                   SET attempts = webhook_events.attempts + 1, outcome = EXCLUDED.outcome
                   WHERE webhook_events.outcome NOT IN ('APPLIED', 'IGNORED')
                   RETURNING id`
	var id int64
	err := r.storage.pool.QueryRow(ctx, query, event.ID, event.Type, event.Payload, string(model.WebhookReceived)).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *webhookEventRepository) Finish(ctx context.Context, eventID string, outcome model.WebhookOutcome) error {
	const query = `UPDATE webhook_events SET outcome=$2, processed_at=NOW() WHERE event_id=$1`
	_, err := r.storage.pool.Exec(ctx, query, eventID, string(outcome))
	return err
}
