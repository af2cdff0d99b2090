package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Event struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenantId"`
	ActorUserID string          `json:"actorUserId,omitempty"`
	Action      string          `json:"action"`
	EntityType  string          `json:"entityType"`
	EntityID    string          `json:"entityId,omitempty"`
	Details     json.RawMessage `json:"details"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Service struct {
	pool *pgxpool.Pool
}

func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// Record writes an audit event. Best-effort: an audit failure never fails
// the operation it describes.
func (s *Service) Record(ctx context.Context, tenantID, actorUserID, action, entityType, entityID string, details any) {
	detailsJSON, err := json.Marshal(details)
	if err != nil {
		slog.Warn("encode audit details failed", "action", action, "err", err)
		detailsJSON = []byte(`{}`)
	}
	if details == nil {
		detailsJSON = []byte(`{}`)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO audit_events (tenant_id, actor_user_id, action, entity_type, entity_id, details)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6)`,
		tenantID, actorUserID, action, entityType, entityID, detailsJSON,
	)
	if err != nil {
		slog.Warn("record audit event failed", "action", action, "err", err)
	}
}

func (s *Service) List(ctx context.Context, tenantID string, limit, offset int) ([]Event, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, tenant_id, COALESCE(actor_user_id::text, ''), action, entity_type, entity_id, details, created_at
		FROM audit_events
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`,
		tenantID, limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ActorUserID, &e.Action, &e.EntityType, &e.EntityID, &e.Details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
