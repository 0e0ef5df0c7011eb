package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/campusauth/internal/auth/domain"
	"github.com/aussiebroadwan/campusauth/internal/auth/store"
	"github.com/aussiebroadwan/campusauth/pkg/idx"
)

type auditLogRepo struct {
	q querier
}

func (r *auditLogRepo) AppendAuditEntry(ctx context.Context, e domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = idx.New().String()
	}

	var metadata sql.NullString
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
		metadata = sql.NullString{String: string(raw), Valid: true}
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_log (id, action, actor_id, target_id, entity, entity_id, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		string(e.Action),
		mapStringNull(e.ActorID),
		mapStringNull(e.TargetID),
		e.Entity,
		mapStringNull(e.EntityID),
		e.Message,
		metadata,
		toUnix(e.Timestamp),
	)
	return mapConstraint(err)
}

func (r *auditLogRepo) ListAuditEntries(ctx context.Context, f store.AuditFilter) ([]domain.AuditEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, string(f.Action))
	}
	if f.TargetID != "" {
		where = append(where, "target_id = ?")
		args = append(args, f.TargetID)
	}

	query := `SELECT id, action, actor_id, target_id, entity, entity_id, message, metadata, created_at FROM audit_log`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.AuditEntry
	for rows.Next() {
		var (
			e                       domain.AuditEntry
			action                  string
			actor, target, entityID sql.NullString
			metadata                sql.NullString
			created                 int64
		)
		if err := rows.Scan(&e.ID, &action, &actor, &target, &e.Entity, &entityID, &e.Message, &metadata, &created); err != nil {
			return nil, err
		}
		e.Action = domain.AuditAction(action)
		e.ActorID = actor.String
		e.TargetID = target.String
		e.EntityID = entityID.String
		e.Timestamp = fromUnix(created)
		if metadata.Valid {
			if err := json.Unmarshal([]byte(metadata.String), &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

var _ store.AuditLog = (*auditLogRepo)(nil)
