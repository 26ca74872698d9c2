package db

import (
	"context"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
)

// CreateLog appends one entry and trims the owner's log down to
// maxLogs, oldest entries first.
func (s *DB) CreateLog(ctx context.Context, e entity.LogEntry, maxLogs int32) (err error) {
	ctx, span := s.startSpan(ctx, "CreateLog")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return s.mapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err = tx.Exec(ctx, `
		INSERT INTO guard_logs (id, owner_id, ts, kind, name, phrase, buyer_id, msg)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.OwnerID, e.TS, string(e.Kind), e.Name, e.Trigger, e.BuyerID, e.Msg); err != nil {
		return s.mapError(err)
	}

	if _, err = tx.Exec(ctx, `
		DELETE FROM guard_logs
		WHERE owner_id = $1 AND id NOT IN (
			SELECT id FROM guard_logs
			WHERE owner_id = $1
			ORDER BY ts DESC, id DESC
			LIMIT $2
		)`, e.OwnerID, maxLogs); err != nil {
		return s.mapError(err)
	}

	err = s.mapError(tx.Commit(ctx))
	return err
}

func (s *DB) GetLogs(ctx context.Context, ownerID string, page, perPage int32) (_ []entity.LogEntry, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetLogs")
	defer func() { s.endSpan(span, err) }()

	var total int64
	if err = s.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM guard_logs WHERE owner_id = $1`, ownerID,
	).Scan(&total); err != nil {
		return nil, 0, s.mapError(err)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT id, owner_id, ts, kind, name, phrase, buyer_id, msg
		FROM guard_logs
		WHERE owner_id = $1
		ORDER BY ts DESC, id DESC
		LIMIT $2 OFFSET $3`,
		ownerID, perPage, page*perPage)
	if err != nil {
		return nil, 0, s.mapError(err)
	}
	defer rows.Close()

	var entries []entity.LogEntry
	for rows.Next() {
		var e entity.LogEntry
		var kind string
		if err = rows.Scan(&e.ID, &e.OwnerID, &e.TS, &kind, &e.Name, &e.Trigger, &e.BuyerID, &e.Msg); err != nil {
			return nil, 0, s.mapError(err)
		}
		e.Kind = entity.LogKind(kind)
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, s.mapError(err)
	}

	return entries, total, nil
}
