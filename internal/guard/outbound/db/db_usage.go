package db

import (
	"context"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
)

func (s *DB) GetUsage(ctx context.Context, ownerID, buyerID, trig string) (_ *entity.UsageRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetUsage")
	defer func() { s.endSpan(span, err) }()

	rec := entity.UsageRecord{OwnerID: ownerID, BuyerID: buyerID, Trigger: trig}
	err = s.conn.QueryRow(ctx, `
		SELECT count, reset_time
		FROM guard_usage
		WHERE owner_id = $1 AND buyer_id = $2 AND phrase = $3`,
		ownerID, buyerID, trig,
	).Scan(&rec.Count, &rec.ResetTime)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &rec, nil
}

func (s *DB) UpsertUsage(ctx context.Context, rec entity.UsageRecord) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertUsage")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO guard_usage (owner_id, buyer_id, phrase, count, reset_time)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (owner_id, buyer_id, phrase)
		DO UPDATE SET count = EXCLUDED.count, reset_time = EXCLUDED.reset_time`,
		rec.OwnerID, rec.BuyerID, rec.Trigger, rec.Count, rec.ResetTime)

	err = s.mapError(err)
	return err
}

// RenameUsageTrigger moves a ledger record stored under a legacy key to
// the normalized key. It is a no-op when the normalized key already has
// a record, so a migration can never clobber live state.
func (s *DB) RenameUsageTrigger(ctx context.Context, ownerID, buyerID, oldTrig, newTrig string) (err error) {
	ctx, span := s.startSpan(ctx, "RenameUsageTrigger")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		UPDATE guard_usage SET phrase = $4
		WHERE owner_id = $1 AND buyer_id = $2 AND phrase = $3
		  AND NOT EXISTS (
			SELECT 1 FROM guard_usage
			WHERE owner_id = $1 AND buyer_id = $2 AND phrase = $4
		  )`,
		ownerID, buyerID, oldTrig, newTrig)

	err = s.mapError(err)
	return err
}
