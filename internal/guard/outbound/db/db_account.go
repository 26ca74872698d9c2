package db

import (
	"context"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, owner_id, name, phrase, secret, usage_limit, period_hours, position`

func scanAccounts(rows pgx.Rows) ([]entity.Account, error) {
	defer rows.Close()

	var accounts []entity.Account
	for rows.Next() {
		var acc entity.Account
		if err := rows.Scan(
			&acc.ID,
			&acc.OwnerID,
			&acc.Name,
			&acc.Trigger,
			&acc.Secret,
			&acc.Limit,
			&acc.PeriodHours,
			&acc.Position,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}

	return accounts, rows.Err()
}

func (s *DB) GetAccounts(ctx context.Context) (_ []entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccounts")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+accountColumns+`
		FROM guard_accounts
		ORDER BY owner_id, position`)
	if err != nil {
		return nil, s.mapError(err)
	}

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, s.mapError(err)
	}
	return accounts, nil
}

func (s *DB) GetAccountsByOwner(ctx context.Context, ownerID string) (_ []entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "GetAccountsByOwner")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT `+accountColumns+`
		FROM guard_accounts
		WHERE owner_id = $1
		ORDER BY position`, ownerID)
	if err != nil {
		return nil, s.mapError(err)
	}

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, s.mapError(err)
	}
	return accounts, nil
}

func (s *DB) CreateAccount(ctx context.Context, in entity.NewAccount) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAccount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO guard_accounts (id, owner_id, name, phrase, secret, usage_limit, period_hours, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, (
			SELECT COALESCE(MAX(position), 0) + 1 FROM guard_accounts WHERE owner_id = $2
		))`,
		in.ID, in.OwnerID, in.Name, in.Trigger, in.Secret, in.Limit, in.PeriodHours)

	err = s.mapError(err)
	return err
}

func (s *DB) DeleteAccount(ctx context.Context, ownerID string, id int64) (_ *entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "DeleteAccount")
	defer func() { s.endSpan(span, err) }()

	var acc entity.Account
	err = s.conn.QueryRow(ctx, `
		DELETE FROM guard_accounts
		WHERE owner_id = $1 AND id = $2
		RETURNING `+accountColumns,
		ownerID, id,
	).Scan(
		&acc.ID,
		&acc.OwnerID,
		&acc.Name,
		&acc.Trigger,
		&acc.Secret,
		&acc.Limit,
		&acc.PeriodHours,
		&acc.Position,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &acc, nil
}
