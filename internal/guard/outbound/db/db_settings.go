package db

import (
	"context"

	"github.com/antonkuzmenko/guardcode/internal/guard/entity"
)

func (s *DB) GetSettings(ctx context.Context) (_ *entity.Settings, err error) {
	ctx, span := s.startSpan(ctx, "GetSettings")
	defer func() { s.endSpan(span, err) }()

	var settings entity.Settings
	err = s.conn.QueryRow(ctx,
		`SELECT template, max_logs FROM guard_settings WHERE id = 1`,
	).Scan(&settings.Template, &settings.MaxLogs)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &settings, nil
}

func (s *DB) UpdateTemplate(ctx context.Context, template string) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateTemplate")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO guard_settings (id, template, max_logs)
		VALUES (1, $1, 0)
		ON CONFLICT (id) DO UPDATE SET template = EXCLUDED.template`,
		template)

	err = s.mapError(err)
	return err
}
