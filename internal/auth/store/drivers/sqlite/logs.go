package sqlite

import (
	"context"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
)

type actionLogsRepo struct {
	db dbtx
}

func (r *actionLogsRepo) InsertActionLog(ctx context.Context, l domain.ActionLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO action_logs (id, type, actor_id, actor_kind, admin_id, detail, ip, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Type, l.ActorID, l.ActorKind, l.AdminID, l.Detail, l.IP, l.CreatedAt,
	)
	return err
}

type errorLogsRepo struct {
	db dbtx
}

func (r *errorLogsRepo) InsertErrorLog(ctx context.Context, l domain.ErrorLog) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO error_logs (id, source, message, detail, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.Source, l.Message, l.Detail, l.CreatedAt,
	)
	return err
}

func (r *errorLogsRepo) DeleteErrorLogsOlderThan(ctx context.Context, cutoff time.Time) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM error_logs WHERE created_at < ?`, cutoff)
	return err
}
