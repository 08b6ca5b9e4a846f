package pg

import (
	"context"

	"github.com/samber/oops"

	"github.com/dropDatabas3/essgate/internal/domain/repository"
)

type ErrorLogRepo struct {
	db DB
}

func NewErrorLogRepo(db DB) *ErrorLogRepo { return &ErrorLogRepo{db: db} }

func (r *ErrorLogRepo) Insert(ctx context.Context, e repository.ErrorLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO error_log (id, title, detail, request_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Title, e.Detail, nullIfEmpty(e.RequestID), e.CreatedAt,
	)
	if err != nil {
		return oops.Code("ERROR_LOG_INSERT_FAILED").With("title", e.Title).Wrap(err)
	}
	return nil
}

func (r *ErrorLogRepo) Recent(ctx context.Context, n int) ([]repository.ErrorLog, error) {
	if n <= 0 {
		n = 50
	}
	rows, err := r.db.Query(ctx,
		`SELECT id, title, detail, request_id, created_at FROM error_log ORDER BY created_at DESC LIMIT $1`, n)
	if err != nil {
		return nil, oops.Code("ERROR_LOG_QUERY_FAILED").Wrap(err)
	}
	defer rows.Close()

	out := make([]repository.ErrorLog, 0, n)
	for rows.Next() {
		var (
			e   repository.ErrorLog
			rid *string
		)
		if err := rows.Scan(&e.ID, &e.Title, &e.Detail, &rid, &e.CreatedAt); err != nil {
			return nil, oops.Code("ERROR_LOG_SCAN_FAILED").Wrap(err)
		}
		e.RequestID = deref(rid)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ERROR_LOG_QUERY_FAILED").Wrap(err)
	}
	return out, nil
}
