package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const tableAttemptLogs = "attempt_logs"

// AttemptRepo returns the attempt log backed by this store.
func (s *Store) AttemptRepo() AttemptRepo {
	return &attemptRepo{store: s}
}

type attemptRepo struct {
	store *Store
}

func (r *attemptRepo) Record(ctx context.Context, exerciseID, text string) (bool, error) {
	text = strings.TrimSpace(text)
	query, args := r.store.builder().
		Insert(tableAttemptLogs).
		Columns("exercise_id", "text", "created_at").
		Values(exerciseID, text, r.store.now().UnixMilli()).
		OnConflict(entsql.ConflictColumns("exercise_id", "text"), entsql.DoNothing()).
		Query()

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("save attempt: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("save attempt: %w", err)
	}
	return n > 0, nil
}

func (r *attemptRepo) List(ctx context.Context, opts QueryOpts) ([]AttemptLog, error) {
	var preds []*entsql.Predicate
	if opts.ExerciseID != "" {
		preds = append(preds, entsql.EQ("exercise_id", opts.ExerciseID))
	}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("id", opts.After))
	}

	sel := r.store.builder().
		Select("id", "exercise_id", "text", "created_at").
		From(entsql.Table(tableAttemptLogs)).
		OrderBy(entsql.Desc("id"))
	if len(preds) > 0 {
		sel = sel.Where(entsql.And(preds...))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query attempts: %w", err)
	}
	defer rows.Close()

	var out []AttemptLog
	for rows.Next() {
		var (
			a       AttemptLog
			created int64
		)
		if err := rows.Scan(&a.ID, &a.ExerciseID, &a.Text, &created); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		a.CreatedAt = time.UnixMilli(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Dismiss(ctx context.Context, id int64) error {
	query, args := r.store.builder().
		Delete(tableAttemptLogs).
		Where(entsql.EQ("id", id)).
		Query()

	res, err := r.store.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("dismiss attempt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("dismiss attempt %d: %w", id, ErrNotFound)
	}
	return nil
}
