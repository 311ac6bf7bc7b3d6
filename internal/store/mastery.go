package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/physiktrainer/physiktrainer/internal/progress"
)

const (
	tableMasteryRecords = "mastery_records"
	tableMasteryEvents  = "mastery_events"
)

// MasteryRepo returns the progress repository backed by this store.
func (s *Store) MasteryRepo() MasteryRepo {
	return s.mastery
}

// Transition retry limits for SQLite lock contention between processes.
const (
	busyRetries = 8
	busyBackoff = 15 * time.Millisecond
)

type masteryRepo struct {
	store *Store
	// mu serializes transitions in this process. Across processes, Postgres
	// takes a per-key advisory lock in the transaction; SQLite fails the
	// write of a transaction whose read snapshot went stale, and the
	// transition is retried.
	mu sync.Mutex
}

func (r *masteryRepo) Transition(ctx context.Context, k progress.Key, trigger string, fn func(progress.Box) progress.Box) (progress.Transition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 1; ; attempt++ {
		tr, err := r.transition(ctx, k, trigger, fn)
		if err == nil || !isBusy(err) || attempt >= busyRetries {
			return tr, err
		}
		select {
		case <-ctx.Done():
			return progress.Transition{}, ctx.Err()
		case <-time.After(time.Duration(attempt) * busyBackoff):
		}
	}
}

// lockKey blocks until no other transaction holds k. Only Postgres needs
// it; a SQLite database has a single writer.
func (r *masteryRepo) lockKey(ctx context.Context, q queryer, k progress.Key) error {
	if r.store.dialect != dialect.Postgres {
		return nil
	}
	if _, err := q.ExecContext(ctx, pgLockKey, k.LearnerID, k.ExerciseID); err != nil {
		return fmt.Errorf("lock %s/%s: %w", k.LearnerID, k.ExerciseID, err)
	}
	return nil
}

const pgLockKey = `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`

// isBusy reports a SQLite lock conflict, including a stale WAL snapshot.
func isBusy(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code()&0xff == sqlite3.SQLITE_BUSY
}

func (r *masteryRepo) transition(ctx context.Context, k progress.Key, trigger string, fn func(progress.Box) progress.Box) (progress.Transition, error) {
	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return progress.Transition{}, fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback()

	if err := r.lockKey(ctx, tx, k); err != nil {
		return progress.Transition{}, err
	}
	from, err := r.get(ctx, tx, k)
	if err != nil {
		return progress.Transition{}, err
	}
	to := fn(from)
	if to < progress.BoxUnseen {
		to = progress.BoxUnseen
	}
	tr := progress.Transition{Key: k, From: from, To: to, Trigger: trigger}
	if !tr.Changed() {
		return tr, tx.Commit()
	}

	now := r.store.now()
	if to == progress.BoxUnseen {
		err = r.delete(ctx, tx, k)
	} else {
		err = r.upsert(ctx, tx, k, to, now)
	}
	if err != nil {
		return progress.Transition{}, err
	}
	if err := r.appendEvent(ctx, tx, tr, now); err != nil {
		return progress.Transition{}, err
	}

	if err := tx.Commit(); err != nil {
		return progress.Transition{}, fmt.Errorf("commit transition: %w", err)
	}
	return tr, nil
}

func (r *masteryRepo) keyPredicate(k progress.Key) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("learner_id", k.LearnerID),
		entsql.EQ("exercise_id", k.ExerciseID),
	)
}

func (r *masteryRepo) get(ctx context.Context, q queryer, k progress.Key) (progress.Box, error) {
	query, args := r.store.builder().
		Select("box").
		From(entsql.Table(tableMasteryRecords)).
		Where(r.keyPredicate(k)).
		Query()

	var box int
	err := q.QueryRowContext(ctx, query, args...).Scan(&box)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return progress.BoxUnseen, nil
	case err != nil:
		return 0, fmt.Errorf("read box: %w", err)
	}
	return progress.Box(box), nil
}

func (r *masteryRepo) upsert(ctx context.Context, q queryer, k progress.Key, box progress.Box, now time.Time) error {
	query, args := r.store.builder().
		Insert(tableMasteryRecords).
		Columns("learner_id", "exercise_id", "box", "updated_at").
		Values(k.LearnerID, k.ExerciseID, int(box), now.UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("learner_id", "exercise_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save box: %w", err)
	}
	return nil
}

func (r *masteryRepo) delete(ctx context.Context, q queryer, k progress.Key) error {
	query, args := r.store.builder().
		Delete(tableMasteryRecords).
		Where(r.keyPredicate(k)).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete box: %w", err)
	}
	return nil
}

func (r *masteryRepo) appendEvent(ctx context.Context, q queryer, tr progress.Transition, now time.Time) error {
	seqNum, err := r.store.seq.Next(ctx, q)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := r.store.builder().
		Insert(tableMasteryEvents).
		Columns("sequence", "learner_id", "exercise_id", "from_box", "to_box", "cause", "created_at").
		Values(seqNum, tr.LearnerID, tr.ExerciseID, int(tr.From), int(tr.To), tr.Trigger, now.UnixMilli()).
		Query()
	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save mastery event: %w", err)
	}
	return nil
}

func (r *masteryRepo) Get(ctx context.Context, k progress.Key) (progress.Box, error) {
	return r.get(ctx, r.store.db, k)
}

func (r *masteryRepo) List(ctx context.Context, learnerID string) ([]progress.Record, error) {
	query, args := r.store.builder().
		Select("exercise_id", "box", "updated_at").
		From(entsql.Table(tableMasteryRecords)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("exercise_id").
		Query()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query boxes: %w", err)
	}
	defer rows.Close()

	var out []progress.Record
	for rows.Next() {
		var (
			rec     progress.Record
			box     int
			updated int64
		)
		if err := rows.Scan(&rec.ExerciseID, &box, &updated); err != nil {
			return nil, fmt.Errorf("scan box: %w", err)
		}
		rec.LearnerID = learnerID
		rec.Box = progress.Box(box)
		rec.UpdatedAt = time.UnixMilli(updated)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *masteryRepo) Reset(ctx context.Context, learnerID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	recs, err := r.List(ctx, learnerID)
	if err != nil {
		return 0, err
	}
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reset: %w", err)
	}
	defer tx.Rollback()

	now := r.store.now()
	for _, rec := range recs {
		if err := r.lockKey(ctx, tx, rec.Key); err != nil {
			return 0, err
		}
		if err := r.delete(ctx, tx, rec.Key); err != nil {
			return 0, err
		}
		tr := progress.Transition{Key: rec.Key, From: rec.Box, To: progress.BoxUnseen, Trigger: progress.TriggerReset}
		if err := r.appendEvent(ctx, tx, tr, now); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reset: %w", err)
	}
	return len(recs), nil
}

func (r *masteryRepo) Events(ctx context.Context, learnerID string, opts QueryOpts) ([]MasteryEvent, error) {
	preds := []*entsql.Predicate{entsql.EQ("learner_id", learnerID)}
	if opts.After > 0 {
		preds = append(preds, entsql.GT("sequence", opts.After))
	}
	if opts.ExerciseID != "" {
		preds = append(preds, entsql.EQ("exercise_id", opts.ExerciseID))
	}

	sel := r.store.builder().
		Select("id", "sequence", "exercise_id", "from_box", "to_box", "cause", "created_at").
		From(entsql.Table(tableMasteryEvents)).
		Where(entsql.And(preds...)).
		OrderBy("sequence")
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	query, args := sel.Query()

	rows, err := r.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mastery events: %w", err)
	}
	defer rows.Close()

	var out []MasteryEvent
	for rows.Next() {
		var (
			ev       MasteryEvent
			from, to int
			created  int64
		)
		if err := rows.Scan(&ev.ID, &ev.Sequence, &ev.ExerciseID, &from, &to, &ev.Trigger, &created); err != nil {
			return nil, fmt.Errorf("scan mastery event: %w", err)
		}
		ev.LearnerID = learnerID
		ev.From, ev.To = progress.Box(from), progress.Box(to)
		ev.CreatedAt = time.UnixMilli(created)
		out = append(out, ev)
	}
	return out, rows.Err()
}
