package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

// SQLStore keeps one namespace of the kv_records table. The same queries run
// on sqlite and postgres.
type SQLStore struct {
	db  *sql.DB
	ns  string
	now func() time.Time
}

func NewSQLStore(db *sql.DB, ns string) *SQLStore {
	return &SQLStore{db: db, ns: ns, now: time.Now}
}

func (s *SQLStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	r, ok, err := s.Get(ctx, key)
	return r.Value, ok, err
}

func (s *SQLStore) Get(ctx context.Context, key string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT record_key, filter, value, created_at, updated_at FROM kv_records WHERE ns=$1 AND record_key=$2`,
		s.ns, key)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, errors.Wrapf(err, "load %s/%s", s.ns, key)
	}
	return r, true, nil
}

func (s *SQLStore) Save(ctx context.Context, key, filter string, value []byte) Outcome {
	if key == "" {
		return Failed(errors.New("empty key"))
	}
	now := s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx, `INSERT INTO kv_records (ns, record_key, filter, value, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (ns, record_key) DO UPDATE SET filter=EXCLUDED.filter, value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		s.ns, key, filter, string(value), now, now)
	if err != nil {
		return Failed(errors.Wrapf(err, "save %s/%s", s.ns, key))
	}
	return Succeeded("saved")
}

func (s *SQLStore) Delete(ctx context.Context, key string) Outcome {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv_records WHERE ns=$1 AND record_key=$2`, s.ns, key)
	if err != nil {
		return Failed(errors.Wrapf(err, "delete %s/%s", s.ns, key))
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return Outcome{Message: "not found"}
	}
	return Succeeded("deleted")
}

func (s *SQLStore) List(ctx context.Context, filter string) ([]Record, error) {
	q := `SELECT record_key, filter, value, created_at, updated_at FROM kv_records WHERE ns=$1`
	args := []any{s.ns}
	if filter != "" {
		q += ` AND filter=$2`
		args = append(args, filter)
	}
	q += ` ORDER BY updated_at DESC, record_key ASC`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", s.ns)
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", s.ns)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (Record, error) {
	var r Record
	var value string
	if err := sc.Scan(&r.Key, &r.Filter, &value, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Record{}, err
	}
	r.Value = []byte(value)
	return r, nil
}
