// Package audit records every export attempt in the export_log table.
package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
)

type Entry struct {
	ID          int64  `json:"id"`
	StudentCode string `json:"studentCode"`
	Filename    string `json:"filename,omitempty"`
	Pages       int    `json:"pages"`
	Overflow    bool   `json:"overflow"`
	Error       string `json:"error,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
}

// Recorder appends export entries. A nil *ExportLog is a valid Recorder that
// drops everything.
type Recorder interface {
	Append(ctx context.Context, e Entry) error
}

type ExportLog struct{ db *sql.DB }

func NewExportLog(db *sql.DB) *ExportLog { return &ExportLog{db: db} }

func (r *ExportLog) Append(ctx context.Context, e Entry) error {
	if r == nil {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO export_log (student_code, filename, pages, overflow, error, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.StudentCode, e.Filename, e.Pages, e.Overflow, e.Error, time.Now().Unix())
	return errors.Wrap(err, "append export log")
}

// Recent returns the last limit entries, newest first.
func (r *ExportLog) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, student_code, filename, pages, overflow, error, created_at
		 FROM export_log ORDER BY id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query export log")
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.StudentCode, &e.Filename, &e.Pages, &e.Overflow, &e.Error, &e.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan export log")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
