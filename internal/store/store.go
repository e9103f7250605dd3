// Package store is the key/value persistence used for saved report
// configurations, counsel sessions and student submissions.
package store

import (
	"context"

	"github.com/pkg/errors"
)

// Namespaces partition one backing table between services.
const (
	NSConfigs     = "configs"
	NSCounsels    = "counsels"
	NSSubmissions = "submissions"
)

// Record is one stored value. Filter is the owner the record is listed under
// (an API key, a counsel id) and may be empty.
type Record struct {
	Key       string `json:"key"`
	Filter    string `json:"filter,omitempty"`
	Value     []byte `json:"value"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// Outcome reports a write. Failed writes carry a message for the caller to
// show; they never panic.
type Outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func Succeeded(msg string) Outcome { return Outcome{Success: true, Message: msg} }

func Failed(err error) Outcome { return Outcome{Message: err.Error()} }

// Err converts a failed outcome back to an error.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	return errors.New(o.Message)
}

type Store interface {
	// Load returns the value stored under key; ok is false when absent.
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Save(ctx context.Context, key, filter string, value []byte) Outcome
	Delete(ctx context.Context, key string) Outcome
	// List returns the records under filter, or every record when filter is
	// empty, newest first.
	List(ctx context.Context, filter string) ([]Record, error)
	// Get returns the full record under key.
	Get(ctx context.Context, key string) (Record, bool, error)
}
