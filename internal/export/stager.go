// Package export runs single and batch report exports: fetch, build,
// assemble, paginate, store.
package export

import (
	"context"

	"github.com/mind-engage/growthreport/internal/document"
	"github.com/mind-engage/growthreport/internal/layout"
)

// Stager hands out the single staging slot. Exports wait for it, so at most
// one document is staged at any time.
type Stager struct {
	slot chan struct{}
}

func NewStager() *Stager {
	return &Stager{slot: make(chan struct{}, 1)}
}

// Acquire waits for the slot and stages doc. The caller must Release the
// returned stage; release frees the slot.
func (s *Stager) Acquire(ctx context.Context, doc document.Document) (*layout.Stage, error) {
	select {
	case s.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	st := layout.NewStage(doc)
	st.OnRelease(func() { <-s.slot })
	return st, nil
}

// Busy reports whether a document is staged.
func (s *Stager) Busy() bool { return len(s.slot) > 0 }
