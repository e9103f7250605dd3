package counsel

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/store"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SubmissionData is what the student saw plus what they wrote.
type SubmissionData struct {
	Report     *report.Report    `json:"reportData,omitempty"`
	UserInputs report.UserInputs `json:"userInputs"`
}

type Submission struct {
	ID          string         `json:"id"`
	StudentCode string         `json:"studentCode"`
	CounselID   string         `json:"counselId"`
	Data        SubmissionData `json:"data"`
	SubmittedAt time.Time      `json:"submittedAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type submissionKey struct {
	StudentCode string `json:"studentCode" validate:"studentcode"`
	CounselID   string `json:"counselId" validate:"notblank"`
}

// Submissions stores one submission per (student code, counsel) pair.
type Submissions struct {
	mu    sync.Mutex
	store store.Store
	now   func() time.Time
}

func NewSubmissions(s store.Store) *Submissions {
	return &Submissions{store: s, now: time.Now}
}

// Save upserts by (StudentCode, CounselID). An existing submission keeps its
// id and first SubmittedAt.
func (s *Submissions) Save(ctx context.Context, sub Submission) (Submission, error) {
	sub.StudentCode = strings.TrimSpace(sub.StudentCode)
	if err := apperr.Validate(submissionKey{sub.StudentCode, sub.CounselID}); err != nil {
		return Submission{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	existing, err := s.Get(ctx, sub.StudentCode, sub.CounselID)
	switch {
	case err == nil:
		sub.ID = existing.ID
		sub.SubmittedAt = existing.SubmittedAt
	case apperr.IsNotFound(err):
		if sub.ID == "" {
			sub.ID = "sub_" + uuid.NewString()
		}
		if sub.SubmittedAt.IsZero() {
			sub.SubmittedAt = now
		}
	default:
		return Submission{}, err
	}
	sub.UpdatedAt = now

	b, err := json.Marshal(sub)
	if err != nil {
		return Submission{}, errors.Wrap(err, "encode submission")
	}
	if err := s.store.Save(ctx, sub.ID, sub.CounselID, b).Err(); err != nil {
		return Submission{}, errors.Wrap(err, "save submission")
	}
	return sub, nil
}

func (s *Submissions) list(ctx context.Context, filter string) ([]Submission, error) {
	recs, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}
	out := make([]Submission, 0, len(recs))
	for _, r := range recs {
		var sub Submission
		if err := json.Unmarshal(r.Value, &sub); err != nil {
			return nil, errors.Wrapf(err, "decode submission %s", r.Key)
		}
		out = append(out, sub)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *Submissions) ListAll(ctx context.Context) ([]Submission, error) { return s.list(ctx, "") }

func (s *Submissions) ListByCounsel(ctx context.Context, counselID string) ([]Submission, error) {
	if counselID == "" {
		return []Submission{}, nil
	}
	return s.list(ctx, counselID)
}

// Get finds the submission of studentCode in counselID.
func (s *Submissions) Get(ctx context.Context, studentCode, counselID string) (Submission, error) {
	subs, err := s.ListByCounsel(ctx, counselID)
	if err != nil {
		return Submission{}, err
	}
	for _, sub := range subs {
		if sub.StudentCode == studentCode {
			return sub, nil
		}
	}
	return Submission{}, apperr.ErrNotFound
}

func (s *Submissions) GetByID(ctx context.Context, id string) (Submission, error) {
	b, ok, err := s.store.Load(ctx, id)
	if err != nil {
		return Submission{}, errors.Wrap(err, "load submission")
	}
	if !ok {
		return Submission{}, apperr.ErrNotFound
	}
	var sub Submission
	if err := json.Unmarshal(b, &sub); err != nil {
		return Submission{}, errors.Wrap(err, "decode submission")
	}
	return sub, nil
}
