// Package counsel manages counsel sessions (a teacher's saved report setup
// that students open with their code) and the submissions students send
// back into them.
package counsel

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/logger"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/rewards"
	"github.com/mind-engage/growthreport/internal/store"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const IDPrefix = "counsel_"

type Counsel struct {
	ID        string        `json:"id"`
	Title     string        `json:"title"`
	Config    report.Config `json:"config"`
	APIKey    string        `json:"apiKey,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Update carries the fields a PATCH may change; nil means unchanged.
type Update struct {
	Title  *string        `json:"title,omitempty"`
	Config *report.Config `json:"config,omitempty"`
}

type Service struct {
	counsels store.Store
	now      func() time.Time
	log      *logger.Logger
}

func NewService(counsels store.Store, log *logger.Logger) *Service {
	return &Service{counsels: counsels, now: time.Now, log: logger.OrNop(log)}
}

func newID() string { return IDPrefix + uuid.NewString() }

// Create stores a new session owned by apiKey. An empty title becomes
// "상담 <unix ms>".
func (s *Service) Create(ctx context.Context, apiKey, title string, cfg report.Config) (Counsel, error) {
	if strings.TrimSpace(apiKey) == "" {
		return Counsel{}, apperr.NewValidationError(errors.New("api key required"),
			apperr.FieldError{Field: "apiKey", Error: "apiKey is a required field"})
	}
	if err := apperr.Validate(cfg); err != nil {
		return Counsel{}, err
	}
	now := s.now()
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("상담 %d", now.UnixMilli())
	}
	c := Counsel{ID: newID(), Title: strings.TrimSpace(title), Config: cfg, APIKey: apiKey, CreatedAt: now, UpdatedAt: now}
	if err := s.put(ctx, c); err != nil {
		return Counsel{}, err
	}
	s.log.Info("counsel created", "id", c.ID, "key", rewards.Fingerprint(apiKey))
	return c, nil
}

func (s *Service) put(ctx context.Context, c Counsel) error {
	b, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode counsel")
	}
	return errors.Wrap(s.counsels.Save(ctx, c.ID, rewards.Fingerprint(c.APIKey), b).Err(), "save counsel")
}

func (s *Service) Get(ctx context.Context, id string) (Counsel, error) {
	b, ok, err := s.counsels.Load(ctx, id)
	if err != nil {
		return Counsel{}, errors.Wrap(err, "load counsel")
	}
	if !ok {
		return Counsel{}, apperr.ErrNotFound
	}
	var c Counsel
	if err := json.Unmarshal(b, &c); err != nil {
		return Counsel{}, errors.Wrap(err, "decode counsel")
	}
	return c, nil
}

// GetOwned is Get plus the owner check.
func (s *Service) GetOwned(ctx context.Context, id, apiKey string) (Counsel, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return Counsel{}, err
	}
	if c.APIKey != "" && c.APIKey != apiKey {
		return Counsel{}, apperr.ErrForbidden
	}
	return c, nil
}

// List returns the sessions owned by apiKey (all sessions when empty),
// newest first.
func (s *Service) List(ctx context.Context, apiKey string) ([]Counsel, error) {
	filter := ""
	if apiKey != "" {
		filter = rewards.Fingerprint(apiKey)
	}
	recs, err := s.counsels.List(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "list counsels")
	}
	out := make([]Counsel, 0, len(recs))
	for _, r := range recs {
		var c Counsel
		if err := json.Unmarshal(r.Value, &c); err != nil {
			s.log.Warn("skipping undecodable counsel", "key", r.Key, "error", err)
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update applies u when apiKey owns the session. A session without an owner
// can be changed by anyone.
func (s *Service) Update(ctx context.Context, id, apiKey string, u Update) (Counsel, error) {
	c, err := s.GetOwned(ctx, id, apiKey)
	if err != nil {
		return Counsel{}, err
	}
	if u.Title != nil && strings.TrimSpace(*u.Title) != "" {
		c.Title = strings.TrimSpace(*u.Title)
	}
	if u.Config != nil {
		if err := apperr.Validate(*u.Config); err != nil {
			return Counsel{}, err
		}
		c.Config = *u.Config
	}
	if c.APIKey == "" {
		c.APIKey = apiKey
	}
	c.UpdatedAt = s.now()
	if err := s.put(ctx, c); err != nil {
		return Counsel{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id, apiKey string) error {
	if _, err := s.GetOwned(ctx, id, apiKey); err != nil {
		return err
	}
	out := s.counsels.Delete(ctx, id)
	if !out.Success {
		return errors.Wrap(out.Err(), "delete counsel")
	}
	s.log.Info("counsel deleted", "id", id)
	return nil
}

// UniqueAPIKeys lists every distinct owner key, sorted.
func (s *Service) UniqueAPIKeys(ctx context.Context) ([]string, error) {
	all, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	keys := []string{}
	for _, c := range all {
		if c.APIKey != "" && !seen[c.APIKey] {
			seen[c.APIKey] = true
			keys = append(keys, c.APIKey)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// MaskKey keeps the first and last four characters of an API key.
func MaskKey(k string) string {
	if len(k) <= 8 {
		return strings.Repeat("*", len(k))
	}
	return k[:4] + strings.Repeat("*", len(k)-8) + k[len(k)-4:]
}
