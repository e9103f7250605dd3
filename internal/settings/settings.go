// Package settings keeps the saved report configuration of each teacher,
// keyed by API key.
package settings

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/mind-engage/growthreport/internal/apperr"
	"github.com/mind-engage/growthreport/internal/logger"
	"github.com/mind-engage/growthreport/internal/report"
	"github.com/mind-engage/growthreport/internal/rewards"
	"github.com/mind-engage/growthreport/internal/store"

	"github.com/pkg/errors"
)

// Metadata describes a saved configuration without its content.
type Metadata struct {
	Exists    bool      `json:"exists"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

type Service struct {
	store    store.Store
	defaults report.Config
	log      *logger.Logger
}

func NewService(s store.Store, defaults report.Config, log *logger.Logger) *Service {
	return &Service{store: s, defaults: defaults, log: logger.OrNop(log)}
}

// key never stores the raw API key.
func key(apiKey string) string { return "config:" + rewards.Fingerprint(apiKey) }

func requireKey(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return apperr.NewValidationError(errors.New("api key required"),
			apperr.FieldError{Field: "apiKey", Error: "apiKey is a required field"})
	}
	return nil
}

// Save validates cfg and stores it for apiKey, returning the change summary.
func (s *Service) Save(ctx context.Context, apiKey string, cfg report.Config) ([]string, error) {
	if err := requireKey(apiKey); err != nil {
		return nil, err
	}
	if err := apperr.Validate(cfg); err != nil {
		return nil, err
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "encode config")
	}
	if err := s.store.Save(ctx, key(apiKey), "", b).Err(); err != nil {
		return nil, errors.Wrap(err, "save config")
	}
	s.log.Info("report config saved", "key", rewards.Fingerprint(apiKey))
	return report.DescribeConfig(cfg), nil
}

// Load returns the saved configuration; apperr.ErrNotFound when none.
func (s *Service) Load(ctx context.Context, apiKey string) (report.Config, error) {
	if err := requireKey(apiKey); err != nil {
		return report.Config{}, err
	}
	b, ok, err := s.store.Load(ctx, key(apiKey))
	if err != nil {
		return report.Config{}, errors.Wrap(err, "load config")
	}
	if !ok {
		return report.Config{}, apperr.ErrNotFound
	}
	var cfg report.Config
	if err := json.Unmarshal(b, &cfg); err != nil {
		return report.Config{}, errors.Wrap(err, "decode config")
	}
	return cfg, nil
}

// LoadOrDefault falls back to the default configuration when nothing is
// saved; fromDefault reports the fallback. A missing configuration is not
// an error.
func (s *Service) LoadOrDefault(ctx context.Context, apiKey string) (cfg report.Config, fromDefault bool, err error) {
	cfg, err = s.Load(ctx, apiKey)
	switch {
	case err == nil:
		return cfg, false, nil
	case apperr.IsNotFound(err):
		return s.defaults, true, nil
	}
	if _, ok := apperr.AsValidation(err); ok {
		return s.defaults, true, nil
	}
	return report.Config{}, false, err
}

func (s *Service) Delete(ctx context.Context, apiKey string) error {
	if err := requireKey(apiKey); err != nil {
		return err
	}
	out := s.store.Delete(ctx, key(apiKey))
	if !out.Success {
		if out.Message == "not found" {
			return apperr.ErrNotFound
		}
		return out.Err()
	}
	return nil
}

func (s *Service) Metadata(ctx context.Context, apiKey string) (Metadata, error) {
	if err := requireKey(apiKey); err != nil {
		return Metadata{}, err
	}
	r, ok, err := s.store.Get(ctx, key(apiKey))
	if err != nil || !ok {
		return Metadata{}, err
	}
	return Metadata{Exists: true, CreatedAt: time.UnixMilli(r.CreatedAt), UpdatedAt: time.UnixMilli(r.UpdatedAt)}, nil
}

func (s *Service) Defaults() report.Config { return s.defaults }
