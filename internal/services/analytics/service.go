package analytics

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	pgrepo "github.com/jwong2529/humor-study/internal/repo/postgres"
)

const (
	defaultMaxBatchSize = 100
	maxNameLength       = 64
)

var (
	ErrValidation = errors.New("validation error")

	eventNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_.]*$`)
)

type Store interface {
	InsertBatch(ctx context.Context, profileID *uuid.UUID, events []pgrepo.EventWriteRecord) error
}

type Config struct {
	MaxBatchSize int
}

type Service struct {
	store Store
	cfg   Config
	now   func() time.Time
}

// BatchEvent.TS accepts unix seconds or milliseconds; zero means now.
type BatchEvent struct {
	Name  string
	TS    int64
	Props map[string]any
}

func NewService(store Store, cfg Config) *Service {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = defaultMaxBatchSize
	}

	return &Service{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

func (s *Service) IngestBatch(ctx context.Context, profileID *uuid.UUID, events []BatchEvent) error {
	if s.store == nil {
		return fmt.Errorf("analytics store is nil")
	}
	if len(events) == 0 || len(events) > s.cfg.MaxBatchSize {
		return ErrValidation
	}

	now := s.now().UTC()
	rows := make([]pgrepo.EventWriteRecord, 0, len(events))
	for _, event := range events {
		name := strings.TrimSpace(event.Name)
		if !validName(name) {
			return fmt.Errorf("%w: event name %q", ErrValidation, name)
		}

		rows = append(rows, pgrepo.EventWriteRecord{
			Name:       name,
			OccurredAt: parseTS(event.TS, now),
			Props:      cloneProps(event.Props),
		})
	}

	if err := s.store.InsertBatch(ctx, profileID, rows); err != nil {
		return fmt.Errorf("insert events batch: %w", err)
	}

	return nil
}

// Record stores one server-side event stamped with the current time.
func (s *Service) Record(ctx context.Context, profileID uuid.UUID, name string, props map[string]any) error {
	pid := &profileID
	if profileID == uuid.Nil {
		pid = nil
	}
	return s.IngestBatch(ctx, pid, []BatchEvent{{Name: name, Props: props}})
}

func validName(name string) bool {
	return name != "" && len(name) <= maxNameLength && eventNamePattern.MatchString(name)
}

func parseTS(ts int64, fallback time.Time) time.Time {
	if ts <= 0 {
		return fallback
	}
	if ts >= 1_000_000_000_000 {
		return time.UnixMilli(ts).UTC()
	}
	return time.Unix(ts, 0).UTC()
}

func cloneProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for key, value := range props {
		out[key] = value
	}
	return out
}
