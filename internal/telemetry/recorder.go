// Package telemetry records analytics events in the local event log.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/store"
)

// Recorder appends analytics events to the event log.
type Recorder struct {
	repo   store.EventRepo
	logger *zap.Logger
}

// NewRecorder creates a Recorder backed by repo.
func NewRecorder(repo store.EventRepo, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: logger.Named("telemetry")}
}

// ReportEvent stores one event. payload must be a JSON document; an empty
// payload is stored as an empty object.
func (r *Recorder) ReportEvent(ctx context.Context, name, payload, group string) error {
	if payload == "" {
		payload = "{}"
	}
	if !json.Valid([]byte(payload)) {
		return fmt.Errorf("event %s: payload is not JSON", name)
	}
	e := &store.Event{
		ID:      uuid.NewString(),
		Name:    name,
		Group:   group,
		Payload: payload,
	}
	if err := r.repo.Append(ctx, e); err != nil {
		return fmt.Errorf("report %s: %w", name, err)
	}
	r.logger.Debug("event", zap.String("name", name), zap.String("group", group), zap.Int64("seq", e.Sequence))
	return nil
}
