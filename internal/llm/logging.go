package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/wordiz/internal/store"
)

// RequestRecorder persists one record per LLM call.
type RequestRecorder interface {
	AppendLLMRequest(ctx context.Context, data store.LLMRequestEventData) error
}

// LoggingProvider records every attempt as an llm_request event, tagged
// with the purpose and word carried by the context.
type LoggingProvider struct {
	inner    Provider
	recorder RequestRecorder
	logger   *zap.Logger
}

// WithLogging wraps p. recorder may be nil, in which case attempts only
// reach the logger.
func WithLogging(p Provider, recorder RequestRecorder, logger *zap.Logger) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, recorder: recorder, logger: logger}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.inner.Name(),
		Model:       l.inner.Model(),
		Purpose:     PurposeFrom(ctx),
		Word:        WordFrom(ctx),
		Attempt:     attemptFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: formatRequest(req),
	}
	if data.Purpose == "" {
		data.Purpose = "unknown"
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
		if c := LookupCost(data.Model); c != nil {
			data.CostUSD = c.Cost(data.InputTokens, data.OutputTokens)
		}
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	fields := []zap.Field{
		zap.String("purpose", data.Purpose),
		zap.String("word", data.Word),
		zap.Int("attempt", data.Attempt),
		zap.String("model", data.Model),
		zap.Int64("latency_ms", data.LatencyMs),
		zap.Int("input_tokens", data.InputTokens),
		zap.Int("output_tokens", data.OutputTokens),
	}
	if err != nil {
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Debug("llm request", fields...)
	}

	// A failed record never fails the request.
	if l.recorder != nil {
		if recErr := l.recorder.AppendLLMRequest(ctx, data); recErr != nil {
			l.logger.Warn("failed to record llm request", zap.Error(recErr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) Name() string  { return l.inner.Name() }
func (l *LoggingProvider) Model() string { return l.inner.Model() }

// formatRequest renders req the way `wordiz llm view` prints it.
func formatRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		b.WriteString("[system]\n" + req.System + "\n\n")
	}
	b.WriteString("[user]\n" + req.Prompt + "\n")
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			b.WriteString("\n[schema: " + req.Schema.Name + "]\n" + string(def) + "\n")
		}
	}
	return b.String()
}
