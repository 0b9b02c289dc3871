package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wordiz/internal/llm"
)

func TestService_Enrich(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`{
			"sentence": " The fame of the pop star proved ephemeral. ",
			"sentence_translation": "这位流行歌星的名气很短暂。",
			"definition": "lasting for a very short time"
		}`),
	})
	svc := NewService(mock, DefaultConfig())

	got, err := svc.Enrich(context.Background(), Input{Word: "ephemeral", Translation: "短暂的", Language: "Chinese"})
	require.NoError(t, err)

	assert.Equal(t, "The fame of the pop star proved ephemeral.", got.Sentence)
	assert.Equal(t, "lasting for a very short time", got.Definition)

	require.Equal(t, 1, mock.CallCount())
	req := mock.Calls[0]
	assert.Same(t, EnrichmentSchema, req.Schema)
	assert.True(t, strings.Contains(req.Prompt, "Word: ephemeral"))
	assert.True(t, strings.Contains(req.Prompt, "Learner language: Chinese"))
}

func TestService_EnrichErrors(t *testing.T) {
	t.Run("blank word", func(t *testing.T) {
		svc := NewService(llm.NewMockProvider(), DefaultConfig())
		_, err := svc.Enrich(context.Background(), Input{Word: "  "})
		assert.ErrorIs(t, err, ErrEmptyWord)
	})

	t.Run("provider failure", func(t *testing.T) {
		svc := NewService(llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{}}), DefaultConfig())
		_, err := svc.Enrich(context.Background(), Input{Word: "cat"})
		var rl *llm.ErrRateLimit
		assert.True(t, errors.As(err, &rl))
	})

	t.Run("empty sentence", func(t *testing.T) {
		svc := NewService(llm.NewMockProvider(llm.MockResponse{
			Content: json.RawMessage(`{"sentence":"","sentence_translation":"","definition":"x"}`),
		}), DefaultConfig())
		_, err := svc.Enrich(context.Background(), Input{Word: "cat"})
		var inv *llm.ErrInvalidResponse
		assert.True(t, errors.As(err, &inv))
	})

	t.Run("malformed json", func(t *testing.T) {
		svc := NewService(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`"nope"`)}), DefaultConfig())
		_, err := svc.Enrich(context.Background(), Input{Word: "cat"})
		assert.Error(t, err)
	})
}

func TestEnrichmentSchemaCompiles(t *testing.T) {
	raw, err := json.Marshal(EnrichmentSchema.Definition)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"sentence_translation"`)
}
