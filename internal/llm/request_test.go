package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/wordiz/internal/store"
)

var wordSchema = &Schema{
	Name:        "test-word",
	Description: "a word card",
	Definition: map[string]any{
		"type":                 "object",
		"properties":           map[string]any{"sentence": map[string]any{"type": "string"}},
		"required":             []any{"sentence"},
		"additionalProperties": false,
	},
}

var wordRequest = Request{
	System:      "You write vocabulary cards.",
	Prompt:      "Word: ephemeral",
	Schema:      wordSchema,
	MaxTokens:   256,
	Temperature: 0.4,
}

func TestAnthropicParams(t *testing.T) {
	p := anthropicParams("claude-haiku-4-5", wordRequest)

	assert.Equal(t, anthropic.Model("claude-haiku-4-5"), p.Model)
	assert.EqualValues(t, 256, p.MaxTokens)
	require.Len(t, p.System, 1)
	assert.Equal(t, "You write vocabulary cards.", p.System[0].Text)
	require.Len(t, p.Messages, 1)
	assert.Equal(t, anthropic.MessageParamRoleUser, p.Messages[0].Role)
	assert.Equal(t, wordSchema.Definition, p.OutputConfig.Format.Schema)
}

func TestOpenAIRequest(t *testing.T) {
	r, err := openaiRequest("gpt-4o-mini", wordRequest)
	require.NoError(t, err)

	require.Len(t, r.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, r.Messages[0].Role)
	assert.Equal(t, "Word: ephemeral", r.Messages[1].Content)
	assert.Equal(t, 256, r.MaxCompletionTokens)
	require.NotNil(t, r.ResponseFormat)
	assert.Equal(t, "test-word", r.ResponseFormat.JSONSchema.Name)
	assert.True(t, r.ResponseFormat.JSONSchema.Strict)

	plain := wordRequest
	plain.System, plain.Schema = "", nil
	r, err = openaiRequest("gpt-4o-mini", plain)
	require.NoError(t, err)
	assert.Len(t, r.Messages, 1)
	assert.Nil(t, r.ResponseFormat)
}

func TestGeminiConfig(t *testing.T) {
	c := geminiConfig(wordRequest)

	assert.EqualValues(t, 256, c.MaxOutputTokens)
	require.NotNil(t, c.Temperature)
	assert.InDelta(t, 0.4, *c.Temperature, 1e-6)
	assert.Equal(t, "application/json", c.ResponseMIMEType)
	assert.Equal(t, wordSchema.Definition, c.ResponseJsonSchema)
	require.NotNil(t, c.SystemInstruction)
	assert.Equal(t, "You write vocabulary cards.", c.SystemInstruction.Parts[0].Text)
}

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("boom")
	var rl *ErrRateLimit
	var rj *ErrRejected
	var un *ErrProviderUnavailable

	assert.ErrorAs(t, classifyStatus(429, cause), &rl)
	assert.ErrorAs(t, classifyStatus(401, cause), &rj)
	assert.Equal(t, 401, rj.Status)
	assert.ErrorAs(t, classifyStatus(404, cause), &rj)
	assert.ErrorAs(t, classifyStatus(408, cause), &un)
	assert.ErrorAs(t, classifyStatus(503, cause), &un)
	assert.ErrorAs(t, classifyStatus(0, cause), &un)
	assert.ErrorIs(t, classifyStatus(500, cause), cause)
}

type fakeProvider struct {
	resp *Response
	err  error
}

func (f fakeProvider) Generate(context.Context, Request) (*Response, error) { return f.resp, f.err }
func (f fakeProvider) Name() string                                        { return ProviderOpenAI }
func (f fakeProvider) Model() string                                       { return "gpt-4o-mini" }

type sliceRecorder []store.LLMRequestEventData

func (s *sliceRecorder) AppendLLMRequest(_ context.Context, d store.LLMRequestEventData) error {
	*s = append(*s, d)
	return nil
}

func TestLogging_RecordsProviderAndCost(t *testing.T) {
	var rec sliceRecorder
	p := WithLogging(fakeProvider{resp: &Response{
		Content: json.RawMessage(`{"sentence":"x"}`),
		Usage:   Usage{InputTokens: 1000, OutputTokens: 1000},
		Model:   "gpt-4o-mini-2024-07-18",
	}}, &rec, nil)

	ctx := WithWord(WithPurpose(context.Background(), PurposeCheck), "ephemeral")
	_, err := p.Generate(ctx, wordRequest)
	require.NoError(t, err)

	require.Len(t, rec, 1)
	assert.Equal(t, ProviderOpenAI, rec[0].Provider)
	assert.Equal(t, "gpt-4o-mini-2024-07-18", rec[0].Model)
	assert.Equal(t, PurposeCheck, rec[0].Purpose)
	assert.Equal(t, "ephemeral", rec[0].Word)
	assert.Equal(t, 1, rec[0].Attempt)
	assert.InDelta(t, 0.00075, rec[0].CostUSD, 1e-9)
	assert.Contains(t, rec[0].RequestBody, "[user]\nWord: ephemeral")
}

func TestLogging_UnlabeledRequest(t *testing.T) {
	var rec sliceRecorder
	p := WithLogging(fakeProvider{err: &ErrProviderUnavailable{}}, &rec, nil)

	_, err := p.Generate(context.Background(), wordRequest)
	require.Error(t, err)
	require.Len(t, rec, 1)
	assert.Equal(t, "unknown", rec[0].Purpose)
	assert.Equal(t, "gpt-4o-mini", rec[0].Model, "falls back to the configured model")
	assert.False(t, rec[0].Success)
}
