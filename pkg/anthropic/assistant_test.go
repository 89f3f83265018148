package anthropic

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

type fakeClient struct {
	lastReq MessageRequest
	resp    *MessageResponse
	err     error
}

func (f *fakeClient) CreateMessage(_ context.Context, req MessageRequest) (*MessageResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func TestAssistantReply(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{
		resp: &MessageResponse{
			Content: []ContentBlock{{Type: "text", Text: "¡Perfecto! ¿Cuánto pesa la carga?"}},
		},
	}
	a := NewAssistant(fake, WithModel("claude-haiku-4-5-20251001"), WithMaxTokens(256))

	history := []model.Turn{
		{Role: model.RoleUser, Text: "Necesito un transporte a París"},
		{Role: model.RoleAssistant, Text: "¿Qué peso tiene la carga?"},
	}

	text, err := a.Reply(context.Background(), history, "Pregunta por el peso en kg.")
	require.NoError(t, err)
	assert.Equal(t, "¡Perfecto! ¿Cuánto pesa la carga?", text)

	req := fake.lastReq
	assert.Equal(t, "claude-haiku-4-5-20251001", req.Model)
	assert.EqualValues(t, 256, req.MaxTokens)
	require.Len(t, req.Messages, 3)
	assert.Equal(t, "user", req.Messages[0].Role)
	assert.Equal(t, "assistant", req.Messages[1].Role)
	assert.Equal(t, "user", req.Messages[2].Role)
	assert.Equal(t, "Pregunta por el peso en kg.", req.Messages[2].Content)

	require.Len(t, req.System, 1)
	require.NotNil(t, req.System[0].CacheControl)
	assert.Equal(t, "1h", req.System[0].CacheControl.TTL)
	require.NotNil(t, req.Temperature)
}

func TestAssistantReplyAPIError(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{err: eris.New("overloaded")}
	a := NewAssistant(fake)

	_, err := a.Reply(context.Background(), nil, "hola")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assistant reply")
}

func TestAssistantReplyEmpty(t *testing.T) {
	t.Parallel()

	fake := &fakeClient{resp: &MessageResponse{}}
	a := NewAssistant(fake)

	_, err := a.Reply(context.Background(), nil, "hola")
	require.Error(t, err)
}

func TestResponseText(t *testing.T) {
	t.Parallel()

	resp := &MessageResponse{Content: []ContentBlock{
		{Type: "text", Text: "hola "},
		{Type: "tool_use", Text: "ignored"},
		{Type: "text", Text: "mundo"},
	}}
	assert.Equal(t, "hola mundo", resp.Text())
}

func TestEstimateCost(t *testing.T) {
	t.Parallel()

	u := TokenUsage{InputTokens: 1_000_000, OutputTokens: 500_000}
	assert.InDelta(t, 0.80+2.00, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
	assert.Zero(t, u.EstimateCost("unknown-model"))
}

func TestEstimateCostWithCache(t *testing.T) {
	t.Parallel()

	u := TokenUsage{
		CacheCreationInputTokens: 1_000_000,
		CacheReadInputTokens:     1_000_000,
	}
	// Cache writes bill at 1.25x input, reads at 0.1x.
	assert.InDelta(t, 0.80*1.25+0.80*0.1, u.EstimateCost("claude-haiku-4-5-20251001"), 1e-9)
}
