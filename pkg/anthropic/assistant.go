package anthropic

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/stock-logistic/quoting-cli/internal/model"
)

const (
	defaultModel       = "claude-haiku-4-5-20251001"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.4
)

const systemPrompt = `Eres el asistente comercial de Stock Logistic, un operador de transporte ` +
	`de mercancías por carretera en Europa. Conversas con clientes en español, en un tono ` +
	`cercano y profesional. Recibirás un borrador de respuesta con los datos, preguntas e ` +
	`importes exactos que hay que comunicar. Reformúlalo con naturalidad sin cambiar, añadir ` +
	`ni omitir ningún dato, pregunta ni importe. Responde solo con el mensaje para el cliente.`

// Assistant rephrases drafted replies through the Anthropic API. It keeps
// every fact of the draft intact and only adjusts tone.
type Assistant struct {
	client      Client
	model       string
	maxTokens   int64
	temperature float64
}

// AssistantOption customizes an Assistant.
type AssistantOption func(*Assistant)

// WithModel overrides the model used for replies.
func WithModel(model string) AssistantOption {
	return func(a *Assistant) { a.model = model }
}

// WithMaxTokens overrides the reply token cap.
func WithMaxTokens(n int64) AssistantOption {
	return func(a *Assistant) { a.maxTokens = n }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) AssistantOption {
	return func(a *Assistant) { a.temperature = t }
}

// NewAssistant wraps an Anthropic client as a conversation assistant.
func NewAssistant(client Client, opts ...AssistantOption) *Assistant {
	a := &Assistant{
		client:      client,
		model:       defaultModel,
		maxTokens:   defaultMaxTokens,
		temperature: defaultTemperature,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reply sends the conversation history plus the drafted prompt and returns
// the rephrased reply text.
func (a *Assistant) Reply(ctx context.Context, history []model.Turn, prompt string) (string, error) {
	msgs := make([]Message, 0, len(history)+1)
	for _, t := range history {
		msgs = append(msgs, Message{Role: string(t.Role), Content: t.Text})
	}
	msgs = append(msgs, Message{Role: string(model.RoleUser), Content: prompt})

	temp := a.temperature
	resp, err := a.client.CreateMessage(ctx, MessageRequest{
		Model:       a.model,
		MaxTokens:   a.maxTokens,
		System:      BuildCachedSystemBlocks(systemPrompt),
		Messages:    msgs,
		Temperature: &temp,
	})
	if err != nil {
		return "", eris.Wrap(err, "anthropic: assistant reply")
	}

	resp.Usage.LogCost(a.model, "conversation")

	text := resp.Text()
	if text == "" {
		return "", eris.New("anthropic: empty assistant reply")
	}
	return text, nil
}
