package dialogue

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/cory-johannsen/notevillage/internal/village"
)

// AnthropicResponder answers free-form player messages with the Anthropic
// Messages API, roleplaying the villager whose note the player clicked.
type AnthropicResponder struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *zap.Logger
}

// NewAnthropicResponder creates a responder.
//
// Precondition: apiKey and model must be non-empty; maxTokens > 0; logger
// must be non-nil.
func NewAnthropicResponder(apiKey, model string, maxTokens int64, logger *zap.Logger) *AnthropicResponder {
	return &AnthropicResponder{
		client:    anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:     anthropic.Model(model),
		maxTokens: maxTokens,
		logger:    logger,
	}
}

// Reply sends the conversation so far plus the new message and returns the
// model's reply text.
//
// Postcondition: Returns a non-empty reply, ErrNoReply when the model says
// nothing, or the wrapped API error.
func (a *AnthropicResponder) Reply(ctx context.Context, v village.Villager, message string, history []Turn) (string, error) {
	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, t := range history {
		switch t.Role {
		case RolePlayer:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		case RoleVillager:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt(v)},
		},
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("dialogue: anthropic request for villager %s: %w", v.ID, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	reply := strings.TrimSpace(b.String())
	if reply == "" {
		a.logger.Warn("dialogue: empty model reply", zap.String("villager", v.ID))
		return "", ErrNoReply
	}
	return reply, nil
}

// systemPrompt frames the model as the villager embodying one vault note.
func systemPrompt(v village.Villager) string {
	return fmt.Sprintf(
		"You are %s, a friendly villager in a small 2D village. "+
			"You embody the player's note %q. Speak in first person, stay in "+
			"character, and keep replies to a few sentences. Gently encourage "+
			"the player to revisit or expand the note when it fits the conversation.",
		v.DisplayName, v.NotePath,
	)
}
