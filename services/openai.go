package services

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"perfume-bot/models"
)

const completionTimeout = 45 * time.Second

// Completer produces a single completion for a system prompt, prior turns
// and the current message. A failed call is terminal for the turn; callers
// degrade to a canned handoff reply instead of retrying.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest is an ordered, role-tagged conversation plus budget.
type CompletionRequest struct {
	System      string
	History     []models.Turn
	Message     string
	MaxTokens   int
	Temperature float32
}

// Assistant calls the OpenAI chat-completion API.
type Assistant struct {
	client *openai.Client
	model  string
}

func NewAssistant(apiKey, model string) *Assistant {
	return &Assistant{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (a *Assistant) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, len(req.History)*2+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})
	for _, turn := range req.History {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.UserMessage},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.BotResponse},
		)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Message,
	})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// recommendationSystemPrompt grounds open-ended consultations strictly in
// the catalog listing; the model may only repeat name/volume/cost/country
// fields, never invent them.
func recommendationSystemPrompt(listing string) string {
	return "Ты — ассистент магазина парфюмерии. Отвечай кратко на русском или казахском.\n" +
		"У тебя есть база товаров (ниже), содержащая поля `name`, `volume`, `cost`, `country`.\n" +
		"Ты можешь предоставлять пользователю ТОЛЬКО информацию из этих полей.\n\n" +
		"Если пользователь спрашивает про любой товар, которого нет в этом списке, скажи, " +
		"что его нет в наличии, и предложи обратиться к менеджеру.\n" +
		"Если у товара в базе нет указанных полей (например, нет `volume`), скажи, " +
		"что такой информации в базе нет и предложи обратиться к менеджеру.\n\n" +
		"НЕЛЬЗЯ придумывать или дополнять поля `name`, `volume`, `cost`, `country` " +
		"значениями, которых нет в базе. Никаких гипотез!\n\n" +
		"Вот список товаров:\n" + listing + "\n" +
		"Если запрос не относится к товарам или базе, предложи обратиться к менеджеру. " +
		"Если у пользователя остались вопросы, предлагай написать *'менеджер'* для связи с сотрудником.\n"
}

// fallbackSystemPrompt is stricter: for unknown items the model must not
// claim anything about availability, only point at the manager.
func fallbackSystemPrompt(listing string) string {
	return "Ты — ассистент магазина парфюмерии. Отвечай кратко на русском или казахском.\n" +
		"У тебя есть база товаров (ниже), содержащая поля `name`, `volume`, `cost`, `country`.\n" +
		"Ты можешь предоставлять пользователю ТОЛЬКО информацию из этих полей.\n\n" +
		"Если пользователь спрашивает про любой товар, которого нет в этом списке, НЕ говори, что его нет, " +
		"а сразу советуй переключиться на менеджера.\n" +
		"Если у товара в базе нет указанных полей (например, нет `volume`), " +
		"скажи, что такой информации нет и тоже предложи обратиться к менеджеру.\n\n" +
		"НЕЛЬЗЯ придумывать или дополнять поля `name`, `volume`, `cost`, `country` " +
		"значениями, которых нет в базе. Никаких гипотез!\n\n" +
		"Вот список товаров:\n" + listing + "\n" +
		"Если запрос не относится к товарам или базе, предложи обратиться к менеджеру. " +
		"Если у пользователя остались вопросы, предлагай написать *'менеджер'*.\n"
}
