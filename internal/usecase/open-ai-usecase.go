package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/iamvkosarev/chat-relay-lambda/config"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
	"github.com/iamvkosarev/chat-relay-lambda/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// greedyTemperature stands in for temperature 0, which the API client omits from the payload.
const greedyTemperature = 1e-6

var ErrEmptyChoices = errors.New("chat completion returned no choices")

// OpenAIGenerator sends the conversation to an OpenAI-compatible chat completions API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAIGenerator(cfg config.Generation, httpClient *http.Client) *OpenAIGenerator {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.ModelID,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	temperature := float32(req.Temperature)
	if !req.DoSample {
		temperature = greedyTemperature
	}

	apiReq := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    toOpenAIMessages(req.Messages),
		MaxTokens:   req.MaxNewTokens,
		Temperature: temperature,
		TopP:        float32(req.TopP),
		N:           1,
	}
	logger.FromContext(ctx, logger.Discard()).Debug(
		"Calling chat completions", "model_id", g.model, "messages", len(apiReq.Messages),
	)

	resp, err := g.client.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyChoices
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessage {
	res := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, message := range messages {
		res = append(
			res, openai.ChatCompletionMessage{
				Role:    string(message.Role),
				Content: message.Content,
			},
		)
	}
	return res
}
