package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/iamvkosarev/chat-relay-lambda/config"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
	"github.com/iamvkosarev/chat-relay-lambda/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

var ErrEmptyMessage = errors.New("message is required")

type Generator interface {
	Generate(ctx context.Context, req model.GenerationRequest) (string, error)
}

type TokenCounter interface {
	CountToken(messages []openai.ChatCompletionMessage) (int, error)
}

type RelayUsecaseDeps struct {
	Generator Generator
	// TokenCounter is only consulted when a context budget is configured.
	TokenCounter TokenCounter
	Logger       *slog.Logger
}

type RelayUsecase struct {
	RelayUsecaseDeps
	cfg config.Generation
}

func NewRelayUsecase(deps RelayUsecaseDeps, cfg config.Generation) *RelayUsecase {
	if deps.Logger == nil {
		deps.Logger = logger.Discard()
	}
	return &RelayUsecase{
		RelayUsecaseDeps: deps,
		cfg:              cfg,
	}
}

// Relay appends the user message to a copy of the supplied history, asks the generator
// for a reply and returns the history extended with both turns.
func (r *RelayUsecase) Relay(ctx context.Context, req model.ChatRequest) (model.ChatReply, error) {
	log := logger.FromContext(ctx, r.Logger)

	if strings.TrimSpace(req.Message) == "" {
		return model.ChatReply{}, ErrEmptyMessage
	}
	log.Info("Processing message", "message", req.Message, "history_len", len(req.ConversationHistory))
	log.Info("Using model", "model_id", r.cfg.ModelID)

	history := make([]model.Message, 0, len(req.ConversationHistory)+2)
	history = append(history, req.ConversationHistory...)
	history = append(
		history, model.Message{
			Role:    model.MessageRoleUser,
			Content: req.Message,
		},
	)

	generated, err := r.Generator.Generate(
		ctx, model.GenerationRequest{
			Messages:     r.fitContext(log, history),
			MaxNewTokens: r.cfg.MaxNewTokens,
			DoSample:     r.cfg.DoSample,
			Temperature:  r.cfg.Temperature,
			TopP:         r.cfg.TopP,
		},
	)
	if err != nil {
		return model.ChatReply{}, fmt.Errorf("failed to generate reply: %w", err)
	}

	history = append(
		history, model.Message{
			Role:    model.MessageRoleAssistant,
			Content: generated,
		},
	)
	return model.ChatReply{
		Response:            generated,
		ConversationHistory: history,
	}, nil
}

// fitContext drops the oldest messages of the upstream payload until it fits the
// configured token budget. The newest message is always kept.
func (r *RelayUsecase) fitContext(log *slog.Logger, history []model.Message) []model.Message {
	if r.cfg.MaxContextTokens <= 0 || r.TokenCounter == nil {
		return history
	}

	messages := history
	trimHistory := func() {
		messages = messages[1:]
		log.Warn("History trimmed due to token limit", "remaining", len(messages))
	}
	for len(messages) > 1 {
		tokenCount, err := r.TokenCounter.CountToken(toOpenAIMessages(messages))
		if err != nil {
			log.Warn("Failed to count tokens", "error", err)
			trimHistory()
			continue
		}
		if tokenCount < r.cfg.MaxContextTokens {
			break
		}
		trimHistory()
	}
	return messages
}
