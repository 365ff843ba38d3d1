package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/iamvkosarev/chat-relay-lambda/config"
	"github.com/iamvkosarev/chat-relay-lambda/internal/model"
	"github.com/iamvkosarev/chat-relay-lambda/pkg/logger"
)

const generateWithHistoryPath = "generate_with_history"

// maxErrorBodyLen bounds how much of a failed upstream body ends up in the error.
const maxErrorBodyLen = 512

var (
	ErrUnexpectedStatus     = errors.New("generation endpoint returned unexpected status")
	ErrMissingGeneratedText = errors.New(`generation response has no "generated_text"`)
)

type generationResponse struct {
	GeneratedText *string `json:"generated_text"`
}

// HistoryGenerator calls the generate_with_history endpoint of the generation service.
type HistoryGenerator struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHistoryGenerator builds the generator once per process. A nil httpClient gets a client
// with cfg.RequestTimeout, where zero means no timeout.
func NewHistoryGenerator(cfg config.Generation, httpClient *http.Client, log *slog.Logger) (*HistoryGenerator, error) {
	endpoint, err := url.JoinPath(cfg.Endpoint, generateWithHistoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to build generation url from %q: %w", cfg.Endpoint, err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if log == nil {
		log = logger.Discard()
	}
	return &HistoryGenerator{
		endpoint:   endpoint,
		httpClient: httpClient,
		logger:     log,
	}, nil
}

func (g *HistoryGenerator) Generate(ctx context.Context, req model.GenerationRequest) (string, error) {
	log := logger.FromContext(ctx, g.logger)

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generation request: %w", err)
	}
	log.Debug("Calling generate_with_history", "endpoint", g.endpoint, "payload", string(payload))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to call generation endpoint: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read generation response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf(
			"%w: %d %s", ErrUnexpectedStatus, resp.StatusCode, truncateBody(respBody),
		)
	}

	var genResp generationResponse
	if err = json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generation response: %w", err)
	}
	log.Debug("Generation response", "body", string(respBody))

	if genResp.GeneratedText == nil {
		return "", ErrMissingGeneratedText
	}
	return *genResp.GeneratedText, nil
}

func truncateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) > maxErrorBodyLen {
		return text[:maxErrorBodyLen] + "..."
	}
	return text
}
