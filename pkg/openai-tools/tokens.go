package openai_tools

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
)

const fallbackEncoding = "cl100k_base"

const (
	tokensPerMessage = 3
	tokensPerName    = 1
	// every reply is primed with <|start|>assistant<|message|>
	tokensPerReply = 3
)

// CountToken estimates the prompt size of messages for the given model.
// Models unknown to tiktoken are counted with cl100k_base.
func CountToken(messages []openai.ChatCompletionMessage, model string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, fmt.Errorf("failed to get encoding for model %s: %w", model, err)
		}
	}

	var numTokens int
	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		if message.Name != "" {
			numTokens += len(tkm.Encode(message.Name, nil, nil))
			numTokens += tokensPerName
		}
	}
	return numTokens + tokensPerReply, nil
}

// Counter adapts CountToken to a fixed model.
type Counter struct {
	Model string
}

func (c Counter) CountToken(messages []openai.ChatCompletionMessage) (int, error) {
	return CountToken(messages, c.Model)
}
