package model

// Message is one turn of a conversation. Conversations are ordered chronologically.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type ChatRequest struct {
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversationHistory"`
}

// GenerationRequest is the payload sent to the generation endpoint.
type GenerationRequest struct {
	Messages     []Message `json:"messages"`
	MaxNewTokens int       `json:"max_new_tokens"`
	DoSample     bool      `json:"do_sample"`
	Temperature  float64   `json:"temperature"`
	TopP         float64   `json:"top_p"`
}

type ChatReply struct {
	Response            string
	ConversationHistory []Message
}
