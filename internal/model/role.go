package model

type MessageRole string

const (
	MessageRoleUser      = MessageRole("user")
	MessageRoleAssistant = MessageRole("assistant")
)
