package models

import (
	"errors"
	"fmt"
)

// Roles used by the chat-formatted training samples.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrTooFewMessages is returned by [Sample.Check] when a sample cannot carry
// both a transcript and an assistant output.
var ErrTooFewMessages = errors.New("sample needs at least two messages")

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Sample is one JSON-Lines training record. By convention Messages[0] is the
// system prompt, Messages[1] the meeting transcript and the last message the
// JSON-encoded assistant output.
type Sample struct {
	Messages []Message `json:"messages"`
}

// Check reports whether the sample has enough messages to be validated.
func (s *Sample) Check() error {
	if len(s.Messages) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewMessages, len(s.Messages))
	}
	return nil
}

// Transcript returns the meeting transcript (second message).
func (s *Sample) Transcript() string {
	if len(s.Messages) < 2 {
		return ""
	}
	return s.Messages[1].Content
}

// AssistantOutput returns the raw assistant output (last message).
func (s *Sample) AssistantOutput() string {
	if len(s.Messages) == 0 {
		return ""
	}
	return s.Messages[len(s.Messages)-1].Content
}

// AssistantOutput is the structured payload the model is trained to emit.
type AssistantOutput struct {
	Agendas []string `json:"agendas"`
	Tasks   []Task   `json:"tasks"`
}

// Task is one extracted action item. A nil Who means "unassigned" and a nil
// When means "no deadline"; both are valid states.
type Task struct {
	Who  *string `json:"who"`
	What string  `json:"what"`
	When *string `json:"when"`
}
