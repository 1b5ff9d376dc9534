package domain

import (
	"fmt"
	"strings"
	"time"
)

// MessageType distinguishes bug-style reports from improvement suggestions.
type MessageType string

const (
	MessageTypeIssue MessageType = "issue"
	MessageTypeIdea  MessageType = "idea"
)

// ParseMessageType normalizes and validates a message type string.
func ParseMessageType(s string) (MessageType, error) {
	t := MessageType(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case MessageTypeIssue, MessageTypeIdea:
		return t, nil
	}
	return "", fmt.Errorf("invalid message type %q", s)
}

// MessageStatus tracks triage progress.
type MessageStatus string

const (
	MessageStatusPending  MessageStatus = "pending"
	MessageStatusResolved MessageStatus = "resolved"
)

// ParseMessageStatus normalizes and validates a message status string.
func ParseMessageStatus(s string) (MessageStatus, error) {
	st := MessageStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case MessageStatusPending, MessageStatusResolved:
		return st, nil
	}
	return "", fmt.Errorf("invalid message status %q", s)
}

// Attachment is a stored file reference. The URL points into the blob store;
// the service never keeps file bytes itself.
type Attachment struct {
	URL      string `json:"url"`
	MimeType string `json:"mimeType"`
}

// Message is a suggestion-box submission. SenderID is recorded so employees
// can see their own submissions, but triage listings never expose it: the box
// is anonymous from HR's point of view.
type Message struct {
	ID          string
	Title       string
	Description string
	SenderID    string
	Type        MessageType
	Status      MessageStatus
	Comment     string // resolution note, set when status flips to resolved
	Files       []Attachment
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
