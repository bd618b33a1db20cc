package domain

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

type ChatType string

const (
	ChatDirect  ChatType = "direct"
	ChatGroup   ChatType = "group"
	ChatProject ChatType = "project"
)

func (t ChatType) Valid() bool {
	switch t {
	case ChatDirect, ChatGroup, ChatProject:
		return true
	}
	return false
}

type MessageType string

const (
	MessageText  MessageType = "text"
	MessageImage MessageType = "image"
	MessageFile  MessageType = "file"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageText, MessageImage, MessageFile:
		return true
	}
	return false
}

const (
	MaxMessageLength = 4000
	MaxEmojiLength   = 32
	MaxChatName      = 100
)

// Chat is a conversation between participants. Project chats are tied to a
// project id; direct chats always have exactly two participants.
type Chat struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         ChatType  `json:"type"`
	ProjectID    string    `json:"projectId,omitempty"`
	Participants []string  `json:"participants"`
	CreatedBy    string    `json:"createdBy"`
	LastMessage  *Message  `json:"lastMessage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasParticipant reports whether userID belongs to the chat.
func (c Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// ChatView is a chat as listed for one participant.
type ChatView struct {
	Chat
	UnreadCount int `json:"unreadCount"`
}

// Message is a single chat entry. Reactions map an emoji to the ids of the
// users who reacted with it, in reaction order.
type Message struct {
	ID           string              `json:"id"`
	ChatID       string              `json:"chatId"`
	SenderID     string              `json:"senderId"`
	SenderName   string              `json:"senderName,omitempty"`
	SenderAvatar string              `json:"senderAvatar,omitempty"`
	Content      string              `json:"content"`
	Type         MessageType         `json:"type"`
	Reactions    map[string][]string `json:"reactions,omitempty"`
	CreatedAt    time.Time           `json:"timestamp"`
}

// ToggleReaction adds userID to emoji's reactors or removes it when already
// present. Empty emoji entries are dropped. It reports whether the reaction
// is now set.
func (m *Message) ToggleReaction(emoji, userID string) bool {
	if m.Reactions == nil {
		m.Reactions = make(map[string][]string)
	}

	users := m.Reactions[emoji]
	for i, u := range users {
		if u == userID {
			users = append(users[:i:i], users[i+1:]...)
			if len(users) == 0 {
				delete(m.Reactions, emoji)
			} else {
				m.Reactions[emoji] = users
			}
			return false
		}
	}

	m.Reactions[emoji] = append(users, userID)
	return true
}

// CreateChatInput is what a caller asks for when opening a chat.
type CreateChatInput struct {
	Name         string   `json:"name"`
	Type         ChatType `json:"type"`
	ProjectID    string   `json:"projectId"`
	Participants []string `json:"participants"`
}

// SendMessageInput is the body of a new message.
type SendMessageInput struct {
	Content string      `json:"content"`
	Type    MessageType `json:"type"`
}

// Normalize trims the content and defaults the type to text.
func (in *SendMessageInput) Normalize() {
	in.Content = strings.TrimSpace(in.Content)
	if in.Type == "" {
		in.Type = MessageText
	}
}

// ContentLength counts characters, not bytes.
func (in SendMessageInput) ContentLength() int {
	return utf8.RuneCountInString(in.Content)
}

// Participants returns the sorted, de-duplicated union of ids and creator.
func Participants(creator string, ids []string) []string {
	seen := map[string]struct{}{creator: {}}
	out := []string{creator}
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// EventType distinguishes stream events.
type EventType string

const (
	EventMessage  EventType = "message"
	EventReaction EventType = "reaction"
	EventRead     EventType = "read"
)

// Event is published to everyone streaming a chat.
type Event struct {
	Type    EventType `json:"type"`
	ChatID  string    `json:"chatId"`
	UserID  string    `json:"userId,omitempty"`
	Message *Message  `json:"message,omitempty"`
}
