package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	authdomain "github.com/collabhub/collabhub-backend/internal/auth/domain"
	"github.com/collabhub/collabhub-backend/internal/chat/domain"
	"github.com/collabhub/collabhub-backend/internal/logging"
)

const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 200
)

// Repository is the chat persistence the service needs.
type Repository interface {
	Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error)
	Get(ctx context.Context, chatID string) (*domain.Chat, error)
	ListForUser(ctx context.Context, userID string) ([]domain.ChatView, error)
	AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Chat, error)
	Messages(ctx context.Context, chatID string, limit int) ([]domain.Message, error)
	UpdateMessage(ctx context.Context, chatID, msgID string, mutate func(*domain.Message) error) (*domain.Message, error)
	ResetUnread(ctx context.Context, chatID, userID string) error
	Publish(ctx context.Context, evt domain.Event) error
	Subscribe(ctx context.Context, chatID string) (<-chan domain.Event, func() error, error)
}

// ChatService enforces membership and message rules on top of the repository.
type ChatService struct {
	repo Repository
	log  *logrus.Logger
}

// NewChatService creates a new chat service
func NewChatService(repo Repository, log *logrus.Logger) *ChatService {
	if log == nil {
		log = logging.Discard()
	}
	return &ChatService{repo: repo, log: log}
}

// CreateChat opens a chat with creator as a participant. Asking for a direct
// chat that already exists returns the existing one.
func (s *ChatService) CreateChat(ctx context.Context, creator authdomain.Identity, in domain.CreateChatInput) (*domain.Chat, bool, error) {
	if creator.IsAnonymous() {
		return nil, false, fmt.Errorf("%w: sign in to start a chat", domain.ErrInvalidChat)
	}
	if in.Type == "" {
		in.Type = domain.ChatGroup
	}
	if !in.Type.Valid() {
		return nil, false, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidChat, in.Type)
	}

	chat := &domain.Chat{
		Name:         strings.TrimSpace(in.Name),
		Type:         in.Type,
		ProjectID:    strings.TrimSpace(in.ProjectID),
		Participants: domain.Participants(creator.UserID, in.Participants),
		CreatedBy:    creator.UserID,
	}

	switch chat.Type {
	case domain.ChatDirect:
		if len(chat.Participants) != 2 {
			return nil, false, fmt.Errorf("%w: a direct chat needs exactly one other participant", domain.ErrInvalidChat)
		}
	case domain.ChatGroup:
		if chat.Name == "" {
			return nil, false, fmt.Errorf("%w: a group chat needs a name", domain.ErrInvalidChat)
		}
	case domain.ChatProject:
		if chat.ProjectID == "" {
			return nil, false, fmt.Errorf("%w: a project chat needs a project id", domain.ErrInvalidChat)
		}
		if chat.Name == "" {
			chat.Name = "Project discussion"
		}
	}
	if utf8.RuneCountInString(chat.Name) > domain.MaxChatName {
		return nil, false, fmt.Errorf("%w: name longer than %d characters", domain.ErrInvalidChat, domain.MaxChatName)
	}

	return s.repo.Create(ctx, chat)
}

// ListChats returns userID's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, userID string) ([]domain.ChatView, error) {
	return s.repo.ListForUser(ctx, userID)
}

// GetChat returns the chat if userID takes part in it.
func (s *ChatService) GetChat(ctx context.Context, chatID, userID string) (*domain.Chat, error) {
	chat, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, domain.ErrNotParticipant
	}
	return chat, nil
}

// SendMessage appends a message from sender and notifies the chat's stream.
// Content is trimmed; empty content and content over the limit are rejected.
func (s *ChatService) SendMessage(ctx context.Context, chatID string, sender authdomain.Identity, in domain.SendMessageInput) (*domain.Message, error) {
	in.Normalize()
	if in.Content == "" {
		return nil, fmt.Errorf("%w: content is required", domain.ErrInvalidMessage)
	}
	if in.ContentLength() > domain.MaxMessageLength {
		return nil, fmt.Errorf("%w: content longer than %d characters", domain.ErrInvalidMessage, domain.MaxMessageLength)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown type %q", domain.ErrInvalidMessage, in.Type)
	}

	if _, err := s.GetChat(ctx, chatID, sender.UserID); err != nil {
		return nil, err
	}

	name := sender.Name()
	if name == "" {
		name = "User"
	}
	msg := &domain.Message{
		ChatID:       chatID,
		SenderID:     sender.UserID,
		SenderName:   name,
		SenderAvatar: sender.AvatarURL,
		Content:      in.Content,
		Type:         in.Type,
	}
	if _, err := s.repo.AppendMessage(ctx, msg); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{Type: domain.EventMessage, ChatID: chatID, UserID: sender.UserID, Message: msg})
	return msg, nil
}

// History returns the latest messages of a chat, oldest first.
func (s *ChatService) History(ctx context.Context, chatID, userID string, limit int) ([]domain.Message, error) {
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.repo.Messages(ctx, chatID, limit)
}

// MarkAsRead clears userID's unread counter.
func (s *ChatService) MarkAsRead(ctx context.Context, chatID, userID string) error {
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return err
	}
	if err := s.repo.ResetUnread(ctx, chatID, userID); err != nil {
		return err
	}
	s.publish(ctx, domain.Event{Type: domain.EventRead, ChatID: chatID, UserID: userID})
	return nil
}

// ToggleReaction flips userID's emoji reaction on a message.
func (s *ChatService) ToggleReaction(ctx context.Context, chatID, msgID, userID, emoji string) (*domain.Message, bool, error) {
	emoji = strings.TrimSpace(emoji)
	if emoji == "" || len(emoji) > domain.MaxEmojiLength {
		return nil, false, fmt.Errorf("%w: emoji must be 1-%d bytes", domain.ErrInvalidMessage, domain.MaxEmojiLength)
	}
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return nil, false, err
	}

	var on bool
	msg, err := s.repo.UpdateMessage(ctx, chatID, msgID, func(m *domain.Message) error {
		on = m.ToggleReaction(emoji, userID)
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	s.publish(ctx, domain.Event{Type: domain.EventReaction, ChatID: chatID, UserID: userID, Message: msg})
	return msg, on, nil
}

// Stream subscribes userID to the chat's live events.
func (s *ChatService) Stream(ctx context.Context, chatID, userID string) (<-chan domain.Event, func() error, error) {
	if _, err := s.GetChat(ctx, chatID, userID); err != nil {
		return nil, nil, err
	}
	return s.repo.Subscribe(ctx, chatID)
}

// IsClientError reports whether err is the caller's fault.
func IsClientError(err error) bool {
	return errors.Is(err, domain.ErrInvalidChat) || errors.Is(err, domain.ErrInvalidMessage)
}

// publish is best effort; the write already succeeded.
func (s *ChatService) publish(ctx context.Context, evt domain.Event) {
	if err := s.repo.Publish(ctx, evt); err != nil {
		logging.FromContext(ctx, s.log).
			With("chat_id", evt.ChatID).
			LogWarnf("publish_chat_event", "%s: %v", evt.Type, err)
	}
}
