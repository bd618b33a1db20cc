package http

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	authdomain "github.com/collabhub/collabhub-backend/internal/auth/domain"
	"github.com/collabhub/collabhub-backend/internal/chat/domain"
)

// ChatService is implemented by service.ChatService.
type ChatService interface {
	CreateChat(ctx context.Context, creator authdomain.Identity, in domain.CreateChatInput) (*domain.Chat, bool, error)
	ListChats(ctx context.Context, userID string) ([]domain.ChatView, error)
	GetChat(ctx context.Context, chatID, userID string) (*domain.Chat, error)
	SendMessage(ctx context.Context, chatID string, sender authdomain.Identity, in domain.SendMessageInput) (*domain.Message, error)
	History(ctx context.Context, chatID, userID string, limit int) ([]domain.Message, error)
	MarkAsRead(ctx context.Context, chatID, userID string) error
	ToggleReaction(ctx context.Context, chatID, msgID, userID, emoji string) (*domain.Message, bool, error)
	Stream(ctx context.Context, chatID, userID string) (<-chan domain.Event, func() error, error)
}

// Presence is implemented by presence.Tracker.
type Presence interface {
	Online(ctx context.Context) ([]string, error)
}

// Handler bundles the dependencies for chat HTTP endpoints.
type Handler struct {
	svc       ChatService
	presence  Presence
	log       *logrus.Logger
	keepAlive time.Duration
}

func New(svc ChatService, presence Presence, log *logrus.Logger) *Handler {
	return &Handler{
		svc:       svc,
		presence:  presence,
		log:       log,
		keepAlive: 15 * time.Second,
	}
}
