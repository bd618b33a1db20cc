package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/collabhub/collabhub-backend/internal/chat/domain"
)

const (
	chatKeyPrefix      = ":chat:"        // chat data: {ns}:chat:{chat_id}
	userChatsPrefix    = ":chat:user:"   // sorted set of chat ids per user: {ns}:chat:user:{user_id}:chats
	directChatPrefix   = ":chat:direct:" // pair index: {ns}:chat:direct:{a}:{b} -> chat_id
	chatEventsPrefix   = ":chat:events:" // pub/sub channel per chat: {ns}:chat:events:{chat_id}
	messagesSuffix     = ":messages"     // list of message ids in send order
	messageDataSuffix  = ":message_data" // hash message_id -> message json
	unreadSuffix       = ":unread"       // hash user_id -> unread count
	maxTxRetries       = 8
	streamBufferLength = 32
)

// ChatRepository handles Redis operations for chats and messages.
type ChatRepository struct {
	client *redis.Client
	ns     string
	now    func() time.Time
}

// NewChatRepository creates a new ChatRepository
func NewChatRepository(client *redis.Client, namespace string) *ChatRepository {
	if namespace == "" {
		namespace = "collabhub"
	}
	return &ChatRepository{
		client: client,
		ns:     namespace,
		now:    time.Now,
	}
}

// Create stores a new chat and indexes it for every participant. For direct
// chats the existing chat between the same two users is returned instead,
// with created set to false.
func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) (*domain.Chat, bool, error) {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	now := r.now().UTC()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	chat.UpdatedAt = chat.CreatedAt

	if chat.Type == domain.ChatDirect && len(chat.Participants) == 2 {
		key := r.directKey(chat.Participants[0], chat.Participants[1])
		ok, err := r.client.SetNX(ctx, key, chat.ID, 0).Result()
		if err != nil {
			return nil, false, fmt.Errorf("failed to claim direct chat: %w", err)
		}
		if !ok {
			existingID, err := r.client.Get(ctx, key).Result()
			if err != nil {
				return nil, false, fmt.Errorf("failed to get direct chat: %w", err)
			}
			existing, err := r.Get(ctx, existingID)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
	}

	chatData, err := json.Marshal(chat)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal chat data: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.chatKey(chat.ID), chatData, 0)
	for _, uid := range chat.Participants {
		pipe.ZAdd(ctx, r.userChatsKey(uid), redis.Z{Score: score(chat.UpdatedAt), Member: chat.ID})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to create chat: %w", err)
	}

	return chat, true, nil
}

// Get retrieves a chat by its ID
func (r *ChatRepository) Get(ctx context.Context, chatID string) (*domain.Chat, error) {
	data, err := r.client.Get(ctx, r.chatKey(chatID)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrChatNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	var chat domain.Chat
	if err := json.Unmarshal(data, &chat); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat data: %w", err)
	}
	return &chat, nil
}

// ListForUser returns the user's chats, most recently active first, with
// their unread counters.
func (r *ChatRepository) ListForUser(ctx context.Context, userID string) ([]domain.ChatView, error) {
	ids, err := r.client.ZRevRange(ctx, r.userChatsKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list chats for user: %w", err)
	}
	if len(ids) == 0 {
		return []domain.ChatView{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.chatKey(id)
	}
	raw, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load chats: %w", err)
	}

	pipe := r.client.Pipeline()
	unread := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		unread[i] = pipe.HGet(ctx, r.unreadKey(id), userID)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to load unread counters: %w", err)
	}

	out := make([]domain.ChatView, 0, len(ids))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			// chat key vanished; the index entry is stale
			continue
		}
		var view domain.ChatView
		if err := json.Unmarshal([]byte(s), &view.Chat); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat data: %w", err)
		}
		view.UnreadCount, _ = unread[i].Int()
		out = append(out, view)
	}
	return out, nil
}

// AppendMessage stores msg, makes it the chat's last message and bumps the
// unread counter of every other participant.
func (r *ChatRepository) AppendMessage(ctx context.Context, msg *domain.Message) (*domain.Chat, error) {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = r.now().UTC()
	}

	msgData, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message data: %w", err)
	}

	chatKey := r.chatKey(msg.ChatID)
	var updated domain.Chat

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, chatKey).Bytes()
		if err == redis.Nil {
			return domain.ErrChatNotFound
		}
		if err != nil {
			return err
		}
		if err := json.Unmarshal(data, &updated); err != nil {
			return fmt.Errorf("failed to unmarshal chat data: %w", err)
		}

		updated.LastMessage = msg
		updated.UpdatedAt = msg.CreatedAt
		chatData, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to marshal chat data: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, r.messageDataKey(msg.ChatID), msg.ID, msgData)
			pipe.RPush(ctx, r.messagesKey(msg.ChatID), msg.ID)
			pipe.Set(ctx, chatKey, chatData, 0)
			for _, uid := range updated.Participants {
				pipe.ZAdd(ctx, r.userChatsKey(uid), redis.Z{Score: score(updated.UpdatedAt), Member: updated.ID})
				if uid != msg.SenderID {
					pipe.HIncrBy(ctx, r.unreadKey(msg.ChatID), uid, 1)
				}
			}
			return nil
		})
		return err
	}

	if err := r.watch(ctx, txf, chatKey); err != nil {
		return nil, fmt.Errorf("failed to append message: %w", err)
	}
	return &updated, nil
}

// Messages returns up to limit of the chat's most recent messages, oldest
// first. A non-positive limit returns the whole history.
func (r *ChatRepository) Messages(ctx context.Context, chatID string, limit int) ([]domain.Message, error) {
	start := int64(0)
	if limit > 0 {
		start = -int64(limit)
	}
	ids, err := r.client.LRange(ctx, r.messagesKey(chatID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Message{}, nil
	}

	raw, err := r.client.HMGet(ctx, r.messageDataKey(chatID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	out := make([]domain.Message, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var m domain.Message
		if err := json.Unmarshal([]byte(s), &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message data: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// UpdateMessage applies mutate to a stored message under optimistic locking
// and returns the stored result.
func (r *ChatRepository) UpdateMessage(ctx context.Context, chatID, msgID string, mutate func(*domain.Message) error) (*domain.Message, error) {
	key := r.messageDataKey(chatID)
	var msg domain.Message

	txf := func(tx *redis.Tx) error {
		data, err := tx.HGet(ctx, key, msgID).Bytes()
		if err == redis.Nil {
			return domain.ErrMessageNotFound
		}
		if err != nil {
			return err
		}
		msg = domain.Message{}
		if err := json.Unmarshal(data, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal message data: %w", err)
		}
		if err := mutate(&msg); err != nil {
			return err
		}

		next, err := json.Marshal(msg)
		if err != nil {
			return fmt.Errorf("failed to marshal message data: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, msgID, next)
			return nil
		})
		return err
	}

	if err := r.watch(ctx, txf, key); err != nil {
		return nil, fmt.Errorf("failed to update message: %w", err)
	}
	return &msg, nil
}

// ResetUnread clears userID's unread counter for a chat.
func (r *ChatRepository) ResetUnread(ctx context.Context, chatID, userID string) error {
	if err := r.client.HDel(ctx, r.unreadKey(chatID), userID).Err(); err != nil {
		return fmt.Errorf("failed to reset unread counter: %w", err)
	}
	return nil
}

// Unread returns userID's unread counter for a chat.
func (r *ChatRepository) Unread(ctx context.Context, chatID, userID string) (int, error) {
	n, err := r.client.HGet(ctx, r.unreadKey(chatID), userID).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get unread counter: %w", err)
	}
	return n, nil
}

// Publish sends evt to every subscriber of the chat.
func (r *ChatRepository) Publish(ctx context.Context, evt domain.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := r.client.Publish(ctx, r.eventsChannel(evt.ChatID), data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Subscribe streams the chat's events until ctx is done or the returned
// close function is called. The subscription is live when this returns.
func (r *ChatRepository) Subscribe(ctx context.Context, chatID string) (<-chan domain.Event, func() error, error) {
	ps := r.client.Subscribe(ctx, r.eventsChannel(chatID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	out := make(chan domain.Event, streamBufferLength)
	go func() {
		defer close(out)
		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				var evt domain.Event
				if err := json.Unmarshal([]byte(m.Payload), &evt); err != nil {
					continue
				}
				select {
				case out <- evt:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, ps.Close, nil
}

func (r *ChatRepository) watch(ctx context.Context, txf func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, txf, keys...)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return fmt.Errorf("too much contention on %v", keys)
}

func score(t time.Time) float64 {
	return float64(t.UnixMilli())
}

// Helper methods for key generation
func (r *ChatRepository) chatKey(chatID string) string {
	return fmt.Sprintf("%s%s%s", r.ns, chatKeyPrefix, chatID)
}

func (r *ChatRepository) userChatsKey(userID string) string {
	return fmt.Sprintf("%s%s%s:chats", r.ns, userChatsPrefix, userID)
}

func (r *ChatRepository) directKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return fmt.Sprintf("%s%s%s:%s", r.ns, directChatPrefix, a, b)
}

func (r *ChatRepository) messagesKey(chatID string) string {
	return r.chatKey(chatID) + messagesSuffix
}

func (r *ChatRepository) messageDataKey(chatID string) string {
	return r.chatKey(chatID) + messageDataSuffix
}

func (r *ChatRepository) unreadKey(chatID string) string {
	return r.chatKey(chatID) + unreadSuffix
}

func (r *ChatRepository) eventsChannel(chatID string) string {
	return fmt.Sprintf("%s%s%s", r.ns, chatEventsPrefix, chatID)
}
