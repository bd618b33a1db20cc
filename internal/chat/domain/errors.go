package domain

import "errors"

var (
	ErrChatNotFound    = errors.New("chat not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotParticipant  = errors.New("not a participant of this chat")
	ErrInvalidChat     = errors.New("invalid chat")
	ErrInvalidMessage  = errors.New("invalid message")
)
