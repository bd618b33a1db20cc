package domain

import "strings"

// AnonymousUserID mirrors the project creator placeholder used before sign-in.
const AnonymousUserID = "anonymous"

// Identity is the caller of a request as reported by the identity provider.
// Profile fields are best effort and depend on what the provider returns.
type Identity struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Provider    string `json:"provider"`
}

// Anonymous returns the identity used when no credential was presented.
func Anonymous() Identity {
	return Identity{UserID: AnonymousUserID, Provider: "none"}
}

// IsAnonymous reports whether the identity cannot be attributed to a user.
func (i Identity) IsAnonymous() bool {
	id := strings.TrimSpace(i.UserID)
	return id == "" || id == AnonymousUserID
}

// Name is what other users see: display name, else the email's local part.
func (i Identity) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	if at := strings.IndexByte(i.Email, '@'); at > 0 {
		return i.Email[:at]
	}
	return ""
}

// EventType distinguishes session notifications.
type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventActive    EventType = "active"
	EventSignedOut EventType = "signed_out"
)

// Event is delivered to session subscribers.
type Event struct {
	Type     EventType
	Identity Identity
}
