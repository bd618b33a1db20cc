package domain

import "github.com/google/uuid"

// NewID generates the cross-store identifier assigned when a project is first
// saved. The same value is sent as the remote row id on insert.
func NewID() string {
	return uuid.NewString()
}

// IsUUID reports whether id looks like a remote-assignable UUID.
func IsUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
