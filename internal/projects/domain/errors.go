package domain

import "errors"

var (
	ErrNotFound           = errors.New("project not found")
	ErrInvalidInput       = errors.New("invalid project input")
	ErrStorageUnavailable = errors.New("local storage unavailable")
	ErrRemoteSyncFailed   = errors.New("remote sync failed")
	ErrRemoteFetchFailed  = errors.New("remote fetch failed")
	ErrInvalidCreator     = errors.New("remote sync skipped: missing or anonymous creator")
	ErrRemoteDisabled     = errors.New("remote store disabled")
	ErrNotOwner           = errors.New("project belongs to another creator")
)
