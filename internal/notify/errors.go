package notify

import "errors"

var (
	// ErrNotFound indicates the notification does not exist.
	ErrNotFound = errors.New("notification not found")
	// ErrNotRecipient indicates the caller is not the notification's recipient.
	ErrNotRecipient = errors.New("notification belongs to another user")
)
