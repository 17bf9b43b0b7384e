package social

import (
	"errors"
	"fmt"

	"github.com/unera/backend/internal/store"
)

var (
	// ErrInvalidCredentials indicates the email/password pair did not match an account.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken indicates a registration reused an existing email address.
	ErrEmailTaken = errors.New("email already registered")
	// ErrForbidden indicates the actor may not perform the action on the target.
	ErrForbidden = errors.New("action not permitted")
	// ErrInvalidRating indicates a product rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrEmptyMessage indicates a direct message without text.
	ErrEmptyMessage = errors.New("message must not be empty")
	// ErrMessageSelf indicates a user tried to message themselves.
	ErrMessageSelf = errors.New("users cannot message themselves")
	// ErrUploadRequired indicates a media operation without file content.
	ErrUploadRequired = errors.New("file content is required")

	// ErrUserNotFound indicates an unknown user id. It matches store.ErrNotFound.
	ErrUserNotFound = fmt.Errorf("user: %w", store.ErrNotFound)
	// ErrPostNotFound indicates an unknown post, or one the viewer may not see.
	ErrPostNotFound = fmt.Errorf("post: %w", store.ErrNotFound)
	// ErrReelNotFound indicates an unknown reel id.
	ErrReelNotFound = fmt.Errorf("reel: %w", store.ErrNotFound)
	// ErrGroupNotFound indicates an unknown group or group post id.
	ErrGroupNotFound = fmt.Errorf("group: %w", store.ErrNotFound)
	// ErrEventNotFound indicates an unknown event id.
	ErrEventNotFound = fmt.Errorf("event: %w", store.ErrNotFound)
	// ErrProductNotFound indicates an unknown product id.
	ErrProductNotFound = fmt.Errorf("product: %w", store.ErrNotFound)
)
