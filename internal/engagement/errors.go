package engagement

import "errors"

var (
	// ErrInvalidReaction indicates an unsupported reaction type.
	ErrInvalidReaction = errors.New("invalid reaction type")
	// ErrEmptyComment indicates a comment without text or attachment.
	ErrEmptyComment = errors.New("comment must not be empty")
	// ErrCommentNotFound indicates the referenced comment does not exist on the target.
	ErrCommentNotFound = errors.New("comment not found")
)
