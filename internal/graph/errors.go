package graph

import "errors"

var (
	// ErrSelfFollow indicates a user attempted to follow or unfollow themselves.
	ErrSelfFollow = errors.New("users cannot follow themselves")
	// ErrUserNotFound indicates one side of a relationship is missing from the roster.
	ErrUserNotFound = errors.New("user not found")
)
