package models

import "errors"

// Sentinel errors classified at the handler boundary into the uniform
// {success:false, message} response envelope.
var (
	// ErrAuthRequired is returned when no authenticated user is attached
	// to the request.
	ErrAuthRequired = errors.New("authentication required")

	// ErrTargetNotFound is returned when the post or comment a like is
	// aimed at no longer exists.
	ErrTargetNotFound = errors.New("target not found")

	// ErrSelfAction is returned when a user tries to like their own post.
	ErrSelfAction = errors.New("cannot like your own post")
)
