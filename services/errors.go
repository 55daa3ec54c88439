package services

import "errors"

var (
	ErrStoryNotFound   = errors.New("story not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidReaction = errors.New("invalid reaction type")
	// ErrAlreadyReacted and its siblings are raised by the HTTP layer from
	// the browser markers; the store never sees the duplicate.
	ErrAlreadyReacted = errors.New("you already reacted to this story")
	ErrAlreadyLiked   = errors.New("you already liked this story")
	ErrAlreadyHearted = errors.New("you already hearted this comment")
)
