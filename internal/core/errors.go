package core

import "errors"

var (
	// ErrRoomNotFound is returned by Join when no live room has the code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrNoFreeCodes is returned by Create when the code space is exhausted.
	ErrNoFreeCodes = errors.New("no free room codes")
)
