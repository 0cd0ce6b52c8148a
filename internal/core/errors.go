package core

import "errors"

var (
	ErrDuplicateRoom       = errors.New("room already exists")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderRejected    = errors.New("provider rejected request")
	ErrSigning             = errors.New("token signing failed")
	ErrValidation          = errors.New("invalid request")
)
