package domain

import "errors"

var (
	ErrInvalidID      = errors.New("invalid id")
	ErrInvalidTitle   = errors.New("invalid title")
	ErrInvalidAddress = errors.New("invalid address")
	ErrInvalidStatus  = errors.New("invalid status")
	ErrInvalidRooms   = errors.New("invalid rooms")
	ErrInvalidSize    = errors.New("invalid size")
	ErrInvalidPrice   = errors.New("invalid price")
)
