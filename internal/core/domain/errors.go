package domain

import "errors"

var (
	ErrClipNotFound      = errors.New("clip not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrLedgerUnavailable = errors.New("view ledger unavailable")
	ErrInvalidClip       = errors.New("invalid clip record")
)
