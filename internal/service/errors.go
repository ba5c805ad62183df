package service

import "errors"

// Sentinel errors for the request/approval domain. Controllers map these
// to HTTP statuses with errors.Is; storage errors are returned wrapped
// and fall through to 500.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("record not found")
	ErrForbidden         = errors.New("operation not permitted for role")
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrAlreadyCancelled  = errors.New("kegiatan already cancelled")
)
