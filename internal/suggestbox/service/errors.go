package service

import "errors"

// Service-level sentinel errors. Handlers map these onto HTTP status codes;
// anything else surfaces as a generic internal error.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDeactivated = errors.New("account is deactivated")
	ErrForbidden          = errors.New("not permitted")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrPasswordMismatch   = errors.New("old password is incorrect")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrInvalidCode deliberately covers wrong, expired, and already-used
	// codes with one message so callers can't probe which case they hit.
	ErrInvalidCode = errors.New("invalid or expired OTP")

	// ErrInvalidResetToken covers missing, wrong, and expired reset tickets.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")

	ErrMessageNotFound   = errors.New("message not found")
	ErrInvalidFileType   = errors.New("invalid file type for the provided message type")
	ErrTooManyFiles      = errors.New("too many files")
	ErrAttachmentMissing = errors.New("message has no attachments")
)
