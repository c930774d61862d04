package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrFileNotFound       = fmt.Errorf("file %w", ErrNotFound)
	ErrStorage            = errors.New("storage failure")
	ErrEmailDelivery      = errors.New("email delivery failed")
	ErrRemoteUnavailable  = errors.New("remote storage unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
