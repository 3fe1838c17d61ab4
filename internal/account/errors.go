package account

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrProfessorNotFound  = errors.New("professor not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrNoEmailOnFile      = errors.New("user has no email address on file")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)
