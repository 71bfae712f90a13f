package model

import "errors"

var (
	// Session related errors
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")

	// Entity lookup errors
	ErrProjectNotFound = errors.New("project not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInviteNotFound  = errors.New("invite not found")

	// Permission errors
	ErrForbidden = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
