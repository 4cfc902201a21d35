package operator

import "errors"

var (
	ErrOperatorNotFound  = errors.New("operator not found")
	ErrInvalidRole       = errors.New("invalid role")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidCredential = errors.New("invalid credential")
)
