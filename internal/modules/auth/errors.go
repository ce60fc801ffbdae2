package auth

import "errors"

var (
	ErrBlankCredentials = errors.New("username and password are required")
	ErrMissingToken     = errors.New("Login berhasil tapi token tidak ada. Cek backend.")
	ErrLoginRejected    = errors.New("login rejected")
	ErrInvalidUserID    = errors.New("server returned no user id")
)
