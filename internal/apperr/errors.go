// Package apperr holds the sentinel errors shared across services and the
// Indonesian messages shown to users for them.
package apperr

import (
	"errors"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMisconfigured      = errors.New("backend not configured")
)

// ValidationError carries a user-facing reason for a rejected input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Unwrap makes errors.Is(err, ErrValidation) hold.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid returns a validation error with the given message.
func Invalid(msg string) error {
	return &ValidationError{Msg: msg}
}

// Message returns the text shown to the user for err.
func Message(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Msg
	case errors.Is(err, ErrInvalidCredentials):
		return "Username atau password salah."
	case errors.Is(err, ErrUnauthorized):
		return "Silakan login terlebih dahulu."
	case errors.Is(err, ErrForbidden):
		return "Anda tidak memiliki akses untuk tindakan ini."
	case errors.Is(err, ErrAlreadyExists):
		return "Data sudah ada."
	case errors.Is(err, ErrNotFound):
		return "Data tidak ditemukan."
	case errors.Is(err, ErrMisconfigured):
		return "Konfigurasi database belum lengkap."
	case errors.Is(err, ErrValidation):
		return strings.TrimSpace(err.Error())
	}
	return "Terjadi kesalahan pada server."
}
