package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"akademiku_backend/internals/constants"
)

var (
	ErrInvalidStatus        = errors.New("status kehadiran tidak dikenal")
	ErrMissingJustification = errors.New("justification wajib diisi saat status absent")
	ErrNotFound             = errors.New("record kehadiran tidak ditemukan")
	ErrConflict             = errors.New("write kehadiran kalah race untuk key yang sama")
)

// SessionNotConcludedError: kehadiran belum boleh dicatat sebelum sesi
// selesai. EndsAt disurface ke caller supaya UI bisa bilang kapan boleh.
type SessionNotConcludedError struct {
	EndsAt time.Time
}

func (e *SessionNotConcludedError) Error() string {
	return fmt.Sprintf("sesi belum selesai, kehadiran baru bisa dicatat setelah %s",
		e.EndsAt.Format(time.RFC3339))
}

// NotAuthorizedToOverrideError: record sudah ada dan role pelaku tidak
// termasuk role override. AuthorizedRoles disurface ke caller.
type NotAuthorizedToOverrideError struct {
	AuthorizedRoles []string
}

func (e *NotAuthorizedToOverrideError) Error() string {
	return fmt.Sprintf("record kehadiran sudah ada; hanya %s yang boleh menimpa",
		strings.Join(e.AuthorizedRoles, "/"))
}

func newNotAuthorizedToOverride() *NotAuthorizedToOverrideError {
	roles := make([]string, len(constants.OverrideRoles))
	copy(roles, constants.OverrideRoles)
	return &NotAuthorizedToOverrideError{AuthorizedRoles: roles}
}
