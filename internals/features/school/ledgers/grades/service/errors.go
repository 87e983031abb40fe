package service

import (
	"errors"
	"fmt"

	"akademiku_backend/internals/features/school/ledgers/grades/model"
)

var (
	ErrInvalidValue         = errors.New("nilai kontribusi harus > 0 dan finite")
	ErrInvalidSource        = errors.New("sumber kontribusi tidak dikenal")
	ErrMissingJustification = errors.New("justification minimal 3 karakter")
	ErrNotManual            = errors.New("hanya kontribusi manual yang boleh dibatalkan")
	ErrNotFound             = errors.New("kontribusi tidak ditemukan atau sudah dibatalkan")
	ErrConflict             = errors.New("write nilai kalah race untuk key yang sama")
)

// InsufficientCapacityError: kontribusi ditolak karena melebihi sisa
// kapasitas. Sisa kapasitas disurface supaya user bisa koreksi nilainya —
// tidak ada clamping diam-diam.
type InsufficientCapacityError struct {
	RemainingCents int64
}

func (e *InsufficientCapacityError) Error() string {
	return fmt.Sprintf("melebihi sisa kapasitas nilai (%0.2f tersisa)", e.Remaining())
}

func (e *InsufficientCapacityError) Remaining() float64 {
	return model.ValueFromCents(e.RemainingCents)
}
