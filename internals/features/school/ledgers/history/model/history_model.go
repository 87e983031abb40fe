package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Jenis ledger yang menulis ke log ini.
const (
	LedgerKindAttendance = "attendance"
	LedgerKindGrade      = "grade"
)

// Event yang dicatat. Append-only: tidak ada path update/delete.
const (
	HistoryEventSubmitted  = "submitted"  // kehadiran: entry pertama
	HistoryEventOverridden = "overridden" // kehadiran: ditimpa role override
	HistoryEventAdded      = "added"      // nilai: kontribusi masuk
	HistoryEventRemoved    = "removed"    // nilai: kontribusi manual dibatalkan
)

// Actor adalah pelaku transisi (identitas dari layanan auth, dipercaya).
type Actor struct {
	ID   uuid.UUID
	Role string
	Name string
}

// LedgerHistoryModel: satu baris per transisi state di AttendanceLedger
// maupun GradeLedger. Before/After disimpan sebagai JSON snapshot supaya
// kedua ledger bisa berbagi satu tabel audit.
type LedgerHistoryModel struct {
	LedgerHistoryID int64 `gorm:"primaryKey;autoIncrement;column:ledger_history_id" json:"ledger_history_id"`

	LedgerHistoryKind  string `gorm:"not null;index:idx_ledger_history_key;column:ledger_history_kind"  json:"ledger_history_kind"`
	LedgerHistoryEvent string `gorm:"not null;column:ledger_history_event" json:"ledger_history_event"`

	// Key ledger. SessionID hanya terisi untuk kind=attendance,
	// ContributionID hanya untuk kind=grade.
	LedgerHistoryCourseID       uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_history_key;column:ledger_history_course_id"  json:"ledger_history_course_id"`
	LedgerHistoryClassID        uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_history_key;column:ledger_history_class_id"   json:"ledger_history_class_id"`
	LedgerHistorySessionID      *uuid.UUID `gorm:"type:uuid;index:idx_ledger_history_key;column:ledger_history_session_id"          json:"ledger_history_session_id,omitempty"`
	LedgerHistoryStudentID      uuid.UUID  `gorm:"type:uuid;not null;index:idx_ledger_history_key;column:ledger_history_student_id" json:"ledger_history_student_id"`
	LedgerHistoryContributionID *uuid.UUID `gorm:"type:uuid;column:ledger_history_contribution_id" json:"ledger_history_contribution_id,omitempty"`

	// Snapshot state sebelum/sesudah transisi (bentuk per ledger,
	// lihat dto masing-masing feature).
	LedgerHistoryBefore datatypes.JSON `gorm:"column:ledger_history_before" json:"ledger_history_before,omitempty"`
	LedgerHistoryAfter  datatypes.JSON `gorm:"column:ledger_history_after"  json:"ledger_history_after,omitempty"`

	LedgerHistoryJustification  string  `gorm:"not null;default:'';column:ledger_history_justification" json:"ledger_history_justification"`
	LedgerHistoryOverrideReason *string `gorm:"column:ledger_history_override_reason" json:"ledger_history_override_reason,omitempty"`

	LedgerHistoryActorID   uuid.UUID `gorm:"type:uuid;not null;column:ledger_history_actor_id"   json:"ledger_history_actor_id"`
	LedgerHistoryActorRole string    `gorm:"not null;column:ledger_history_actor_role" json:"ledger_history_actor_role"`
	LedgerHistoryActorName string    `gorm:"not null;default:'';column:ledger_history_actor_name" json:"ledger_history_actor_name"`

	LedgerHistoryOccurredAt time.Time `gorm:"not null;index;column:ledger_history_occurred_at" json:"ledger_history_occurred_at"`
}

func (LedgerHistoryModel) TableName() string { return "ledger_history_entries" }
