package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status kehadiran yang dikenal ledger.
type AttendanceStatus string

const (
	AttendancePresent   AttendanceStatus = "present"
	AttendanceAbsent    AttendanceStatus = "absent"
	AttendanceJustified AttendanceStatus = "justified"
	AttendanceLate      AttendanceStatus = "late"
)

// ParseAttendanceStatus menormalisasi input bebas dari caller.
func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present":
		return AttendancePresent, true
	case "absent":
		return AttendanceAbsent, true
	case "justified":
		return AttendanceJustified, true
	case "late":
		return AttendanceLate, true
	}
	return "", false
}

// AttendanceKey: unit konsistensi AttendanceLedger. Maksimal satu record
// hidup per key (unique index di model).
type AttendanceKey struct {
	CourseID  uuid.UUID
	ClassID   uuid.UUID
	SessionID uuid.UUID
	StudentID uuid.UUID
}

// LockKey dipakai keylock untuk serialisasi write per key.
func (k AttendanceKey) LockKey() string {
	return fmt.Sprintf("att:%s:%s:%s:%s", k.CourseID, k.ClassID, k.SessionID, k.StudentID)
}

type AttendanceRecordModel struct {
	AttendanceRecordID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:attendance_records_id" json:"attendance_records_id"`

	// Key (course, class, session, student) — wajib, satu record per key
	AttendanceRecordCourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_key;column:attendance_records_course_id"  json:"attendance_records_course_id"`
	AttendanceRecordClassID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_key;column:attendance_records_class_id"   json:"attendance_records_class_id"`
	AttendanceRecordSessionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_key;column:attendance_records_session_id" json:"attendance_records_session_id"`
	AttendanceRecordStudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_key;column:attendance_records_student_id" json:"attendance_records_student_id"`

	// Keputusan terkini. Justification wajib non-empty saat status=absent
	// (dijaga service, bukan DB).
	AttendanceRecordStatus        AttendanceStatus `gorm:"type:varchar(16);not null;column:attendance_records_status" json:"attendance_records_status"`
	AttendanceRecordJustification *string          `gorm:"column:attendance_records_justification" json:"attendance_records_justification,omitempty"`

	// Versi untuk optimistic CAS antar proses (lihat repository).
	AttendanceRecordVersion int64 `gorm:"not null;default:1;column:attendance_records_version" json:"attendance_records_version"`

	// Pelaku terakhir (identitas dari layanan auth)
	AttendanceRecordActorID   uuid.UUID `gorm:"type:uuid;not null;column:attendance_records_actor_id"   json:"attendance_records_actor_id"`
	AttendanceRecordActorRole string    `gorm:"not null;column:attendance_records_actor_role" json:"attendance_records_actor_role"`
	AttendanceRecordActorName string    `gorm:"not null;default:'';column:attendance_records_actor_name" json:"attendance_records_actor_name"`

	AttendanceRecordCreatedAt time.Time `gorm:"column:attendance_records_created_at;autoCreateTime" json:"attendance_records_created_at"`
	AttendanceRecordUpdatedAt time.Time `gorm:"column:attendance_records_updated_at;autoUpdateTime" json:"attendance_records_updated_at"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

func (m *AttendanceRecordModel) Key() AttendanceKey {
	return AttendanceKey{
		CourseID:  m.AttendanceRecordCourseID,
		ClassID:   m.AttendanceRecordClassID,
		SessionID: m.AttendanceRecordSessionID,
		StudentID: m.AttendanceRecordStudentID,
	}
}
