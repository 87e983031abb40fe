// internals/features/school/ledgers/attendance/dto/attendance_dto.go
package dto

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"akademiku_backend/internals/features/school/ledgers/attendance/model"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
)

/* ===================== REQUESTS ===================== */

// Submit: identitas pelaku diambil dari token/context (bukan dari body).
// Metadata sesi (selesai kapan) disuplai caller dari layanan jadwal.
type SubmitAttendanceRequest struct {
	AttendanceCourseID  uuid.UUID `json:"attendance_course_id" validate:"required"`
	AttendanceClassID   uuid.UUID `json:"attendance_class_id" validate:"required"`
	AttendanceSessionID uuid.UUID `json:"attendance_session_id" validate:"required"`
	AttendanceStudentID uuid.UUID `json:"attendance_student_id" validate:"required"`

	// End eksplisit, atau diturunkan dari start + durasi
	AttendanceSessionEndsAt          *time.Time `json:"attendance_session_ends_at" validate:"omitempty"`
	AttendanceSessionStartsAt        *time.Time `json:"attendance_session_starts_at" validate:"omitempty"`
	AttendanceSessionDurationMinutes *int       `json:"attendance_session_duration_minutes" validate:"omitempty,gte=0"`

	AttendanceStatus        string  `json:"attendance_status" validate:"required,oneof=present absent justified late"`
	AttendanceJustification *string `json:"attendance_justification" validate:"omitempty"`

	// Hanya relevan saat menimpa record yang sudah ada
	AttendanceOverrideReason *string `json:"attendance_override_reason" validate:"omitempty"`
}

func (r SubmitAttendanceRequest) Key() model.AttendanceKey {
	return model.AttendanceKey{
		CourseID:  r.AttendanceCourseID,
		ClassID:   r.AttendanceClassID,
		SessionID: r.AttendanceSessionID,
		StudentID: r.AttendanceStudentID,
	}
}

var ErrSessionEndUnknown = errors.New("attendance_session_ends_at atau (starts_at + duration) wajib diisi")

func (r SubmitAttendanceRequest) SessionEnd() (time.Time, error) {
	if r.AttendanceSessionEndsAt != nil {
		return *r.AttendanceSessionEndsAt, nil
	}
	if r.AttendanceSessionStartsAt != nil && r.AttendanceSessionDurationMinutes != nil {
		return r.AttendanceSessionStartsAt.Add(time.Duration(*r.AttendanceSessionDurationMinutes) * time.Minute), nil
	}
	return time.Time{}, ErrSessionEndUnknown
}

func (r SubmitAttendanceRequest) Justification() string {
	if r.AttendanceJustification == nil {
		return ""
	}
	return *r.AttendanceJustification
}

func (r SubmitAttendanceRequest) OverrideReason() string {
	if r.AttendanceOverrideReason == nil {
		return ""
	}
	return *r.AttendanceOverrideReason
}

/* ===================== RESPONSES ===================== */

type AttendanceRecordResponse struct {
	AttendanceRecordID uuid.UUID `json:"attendance_record_id"`

	AttendanceCourseID  uuid.UUID `json:"attendance_course_id"`
	AttendanceClassID   uuid.UUID `json:"attendance_class_id"`
	AttendanceSessionID uuid.UUID `json:"attendance_session_id"`
	AttendanceStudentID uuid.UUID `json:"attendance_student_id"`

	AttendanceStatus        string  `json:"attendance_status"`
	AttendanceJustification *string `json:"attendance_justification,omitempty"`
	AttendanceVersion       int64   `json:"attendance_version"`

	AttendanceActorID   uuid.UUID `json:"attendance_actor_id"`
	AttendanceActorRole string    `json:"attendance_actor_role"`
	AttendanceActorName string    `json:"attendance_actor_name,omitempty"`

	AttendanceCreatedAt time.Time `json:"attendance_created_at"`
	AttendanceUpdatedAt time.Time `json:"attendance_updated_at"`
}

// Factory
func NewAttendanceRecordResponse(m *model.AttendanceRecordModel) *AttendanceRecordResponse {
	if m == nil {
		return nil
	}
	return &AttendanceRecordResponse{
		AttendanceRecordID:      m.AttendanceRecordID,
		AttendanceCourseID:      m.AttendanceRecordCourseID,
		AttendanceClassID:       m.AttendanceRecordClassID,
		AttendanceSessionID:     m.AttendanceRecordSessionID,
		AttendanceStudentID:     m.AttendanceRecordStudentID,
		AttendanceStatus:        string(m.AttendanceRecordStatus),
		AttendanceJustification: m.AttendanceRecordJustification,
		AttendanceVersion:       m.AttendanceRecordVersion,
		AttendanceActorID:       m.AttendanceRecordActorID,
		AttendanceActorRole:     m.AttendanceRecordActorRole,
		AttendanceActorName:     m.AttendanceRecordActorName,
		AttendanceCreatedAt:     m.AttendanceRecordCreatedAt,
		AttendanceUpdatedAt:     m.AttendanceRecordUpdatedAt,
	}
}

// Satu transisi di audit trail (dibaca dari snapshot JSON history).
type AttendanceHistoryEntryResponse struct {
	AttendanceHistoryEvent string `json:"attendance_history_event"`

	AttendanceHistoryFromStatus        *string `json:"attendance_history_from_status,omitempty"`
	AttendanceHistoryFromJustification *string `json:"attendance_history_from_justification,omitempty"`
	AttendanceHistoryToStatus          string  `json:"attendance_history_to_status"`
	AttendanceHistoryToJustification   *string `json:"attendance_history_to_justification,omitempty"`

	AttendanceHistoryOverrideReason *string `json:"attendance_history_override_reason,omitempty"`

	AttendanceHistoryActorID   uuid.UUID `json:"attendance_history_actor_id"`
	AttendanceHistoryActorRole string    `json:"attendance_history_actor_role"`
	AttendanceHistoryActorName string    `json:"attendance_history_actor_name,omitempty"`

	AttendanceHistoryOccurredAt time.Time `json:"attendance_history_occurred_at"`
}

func NewAttendanceHistoryEntryResponse(e *historyModel.LedgerHistoryModel) (*AttendanceHistoryEntryResponse, error) {
	if e == nil {
		return nil, nil
	}
	resp := &AttendanceHistoryEntryResponse{
		AttendanceHistoryEvent:          e.LedgerHistoryEvent,
		AttendanceHistoryOverrideReason: e.LedgerHistoryOverrideReason,
		AttendanceHistoryActorID:        e.LedgerHistoryActorID,
		AttendanceHistoryActorRole:      e.LedgerHistoryActorRole,
		AttendanceHistoryActorName:      e.LedgerHistoryActorName,
		AttendanceHistoryOccurredAt:     e.LedgerHistoryOccurredAt,
	}
	before, err := model.AttendanceSnapshotFromJSON(e.LedgerHistoryBefore)
	if err != nil {
		return nil, err
	}
	if before != nil {
		from := string(before.Status)
		resp.AttendanceHistoryFromStatus = &from
		resp.AttendanceHistoryFromJustification = before.Justification
	}
	after, err := model.AttendanceSnapshotFromJSON(e.LedgerHistoryAfter)
	if err != nil {
		return nil, err
	}
	if after != nil {
		resp.AttendanceHistoryToStatus = string(after.Status)
		resp.AttendanceHistoryToJustification = after.Justification
	}
	return resp, nil
}

// Batch mapper
func FromHistoryModels(rows []historyModel.LedgerHistoryModel) ([]AttendanceHistoryEntryResponse, error) {
	out := make([]AttendanceHistoryEntryResponse, 0, len(rows))
	for i := range rows {
		r, err := NewAttendanceHistoryEntryResponse(&rows[i])
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Ringkasan untuk layar detail kehadiran.
type AttendanceSummaryResponse struct {
	AttendanceCurrent      *AttendanceRecordResponse `json:"attendance_current,omitempty"`
	AttendanceHistoryCount int64                     `json:"attendance_history_count"`
}
