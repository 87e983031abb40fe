// internals/features/school/ledgers/grades/dto/grade_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"

	"akademiku_backend/internals/features/school/ledgers/grades/model"
	"akademiku_backend/internals/features/school/ledgers/grades/service"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
)

/* ===================== REQUESTS ===================== */

// Tambah kontribusi: pelaku dari token/context. Nilai dalam skala 0–10,
// dibulatkan 2 desimal oleh service sebelum dibandingkan dengan kapasitas.
type AddGradeContributionRequest struct {
	GradeCourseID  uuid.UUID `json:"grade_course_id" validate:"required"`
	GradeClassID   uuid.UUID `json:"grade_class_id" validate:"required"`
	GradeStudentID uuid.UUID `json:"grade_student_id" validate:"required"`

	GradeValue float64 `json:"grade_value" validate:"required,gt=0"`

	GradeSourceKind     string     `json:"grade_source_kind" validate:"required,oneof=exam assignment lesson other"`
	GradeSourceRefID    *uuid.UUID `json:"grade_source_ref_id" validate:"omitempty"`
	GradeSourceRefTitle *string    `json:"grade_source_ref_title" validate:"omitempty"`

	GradeJustification string `json:"grade_justification" validate:"required,min=3"`
	GradeIsManual      bool   `json:"grade_is_manual"`
}

func (r AddGradeContributionRequest) Key() model.GradeKey {
	return model.GradeKey{
		CourseID:  r.GradeCourseID,
		ClassID:   r.GradeClassID,
		StudentID: r.GradeStudentID,
	}
}

func (r AddGradeContributionRequest) ToInput(actor historyModel.Actor, now time.Time) service.AddContributionInput {
	kind, _ := model.ParseGradeSourceKind(r.GradeSourceKind)
	return service.AddContributionInput{
		Key:   r.Key(),
		Value: r.GradeValue,
		Source: model.GradeSourceRef{
			Kind:     kind,
			RefID:    r.GradeSourceRefID,
			RefTitle: r.GradeSourceRefTitle,
		},
		Justification: r.GradeJustification,
		IsManual:      r.GradeIsManual,
		Actor:         actor,
		Now:           now,
	}
}

/* ===================== RESPONSES ===================== */

type GradeContributionResponse struct {
	GradeContributionID uuid.UUID `json:"grade_contribution_id"`

	GradeCourseID  uuid.UUID `json:"grade_course_id"`
	GradeClassID   uuid.UUID `json:"grade_class_id"`
	GradeStudentID uuid.UUID `json:"grade_student_id"`

	GradeValue float64 `json:"grade_value"`

	GradeSourceKind     string     `json:"grade_source_kind"`
	GradeSourceRefID    *uuid.UUID `json:"grade_source_ref_id,omitempty"`
	GradeSourceRefTitle *string    `json:"grade_source_ref_title,omitempty"`

	GradeJustification string     `json:"grade_justification"`
	GradeIsManual      bool       `json:"grade_is_manual"`
	GradeIsRemoved     bool       `json:"grade_is_removed"`
	GradeRemovedAt     *time.Time `json:"grade_removed_at,omitempty"`

	GradeActorID   uuid.UUID `json:"grade_actor_id"`
	GradeActorRole string    `json:"grade_actor_role"`
	GradeActorName string    `json:"grade_actor_name,omitempty"`

	GradeCreatedAt time.Time `json:"grade_created_at"`
}

// Factory
func NewGradeContributionResponse(m *model.GradeContributionModel) *GradeContributionResponse {
	if m == nil {
		return nil
	}
	return &GradeContributionResponse{
		GradeContributionID: m.GradeContributionID,
		GradeCourseID:       m.GradeContributionCourseID,
		GradeClassID:        m.GradeContributionClassID,
		GradeStudentID:      m.GradeContributionStudentID,
		GradeValue:          model.ValueFromCents(m.GradeContributionValueCents),
		GradeSourceKind:     string(m.GradeContributionSourceKind),
		GradeSourceRefID:    m.GradeContributionSourceRefID,
		GradeSourceRefTitle: m.GradeContributionSourceRefTitle,
		GradeJustification:  m.GradeContributionJustification,
		GradeIsManual:       m.GradeContributionIsManual,
		GradeIsRemoved:      m.GradeContributionIsRemoved,
		GradeRemovedAt:      m.GradeContributionRemovedAt,
		GradeActorID:        m.GradeContributionActorID,
		GradeActorRole:      m.GradeContributionActorRole,
		GradeActorName:      m.GradeContributionActorName,
		GradeCreatedAt:      m.GradeContributionCreatedAt,
	}
}

// Batch mapper
func FromGradeContributionModels(rows []model.GradeContributionModel) []GradeContributionResponse {
	out := make([]GradeContributionResponse, 0, len(rows))
	for i := range rows {
		if r := NewGradeContributionResponse(&rows[i]); r != nil {
			out = append(out, *r)
		}
	}
	return out
}

type GradeHistoryEntryResponse struct {
	GradeHistoryEvent string `json:"grade_history_event"`

	GradeHistoryContributionID *uuid.UUID `json:"grade_history_contribution_id,omitempty"`

	GradeHistoryValue          float64    `json:"grade_history_value"`
	GradeHistorySourceKind     string     `json:"grade_history_source_kind"`
	GradeHistorySourceRefID    *uuid.UUID `json:"grade_history_source_ref_id,omitempty"`
	GradeHistorySourceRefTitle *string    `json:"grade_history_source_ref_title,omitempty"`
	GradeHistoryJustification  string     `json:"grade_history_justification"`

	GradeHistoryActorID   uuid.UUID `json:"grade_history_actor_id"`
	GradeHistoryActorRole string    `json:"grade_history_actor_role"`
	GradeHistoryActorName string    `json:"grade_history_actor_name,omitempty"`

	GradeHistoryOccurredAt time.Time `json:"grade_history_occurred_at"`
}

func NewGradeHistoryEntryResponse(e *historyModel.LedgerHistoryModel) (*GradeHistoryEntryResponse, error) {
	if e == nil {
		return nil, nil
	}
	resp := &GradeHistoryEntryResponse{
		GradeHistoryEvent:          e.LedgerHistoryEvent,
		GradeHistoryContributionID: e.LedgerHistoryContributionID,
		GradeHistoryJustification:  e.LedgerHistoryJustification,
		GradeHistoryActorID:        e.LedgerHistoryActorID,
		GradeHistoryActorRole:      e.LedgerHistoryActorRole,
		GradeHistoryActorName:      e.LedgerHistoryActorName,
		GradeHistoryOccurredAt:     e.LedgerHistoryOccurredAt,
	}
	// entry Added menyimpan snapshot di after, Removed di before
	raw := e.LedgerHistoryAfter
	if e.LedgerHistoryEvent == historyModel.HistoryEventRemoved {
		raw = e.LedgerHistoryBefore
	}
	snap, err := model.GradeSnapshotFromJSON(raw)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		resp.GradeHistoryValue = snap.Value
		resp.GradeHistorySourceKind = snap.SourceKind
		resp.GradeHistorySourceRefID = snap.SourceRefID
		resp.GradeHistorySourceRefTitle = snap.SourceRefTitle
	}
	return resp, nil
}

func FromHistoryModels(rows []historyModel.LedgerHistoryModel) ([]GradeHistoryEntryResponse, error) {
	out := make([]GradeHistoryEntryResponse, 0, len(rows))
	for i := range rows {
		r, err := NewGradeHistoryEntryResponse(&rows[i])
		if err != nil {
			return nil, err
		}
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

type GradeTotalResponse struct {
	GradeTotal             float64 `json:"grade_total"`
	GradeRemainingCapacity float64 `json:"grade_remaining_capacity"`
	GradeCap               float64 `json:"grade_cap"`
}
