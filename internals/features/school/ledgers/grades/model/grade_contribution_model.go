package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Total nilai per key dibatasi 10.00 → 1000 sen.
// Aritmetika pakai sen (int64) supaya cap exact, bukan approksimasi float.
const GradeCapCents int64 = 1000

// CentsFromValue membulatkan nilai API (2 desimal) ke sen.
func CentsFromValue(v float64) int64 {
	return int64(math.Round(v * 100))
}

// ValueFromCents mengembalikan representasi API (float 2 desimal).
func ValueFromCents(c int64) float64 {
	return float64(c) / 100
}

// Sumber kontribusi nilai.
type GradeSourceKind string

const (
	GradeSourceExam       GradeSourceKind = "exam"
	GradeSourceAssignment GradeSourceKind = "assignment"
	GradeSourceLesson     GradeSourceKind = "lesson"
	GradeSourceOther      GradeSourceKind = "other"
)

func ParseGradeSourceKind(s string) (GradeSourceKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exam":
		return GradeSourceExam, true
	case "assignment":
		return GradeSourceAssignment, true
	case "lesson":
		return GradeSourceLesson, true
	case "other":
		return GradeSourceOther, true
	}
	return "", false
}

// GradeSourceRef: referensi item bernilai di sistem sekitarnya (opsional).
type GradeSourceRef struct {
	Kind     GradeSourceKind
	RefID    *uuid.UUID
	RefTitle *string
}

// GradeKey: unit konsistensi GradeLedger.
type GradeKey struct {
	CourseID  uuid.UUID
	ClassID   uuid.UUID
	StudentID uuid.UUID
}

func (k GradeKey) LockKey() string {
	return fmt.Sprintf("grade:%s:%s:%s", k.CourseID, k.ClassID, k.StudentID)
}

// GradeContributionModel: satu kontribusi diskrit ke total nilai.
// Tidak pernah dihapus fisik — removal manual hanya set is_removed.
type GradeContributionModel struct {
	GradeContributionID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:grade_contributions_id" json:"grade_contributions_id"`

	GradeContributionCourseID  uuid.UUID `gorm:"type:uuid;not null;index:idx_grade_contributions_key;column:grade_contributions_course_id"  json:"grade_contributions_course_id"`
	GradeContributionClassID   uuid.UUID `gorm:"type:uuid;not null;index:idx_grade_contributions_key;column:grade_contributions_class_id"   json:"grade_contributions_class_id"`
	GradeContributionStudentID uuid.UUID `gorm:"type:uuid;not null;index:idx_grade_contributions_key;column:grade_contributions_student_id" json:"grade_contributions_student_id"`

	// Nilai dalam sen (0 < value ≤ 1000)
	GradeContributionValueCents int64 `gorm:"not null;column:grade_contributions_value_cents" json:"grade_contributions_value_cents"`

	GradeContributionSourceKind     GradeSourceKind `gorm:"type:varchar(16);not null;column:grade_contributions_source_kind" json:"grade_contributions_source_kind"`
	GradeContributionSourceRefID    *uuid.UUID      `gorm:"type:uuid;column:grade_contributions_source_ref_id" json:"grade_contributions_source_ref_id,omitempty"`
	GradeContributionSourceRefTitle *string         `gorm:"column:grade_contributions_source_ref_title" json:"grade_contributions_source_ref_title,omitempty"`

	GradeContributionJustification string `gorm:"not null;column:grade_contributions_justification" json:"grade_contributions_justification"`

	// Hanya kontribusi manual yang boleh dibatalkan lewat RemoveContribution.
	GradeContributionIsManual  bool       `gorm:"not null;default:false;column:grade_contributions_is_manual"  json:"grade_contributions_is_manual"`
	GradeContributionIsRemoved bool       `gorm:"not null;default:false;column:grade_contributions_is_removed" json:"grade_contributions_is_removed"`
	GradeContributionRemovedAt *time.Time `gorm:"column:grade_contributions_removed_at" json:"grade_contributions_removed_at,omitempty"`

	GradeContributionActorID   uuid.UUID `gorm:"type:uuid;not null;column:grade_contributions_actor_id"   json:"grade_contributions_actor_id"`
	GradeContributionActorRole string    `gorm:"not null;column:grade_contributions_actor_role" json:"grade_contributions_actor_role"`
	GradeContributionActorName string    `gorm:"not null;default:'';column:grade_contributions_actor_name" json:"grade_contributions_actor_name"`

	GradeContributionCreatedAt time.Time `gorm:"column:grade_contributions_created_at;autoCreateTime" json:"grade_contributions_created_at"`
}

func (GradeContributionModel) TableName() string { return "grade_contributions" }

func (m *GradeContributionModel) Key() GradeKey {
	return GradeKey{
		CourseID:  m.GradeContributionCourseID,
		ClassID:   m.GradeContributionClassID,
		StudentID: m.GradeContributionStudentID,
	}
}

func (m *GradeContributionModel) SourceRef() GradeSourceRef {
	return GradeSourceRef{
		Kind:     m.GradeContributionSourceKind,
		RefID:    m.GradeContributionSourceRefID,
		RefTitle: m.GradeContributionSourceRefTitle,
	}
}
