package model

import (
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// GradeSnapshot: bentuk before/after di ledger_history_entries untuk
// kind=grade. Entry "removed" membawa snapshot kontribusi yang sama di
// sisi before, supaya kontinuitas audit tetap utuh.
type GradeSnapshot struct {
	Value          float64    `json:"value"`
	ValueCents     int64      `json:"value_cents"`
	SourceKind     string     `json:"source_kind"`
	SourceRefID    *uuid.UUID `json:"source_ref_id,omitempty"`
	SourceRefTitle *string    `json:"source_ref_title,omitempty"`
	IsManual       bool       `json:"is_manual"`
	Justification  string     `json:"justification"`
}

func (s GradeSnapshot) ToJSON() (datatypes.JSON, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func GradeSnapshotFromJSON(raw datatypes.JSON) (*GradeSnapshot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s GradeSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func SnapshotOfContribution(m *GradeContributionModel) GradeSnapshot {
	return GradeSnapshot{
		Value:          ValueFromCents(m.GradeContributionValueCents),
		ValueCents:     m.GradeContributionValueCents,
		SourceKind:     string(m.GradeContributionSourceKind),
		SourceRefID:    m.GradeContributionSourceRefID,
		SourceRefTitle: m.GradeContributionSourceRefTitle,
		IsManual:       m.GradeContributionIsManual,
		Justification:  m.GradeContributionJustification,
	}
}
