package model

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// AttendanceSnapshot: bentuk before/after yang disimpan di kolom JSON
// ledger_history_entries untuk kind=attendance.
type AttendanceSnapshot struct {
	Status        AttendanceStatus `json:"status"`
	Justification *string          `json:"justification,omitempty"`
}

func (s AttendanceSnapshot) ToJSON() (datatypes.JSON, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

func AttendanceSnapshotFromJSON(raw datatypes.JSON) (*AttendanceSnapshot, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var s AttendanceSnapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func SnapshotOfRecord(m *AttendanceRecordModel) AttendanceSnapshot {
	return AttendanceSnapshot{
		Status:        m.AttendanceRecordStatus,
		Justification: m.AttendanceRecordJustification,
	}
}
