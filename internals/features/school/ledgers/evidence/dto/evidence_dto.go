// internals/features/school/ledgers/evidence/dto/evidence_dto.go
package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"akademiku_backend/internals/features/school/ledgers/evidence/service"
)

/* ===================== REQUESTS ===================== */

// Resolve: descriptor sesi dari layanan jadwal + sinyal mentah dari
// layanan telemetri. Modality tak dikenal TIDAK ditolak di validasi —
// resolver yang memutuskan (hasilnya indeterminate + note).
type ResolveEvidenceRequest struct {
	EvidenceSessionID              uuid.UUID  `json:"evidence_session_id" validate:"required"`
	EvidenceSessionModality        string     `json:"evidence_session_modality" validate:"required"`
	EvidenceSessionStartsAt        time.Time  `json:"evidence_session_starts_at" validate:"required"`
	EvidenceSessionEndsAt          *time.Time `json:"evidence_session_ends_at" validate:"omitempty"`
	EvidenceSessionDurationMinutes int        `json:"evidence_session_duration_minutes" validate:"omitempty,gte=0"`

	EvidenceLastLoginAt        *time.Time `json:"evidence_last_login_at" validate:"omitempty"`
	EvidenceWatchedLiveMinutes *int       `json:"evidence_watched_live_minutes" validate:"omitempty,gte=0"`
}

func (r ResolveEvidenceRequest) ToSession() service.SessionDescriptor {
	return service.SessionDescriptor{
		ID:              r.EvidenceSessionID,
		Modality:        service.Modality(strings.ToLower(strings.TrimSpace(r.EvidenceSessionModality))),
		StartAt:         r.EvidenceSessionStartsAt,
		EndAt:           r.EvidenceSessionEndsAt,
		DurationMinutes: r.EvidenceSessionDurationMinutes,
	}
}

func (r ResolveEvidenceRequest) ToEvidence() service.EvidenceSnapshot {
	return service.EvidenceSnapshot{
		LastLoginAt:        r.EvidenceLastLoginAt,
		WatchedLiveMinutes: r.EvidenceWatchedLiveMinutes,
	}
}

/* ===================== RESPONSES ===================== */

type ResolveEvidenceResponse struct {
	EvidenceSessionID uuid.UUID     `json:"evidence_session_id"`
	EvidenceModality  string        `json:"evidence_modality"`
	EvidenceSessionEnd time.Time    `json:"evidence_session_end"`
	EvidenceSuggestion service.Suggestion `json:"evidence_suggestion"`
}

func NewResolveEvidenceResponse(sess service.SessionDescriptor, sug service.Suggestion) *ResolveEvidenceResponse {
	return &ResolveEvidenceResponse{
		EvidenceSessionID:  sess.ID,
		EvidenceModality:   string(sess.Modality),
		EvidenceSessionEnd: sess.End(),
		EvidenceSuggestion: sug,
	}
}
