package service

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Modality sesi kelas (dimiliki layanan jadwal; engine hanya membaca).
type Modality string

const (
	ModalityOnSite Modality = "onsite"
	ModalityLive   Modality = "live"
	ModalityOnline Modality = "online"
	ModalityHybrid Modality = "hybrid"
)

func ParseModality(s string) (Modality, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "onsite":
		return ModalityOnSite, true
	case "live":
		return ModalityLive, true
	case "online":
		return ModalityOnline, true
	case "hybrid":
		return ModalityHybrid, true
	}
	return "", false
}

// Saran resolver. Bukan keputusan final — keputusan tetap lewat
// AttendanceLedger.Submit oleh manusia/importer.
const (
	SuggestionIndeterminate = "indeterminate"
	SuggestionSufficient    = "sufficient"
	SuggestionInsufficient  = "insufficient"
	SuggestionOnTime        = "on_time"
	SuggestionLate          = "late"
	SuggestionNoAccess      = "no_access"
)

const (
	NoteManualEntryRequired = "manual entry required"
	NoteUnknownModality     = "unknown modality"
)

// SessionDescriptor: satu occurrence kelas terjadwal.
// End diturunkan dari start+durasi kalau EndAt kosong.
type SessionDescriptor struct {
	ID              uuid.UUID
	Modality        Modality
	StartAt         time.Time
	EndAt           *time.Time
	DurationMinutes int
}

func (s SessionDescriptor) End() time.Time {
	if s.EndAt != nil {
		return *s.EndAt
	}
	return s.StartAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// EvidenceSnapshot: sinyal mentah per (sesi, siswa) dari layanan telemetri.
type EvidenceSnapshot struct {
	LastLoginAt        *time.Time
	WatchedLiveMinutes *int
}

// Facts: angka di balik saran, ditampilkan di layar & disimpan untuk audit.
type Facts struct {
	WatchedMinutes  *int       `json:"watched_minutes,omitempty"`
	RequiredMinutes *int       `json:"required_minutes,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	WindowStart     *time.Time `json:"window_start,omitempty"`
	WindowEnd       *time.Time `json:"window_end,omitempty"`
	LastLoginAt     *time.Time `json:"last_login_at,omitempty"`
}

type Suggestion struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
	Facts  Facts  `json:"facts"`
}

// ResolverConfig: threshold sebagai konfigurasi bernama, bukan literal
// tersebar. Default mengikuti kebijakan akademik yang berlaku.
type ResolverConfig struct {
	LiveWatchFactor     float64
	LiveWatchCapMinutes int
	OnlineGraceDays     int
}

func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		LiveWatchFactor:     0.7,
		LiveWatchCapMinutes: 45,
		OnlineGraceDays:     7,
	}
}

// Resolver: murni & deterministik. Tanpa state, tanpa side effect — aman
// dipanggil berulang dengan input sama.
type Resolver struct {
	cfg ResolverConfig
}

func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.LiveWatchFactor <= 0 {
		cfg.LiveWatchFactor = 0.7
	}
	if cfg.LiveWatchCapMinutes <= 0 {
		cfg.LiveWatchCapMinutes = 45
	}
	if cfg.OnlineGraceDays <= 0 {
		cfg.OnlineGraceDays = 7
	}
	return &Resolver{cfg: cfg}
}

// RequiredLiveMinutes = min(round(durasi × factor), cap).
// Catatan: sesi sangat pendek bisa menghasilkan 0 — formula dipertahankan
// apa adanya, belum ada keputusan produk soal floor.
func (r *Resolver) RequiredLiveMinutes(durationMinutes int) int {
	required := int(math.Round(float64(durationMinutes) * r.cfg.LiveWatchFactor))
	if required > r.cfg.LiveWatchCapMinutes {
		required = r.cfg.LiveWatchCapMinutes
	}
	return required
}

// Resolve memetakan (sesi, evidence) ke saran kehadiran per modality.
// Telemetri kosong adalah kasus normal (NoAccess/Indeterminate), bukan error.
func (r *Resolver) Resolve(sess SessionDescriptor, ev EvidenceSnapshot) Suggestion {
	switch sess.Modality {
	case ModalityOnSite:
		// Tidak ada evidence otomatis untuk tatap muka.
		return Suggestion{Status: SuggestionIndeterminate, Note: NoteManualEntryRequired}

	case ModalityLive:
		required := r.RequiredLiveMinutes(sess.DurationMinutes)
		duration := sess.DurationMinutes
		watched := 0
		if ev.WatchedLiveMinutes != nil {
			watched = *ev.WatchedLiveMinutes
		}
		facts := Facts{
			WatchedMinutes:  &watched,
			RequiredMinutes: &required,
			DurationMinutes: &duration,
		}
		if watched >= required {
			return Suggestion{Status: SuggestionSufficient, Facts: facts}
		}
		return Suggestion{Status: SuggestionInsufficient, Facts: facts}

	case ModalityOnline, ModalityHybrid:
		windowStart := sess.End()
		windowEnd := windowStart.AddDate(0, 0, r.cfg.OnlineGraceDays)
		facts := Facts{
			WindowStart: &windowStart,
			WindowEnd:   &windowEnd,
			LastLoginAt: ev.LastLoginAt,
		}
		if ev.LastLoginAt == nil {
			return Suggestion{Status: SuggestionNoAccess, Facts: facts}
		}
		login := *ev.LastLoginAt
		// window inklusif di kedua ujung
		if !login.Before(windowStart) && !login.After(windowEnd) {
			return Suggestion{Status: SuggestionOnTime, Facts: facts}
		}
		return Suggestion{Status: SuggestionLate, Facts: facts}

	default:
		return Suggestion{Status: SuggestionIndeterminate, Note: NoteUnknownModality}
	}
}
