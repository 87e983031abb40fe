package service

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
)

func newSession(mod Modality, start time.Time, durationMinutes int) SessionDescriptor {
	return SessionDescriptor{
		ID:              uuid.New(),
		Modality:        mod,
		StartAt:         start,
		DurationMinutes: durationMinutes,
	}
}

func intPtr(n int) *int               { return &n }
func timePtr(t time.Time) *time.Time { return &t }

func TestResolve_OnSite_AlwaysIndeterminate(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	sess := newSession(ModalityOnSite, time.Now(), 60)

	got := r.Resolve(sess, EvidenceSnapshot{WatchedLiveMinutes: intPtr(120)})

	if got.Status != SuggestionIndeterminate {
		t.Fatalf("expected indeterminate for onsite, got %s", got.Status)
	}
	if got.Note != NoteManualEntryRequired {
		t.Errorf("expected note %q, got %q", NoteManualEntryRequired, got.Note)
	}
}

func TestResolve_Live_SufficientAtThreshold(t *testing.T) {
	// duration=60 → required = min(round(42), 45) = 42; watched=45 → sufficient
	r := NewResolver(DefaultResolverConfig())
	sess := newSession(ModalityLive, time.Now(), 60)

	got := r.Resolve(sess, EvidenceSnapshot{WatchedLiveMinutes: intPtr(45)})

	if got.Status != SuggestionSufficient {
		t.Fatalf("expected sufficient, got %s", got.Status)
	}
	if got.Facts.RequiredMinutes == nil || *got.Facts.RequiredMinutes != 42 {
		t.Errorf("expected required=42, got %v", got.Facts.RequiredMinutes)
	}
	if got.Facts.WatchedMinutes == nil || *got.Facts.WatchedMinutes != 45 {
		t.Errorf("expected watched=45, got %v", got.Facts.WatchedMinutes)
	}
	if got.Facts.DurationMinutes == nil || *got.Facts.DurationMinutes != 60 {
		t.Errorf("expected duration=60, got %v", got.Facts.DurationMinutes)
	}
}

func TestResolve_Live_InsufficientBelowThreshold(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	sess := newSession(ModalityLive, time.Now(), 60)

	got := r.Resolve(sess, EvidenceSnapshot{WatchedLiveMinutes: intPtr(41)})

	if got.Status != SuggestionInsufficient {
		t.Fatalf("expected insufficient for watched=41 < required=42, got %s", got.Status)
	}
}

func TestResolve_Live_RequiredCappedAt45(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	// duration=120 → round(84) > 45 → required = 45
	if got := r.RequiredLiveMinutes(120); got != 45 {
		t.Fatalf("expected cap 45, got %d", got)
	}
}

func TestResolve_Live_NoTelemetryCountsAsZeroWatched(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	sess := newSession(ModalityLive, time.Now(), 60)

	got := r.Resolve(sess, EvidenceSnapshot{})

	if got.Status != SuggestionInsufficient {
		t.Fatalf("expected insufficient when telemetry missing, got %s", got.Status)
	}
	if got.Facts.WatchedMinutes == nil || *got.Facts.WatchedMinutes != 0 {
		t.Errorf("expected watched=0 fact, got %v", got.Facts.WatchedMinutes)
	}
}

func TestResolve_Online_WindowCases(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	start := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	sess := newSession(ModalityOnline, start, 90)
	end := sess.End()

	cases := []struct {
		name  string
		login *time.Time
		want  string
	}{
		{"login 3 hari setelah sesi berakhir", timePtr(end.AddDate(0, 0, 3)), SuggestionOnTime},
		{"login tepat di akhir window (inklusif)", timePtr(end.AddDate(0, 0, 7)), SuggestionOnTime},
		{"login tepat saat sesi berakhir", timePtr(end), SuggestionOnTime},
		{"login 10 hari setelah sesi berakhir", timePtr(end.AddDate(0, 0, 10)), SuggestionLate},
		{"login sebelum sesi berakhir", timePtr(end.Add(-time.Hour)), SuggestionLate},
		{"tanpa login", nil, SuggestionNoAccess},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := r.Resolve(sess, EvidenceSnapshot{LastLoginAt: tc.login})
			if got.Status != tc.want {
				t.Errorf("expected %s, got %s", tc.want, got.Status)
			}
		})
	}
}

func TestResolve_Hybrid_UsesOnlineWindow(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	start := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	sess := newSession(ModalityHybrid, start, 90)

	got := r.Resolve(sess, EvidenceSnapshot{LastLoginAt: timePtr(sess.End().AddDate(0, 0, 1))})

	if got.Status != SuggestionOnTime {
		t.Fatalf("expected on_time for hybrid within window, got %s", got.Status)
	}
}

func TestResolve_UnknownModality_Indeterminate(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	sess := newSession(Modality("vr"), time.Now(), 60)

	got := r.Resolve(sess, EvidenceSnapshot{})

	if got.Status != SuggestionIndeterminate {
		t.Fatalf("expected indeterminate for unknown modality, got %s", got.Status)
	}
	if got.Note != NoteUnknownModality {
		t.Errorf("expected note %q, got %q", NoteUnknownModality, got.Note)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	r := NewResolver(DefaultResolverConfig())
	sess := newSession(ModalityLive, time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC), 50)
	ev := EvidenceSnapshot{WatchedLiveMinutes: intPtr(33)}

	first := r.Resolve(sess, ev)
	second := r.Resolve(sess, ev)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("resolver must be deterministic: %+v vs %+v", first, second)
	}
}

func TestSessionDescriptor_EndDerivedFromDuration(t *testing.T) {
	start := time.Date(2026, 4, 10, 10, 0, 0, 0, time.UTC)
	sess := newSession(ModalityOnline, start, 45)

	if got, want := sess.End(), start.Add(45*time.Minute); !got.Equal(want) {
		t.Fatalf("expected end %v, got %v", want, got)
	}

	explicit := start.Add(2 * time.Hour)
	sess.EndAt = &explicit
	if !sess.End().Equal(explicit) {
		t.Fatalf("explicit end must win over derived end")
	}
}
