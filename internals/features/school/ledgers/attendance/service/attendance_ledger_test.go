package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"akademiku_backend/internals/constants"
	"akademiku_backend/internals/features/school/ledgers/attendance/model"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
)

// memoryRepo: fake in-memory untuk service.Repository. Cukup map biasa —
// service sudah menyerialisasi write per key lewat keylock.
type memoryRepo struct {
	records map[model.AttendanceKey]*model.AttendanceRecordModel
	history []historyModel.LedgerHistoryModel
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[model.AttendanceKey]*model.AttendanceRecordModel)}
}

func (m *memoryRepo) GetCurrent(_ context.Context, key model.AttendanceKey) (*model.AttendanceRecordModel, error) {
	rec, ok := m.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memoryRepo) Create(_ context.Context, rec *model.AttendanceRecordModel, entry *historyModel.LedgerHistoryModel) error {
	key := rec.Key()
	if _, ok := m.records[key]; ok {
		return ErrConflict
	}
	rec.AttendanceRecordID = uuid.New()
	cp := *rec
	m.records[key] = &cp
	m.appendEntry(entry)
	return nil
}

func (m *memoryRepo) UpdateCAS(_ context.Context, rec *model.AttendanceRecordModel, prevVersion int64, entry *historyModel.LedgerHistoryModel) error {
	cur, ok := m.records[rec.Key()]
	if !ok || cur.AttendanceRecordVersion != prevVersion {
		return ErrConflict
	}
	cp := *rec
	m.records[rec.Key()] = &cp
	m.appendEntry(entry)
	return nil
}

func (m *memoryRepo) History(_ context.Context, key model.AttendanceKey) ([]historyModel.LedgerHistoryModel, error) {
	var out []historyModel.LedgerHistoryModel
	for _, e := range m.history {
		if e.LedgerHistoryCourseID == key.CourseID &&
			e.LedgerHistoryClassID == key.ClassID &&
			e.LedgerHistorySessionID != nil && *e.LedgerHistorySessionID == key.SessionID &&
			e.LedgerHistoryStudentID == key.StudentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) CountHistory(ctx context.Context, key model.AttendanceKey) (int64, error) {
	rows, _ := m.History(ctx, key)
	return int64(len(rows)), nil
}

func (m *memoryRepo) appendEntry(entry *historyModel.LedgerHistoryModel) {
	m.nextID++
	entry.LedgerHistoryID = m.nextID
	m.history = append(m.history, *entry)
}

func testKey() model.AttendanceKey {
	return model.AttendanceKey{
		CourseID:  uuid.New(),
		ClassID:   uuid.New(),
		SessionID: uuid.New(),
		StudentID: uuid.New(),
	}
}

func instructorActor() historyModel.Actor {
	return historyModel.Actor{ID: uuid.New(), Role: constants.RoleInstructor, Name: "Bu Ratna"}
}

func moderatorActor() historyModel.Actor {
	return historyModel.Actor{ID: uuid.New(), Role: constants.RoleModerator, Name: "Pak Dimas"}
}

var sessionEnd = time.Date(2026, 3, 2, 21, 0, 0, 0, time.UTC)

func submitInput(key model.AttendanceKey, actor historyModel.Actor, status model.AttendanceStatus, justification string) SubmitInput {
	return SubmitInput{
		Key:           key,
		SessionEndsAt: sessionEnd,
		Actor:         actor,
		Status:        status,
		Justification: justification,
		Now:           sessionEnd.Add(time.Hour),
	}
}

func TestSubmit_BeforeSessionEnd_Fails(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())
	key := testKey()

	in := submitInput(key, instructorActor(), model.AttendancePresent, "")
	in.Now = sessionEnd.Add(-time.Minute)

	_, err := svc.Submit(context.Background(), in)

	var snc *SessionNotConcludedError
	if !errors.As(err, &snc) {
		t.Fatalf("expected SessionNotConcludedError, got %v", err)
	}
	if !snc.EndsAt.Equal(sessionEnd) {
		t.Errorf("expected EndsAt %v surfaced, got %v", sessionEnd, snc.EndsAt)
	}
	if _, err := svc.GetCurrent(context.Background(), key); !errors.Is(err, ErrNotFound) {
		t.Errorf("rejected submit must not create a record")
	}
}

func TestSubmit_ExactlyAtSessionEnd_Allowed(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())
	in := submitInput(testKey(), instructorActor(), model.AttendancePresent, "")
	in.Now = sessionEnd

	if _, err := svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("submit at session end must be allowed, got %v", err)
	}
}

func TestSubmit_AbsentWithoutJustification_Fails(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())
	key := testKey()

	_, err := svc.Submit(context.Background(), submitInput(key, instructorActor(), model.AttendanceAbsent, "   "))

	if !errors.Is(err, ErrMissingJustification) {
		t.Fatalf("expected ErrMissingJustification, got %v", err)
	}
	if _, err := svc.GetCurrent(context.Background(), key); !errors.Is(err, ErrNotFound) {
		t.Errorf("rejected submit must not mutate current record")
	}
}

func TestSubmit_AbsentWithJustification_CreatesRecordAndHistory(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())
	key := testKey()

	rec, err := svc.Submit(context.Background(), submitInput(key, instructorActor(), model.AttendanceAbsent, "surat dokter"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.AttendanceRecordStatus != model.AttendanceAbsent {
		t.Errorf("expected status absent, got %s", rec.AttendanceRecordStatus)
	}
	if rec.AttendanceRecordJustification == nil || *rec.AttendanceRecordJustification != "surat dokter" {
		t.Errorf("justification not stored: %v", rec.AttendanceRecordJustification)
	}

	hist, err := svc.GetHistory(context.Background(), key)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(hist))
	}
	if hist[0].LedgerHistoryEvent != historyModel.HistoryEventSubmitted {
		t.Errorf("expected event submitted, got %s", hist[0].LedgerHistoryEvent)
	}
	after, err := model.AttendanceSnapshotFromJSON(hist[0].LedgerHistoryAfter)
	if err != nil || after == nil {
		t.Fatalf("after snapshot: %v %v", after, err)
	}
	if after.Status != model.AttendanceAbsent {
		t.Errorf("expected after.status absent, got %s", after.Status)
	}
	if len(hist[0].LedgerHistoryBefore) != 0 {
		t.Errorf("first submission must not have a before snapshot")
	}
}

func TestSubmit_InstructorCannotOverride(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitInput(key, instructorActor(), model.AttendancePresent, "")); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	_, err := svc.Submit(ctx, submitInput(key, instructorActor(), model.AttendanceLate, ""))

	var nae *NotAuthorizedToOverrideError
	if !errors.As(err, &nae) {
		t.Fatalf("expected NotAuthorizedToOverrideError, got %v", err)
	}
	if len(nae.AuthorizedRoles) == 0 {
		t.Errorf("authorized roles must be surfaced for the UI")
	}

	cur, err := svc.GetCurrent(ctx, key)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if cur.AttendanceRecordStatus != model.AttendancePresent {
		t.Errorf("failed override must not mutate the record, got %s", cur.AttendanceRecordStatus)
	}
}

func TestSubmit_ModeratorOverride_AppendsTransition(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitInput(key, instructorActor(), model.AttendancePresent, "")); err != nil {
		t.Fatalf("first submit: %v", err)
	}

	in := submitInput(key, moderatorActor(), model.AttendanceJustified, "izin lomba")
	in.OverrideReason = "koreksi setelah verifikasi surat"
	in.Now = sessionEnd.Add(2 * time.Hour)
	rec, err := svc.Submit(ctx, in)
	if err != nil {
		t.Fatalf("override: %v", err)
	}
	if rec.AttendanceRecordVersion != 2 {
		t.Errorf("expected version bump to 2, got %d", rec.AttendanceRecordVersion)
	}

	hist, _ := svc.GetHistory(ctx, key)
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(hist))
	}
	last := hist[1]
	if last.LedgerHistoryEvent != historyModel.HistoryEventOverridden {
		t.Errorf("expected event overridden, got %s", last.LedgerHistoryEvent)
	}
	if last.LedgerHistoryOverrideReason == nil || *last.LedgerHistoryOverrideReason != "koreksi setelah verifikasi surat" {
		t.Errorf("override reason not captured: %v", last.LedgerHistoryOverrideReason)
	}
	before, _ := model.AttendanceSnapshotFromJSON(last.LedgerHistoryBefore)
	after, _ := model.AttendanceSnapshotFromJSON(last.LedgerHistoryAfter)
	if before == nil || before.Status != model.AttendancePresent {
		t.Errorf("before snapshot must capture the superseded status, got %+v", before)
	}
	if after == nil || after.Status != model.AttendanceJustified {
		t.Errorf("after snapshot must capture the new status, got %+v", after)
	}

	// timestamp history tidak pernah mundur
	if hist[1].LedgerHistoryOccurredAt.Before(hist[0].LedgerHistoryOccurredAt) {
		t.Errorf("history must be time-ordered")
	}
}

func TestSubmit_UnknownStatus_Fails(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())

	_, err := svc.Submit(context.Background(), submitInput(testKey(), moderatorActor(), model.AttendanceStatus("vanished"), ""))

	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestGetCurrent_UnknownKey_NotFound(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())

	_, err := svc.GetCurrent(context.Background(), testKey())

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetHistory_IsReiterable(t *testing.T) {
	svc := NewAttendanceLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()

	if _, err := svc.Submit(ctx, submitInput(key, instructorActor(), model.AttendancePresent, "")); err != nil {
		t.Fatalf("submit: %v", err)
	}

	first, _ := svc.GetHistory(ctx, key)
	second, _ := svc.GetHistory(ctx, key)
	if len(first) != len(second) {
		t.Fatalf("history must be restartable: %d vs %d", len(first), len(second))
	}
}
