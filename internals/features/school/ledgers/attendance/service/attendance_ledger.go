package service

import (
	"context"
	"strings"
	"time"

	"akademiku_backend/internals/constants"
	"akademiku_backend/internals/features/school/ledgers/attendance/model"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
	"akademiku_backend/internals/helpers/keylock"
)

// Repository: akses persisten AttendanceLedger. Create/UpdateCAS wajib
// atomik dengan append history entry-nya (commit bersama atau gagal bersama).
type Repository interface {
	// GetCurrent mengembalikan (nil, nil) kalau key belum punya record.
	GetCurrent(ctx context.Context, key model.AttendanceKey) (*model.AttendanceRecordModel, error)
	Create(ctx context.Context, rec *model.AttendanceRecordModel, entry *historyModel.LedgerHistoryModel) error
	// UpdateCAS menimpa record hanya jika versinya masih prevVersion;
	// kalau tidak, kembalikan ErrConflict.
	UpdateCAS(ctx context.Context, rec *model.AttendanceRecordModel, prevVersion int64, entry *historyModel.LedgerHistoryModel) error
	History(ctx context.Context, key model.AttendanceKey) ([]historyModel.LedgerHistoryModel, error)
	CountHistory(ctx context.Context, key model.AttendanceKey) (int64, error)
}

// AttendanceLedgerService: satu record hidup per key + audit trail lengkap.
// Write per key diserialisasi lewat keylock; repository menambah CAS versi
// untuk proteksi antar proses.
type AttendanceLedgerService struct {
	repo  Repository
	locks *keylock.KeyMutex
}

func NewAttendanceLedgerService(repo Repository) *AttendanceLedgerService {
	return &AttendanceLedgerService{
		repo:  repo,
		locks: keylock.New(),
	}
}

// CanEdit: kehadiran baru boleh dicatat setelah sesi selesai.
func (s *AttendanceLedgerService) CanEdit(sessionEnd, now time.Time) bool {
	return !now.Before(sessionEnd)
}

// SubmitInput: satu keputusan kehadiran dari manusia atau importer.
type SubmitInput struct {
	Key            model.AttendanceKey
	SessionEndsAt  time.Time
	Actor          historyModel.Actor
	Status         model.AttendanceStatus
	Justification  string
	OverrideReason string
	Now            time.Time
}

// Submit memvalidasi lalu mempersistenkan keputusan kehadiran.
// Urutan cek: status → time-gate → justification → override policy.
// Semua kegagalan dilaporkan ke caller; tidak ada retry otomatis.
func (s *AttendanceLedgerService) Submit(ctx context.Context, in SubmitInput) (*model.AttendanceRecordModel, error) {
	switch in.Status {
	case model.AttendancePresent, model.AttendanceAbsent, model.AttendanceJustified, model.AttendanceLate:
	default:
		return nil, ErrInvalidStatus
	}

	if !s.CanEdit(in.SessionEndsAt, in.Now) {
		return nil, &SessionNotConcludedError{EndsAt: in.SessionEndsAt}
	}

	justification := strings.TrimSpace(in.Justification)
	if in.Status == model.AttendanceAbsent && justification == "" {
		return nil, ErrMissingJustification
	}

	unlock := s.locks.Lock(in.Key.LockKey())
	defer unlock()

	cur, err := s.repo.GetCurrent(ctx, in.Key)
	if err != nil {
		return nil, err
	}

	if cur == nil {
		return s.createFirst(ctx, in, justification)
	}
	return s.override(ctx, in, cur, justification)
}

func (s *AttendanceLedgerService) createFirst(ctx context.Context, in SubmitInput, justification string) (*model.AttendanceRecordModel, error) {
	rec := &model.AttendanceRecordModel{
		AttendanceRecordCourseID:  in.Key.CourseID,
		AttendanceRecordClassID:   in.Key.ClassID,
		AttendanceRecordSessionID: in.Key.SessionID,
		AttendanceRecordStudentID: in.Key.StudentID,
		AttendanceRecordStatus:    in.Status,
		AttendanceRecordVersion:   1,
		AttendanceRecordActorID:   in.Actor.ID,
		AttendanceRecordActorRole: in.Actor.Role,
		AttendanceRecordActorName: in.Actor.Name,
	}
	if justification != "" {
		rec.AttendanceRecordJustification = &justification
	}

	entry, err := s.buildEntry(in, historyModel.HistoryEventSubmitted, nil, rec, justification)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rec, entry); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *AttendanceLedgerService) override(ctx context.Context, in SubmitInput, cur *model.AttendanceRecordModel, justification string) (*model.AttendanceRecordModel, error) {
	// Instructor hanya boleh submit pertama kali; perubahan berikutnya
	// khusus role override.
	if !constants.IsOverrideRole(in.Actor.Role) {
		return nil, newNotAuthorizedToOverride()
	}

	prevVersion := cur.AttendanceRecordVersion
	updated := *cur
	updated.AttendanceRecordStatus = in.Status
	updated.AttendanceRecordJustification = nil
	if justification != "" {
		updated.AttendanceRecordJustification = &justification
	}
	updated.AttendanceRecordVersion = prevVersion + 1
	updated.AttendanceRecordActorID = in.Actor.ID
	updated.AttendanceRecordActorRole = in.Actor.Role
	updated.AttendanceRecordActorName = in.Actor.Name

	entry, err := s.buildEntry(in, historyModel.HistoryEventOverridden, cur, &updated, justification)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateCAS(ctx, &updated, prevVersion, entry); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AttendanceLedgerService) buildEntry(in SubmitInput, event string, before, after *model.AttendanceRecordModel, justification string) (*historyModel.LedgerHistoryModel, error) {
	sessionID := in.Key.SessionID
	entry := &historyModel.LedgerHistoryModel{
		LedgerHistoryKind:          historyModel.LedgerKindAttendance,
		LedgerHistoryEvent:         event,
		LedgerHistoryCourseID:      in.Key.CourseID,
		LedgerHistoryClassID:       in.Key.ClassID,
		LedgerHistorySessionID:     &sessionID,
		LedgerHistoryStudentID:     in.Key.StudentID,
		LedgerHistoryJustification: justification,
		LedgerHistoryActorID:       in.Actor.ID,
		LedgerHistoryActorRole:     in.Actor.Role,
		LedgerHistoryActorName:     in.Actor.Name,
		LedgerHistoryOccurredAt:    in.Now,
	}
	if reason := strings.TrimSpace(in.OverrideReason); reason != "" {
		entry.LedgerHistoryOverrideReason = &reason
	}

	if before != nil {
		raw, err := model.SnapshotOfRecord(before).ToJSON()
		if err != nil {
			return nil, err
		}
		entry.LedgerHistoryBefore = raw
	}
	raw, err := model.SnapshotOfRecord(after).ToJSON()
	if err != nil {
		return nil, err
	}
	entry.LedgerHistoryAfter = raw
	return entry, nil
}

// GetCurrent mengembalikan record hidup untuk key, atau ErrNotFound.
func (s *AttendanceLedgerService) GetCurrent(ctx context.Context, key model.AttendanceKey) (*model.AttendanceRecordModel, error) {
	rec, err := s.repo.GetCurrent(ctx, key)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	return rec, nil
}

// GetHistory: seluruh transisi untuk key, tertua dulu. Slice hasilnya
// milik caller (re-iterable, finite).
func (s *AttendanceLedgerService) GetHistory(ctx context.Context, key model.AttendanceKey) ([]historyModel.LedgerHistoryModel, error) {
	return s.repo.History(ctx, key)
}

// CountHistory untuk layar ringkasan.
func (s *AttendanceLedgerService) CountHistory(ctx context.Context, key model.AttendanceKey) (int64, error) {
	return s.repo.CountHistory(ctx, key)
}
