package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"akademiku_backend/internals/features/school/ledgers/grades/model"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
	"akademiku_backend/internals/helpers/keylock"
)

// Repository: akses persisten GradeLedger. Append/MarkRemoved wajib atomik
// dengan history entry-nya.
type Repository interface {
	// ListActive: kontribusi yang belum dibatalkan untuk key, urutan masuk.
	ListActive(ctx context.Context, key model.GradeKey) ([]model.GradeContributionModel, error)
	// Get mengembalikan (nil, nil) kalau id tidak ada di key tsb.
	Get(ctx context.Context, key model.GradeKey, id uuid.UUID) (*model.GradeContributionModel, error)
	Append(ctx context.Context, m *model.GradeContributionModel, entry *historyModel.LedgerHistoryModel) error
	// MarkRemoved hanya boleh sukses kalau kontribusi masih aktif;
	// kalau sudah dibatalkan writer lain, kembalikan ErrNotFound.
	MarkRemoved(ctx context.Context, m *model.GradeContributionModel, entry *historyModel.LedgerHistoryModel) error
	History(ctx context.Context, key model.GradeKey) ([]historyModel.LedgerHistoryModel, error)
}

// GradeLedgerService: daftar kontribusi append-only per key dengan cap
// total 10.00. Validasi kapasitas dievaluasi terhadap state setelah lock
// (bukan snapshot basi) supaya dua AddContribution paralel tidak bisa
// sama-sama lolos.
type GradeLedgerService struct {
	repo  Repository
	locks *keylock.KeyMutex
}

func NewGradeLedgerService(repo Repository) *GradeLedgerService {
	return &GradeLedgerService{
		repo:  repo,
		locks: keylock.New(),
	}
}

func (s *GradeLedgerService) activeTotalCents(ctx context.Context, key model.GradeKey) (int64, error) {
	rows, err := s.repo.ListActive(ctx, key)
	if err != nil {
		return 0, err
	}
	var total int64
	for i := range rows {
		total += rows[i].GradeContributionValueCents
	}
	return total, nil
}

// RemainingCapacity = 10.00 − total aktif, floor 0.
func (s *GradeLedgerService) RemainingCapacity(ctx context.Context, key model.GradeKey) (float64, error) {
	total, err := s.activeTotalCents(ctx, key)
	if err != nil {
		return 0, err
	}
	remaining := model.GradeCapCents - total
	if remaining < 0 {
		remaining = 0
	}
	return model.ValueFromCents(remaining), nil
}

// GetTotal: jumlah kontribusi aktif, selalu 2 desimal, dihitung ulang
// setiap panggilan (tidak dicache).
func (s *GradeLedgerService) GetTotal(ctx context.Context, key model.GradeKey) (float64, error) {
	total, err := s.activeTotalCents(ctx, key)
	if err != nil {
		return 0, err
	}
	return model.ValueFromCents(total), nil
}

// AddContributionInput: satu kontribusi dari processor item bernilai
// (ujian/tugas/pelajaran) atau entry manual.
type AddContributionInput struct {
	Key           model.GradeKey
	Value         float64
	Source        model.GradeSourceRef
	Justification string
	IsManual      bool
	Actor         historyModel.Actor
	Now           time.Time
}

// AddContribution memvalidasi nilai terhadap sisa kapasitas lalu
// mempersistenkannya. Nilai dibulatkan ke 2 desimal (sen) sebelum
// dibandingkan; aritmetika sen membuat cap exact tanpa epsilon.
func (s *GradeLedgerService) AddContribution(ctx context.Context, in AddContributionInput) (*model.GradeContributionModel, error) {
	if math.IsNaN(in.Value) || math.IsInf(in.Value, 0) || in.Value <= 0 {
		return nil, ErrInvalidValue
	}
	cents := model.CentsFromValue(in.Value)
	if cents <= 0 {
		// nilai positif tapi di bawah setengah sen → tidak bermakna
		return nil, ErrInvalidValue
	}

	switch in.Source.Kind {
	case model.GradeSourceExam, model.GradeSourceAssignment, model.GradeSourceLesson, model.GradeSourceOther:
	default:
		return nil, ErrInvalidSource
	}

	justification := strings.TrimSpace(in.Justification)
	if len([]rune(justification)) < 3 {
		return nil, ErrMissingJustification
	}

	unlock := s.locks.Lock(in.Key.LockKey())
	defer unlock()

	total, err := s.activeTotalCents(ctx, in.Key)
	if err != nil {
		return nil, err
	}
	remaining := model.GradeCapCents - total
	if remaining < 0 {
		remaining = 0
	}
	if cents > remaining {
		return nil, &InsufficientCapacityError{RemainingCents: remaining}
	}

	contribution := &model.GradeContributionModel{
		GradeContributionID:             uuid.New(),
		GradeContributionCourseID:       in.Key.CourseID,
		GradeContributionClassID:        in.Key.ClassID,
		GradeContributionStudentID:      in.Key.StudentID,
		GradeContributionValueCents:     cents,
		GradeContributionSourceKind:     in.Source.Kind,
		GradeContributionSourceRefID:    in.Source.RefID,
		GradeContributionSourceRefTitle: in.Source.RefTitle,
		GradeContributionJustification:  justification,
		GradeContributionIsManual:       in.IsManual,
		GradeContributionActorID:        in.Actor.ID,
		GradeContributionActorRole:      in.Actor.Role,
		GradeContributionActorName:      in.Actor.Name,
	}

	entry, err := s.buildEntry(in.Key, historyModel.HistoryEventAdded, contribution, in.Actor, in.Now)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, contribution, entry); err != nil {
		return nil, err
	}
	return contribution, nil
}

// RemoveContribution membatalkan satu kontribusi manual (soft remove).
// Kontribusi otomatis immutable lewat path ini.
func (s *GradeLedgerService) RemoveContribution(ctx context.Context, key model.GradeKey, contributionID uuid.UUID, actor historyModel.Actor, now time.Time) error {
	unlock := s.locks.Lock(key.LockKey())
	defer unlock()

	target, err := s.repo.Get(ctx, key, contributionID)
	if err != nil {
		return err
	}
	if target == nil || target.GradeContributionIsRemoved {
		return ErrNotFound
	}
	if !target.GradeContributionIsManual {
		return ErrNotManual
	}

	removedAt := now
	updated := *target
	updated.GradeContributionIsRemoved = true
	updated.GradeContributionRemovedAt = &removedAt

	entry, err := s.buildEntry(key, historyModel.HistoryEventRemoved, target, actor, now)
	if err != nil {
		return err
	}
	return s.repo.MarkRemoved(ctx, &updated, entry)
}

func (s *GradeLedgerService) buildEntry(key model.GradeKey, event string, c *model.GradeContributionModel, actor historyModel.Actor, now time.Time) (*historyModel.LedgerHistoryModel, error) {
	snap, err := model.SnapshotOfContribution(c).ToJSON()
	if err != nil {
		return nil, err
	}
	contributionID := c.GradeContributionID
	entry := &historyModel.LedgerHistoryModel{
		LedgerHistoryKind:          historyModel.LedgerKindGrade,
		LedgerHistoryEvent:         event,
		LedgerHistoryCourseID:      key.CourseID,
		LedgerHistoryClassID:       key.ClassID,
		LedgerHistoryStudentID:     key.StudentID,
		LedgerHistoryJustification: c.GradeContributionJustification,
		LedgerHistoryActorID:       actor.ID,
		LedgerHistoryActorRole:     actor.Role,
		LedgerHistoryActorName:     actor.Name,
		LedgerHistoryOccurredAt:    now,
	}
	if contributionID != uuid.Nil {
		entry.LedgerHistoryContributionID = &contributionID
	}
	// entry Removed membawa snapshot kontribusi di before,
	// entry Added membawanya di after
	if event == historyModel.HistoryEventRemoved {
		entry.LedgerHistoryBefore = snap
	} else {
		entry.LedgerHistoryAfter = snap
	}
	return entry, nil
}

// GetHistory: seluruh event Added/Removed untuk key, tertua dulu.
func (s *GradeLedgerService) GetHistory(ctx context.Context, key model.GradeKey) ([]historyModel.LedgerHistoryModel, error) {
	return s.repo.History(ctx, key)
}

// ListActive untuk layar rincian kontribusi.
func (s *GradeLedgerService) ListActive(ctx context.Context, key model.GradeKey) ([]model.GradeContributionModel, error) {
	return s.repo.ListActive(ctx, key)
}
