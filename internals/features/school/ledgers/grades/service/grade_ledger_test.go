package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"akademiku_backend/internals/constants"
	"akademiku_backend/internals/features/school/ledgers/grades/model"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
)

// memoryRepo: fake in-memory untuk service.Repository. Mutex kecil di sini
// hanya supaya race detector tenang saat test konkuren — serialisasi per
// key tetap tanggung jawab service.
type memoryRepo struct {
	mu            sync.Mutex
	contributions []model.GradeContributionModel
	history       []historyModel.LedgerHistoryModel
	nextID        int64
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{} }

func (m *memoryRepo) ListActive(_ context.Context, key model.GradeKey) ([]model.GradeContributionModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.GradeContributionModel
	for _, c := range m.contributions {
		if c.Key() == key && !c.GradeContributionIsRemoved {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(_ context.Context, key model.GradeKey, id uuid.UUID) (*model.GradeContributionModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.contributions {
		if c.GradeContributionID == id && c.Key() == key {
			cp := c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) Append(_ context.Context, c *model.GradeContributionModel, entry *historyModel.LedgerHistoryModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contributions = append(m.contributions, *c)
	m.appendEntry(entry)
	return nil
}

func (m *memoryRepo) MarkRemoved(_ context.Context, c *model.GradeContributionModel, entry *historyModel.LedgerHistoryModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.contributions {
		if m.contributions[i].GradeContributionID == c.GradeContributionID {
			if m.contributions[i].GradeContributionIsRemoved {
				return ErrNotFound
			}
			m.contributions[i] = *c
			m.appendEntry(entry)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepo) History(_ context.Context, key model.GradeKey) ([]historyModel.LedgerHistoryModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []historyModel.LedgerHistoryModel
	for _, e := range m.history {
		if e.LedgerHistoryCourseID == key.CourseID &&
			e.LedgerHistoryClassID == key.ClassID &&
			e.LedgerHistoryStudentID == key.StudentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memoryRepo) appendEntry(entry *historyModel.LedgerHistoryModel) {
	m.nextID++
	entry.LedgerHistoryID = m.nextID
	m.history = append(m.history, *entry)
}

func testKey() model.GradeKey {
	return model.GradeKey{CourseID: uuid.New(), ClassID: uuid.New(), StudentID: uuid.New()}
}

func examSource() model.GradeSourceRef {
	return model.GradeSourceRef{Kind: model.GradeSourceExam}
}

func addInput(key model.GradeKey, value float64, isManual bool) AddContributionInput {
	return AddContributionInput{
		Key:           key,
		Value:         value,
		Source:        examSource(),
		Justification: "nilai ujian tengah semester",
		IsManual:      isManual,
		Actor:         historyModel.Actor{ID: uuid.New(), Role: constants.RoleInstructor, Name: "Bu Ratna"},
		Now:           time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
	}
}

func TestAddContribution_InvalidValues(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()

	for _, v := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1), 0.001} {
		if _, err := svc.AddContribution(ctx, addInput(key, v, false)); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("value %v: expected ErrInvalidValue, got %v", v, err)
		}
	}

	if total, _ := svc.GetTotal(ctx, key); total != 0 {
		t.Errorf("rejected adds must not change total, got %v", total)
	}
}

func TestAddContribution_ShortJustification(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	in := addInput(testKey(), 5, false)
	in.Justification = "  ab  "

	if _, err := svc.AddContribution(context.Background(), in); !errors.Is(err, ErrMissingJustification) {
		t.Fatalf("expected ErrMissingJustification, got %v", err)
	}
}

func TestAddContribution_UnknownSource(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	in := addInput(testKey(), 5, false)
	in.Source.Kind = model.GradeSourceKind("vibes")

	if _, err := svc.AddContribution(context.Background(), in); !errors.Is(err, ErrInvalidSource) {
		t.Fatalf("expected ErrInvalidSource, got %v", err)
	}
}

func TestCapacityScenario_ExistingTotal850(t *testing.T) {
	// total 8.50 → tambah 2.00 gagal (sisa 1.50) → tambah 1.50 sukses → total 10.00
	svc := NewGradeLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()

	if _, err := svc.AddContribution(ctx, addInput(key, 8.50, false)); err != nil {
		t.Fatalf("seed 8.50: %v", err)
	}

	_, err := svc.AddContribution(ctx, addInput(key, 2.00, false))
	var ice *InsufficientCapacityError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InsufficientCapacityError, got %v", err)
	}
	if ice.Remaining() != 1.50 {
		t.Errorf("expected remaining 1.50 surfaced, got %v", ice.Remaining())
	}
	if total, _ := svc.GetTotal(ctx, key); total != 8.50 {
		t.Errorf("failed add must not change total, got %v", total)
	}

	if _, err := svc.AddContribution(ctx, addInput(key, 1.50, false)); err != nil {
		t.Fatalf("add 1.50: %v", err)
	}
	if total, _ := svc.GetTotal(ctx, key); total != 10.00 {
		t.Errorf("expected total 10.00, got %v", total)
	}
	if remaining, _ := svc.RemainingCapacity(ctx, key); remaining != 0 {
		t.Errorf("expected remaining 0, got %v", remaining)
	}
}

func TestAddContribution_RoundsToTwoDecimals(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()

	// 3.333 → 3.33; tiga kali = 9.99, bukan 9.999
	for i := 0; i < 3; i++ {
		if _, err := svc.AddContribution(ctx, addInput(key, 3.333, false)); err != nil {
			t.Fatalf("add #%d: %v", i, err)
		}
	}
	if total, _ := svc.GetTotal(ctx, key); total != 9.99 {
		t.Errorf("expected 9.99, got %v", total)
	}
	if remaining, _ := svc.RemainingCapacity(ctx, key); remaining != 0.01 {
		t.Errorf("expected remaining 0.01, got %v", remaining)
	}
}

func TestRemoveContribution_OnlyManual(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()
	actor := historyModel.Actor{ID: uuid.New(), Role: constants.RoleModerator, Name: "Pak Dimas"}
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	auto, err := svc.AddContribution(ctx, addInput(key, 4, false))
	if err != nil {
		t.Fatalf("add auto: %v", err)
	}

	if err := svc.RemoveContribution(ctx, key, auto.GradeContributionID, actor, now); !errors.Is(err, ErrNotManual) {
		t.Fatalf("expected ErrNotManual, got %v", err)
	}
	if total, _ := svc.GetTotal(ctx, key); total != 4 {
		t.Errorf("failed removal must not change total, got %v", total)
	}

	manual, err := svc.AddContribution(ctx, addInput(key, 2, true))
	if err != nil {
		t.Fatalf("add manual: %v", err)
	}
	if err := svc.RemoveContribution(ctx, key, manual.GradeContributionID, actor, now); err != nil {
		t.Fatalf("remove manual: %v", err)
	}
	if total, _ := svc.GetTotal(ctx, key); total != 4 {
		t.Errorf("expected total back to 4 after removal, got %v", total)
	}

	// removal kedua → NotFound (sudah dibatalkan)
	if err := svc.RemoveContribution(ctx, key, manual.GradeContributionID, actor, now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on double removal, got %v", err)
	}

	// kapasitas yang dibebaskan bisa dipakai lagi
	if _, err := svc.AddContribution(ctx, addInput(key, 6, false)); err != nil {
		t.Fatalf("re-add into freed capacity: %v", err)
	}
}

func TestRemoveContribution_UnknownID(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	actor := historyModel.Actor{ID: uuid.New(), Role: constants.RoleAdmin}

	err := svc.RemoveContribution(context.Background(), testKey(), uuid.New(), actor, time.Now())

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistory_AddedAndRemovedEntries(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()
	actor := historyModel.Actor{ID: uuid.New(), Role: constants.RolePedagogical, Name: "Bu Sari"}

	manual, err := svc.AddContribution(ctx, addInput(key, 1.25, true))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveContribution(ctx, key, manual.GradeContributionID, actor, time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("remove: %v", err)
	}

	hist, err := svc.GetHistory(ctx, key)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(hist))
	}
	if hist[0].LedgerHistoryEvent != historyModel.HistoryEventAdded {
		t.Errorf("expected first event added, got %s", hist[0].LedgerHistoryEvent)
	}
	if hist[1].LedgerHistoryEvent != historyModel.HistoryEventRemoved {
		t.Errorf("expected second event removed, got %s", hist[1].LedgerHistoryEvent)
	}

	added, _ := model.GradeSnapshotFromJSON(hist[0].LedgerHistoryAfter)
	removed, _ := model.GradeSnapshotFromJSON(hist[1].LedgerHistoryBefore)
	if added == nil || added.Value != 1.25 {
		t.Errorf("added snapshot must carry the value, got %+v", added)
	}
	if removed == nil || removed.Value != 1.25 || removed.SourceKind != string(model.GradeSourceExam) {
		t.Errorf("removed entry must carry the same value/source for audit continuity, got %+v", removed)
	}
	if hist[1].LedgerHistoryOccurredAt.Before(hist[0].LedgerHistoryOccurredAt) {
		t.Errorf("history must be time-ordered")
	}
}

func TestTotalNeverExceedsCap_ArbitrarySequence(t *testing.T) {
	svc := NewGradeLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()
	actor := historyModel.Actor{ID: uuid.New(), Role: constants.RoleAdmin}

	values := []float64{3.5, 4.2, 9.0, 2.3, 0.7, 5.5, 0.01, 12, 1.8}
	var manualIDs []uuid.UUID
	for i, v := range values {
		c, err := svc.AddContribution(ctx, addInput(key, v, i%2 == 0))
		if err == nil && c.GradeContributionIsManual {
			manualIDs = append(manualIDs, c.GradeContributionID)
		}
		if total, _ := svc.GetTotal(ctx, key); total > 10 {
			t.Fatalf("total %v exceeded cap after add %v", total, v)
		}
		if len(manualIDs) > 0 && i%3 == 0 {
			_ = svc.RemoveContribution(ctx, key, manualIDs[0], actor, time.Now())
			manualIDs = manualIDs[1:]
		}
		if total, _ := svc.GetTotal(ctx, key); total > 10 {
			t.Fatalf("total %v exceeded cap after removal", total)
		}
	}
}

func TestAddContribution_ConcurrentSameKey_OnlyOneWins(t *testing.T) {
	// dua add paralel 6.00 + 6.00 di key kosong: tepat satu yang lolos cap
	svc := NewGradeLedgerService(newMemoryRepo())
	key := testKey()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.AddContribution(ctx, addInput(key, 6.00, false))
		}(i)
	}
	wg.Wait()

	var ok, capacity int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		default:
			var ice *InsufficientCapacityError
			if errors.As(err, &ice) {
				capacity++
			} else {
				t.Fatalf("unexpected error: %v", err)
			}
		}
	}
	if ok != 1 || capacity != 1 {
		t.Fatalf("expected exactly one success and one capacity rejection, got ok=%d capacity=%d", ok, capacity)
	}
	if total, _ := svc.GetTotal(ctx, key); total != 6.00 {
		t.Errorf("expected total 6.00, got %v", total)
	}
}
