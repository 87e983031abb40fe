package service

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/school/ledgers/history/model"
)

// Recorder adalah satu-satunya pintu tulis/baca ke ledger_history_entries.
// Tabelnya append-only: Recorder sengaja tidak punya method update/delete.
type Recorder struct {
	DB *gorm.DB
}

func NewRecorder(db *gorm.DB) *Recorder {
	return &Recorder{DB: db}
}

// AppendTx menulis satu entry di dalam transaksi pemanggil, supaya entry
// history dan mutasi record-nya commit bersama (atau gagal bersama).
func (r *Recorder) AppendTx(tx *gorm.DB, e *model.LedgerHistoryModel) error {
	return tx.Create(e).Error
}

// ListAttendanceByKey mengembalikan history kehadiran satu key,
// tertua dulu. Tie-break pakai id (urutan append).
func (r *Recorder) ListAttendanceByKey(ctx context.Context, courseID, classID, sessionID, studentID uuid.UUID) ([]model.LedgerHistoryModel, error) {
	var rows []model.LedgerHistoryModel
	err := r.DB.WithContext(ctx).
		Where(`
			ledger_history_kind = ?
			AND ledger_history_course_id = ?
			AND ledger_history_class_id = ?
			AND ledger_history_session_id = ?
			AND ledger_history_student_id = ?
		`, model.LedgerKindAttendance, courseID, classID, sessionID, studentID).
		Order("ledger_history_occurred_at ASC").
		Order("ledger_history_id ASC").
		Find(&rows).Error
	return rows, err
}

// ListGradeByKey mengembalikan history nilai satu key, tertua dulu.
func (r *Recorder) ListGradeByKey(ctx context.Context, courseID, classID, studentID uuid.UUID) ([]model.LedgerHistoryModel, error) {
	var rows []model.LedgerHistoryModel
	err := r.DB.WithContext(ctx).
		Where(`
			ledger_history_kind = ?
			AND ledger_history_course_id = ?
			AND ledger_history_class_id = ?
			AND ledger_history_student_id = ?
		`, model.LedgerKindGrade, courseID, classID, studentID).
		Order("ledger_history_occurred_at ASC").
		Order("ledger_history_id ASC").
		Find(&rows).Error
	return rows, err
}

// CountAttendanceByKey untuk layar ringkasan (tanpa memuat semua entry).
func (r *Recorder) CountAttendanceByKey(ctx context.Context, courseID, classID, sessionID, studentID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.LedgerHistoryModel{}).
		Where(`
			ledger_history_kind = ?
			AND ledger_history_course_id = ?
			AND ledger_history_class_id = ?
			AND ledger_history_session_id = ?
			AND ledger_history_student_id = ?
		`, model.LedgerKindAttendance, courseID, classID, sessionID, studentID).
		Count(&n).Error
	return n, err
}
