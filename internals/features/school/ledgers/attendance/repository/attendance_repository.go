package repository

import (
	"context"
	"errors"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/school/ledgers/attendance/model"
	"akademiku_backend/internals/features/school/ledgers/attendance/service"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
	historySvc "akademiku_backend/internals/features/school/ledgers/history/service"
)

// AttendanceRepository: implementasi Postgres dari service.Repository.
// Record + history entry selalu ditulis dalam satu transaksi.
type AttendanceRepository struct {
	DB       *gorm.DB
	Recorder *historySvc.Recorder
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{
		DB:       db,
		Recorder: historySvc.NewRecorder(db),
	}
}

var _ service.Repository = (*AttendanceRepository)(nil)

func (r *AttendanceRepository) GetCurrent(ctx context.Context, key model.AttendanceKey) (*model.AttendanceRecordModel, error) {
	var rec model.AttendanceRecordModel
	err := r.DB.WithContext(ctx).
		Where(`
			attendance_records_course_id = ?
			AND attendance_records_class_id = ?
			AND attendance_records_session_id = ?
			AND attendance_records_student_id = ?
		`, key.CourseID, key.ClassID, key.SessionID, key.StudentID).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *AttendanceRepository) Create(ctx context.Context, rec *model.AttendanceRecordModel, entry *historyModel.LedgerHistoryModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			if isUniqueViolation(err) {
				// writer lain menang race create untuk key yang sama
				return service.ErrConflict
			}
			return err
		}
		return r.Recorder.AppendTx(tx, entry)
	})
}

func (r *AttendanceRepository) UpdateCAS(ctx context.Context, rec *model.AttendanceRecordModel, prevVersion int64, entry *historyModel.LedgerHistoryModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.AttendanceRecordModel{}).
			Where("attendance_records_id = ? AND attendance_records_version = ?",
				rec.AttendanceRecordID, prevVersion).
			Updates(map[string]interface{}{
				"attendance_records_status":        rec.AttendanceRecordStatus,
				"attendance_records_justification": rec.AttendanceRecordJustification,
				"attendance_records_version":       rec.AttendanceRecordVersion,
				"attendance_records_actor_id":      rec.AttendanceRecordActorID,
				"attendance_records_actor_role":    rec.AttendanceRecordActorRole,
				"attendance_records_actor_name":    rec.AttendanceRecordActorName,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// versi sudah bergeser → write ini kalah
			return service.ErrConflict
		}
		return r.Recorder.AppendTx(tx, entry)
	})
}

func (r *AttendanceRepository) History(ctx context.Context, key model.AttendanceKey) ([]historyModel.LedgerHistoryModel, error) {
	return r.Recorder.ListAttendanceByKey(ctx, key.CourseID, key.ClassID, key.SessionID, key.StudentID)
}

func (r *AttendanceRepository) CountHistory(ctx context.Context, key model.AttendanceKey) (int64, error) {
	return r.Recorder.CountAttendanceByKey(ctx, key.CourseID, key.ClassID, key.SessionID, key.StudentID)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
