package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"akademiku_backend/internals/features/school/ledgers/grades/model"
	"akademiku_backend/internals/features/school/ledgers/grades/service"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
	historySvc "akademiku_backend/internals/features/school/ledgers/history/service"
)

// GradeRepository: implementasi Postgres dari service.Repository.
// Kontribusi + history entry selalu dalam satu transaksi.
type GradeRepository struct {
	DB       *gorm.DB
	Recorder *historySvc.Recorder
}

func NewGradeRepository(db *gorm.DB) *GradeRepository {
	return &GradeRepository{
		DB:       db,
		Recorder: historySvc.NewRecorder(db),
	}
}

var _ service.Repository = (*GradeRepository)(nil)

func (r *GradeRepository) ListActive(ctx context.Context, key model.GradeKey) ([]model.GradeContributionModel, error) {
	var rows []model.GradeContributionModel
	err := r.DB.WithContext(ctx).
		Where(`
			grade_contributions_course_id = ?
			AND grade_contributions_class_id = ?
			AND grade_contributions_student_id = ?
			AND grade_contributions_is_removed = FALSE
		`, key.CourseID, key.ClassID, key.StudentID).
		Order("grade_contributions_created_at ASC").
		Order("grade_contributions_id ASC").
		Find(&rows).Error
	return rows, err
}

func (r *GradeRepository) Get(ctx context.Context, key model.GradeKey, id uuid.UUID) (*model.GradeContributionModel, error) {
	var row model.GradeContributionModel
	err := r.DB.WithContext(ctx).
		Where(`
			grade_contributions_id = ?
			AND grade_contributions_course_id = ?
			AND grade_contributions_class_id = ?
			AND grade_contributions_student_id = ?
		`, id, key.CourseID, key.ClassID, key.StudentID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *GradeRepository) Append(ctx context.Context, m *model.GradeContributionModel, entry *historyModel.LedgerHistoryModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			if isUniqueViolation(err) {
				return service.ErrConflict
			}
			return err
		}
		return r.Recorder.AppendTx(tx, entry)
	})
}

func (r *GradeRepository) MarkRemoved(ctx context.Context, m *model.GradeContributionModel, entry *historyModel.LedgerHistoryModel) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.GradeContributionModel{}).
			Where("grade_contributions_id = ? AND grade_contributions_is_removed = FALSE",
				m.GradeContributionID).
			Updates(map[string]interface{}{
				"grade_contributions_is_removed": true,
				"grade_contributions_removed_at": m.GradeContributionRemovedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// sudah keburu dibatalkan writer lain
			return service.ErrNotFound
		}
		return r.Recorder.AppendTx(tx, entry)
	})
}

func (r *GradeRepository) History(ctx context.Context, key model.GradeKey) ([]historyModel.LedgerHistoryModel, error) {
	return r.Recorder.ListGradeByKey(ctx, key.CourseID, key.ClassID, key.StudentID)
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
