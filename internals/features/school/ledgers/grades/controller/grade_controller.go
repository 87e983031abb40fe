package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"akademiku_backend/internals/constants"
	gradeDTO "akademiku_backend/internals/features/school/ledgers/grades/dto"
	gradeModel "akademiku_backend/internals/features/school/ledgers/grades/model"
	"akademiku_backend/internals/features/school/ledgers/grades/repository"
	"akademiku_backend/internals/features/school/ledgers/grades/service"
	helper "akademiku_backend/internals/helpers"
	helperAuth "akademiku_backend/internals/helpers/auth"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
)

var validate = validator.New()

type GradeLedgerController struct {
	DB      *gorm.DB
	Service *service.GradeLedgerService
}

func NewGradeLedgerController(db *gorm.DB) *GradeLedgerController {
	return &GradeLedgerController{
		DB:      db,
		Service: service.NewGradeLedgerService(repository.NewGradeRepository(db)),
	}
}

/* =========================================================
   POST /ledgers/grades/contributions
========================================================= */
func (ctrl *GradeLedgerController) AddContribution(c *fiber.Ctx) error {
	claims, err := helperAuth.GetActorFromContext(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !constants.IsStaffRole(claims.Role) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStaff("pencatatan nilai"))
	}

	var req gradeDTO.AddGradeContributionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	actor := historyModel.Actor{ID: claims.UserID, Role: claims.Role, Name: claims.UserName}
	contribution, err := ctrl.Service.AddContribution(c.UserContext(), req.ToInput(actor, time.Now()))
	if err != nil {
		return writeGradeError(c, err)
	}
	return helper.JsonCreated(c, "Kontribusi nilai tercatat", gradeDTO.NewGradeContributionResponse(contribution))
}

/* =========================================================
   DELETE /ledgers/grades/contributions/:id?course_id=&class_id=&student_id=
   Hanya kontribusi manual. Soft remove + history entry.
========================================================= */
func (ctrl *GradeLedgerController) RemoveContribution(c *fiber.Ctx) error {
	claims, err := helperAuth.GetActorFromContext(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !constants.IsStaffRole(claims.Role) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStaff("pembatalan nilai"))
	}

	key, err := parseGradeKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	contributionID, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "id kontribusi tidak valid")
	}

	actor := historyModel.Actor{ID: claims.UserID, Role: claims.Role, Name: claims.UserName}
	if err := ctrl.Service.RemoveContribution(c.UserContext(), key, contributionID, actor, time.Now()); err != nil {
		return writeGradeError(c, err)
	}
	return helper.JsonDeleted(c, "Kontribusi dibatalkan", fiber.Map{"grade_contribution_id": contributionID})
}

/* =========================================================
   GET /ledgers/grades/total?course_id=&class_id=&student_id=
   Total + sisa kapasitas (dihitung ulang, tidak dicache).
========================================================= */
func (ctrl *GradeLedgerController) GetTotal(c *fiber.Ctx) error {
	key, err := parseGradeKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	total, err := ctrl.Service.GetTotal(c.UserContext(), key)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung total")
	}
	remaining, err := ctrl.Service.RemainingCapacity(c.UserContext(), key)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung sisa kapasitas")
	}
	return helper.JsonOK(c, "", gradeDTO.GradeTotalResponse{
		GradeTotal:             total,
		GradeRemainingCapacity: remaining,
		GradeCap:               gradeModel.ValueFromCents(gradeModel.GradeCapCents),
	})
}

/* =========================================================
   GET /ledgers/grades/remaining?course_id=&class_id=&student_id=
   Sisa kapasitas saja — untuk prefill form input nilai.
========================================================= */
func (ctrl *GradeLedgerController) GetRemaining(c *fiber.Ctx) error {
	key, err := parseGradeKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	remaining, err := ctrl.Service.RemainingCapacity(c.UserContext(), key)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung sisa kapasitas")
	}
	return helper.JsonOK(c, "", fiber.Map{"grade_remaining_capacity": remaining})
}

/* =========================================================
   GET /ledgers/grades/contributions?course_id=&class_id=&student_id=
   Kontribusi aktif, urutan masuk.
========================================================= */
func (ctrl *GradeLedgerController) ListContributions(c *fiber.Ctx) error {
	key, err := parseGradeKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	rows, err := ctrl.Service.ListActive(c.UserContext(), key)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil kontribusi")
	}
	return helper.JsonOK(c, "", gradeDTO.FromGradeContributionModels(rows))
}

/* =========================================================
   GET /ledgers/grades/history?course_id=&class_id=&student_id=
   Event Added/Removed, tertua dulu.
========================================================= */
func (ctrl *GradeLedgerController) GetHistory(c *fiber.Ctx) error {
	key, err := parseGradeKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	rows, err := ctrl.Service.GetHistory(c.UserContext(), key)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil history")
	}
	out, err := gradeDTO.FromHistoryModels(rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membaca snapshot history")
	}
	return helper.JsonOK(c, "", out)
}

func parseGradeKey(c *fiber.Ctx) (gradeModel.GradeKey, error) {
	var key gradeModel.GradeKey
	for _, f := range []struct {
		name string
		dst  *uuid.UUID
	}{
		{"course_id", &key.CourseID},
		{"class_id", &key.ClassID},
		{"student_id", &key.StudentID},
	} {
		id, err := uuid.Parse(strings.TrimSpace(c.Query(f.name)))
		if err != nil {
			return key, fiber.NewError(fiber.StatusBadRequest, f.name+" tidak valid")
		}
		*f.dst = id
	}
	return key, nil
}

// writeGradeError memetakan error service ke envelope JSON standar.
// Penolakan kapasitas membawa sisa kapasitas supaya user bisa koreksi
// nilainya (tidak ada clamping diam-diam di server).
func writeGradeError(c *fiber.Ctx, err error) error {
	var ice *service.InsufficientCapacityError
	if errors.As(err, &ice) {
		return helper.JsonErrorWithDetails(c, fiber.StatusConflict, ice.Error(), fiber.Map{
			"remaining_capacity": ice.Remaining(),
		})
	}
	switch {
	case errors.Is(err, service.ErrInvalidValue),
		errors.Is(err, service.ErrInvalidSource),
		errors.Is(err, service.ErrMissingJustification):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNotManual):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan nilai")
	}
}
