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
	attendanceDTO "akademiku_backend/internals/features/school/ledgers/attendance/dto"
	attendanceModel "akademiku_backend/internals/features/school/ledgers/attendance/model"
	"akademiku_backend/internals/features/school/ledgers/attendance/repository"
	"akademiku_backend/internals/features/school/ledgers/attendance/service"
	helper "akademiku_backend/internals/helpers"
	helperAuth "akademiku_backend/internals/helpers/auth"
	historyModel "akademiku_backend/internals/features/school/ledgers/history/model"
)

var validate = validator.New()

type AttendanceLedgerController struct {
	DB      *gorm.DB
	Service *service.AttendanceLedgerService
}

func NewAttendanceLedgerController(db *gorm.DB) *AttendanceLedgerController {
	return &AttendanceLedgerController{
		DB:      db,
		Service: service.NewAttendanceLedgerService(repository.NewAttendanceRepository(db)),
	}
}

/* =========================================================
   POST /ledgers/attendance
   Body: SubmitAttendanceRequest. Pelaku dari token.
========================================================= */
func (ctrl *AttendanceLedgerController) Submit(c *fiber.Ctx) error {
	claims, err := helperAuth.GetActorFromContext(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if !constants.IsStaffRole(claims.Role) {
		return helper.JsonError(c, fiber.StatusForbidden, constants.RoleErrorStaff("pencatatan kehadiran"))
	}

	var req attendanceDTO.SubmitAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	sessionEnd, err := req.SessionEnd()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	status, ok := attendanceModel.ParseAttendanceStatus(req.AttendanceStatus)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "attendance_status tidak valid")
	}

	rec, err := ctrl.Service.Submit(c.UserContext(), service.SubmitInput{
		Key:            req.Key(),
		SessionEndsAt:  sessionEnd,
		Actor:          historyModel.Actor{ID: claims.UserID, Role: claims.Role, Name: claims.UserName},
		Status:         status,
		Justification:  req.Justification(),
		OverrideReason: req.OverrideReason(),
		Now:            time.Now(),
	})
	if err != nil {
		return writeAttendanceError(c, err)
	}

	resp := attendanceDTO.NewAttendanceRecordResponse(rec)
	if rec.AttendanceRecordVersion == 1 {
		return helper.JsonCreated(c, "Kehadiran tercatat", resp)
	}
	return helper.JsonOK(c, "Kehadiran ditimpa", resp)
}

/* =========================================================
   GET /ledgers/attendance/current?course_id=&class_id=&session_id=&student_id=
========================================================= */
func (ctrl *AttendanceLedgerController) GetCurrent(c *fiber.Ctx) error {
	key, err := parseAttendanceKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	rec, err := ctrl.Service.GetCurrent(c.UserContext(), key)
	if err != nil {
		return writeAttendanceError(c, err)
	}
	return helper.JsonOK(c, "", attendanceDTO.NewAttendanceRecordResponse(rec))
}

/* =========================================================
   GET /ledgers/attendance/history?course_id=&class_id=&session_id=&student_id=
   Seluruh transisi, tertua dulu.
========================================================= */
func (ctrl *AttendanceLedgerController) GetHistory(c *fiber.Ctx) error {
	key, err := parseAttendanceKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	rows, err := ctrl.Service.GetHistory(c.UserContext(), key)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal mengambil history")
	}
	out, err := attendanceDTO.FromHistoryModels(rows)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal membaca snapshot history")
	}
	return helper.JsonOK(c, "", out)
}

/* =========================================================
   GET /ledgers/attendance/summary — record terkini + jumlah transisi
========================================================= */
func (ctrl *AttendanceLedgerController) GetSummary(c *fiber.Ctx) error {
	key, err := parseAttendanceKey(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	resp := attendanceDTO.AttendanceSummaryResponse{}
	rec, err := ctrl.Service.GetCurrent(c.UserContext(), key)
	if err != nil && !errors.Is(err, service.ErrNotFound) {
		return writeAttendanceError(c, err)
	}
	if rec != nil {
		resp.AttendanceCurrent = attendanceDTO.NewAttendanceRecordResponse(rec)
	}

	count, err := ctrl.Service.CountHistory(c.UserContext(), key)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menghitung history")
	}
	resp.AttendanceHistoryCount = count
	return helper.JsonOK(c, "", resp)
}

func parseAttendanceKey(c *fiber.Ctx) (attendanceModel.AttendanceKey, error) {
	var key attendanceModel.AttendanceKey
	for _, f := range []struct {
		name string
		dst  *uuid.UUID
	}{
		{"course_id", &key.CourseID},
		{"class_id", &key.ClassID},
		{"session_id", &key.SessionID},
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

// writeAttendanceError memetakan error service ke envelope JSON standar.
// Kegagalan precondition/otorisasi membawa detail untuk UI (kapan sesi
// selesai, siapa yang boleh menimpa).
func writeAttendanceError(c *fiber.Ctx, err error) error {
	var snc *service.SessionNotConcludedError
	if errors.As(err, &snc) {
		return helper.JsonErrorWithDetails(c, fiber.StatusPreconditionFailed, snc.Error(), fiber.Map{
			"session_ends_at": snc.EndsAt,
		})
	}
	var nae *service.NotAuthorizedToOverrideError
	if errors.As(err, &nae) {
		return helper.JsonErrorWithDetails(c, fiber.StatusForbidden, nae.Error(), fiber.Map{
			"authorized_roles": nae.AuthorizedRoles,
		})
	}
	switch {
	case errors.Is(err, service.ErrMissingJustification), errors.Is(err, service.ErrInvalidStatus):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	default:
		return helper.JsonError(c, fiber.StatusInternalServerError, "Gagal menyimpan kehadiran")
	}
}
