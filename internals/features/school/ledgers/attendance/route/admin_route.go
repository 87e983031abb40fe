package route

import (
	attendanceCtrl "akademiku_backend/internals/features/school/ledgers/attendance/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Route tulis: submit pertama oleh instructor, override oleh
// admin/moderator/pedagogical (policy di service, bukan di sini).
func AttendanceLedgerAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := attendanceCtrl.NewAttendanceLedgerController(db)

	group := r.Group("/ledgers/attendance")
	group.Post("/", ctrl.Submit) // POST /.../ledgers/attendance
}
