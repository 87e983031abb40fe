package route

import (
	attendanceCtrl "akademiku_backend/internals/features/school/ledgers/attendance/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Route baca untuk layar detail kehadiran.
func AttendanceLedgerUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := attendanceCtrl.NewAttendanceLedgerController(db)

	group := r.Group("/ledgers/attendance")
	group.Get("/current", ctrl.GetCurrent)  // GET /.../ledgers/attendance/current
	group.Get("/history", ctrl.GetHistory)  // GET /.../ledgers/attendance/history
	group.Get("/summary", ctrl.GetSummary)  // GET /.../ledgers/attendance/summary
}
