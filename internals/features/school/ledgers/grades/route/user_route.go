package route

import (
	gradeCtrl "akademiku_backend/internals/features/school/ledgers/grades/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Route baca untuk layar rekap nilai.
func GradeLedgerUserRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := gradeCtrl.NewGradeLedgerController(db)

	group := r.Group("/ledgers/grades")
	group.Get("/total", ctrl.GetTotal)              // GET /.../ledgers/grades/total
	group.Get("/remaining", ctrl.GetRemaining)      // GET /.../ledgers/grades/remaining
	group.Get("/contributions", ctrl.ListContributions) // GET /.../ledgers/grades/contributions
	group.Get("/history", ctrl.GetHistory)          // GET /.../ledgers/grades/history
}
