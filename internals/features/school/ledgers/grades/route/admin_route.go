package route

import (
	gradeCtrl "akademiku_backend/internals/features/school/ledgers/grades/controller"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Route tulis: tambah kontribusi & batalkan kontribusi manual.
func GradeLedgerAdminRoutes(r fiber.Router, db *gorm.DB) {
	ctrl := gradeCtrl.NewGradeLedgerController(db)

	group := r.Group("/ledgers/grades")
	group.Post("/contributions", ctrl.AddContribution)         // POST /.../ledgers/grades/contributions
	group.Delete("/contributions/:id", ctrl.RemoveContribution) // DELETE /.../ledgers/grades/contributions/:id
}
