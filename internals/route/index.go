package routes

import (
	attendanceRoute "akademiku_backend/internals/features/school/ledgers/attendance/route"
	evidenceRoute "akademiku_backend/internals/features/school/ledgers/evidence/route"
	gradeRoute "akademiku_backend/internals/features/school/ledgers/grades/route"
	"akademiku_backend/internals/middlewares"
	authMw "akademiku_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

/* =========================================================
   SETUP ROUTES
   /api/u : baca (semua role ber-token, termasuk student)
   /api/a : tulis (staff; policy detil dicek di service)
========================================================= */
func SetupRoutes(app *fiber.App, db *gorm.DB) {
	api := app.Group("/api")

	// ===== USER (read-only + resolver) =====
	user := api.Group("/u", authMw.AuthJWT())
	attendanceRoute.AttendanceLedgerUserRoutes(user, db)
	gradeRoute.GradeLedgerUserRoutes(user, db)
	evidenceRoute.EvidenceResolverUserRoutes(user)

	// ===== ADMIN/STAFF (write path, rate-limited) =====
	admin := api.Group("/a", authMw.AuthJWT(), middlewares.LedgerWriteRateLimiter())
	attendanceRoute.AttendanceLedgerAdminRoutes(admin, db)
	gradeRoute.GradeLedgerAdminRoutes(admin, db)
}
