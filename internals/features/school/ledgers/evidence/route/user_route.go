package route

import (
	evidenceCtrl "akademiku_backend/internals/features/school/ledgers/evidence/controller"

	"github.com/gofiber/fiber/v2"
)

// Resolver murni, tidak butuh DB. Cukup token valid.
func EvidenceResolverUserRoutes(r fiber.Router) {
	ctrl := evidenceCtrl.NewEvidenceResolverController()

	group := r.Group("/ledgers/evidence")
	group.Post("/resolve", ctrl.Resolve) // POST /.../ledgers/evidence/resolve
}
