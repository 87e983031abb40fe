package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"akademiku_backend/internals/configs"
	evidenceDTO "akademiku_backend/internals/features/school/ledgers/evidence/dto"
	"akademiku_backend/internals/features/school/ledgers/evidence/service"
	helper "akademiku_backend/internals/helpers"
)

var validate = validator.New()

type EvidenceResolverController struct {
	Resolver *service.Resolver
}

func NewEvidenceResolverController() *EvidenceResolverController {
	// threshold dari ENV (fallback default kebijakan akademik)
	return &EvidenceResolverController{
		Resolver: service.NewResolver(service.ResolverConfig{
			LiveWatchFactor:     configs.LiveWatchFactor,
			LiveWatchCapMinutes: configs.LiveWatchCapMinutes,
			OnlineGraceDays:     configs.OnlineGraceDays,
		}),
	}
}

/* =========================================================
   POST /ledgers/evidence/resolve
   Murni: (descriptor sesi, evidence mentah) → saran + facts.
   Tidak menulis apa pun — keputusan final tetap lewat Submit.
========================================================= */
func (ctrl *EvidenceResolverController) Resolve(c *fiber.Ctx) error {
	var req evidenceDTO.ResolveEvidenceRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Body tidak valid")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	sess := req.ToSession()
	suggestion := ctrl.Resolver.Resolve(sess, req.ToEvidence())
	return helper.JsonOK(c, "", evidenceDTO.NewResolveEvidenceResponse(sess, suggestion))
}
