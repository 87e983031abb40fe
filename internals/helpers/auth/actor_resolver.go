// internals/helpers/auth/actor_resolver.go
package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ActorClaims adalah identitas pelaku hasil ekstraksi JWT middleware.
// Engine mempercayai role yang diberikan layanan auth (tidak menyimpan
// permission sendiri).
type ActorClaims struct {
	UserID   uuid.UUID
	Role     string
	UserName string
}

// GetActorFromContext membaca klaim yang sudah disimpan middleware auth
// di Locals. Error → 401 (request tidak lewat middleware / token rusak).
func GetActorFromContext(c *fiber.Ctx) (ActorClaims, error) {
	rawID, _ := c.Locals("user_id").(string)
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil || id == uuid.Nil {
		return ActorClaims{}, fiber.NewError(fiber.StatusUnauthorized, "User tidak terautentik")
	}

	role, _ := c.Locals("role").(string)
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		return ActorClaims{}, fiber.NewError(fiber.StatusUnauthorized, "Role tidak ditemukan di token")
	}

	name, _ := c.Locals("user_name").(string)

	return ActorClaims{UserID: id, Role: role, UserName: name}, nil
}
