// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	helper "leadcrm_backend/internals/helpers"
	helperAuth "leadcrm_backend/internals/helpers/auth"
)

// AuthMiddleware verifies the bearer token and loads the caller's staff row.
func AuthMiddleware(db *gorm.DB, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		if secret == "" {
			log.Println("[ERROR] JWT_SECRET is empty")
			return helper.JsonError(c, fiber.StatusInternalServerError, "Missing JWT Secret")
		}

		claims, err := helperAuth.ParseAccessToken(secret, tokenString)
		if err != nil {
			log.Println("[WARN] token rejected:", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Invalid or expired token")
		}

		staff, err := ensureStaffActive(db.WithContext(c.UserContext()), claims.StaffID)
		if err != nil {
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				return helper.JsonError(c, fiber.StatusUnauthorized, "Unauthorized - Staff not found")
			case errors.Is(err, errStaffInactive):
				return helper.JsonError(c, fiber.StatusForbidden, "Your account has been deactivated")
			default:
				log.Println("[ERROR] ensureStaffActive:", err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "Internal Server Error")
			}
		}

		storeClaimsToLocals(c, staff, tokenString)
		return c.Next()
	}
}
