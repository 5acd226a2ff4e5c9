// file: internals/route/index.go
package routes

import (
	"log"
	"time"

	"leadcrm_backend/internals/configs"
	"leadcrm_backend/internals/constants"
	"leadcrm_backend/internals/helpers/dbtime"
	authMiddleware "leadcrm_backend/internals/middlewares/auth"
	routeDetails "leadcrm_backend/internals/route/details"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var startTime time.Time

// SetupRoutes mounts health plus the two authenticated scopes. clock is nil in production.
func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.Config, clock dbtime.Clock) *routeDetails.Services {
	startTime = time.Now()

	BaseRoutes(app, db)

	svc := routeDetails.NewServices(db, cfg, clock, cfg.Location())

	// ===================== PRIVATE (STAFF) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u",
		authMiddleware.AuthMiddleware(db, cfg.JWTSecret),
	)

	// ===================== ADMIN =====================
	log.Println("[INFO] Setting up ADMIN group (Auth + RoleCheck)...")
	admin := app.Group("/api/a",
		authMiddleware.AuthMiddleware(db, cfg.JWTSecret),
		authMiddleware.OnlyRoles(constants.RoleErrorAdmin("this endpoint"), constants.AdminOnly...),
	)

	log.Println("[INFO] Mounting CRM routes...")
	routeDetails.CRMUserRoutes(private, svc)
	routeDetails.CRMAdminRoutes(admin, svc, cfg.RateLimitPerMinute > 0)

	return svc
}
