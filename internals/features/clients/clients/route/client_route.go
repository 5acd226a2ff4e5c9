package route

import (
	"leadcrm_backend/internals/features/clients/clients/controller"
	"leadcrm_backend/internals/features/clients/clients/service"

	"github.com/gofiber/fiber/v2"
)

// ClientUserRoutes: /api/u/clients
func ClientUserRoutes(r fiber.Router, pool *service.Pool) {
	ctrl := controller.NewClientController(pool)

	g := r.Group("/clients")
	g.Get("/", ctrl.MyList)
	g.Patch("/:id/status", ctrl.UpdateStatus)
}

// ClientAdminRoutes: /api/a/clients
func ClientAdminRoutes(r fiber.Router, pool *service.Pool) {
	ctrl := controller.NewClientController(pool)

	g := r.Group("/clients")
	g.Get("/", ctrl.AdminList)
	g.Post("/", ctrl.Create)
}
