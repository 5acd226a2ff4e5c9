package route

import (
	"leadcrm_backend/internals/features/distributions/distributions/controller"
	"leadcrm_backend/internals/features/distributions/distributions/service"

	"github.com/gofiber/fiber/v2"
)

// DistributionAdminRoutes: /api/a/distributions. extra runs before the POST handler only.
func DistributionAdminRoutes(r fiber.Router, engine *service.Engine, extra ...fiber.Handler) {
	ctrl := controller.NewDistributionController(engine)

	g := r.Group("/distributions")
	g.Post("/", append(extra, ctrl.Distribute)...)
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
}
