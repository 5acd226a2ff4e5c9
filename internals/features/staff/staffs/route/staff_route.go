package route

import (
	"leadcrm_backend/internals/features/staff/staffs/controller"
	"leadcrm_backend/internals/features/staff/staffs/service"

	"github.com/gofiber/fiber/v2"
)

// StaffAdminRoutes: /api/a/staff
func StaffAdminRoutes(r fiber.Router, dir *service.Directory) {
	ctrl := controller.NewStaffController(dir)
	g := r.Group("/staff")
	g.Get("/", ctrl.ListEligible)
	g.Post("/", ctrl.Create)
	g.Get("/:id", ctrl.Get)
	g.Patch("/:id", ctrl.Update)
}
