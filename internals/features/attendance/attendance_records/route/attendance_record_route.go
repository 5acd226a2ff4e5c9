package route

import (
	"leadcrm_backend/internals/features/attendance/attendance_records/controller"
	"leadcrm_backend/internals/features/attendance/attendance_records/service"

	"github.com/gofiber/fiber/v2"
)

// AttendanceUserRoutes: the caller's own attendance, /api/u/attendance
func AttendanceUserRoutes(r fiber.Router, tracker *service.Tracker) {
	ctrl := controller.NewAttendanceRecordController(tracker)

	g := r.Group("/attendance")
	g.Post("/check-in", ctrl.CheckIn)
	g.Put("/check-out", ctrl.CheckOut)
	g.Get("/today", ctrl.Today)
	g.Get("/", ctrl.MyMonthly)
}

// AttendanceAdminRoutes: /api/a/attendance
func AttendanceAdminRoutes(r fiber.Router, tracker *service.Tracker) {
	ctrl := controller.NewAttendanceRecordController(tracker)

	g := r.Group("/attendance")
	g.Get("/", ctrl.ListMonthly)
}
