package details

import (
	"time"

	attendanceRoute "leadcrm_backend/internals/features/attendance/attendance_records/route"
	attendanceService "leadcrm_backend/internals/features/attendance/attendance_records/service"
	clientRoute "leadcrm_backend/internals/features/clients/clients/route"
	clientService "leadcrm_backend/internals/features/clients/clients/service"
	distributionRoute "leadcrm_backend/internals/features/distributions/distributions/route"
	distributionService "leadcrm_backend/internals/features/distributions/distributions/service"
	rankingRoute "leadcrm_backend/internals/features/rankings/rankings/route"
	rankingService "leadcrm_backend/internals/features/rankings/rankings/service"
	staffRoute "leadcrm_backend/internals/features/staff/staffs/route"
	staffService "leadcrm_backend/internals/features/staff/staffs/service"

	"leadcrm_backend/internals/configs"
	"leadcrm_backend/internals/helpers/dbtime"
	middlewares "leadcrm_backend/internals/middlewares"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Services share one clock and one work-day timezone.
type Services struct {
	Tracker    *attendanceService.Tracker
	Directory  *staffService.Directory
	Pool       *clientService.Pool
	Engine     *distributionService.Engine
	Aggregator *rankingService.Aggregator
}

func NewServices(db *gorm.DB, cfg configs.Config, clock dbtime.Clock, loc *time.Location) *Services {
	return &Services{
		Tracker:    attendanceService.NewTracker(db, clock, loc),
		Directory:  staffService.NewDirectory(db, clock, loc),
		Pool:       clientService.NewPool(db, loc),
		Engine:     distributionService.NewEngine(db, cfg.RequireCheckedIn, clock, loc),
		Aggregator: rankingService.NewAggregator(db, clock, loc),
	}
}

// CRMUserRoutes mounts what any signed-in staff member may call (/api/u).
func CRMUserRoutes(r fiber.Router, svc *Services) {
	attendanceRoute.AttendanceUserRoutes(r, svc.Tracker)
	clientRoute.ClientUserRoutes(r, svc.Pool)
	rankingRoute.RankingUserRoutes(r, svc.Aggregator)
}

// CRMAdminRoutes mounts the admin-only surface (/api/a).
func CRMAdminRoutes(r fiber.Router, svc *Services, strictLimit bool) {
	var extra []fiber.Handler
	if strictLimit {
		extra = append(extra, middlewares.DistributionRateLimiter())
	}
	distributionRoute.DistributionAdminRoutes(r, svc.Engine, extra...)
	staffRoute.StaffAdminRoutes(r, svc.Directory)
	attendanceRoute.AttendanceAdminRoutes(r, svc.Tracker)
	clientRoute.ClientAdminRoutes(r, svc.Pool)
	rankingRoute.RankingAdminRoutes(r, svc.Aggregator)
}
