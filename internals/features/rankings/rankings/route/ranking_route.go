package route

import (
	"leadcrm_backend/internals/features/rankings/rankings/controller"
	"leadcrm_backend/internals/features/rankings/rankings/service"

	"github.com/gofiber/fiber/v2"
)

// RankingUserRoutes: leaderboard, incentive board and personal summary under /api/u
func RankingUserRoutes(r fiber.Router, agg *service.Aggregator) {
	ctrl := controller.NewRankingController(agg)

	r.Get("/rankings", ctrl.Leaderboard)
	r.Get("/incentives/board", ctrl.IncentiveBoard)
	r.Get("/summary", ctrl.MySummary)
}

// RankingAdminRoutes: incentive rule management and the statistics dashboard under /api/a
func RankingAdminRoutes(r fiber.Router, agg *service.Aggregator) {
	ctrl := controller.NewRankingController(agg)

	r.Get("/incentives", ctrl.ListRules)
	r.Put("/incentives", ctrl.ReplaceRules)
	r.Get("/statistics", ctrl.Statistics)
}
