package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"leadcrm_backend/internals/features/rankings/rankings/dto"
	"leadcrm_backend/internals/features/rankings/rankings/service"
	helper "leadcrm_backend/internals/helpers"
	helperAuth "leadcrm_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
)

var validate = helper.NewValidator()

type RankingController struct {
	Aggregator *service.Aggregator
}

func NewRankingController(agg *service.Aggregator) *RankingController {
	return &RankingController{Aggregator: agg}
}

func rankingError(c *fiber.Ctx, err error) error {
	if errors.Is(err, service.ErrInvalidMonth) || errors.Is(err, service.ErrInvalidRule) {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	log.Printf("[ERROR] rankings: %v", err)
	return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load rankings")
}

// GET /api/u/rankings?month=YYYY-MM&limit=
func (ctrl *RankingController) Leaderboard(c *fiber.Ctx) error {
	limit := 0
	if s := strings.TrimSpace(c.Query("limit")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "limit is invalid")
		}
		limit = n
	}
	rows, err := ctrl.Aggregator.Leaderboard(c.UserContext(), c.Query("month"), limit)
	if err != nil {
		return rankingError(c, err)
	}
	return helper.JsonList(c, "ok", rows, nil)
}

// GET /api/u/incentives/board?month=YYYY-MM
func (ctrl *RankingController) IncentiveBoard(c *fiber.Ctx) error {
	rows, err := ctrl.Aggregator.IncentiveBoard(c.UserContext(), c.Query("month"))
	if err != nil {
		return rankingError(c, err)
	}
	return helper.JsonList(c, "ok", rows, nil)
}

// GET /api/u/summary?month=YYYY-MM
func (ctrl *RankingController) MySummary(c *fiber.Ctx) error {
	staffID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	sum, err := ctrl.Aggregator.MySummary(c.UserContext(), staffID, c.Query("month"))
	if err != nil {
		return rankingError(c, err)
	}
	return helper.JsonOK(c, "ok", sum)
}

// GET /api/a/incentives
func (ctrl *RankingController) ListRules(c *fiber.Ctx) error {
	rules, err := ctrl.Aggregator.ListRules(c.UserContext())
	if err != nil {
		return rankingError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rules), nil)
}

// PUT /api/a/incentives
func (ctrl *RankingController) ReplaceRules(c *fiber.Ctx) error {
	var req dto.ReplaceIncentiveRulesRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	rules, err := ctrl.Aggregator.ReplaceRules(c.UserContext(), req.ToModels())
	if err != nil {
		return rankingError(c, err)
	}
	return helper.JsonUpdated(c, "Incentive rules replaced", dto.FromModels(rules))
}

// GET /api/a/statistics
func (ctrl *RankingController) Statistics(c *fiber.Ctx) error {
	st, err := ctrl.Aggregator.Statistics(c.UserContext())
	if err != nil {
		return rankingError(c, err)
	}
	return helper.JsonOK(c, "ok", st)
}
