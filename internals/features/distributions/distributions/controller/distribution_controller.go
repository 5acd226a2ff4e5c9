package controller

import (
	"errors"
	"log"
	"strings"

	"leadcrm_backend/internals/features/distributions/distributions/dto"
	"leadcrm_backend/internals/features/distributions/distributions/service"
	helper "leadcrm_backend/internals/helpers"
	helperAuth "leadcrm_backend/internals/helpers/auth"
	"leadcrm_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var validate = helper.NewValidator()

type DistributionController struct {
	Engine *service.Engine
}

func NewDistributionController(engine *service.Engine) *DistributionController {
	return &DistributionController{Engine: engine}
}

// distributeError: caller mistakes are 400, state races are 409; both name the ids.
func distributeError(c *fiber.Ctx, err error) error {
	ids := service.OffendingIDs(err)
	var details any
	if ids != nil {
		details = fiber.Map{"ids": ids}
	}
	switch {
	case errors.Is(err, service.ErrEmptySelection),
		errors.Is(err, service.ErrMissingDate),
		errors.Is(err, service.ErrUnknownStaff),
		errors.Is(err, service.ErrUnknownClient):
		return helper.JsonErrorWithDetails(c, fiber.StatusBadRequest, err.Error(), details)
	case errors.Is(err, service.ErrClientAlreadyAssigned),
		errors.Is(err, service.ErrStaffNotCheckedIn):
		return helper.JsonErrorWithDetails(c, fiber.StatusConflict, err.Error(), details)
	default:
		log.Printf("[ERROR] distribute: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to distribute clients")
	}
}

// POST /api/a/distributions
func (ctrl *DistributionController) Distribute(c *fiber.Ctx) error {
	adminID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.DistributeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.DistributionDate = strings.TrimSpace(req.DistributionDate)
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var date datatypes.Date
	if req.DistributionDate != "" {
		if date, err = dbtime.ParseDate(req.DistributionDate); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	res, err := ctrl.Engine.Distribute(c.UserContext(), service.Request{
		ClientIDs:        req.ClientIDs,
		StaffIDs:         req.StaffIDs,
		DistributionDate: date,
		Randomize:        req.Randomize,
		DistributedBy:    adminID,
	})
	if err != nil {
		return distributeError(c, err)
	}
	return helper.JsonCreated(c, "Clients distributed", dto.FromResult(res, req.DistributionDate, req.Randomize))
}

// GET /api/a/distributions?page=&per_page=
func (ctrl *DistributionController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	rows, total, err := ctrl.Engine.ListBatches(c.UserContext(), p.Limit(), p.Offset())
	if err != nil {
		log.Printf("[ERROR] list batches: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load distributions")
	}
	meta := helper.BuildMeta(total, p)
	return helper.JsonList(c, "ok", dto.FromBatches(rows), &meta)
}

// GET /api/a/distributions/:id
func (ctrl *DistributionController) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(strings.TrimSpace(c.Params("id")))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "distribution id is invalid")
	}
	batch, rows, err := ctrl.Engine.GetBatch(c.UserContext(), id)
	if errors.Is(err, service.ErrBatchNotFound) {
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		log.Printf("[ERROR] get batch %s: %v", id, err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load distribution")
	}
	return helper.JsonOK(c, "ok", dto.FromBatchDetail(*batch, rows))
}
