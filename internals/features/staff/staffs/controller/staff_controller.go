package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"leadcrm_backend/internals/features/staff/staffs/dto"
	"leadcrm_backend/internals/features/staff/staffs/service"
	helper "leadcrm_backend/internals/helpers"
	helperAuth "leadcrm_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
)

var validate = helper.NewValidator()

type StaffController struct {
	Directory *service.Directory
}

func NewStaffController(dir *service.Directory) *StaffController {
	return &StaffController{Directory: dir}
}

// GET /api/a/staff?checked_in=true&search=
func (ctrl *StaffController) ListEligible(c *fiber.Ctx) error {
	onlyCheckedIn := false
	if s := strings.TrimSpace(c.Query("checked_in")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "checked_in must be true or false")
		}
		onlyCheckedIn = b
	}

	rows, err := ctrl.Directory.ListEligible(c.UserContext(), c.Query("search"), onlyCheckedIn)
	if err != nil {
		log.Printf("[ERROR] list staff: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load staff")
	}
	return helper.JsonList(c, "ok", rows, nil)
}

func staffError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrStaffNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUsernameTaken):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidRole),
		errors.Is(err, service.ErrEmptyStaffField),
		errors.Is(err, service.ErrSelfDeactivate):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] staff: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to process staff")
	}
}

func staffIDParam(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Params("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "staff id is invalid")
	}
	return id, nil
}

// GET /api/a/staff/:id
func (ctrl *StaffController) Get(c *fiber.Ctx) error {
	id, err := staffIDParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	m, err := ctrl.Directory.GetByID(c.UserContext(), id)
	if err != nil {
		return staffError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromModel(*m))
}

// POST /api/a/staff
func (ctrl *StaffController) Create(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m, err := ctrl.Directory.Create(c.UserContext(), req.Username, req.Name, req.Role)
	if err != nil {
		return staffError(c, err)
	}
	return helper.JsonCreated(c, "Staff created", dto.FromModel(*m))
}

// PATCH /api/a/staff/:id
func (ctrl *StaffController) Update(c *fiber.Ctx) error {
	callerID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := staffIDParam(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctrl.Directory.Update(c.UserContext(), id, callerID, service.UpdateInput{
		Name:   req.Name,
		Role:   req.Role,
		Active: req.IsActive,
	})
	if err != nil {
		return staffError(c, err)
	}
	return helper.JsonUpdated(c, "Staff updated", dto.FromModel(*m))
}
