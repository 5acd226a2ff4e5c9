package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"leadcrm_backend/internals/constants"
	"leadcrm_backend/internals/features/clients/clients/dto"
	"leadcrm_backend/internals/features/clients/clients/service"
	helper "leadcrm_backend/internals/helpers"
	helperAuth "leadcrm_backend/internals/helpers/auth"
	"leadcrm_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
)

var validate = helper.NewValidator()

type ClientController struct {
	Pool *service.Pool
}

func NewClientController(pool *service.Pool) *ClientController {
	return &ClientController{Pool: pool}
}

// parseListQuery reads the filters shared by the admin and staff lists.
// ?distributed=&search=&owner_id=&start_date=&end_date=&sort_by=&order=&page=&per_page=
func parseListQuery(c *fiber.Ctx) (service.ListQuery, error) {
	q := service.ListQuery{
		Search: c.Query("search"),
		Paging: helper.ParseFiber(c, "created_at", "desc", helper.SelectionOpts),
	}
	if s := strings.TrimSpace(c.Query("distributed")); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, errors.New("distributed must be true or false")
		}
		q.Distributed = &b
	}
	if s := strings.TrimSpace(c.Query("owner_id")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return q, errors.New("owner_id is invalid")
		}
		q.OwnerID = id
	}
	if s := strings.TrimSpace(c.Query("start_date")); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return q, err
		}
		q.StartDate = &d
	}
	if s := strings.TrimSpace(c.Query("end_date")); s != "" {
		d, err := dbtime.ParseDate(s)
		if err != nil {
			return q, err
		}
		q.EndDate = &d
	}
	return q, nil
}

func (ctrl *ClientController) list(c *fiber.Ctx, q service.ListQuery) error {
	rows, total, err := ctrl.Pool.List(c.UserContext(), q)
	if err != nil {
		log.Printf("[ERROR] list clients: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to load clients")
	}
	meta := helper.BuildMeta(total, q.Paging)
	return helper.JsonList(c, "ok", dto.FromModels(rows), &meta)
}

// GET /api/a/clients
func (ctrl *ClientController) AdminList(c *fiber.Ctx) error {
	q, err := parseListQuery(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return ctrl.list(c, q)
}

// GET /api/u/clients (owner forced to the caller)
func (ctrl *ClientController) MyList(c *fiber.Ctx) error {
	staffID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	q, err := parseListQuery(c)
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	q.OwnerID = staffID
	return ctrl.list(c, q)
}

// POST /api/a/clients
func (ctrl *ClientController) Create(c *fiber.Ctx) error {
	var req dto.CreateClientRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m, err := ctrl.Pool.Create(c.UserContext(), service.CreateInput{
		Name:    req.Name,
		Contact: req.Contact,
		Address: req.Address,
		Note:    req.Note,
	})
	if err != nil {
		log.Printf("[ERROR] create client: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to create client")
	}
	return helper.JsonCreated(c, "Client created", dto.FromModel(*m))
}

// PATCH /api/u/clients/:id/status
func (ctrl *ClientController) UpdateStatus(c *fiber.Ctx) error {
	staffID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	clientID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || clientID <= 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "client id is invalid")
	}

	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	isAdmin := helperAuth.GetRoleFromToken(c) == constants.RoleAdmin
	m, err := ctrl.Pool.UpdateStatus(c.UserContext(), clientID, staffID, isAdmin, req.Status)
	switch {
	case err == nil:
		return helper.JsonUpdated(c, "Status updated", dto.FromModel(*m))
	case errors.Is(err, service.ErrClientNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidStatus):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	default:
		log.Printf("[ERROR] update client status: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to update status")
	}
}
