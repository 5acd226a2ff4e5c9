package controller

import (
	"errors"
	"log"
	"strconv"
	"strings"

	"leadcrm_backend/internals/features/attendance/attendance_records/dto"
	"leadcrm_backend/internals/features/attendance/attendance_records/service"
	helper "leadcrm_backend/internals/helpers"
	helperAuth "leadcrm_backend/internals/helpers/auth"
	"leadcrm_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
)

var validate = helper.NewValidator()

type AttendanceRecordController struct {
	Tracker *service.Tracker
}

func NewAttendanceRecordController(tracker *service.Tracker) *AttendanceRecordController {
	return &AttendanceRecordController{Tracker: tracker}
}

func attendanceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrAlreadyCheckedIn),
		errors.Is(err, service.ErrNotCheckedIn),
		errors.Is(err, service.ErrAlreadyCheckedOut),
		errors.Is(err, service.ErrCheckOutNotAfterCheckIn):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUnknownStaff):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidMonth):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	default:
		log.Printf("[ERROR] attendance: %v", err)
		return helper.JsonError(c, fiber.StatusInternalServerError, "Failed to process attendance")
	}
}

// POST /api/u/attendance/check-in
func (ctrl *AttendanceRecordController) CheckIn(c *fiber.Ctx) error {
	staffID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CheckInRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
		}
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	rec, err := ctrl.Tracker.CheckIn(c.UserContext(), staffID, req.Memo)
	if err != nil {
		return attendanceError(c, err)
	}
	return helper.JsonCreated(c, "Checked in", dto.FromModel(*rec))
}

// PUT /api/u/attendance/check-out
func (ctrl *AttendanceRecordController) CheckOut(c *fiber.Ctx) error {
	staffID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rec, err := ctrl.Tracker.CheckOut(c.UserContext(), staffID)
	if err != nil {
		return attendanceError(c, err)
	}
	return helper.JsonUpdated(c, "Checked out", dto.FromModel(*rec))
}

// GET /api/u/attendance/today
func (ctrl *AttendanceRecordController) Today(c *fiber.Ctx) error {
	staffID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rec, err := ctrl.Tracker.TodayRecord(c.UserContext(), staffID)
	if err != nil {
		return attendanceError(c, err)
	}

	resp := dto.TodayResponse{
		WorkDate: dbtime.FormatDate(ctrl.Tracker.Today()),
		State:    dto.StateOf(rec),
	}
	if rec != nil {
		r := dto.FromModel(*rec)
		resp.Record = &r
	}
	return helper.JsonOK(c, "ok", resp)
}

// GET /api/u/attendance?month=YYYY-MM
func (ctrl *AttendanceRecordController) MyMonthly(c *fiber.Ctx) error {
	staffID, err := helperAuth.GetStaffIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := ctrl.Tracker.MonthlyRecords(c.UserContext(), staffID, c.Query("month"))
	if err != nil {
		return attendanceError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), nil)
}

// GET /api/a/attendance?month=YYYY-MM&staff_id=
func (ctrl *AttendanceRecordController) ListMonthly(c *fiber.Ctx) error {
	var staffID int64
	if s := strings.TrimSpace(c.Query("staff_id")); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			return helper.JsonError(c, fiber.StatusBadRequest, "staff_id is invalid")
		}
		staffID = id
	}
	rows, err := ctrl.Tracker.MonthlyRecords(c.UserContext(), staffID, c.Query("month"))
	if err != nil {
		return attendanceError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromModels(rows), nil)
}
