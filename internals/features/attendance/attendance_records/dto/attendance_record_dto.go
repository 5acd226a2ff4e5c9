package dto

import (
	"strings"
	"time"

	"leadcrm_backend/internals/features/attendance/attendance_records/model"
	"leadcrm_backend/internals/helpers/dbtime"
)

const (
	StateNotCheckedIn = "NOT_CHECKED_IN"
	StateCheckedIn    = "CHECKED_IN"
	StateCheckedOut   = "CHECKED_OUT"
)

type CheckInRequest struct {
	Memo string `json:"memo" validate:"omitempty,max=200"`
}

func (r *CheckInRequest) Normalize() {
	r.Memo = strings.TrimSpace(r.Memo)
}

type AttendanceRecordResponse struct {
	AttendanceRecordID int64      `json:"attendance_record_id"`
	StaffID            int64      `json:"staff_id"`
	StaffName          string     `json:"staff_name,omitempty"`
	WorkDate           string     `json:"work_date"`
	State              string     `json:"state"`
	CheckInTime        *time.Time `json:"check_in_time"`
	CheckOutTime       *time.Time `json:"check_out_time"`
	Memo               string     `json:"memo,omitempty"`
}

// TodayResponse always carries a state; Record is null before check-in.
type TodayResponse struct {
	WorkDate string                    `json:"work_date"`
	State    string                    `json:"state"`
	Record   *AttendanceRecordResponse `json:"record"`
}

func StateOf(m *model.AttendanceRecordModel) string {
	switch {
	case m == nil || m.AttendanceCheckInTime == nil:
		return StateNotCheckedIn
	case m.AttendanceCheckOutTime == nil:
		return StateCheckedIn
	default:
		return StateCheckedOut
	}
}

func FromModel(m model.AttendanceRecordModel) AttendanceRecordResponse {
	out := AttendanceRecordResponse{
		AttendanceRecordID: m.AttendanceRecordID,
		StaffID:            m.AttendanceStaffID,
		WorkDate:           dbtime.FormatDate(m.AttendanceWorkDate),
		State:              StateOf(&m),
		CheckInTime:        m.AttendanceCheckInTime,
		CheckOutTime:       m.AttendanceCheckOutTime,
		Memo:               m.AttendanceMemo,
	}
	if m.Staff != nil {
		out.StaffName = m.Staff.StaffName
	}
	return out
}

func FromModels(rows []model.AttendanceRecordModel) []AttendanceRecordResponse {
	out := make([]AttendanceRecordResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
