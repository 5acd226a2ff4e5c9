package model

import (
	"time"

	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	"gorm.io/datatypes"
)

// AttendanceRecordModel is one work day of one staff member.
// NOT_CHECKED_IN = no row, CHECKED_IN = row without check-out, CHECKED_OUT = both times set.
type AttendanceRecordModel struct {
	AttendanceRecordID int64 `gorm:"column:attendance_record_id;primaryKey;autoIncrement" json:"attendance_record_id"`

	AttendanceStaffID  int64          `gorm:"column:attendance_staff_id;not null;uniqueIndex:uq_attendance_staff_day,priority:1" json:"attendance_staff_id"`
	AttendanceWorkDate datatypes.Date `gorm:"column:attendance_work_date;type:date;not null;uniqueIndex:uq_attendance_staff_day,priority:2;index" json:"attendance_work_date"`

	AttendanceCheckInTime  *time.Time `gorm:"column:attendance_check_in_time" json:"attendance_check_in_time,omitempty"`
	AttendanceCheckOutTime *time.Time `gorm:"column:attendance_check_out_time" json:"attendance_check_out_time,omitempty"`
	AttendanceMemo         string     `gorm:"column:attendance_memo;type:varchar(200)" json:"attendance_memo"`

	Staff *staffModel.StaffModel `gorm:"foreignKey:AttendanceStaffID;references:StaffID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`

	AttendanceCreatedAt time.Time `gorm:"column:attendance_created_at;autoCreateTime" json:"attendance_created_at"`
	AttendanceUpdatedAt time.Time `gorm:"column:attendance_updated_at;autoUpdateTime" json:"attendance_updated_at"`
}

func (AttendanceRecordModel) TableName() string { return "attendance_records" }

// IsOpen reports a session that was checked in and not yet checked out.
func (m AttendanceRecordModel) IsOpen() bool {
	return m.AttendanceCheckInTime != nil && m.AttendanceCheckOutTime == nil
}
