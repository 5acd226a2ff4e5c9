package model

import "time"

// StaffModel is a counselor or admin identity. Distribution reads it, never writes it.
type StaffModel struct {
	StaffID       int64  `gorm:"column:staff_id;primaryKey;autoIncrement" json:"staff_id"`
	StaffUsername string `gorm:"column:staff_username;type:varchar(100);not null;uniqueIndex:uq_staffs_username" json:"staff_username"`
	StaffName     string `gorm:"column:staff_name;type:varchar(100);not null" json:"staff_name"`

	// admin | staff
	StaffRole     string `gorm:"column:staff_role;type:varchar(20);not null;index:idx_staffs_role_active,priority:1" json:"staff_role"`
	StaffIsActive bool   `gorm:"column:staff_is_active;not null;index:idx_staffs_role_active,priority:2" json:"staff_is_active"`

	StaffCreatedAt time.Time `gorm:"column:staff_created_at;autoCreateTime" json:"staff_created_at"`
	StaffUpdatedAt time.Time `gorm:"column:staff_updated_at;autoUpdateTime" json:"staff_updated_at"`
}

func (StaffModel) TableName() string { return "staffs" }
