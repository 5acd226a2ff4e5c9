package dto

import (
	"strings"
	"time"

	"leadcrm_backend/internals/features/staff/staffs/model"
)

type CreateStaffRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Name     string `json:"name" validate:"required,max=100"`
	Role     string `json:"role" validate:"required,oneof=admin staff"`
}

func (r *CreateStaffRequest) Normalize() {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.ToLower(strings.TrimSpace(r.Role))
}

// UpdateStaffRequest is a partial update; absent fields stay as they are.
type UpdateStaffRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=100"`
	Role     *string `json:"role" validate:"omitempty,oneof=admin staff"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateStaffRequest) Normalize() {
	if r.Name != nil {
		v := strings.TrimSpace(*r.Name)
		r.Name = &v
	}
	if r.Role != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Role))
		r.Role = &v
	}
}

type StaffResponse struct {
	StaffID   int64     `json:"staff_id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func FromModel(m model.StaffModel) StaffResponse {
	return StaffResponse{
		StaffID:   m.StaffID,
		Username:  m.StaffUsername,
		Name:      m.StaffName,
		Role:      m.StaffRole,
		IsActive:  m.StaffIsActive,
		CreatedAt: m.StaffCreatedAt,
	}
}
