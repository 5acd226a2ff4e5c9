package dto

import (
	"strings"
	"time"

	"leadcrm_backend/internals/features/clients/clients/model"
	"leadcrm_backend/internals/helpers/dbtime"
)

type CreateClientRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Contact string `json:"contact" validate:"required,max=100"`
	Address string `json:"address" validate:"omitempty,max=255"`
	Note    string `json:"note" validate:"omitempty,max=2000"`
}

func (r *CreateClientRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Contact = strings.TrimSpace(r.Contact)
	r.Address = strings.TrimSpace(r.Address)
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING ABSENT FAIL SUCCESS_1 SUCCESS_2 PROMISING"`
}

func (r *UpdateStatusRequest) Normalize() {
	r.Status = strings.ToUpper(strings.TrimSpace(r.Status))
}

type ClientResponse struct {
	ClientID         int64     `json:"client_id"`
	Name             string    `json:"name"`
	Contact          string    `json:"contact"`
	Address          string    `json:"address,omitempty"`
	Note             string    `json:"note,omitempty"`
	Status           string    `json:"status"`
	OwnerID          *int64    `json:"owner_id"`
	OwnerName        *string   `json:"owner_name,omitempty"`
	IsDistributed    bool      `json:"is_distributed"`
	DistributionDate *string   `json:"distribution_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func FromModel(m model.ClientModel) ClientResponse {
	out := ClientResponse{
		ClientID:         m.ClientID,
		Name:             m.ClientName,
		Contact:          m.ClientContact,
		Address:          m.ClientAddress,
		Note:             m.ClientNote,
		Status:           m.ClientStatus,
		OwnerID:          m.ClientOwnerID,
		IsDistributed:    m.ClientIsDistributed,
		DistributionDate: dbtime.FormatDatePtr(m.ClientDistributionDate),
		CreatedAt:        m.ClientCreatedAt,
		UpdatedAt:        m.ClientUpdatedAt,
	}
	if m.Owner != nil {
		name := m.Owner.StaffName
		out.OwnerName = &name
	}
	return out
}

func FromModels(rows []model.ClientModel) []ClientResponse {
	out := make([]ClientResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
