package model

import (
	"time"

	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	"gorm.io/datatypes"
)

// ClientModel is a customer lead. client_id is autoincrement, so ascending id is creation order.
type ClientModel struct {
	ClientID int64 `gorm:"column:client_id;primaryKey;autoIncrement" json:"client_id"`

	ClientName    string `gorm:"column:client_name;type:varchar(100);not null;index" json:"client_name"`
	ClientContact string `gorm:"column:client_contact;type:varchar(100);not null" json:"client_contact"`
	ClientAddress string `gorm:"column:client_address;type:varchar(255)" json:"client_address"`
	ClientNote    string `gorm:"column:client_note;type:text" json:"client_note"`
	ClientStatus  string `gorm:"column:client_status;type:varchar(20);not null;default:'PENDING';index" json:"client_status"`

	// Assignment fields: only the distribution engine writes these.
	// client_is_distributed == (client_owner_id IS NOT NULL)
	ClientOwnerID          *int64          `gorm:"column:client_owner_id;index" json:"client_owner_id,omitempty"`
	ClientIsDistributed    bool            `gorm:"column:client_is_distributed;not null;index" json:"client_is_distributed"`
	ClientDistributionDate *datatypes.Date `gorm:"column:client_distribution_date;type:date" json:"client_distribution_date,omitempty"`

	Owner *staffModel.StaffModel `gorm:"foreignKey:ClientOwnerID;references:StaffID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`

	ClientCreatedAt time.Time `gorm:"column:client_created_at;autoCreateTime;index" json:"client_created_at"`
	ClientUpdatedAt time.Time `gorm:"column:client_updated_at;autoUpdateTime" json:"client_updated_at"`
}

func (ClientModel) TableName() string { return "clients" }
