package model

import (
	"time"

	"leadcrm_backend/internals/helpers/dbtypes"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DistributionBatchModel is the audit row of one successful distribute call.
type DistributionBatchModel struct {
	DistributionBatchID uuid.UUID `gorm:"column:distribution_batch_id;type:uuid;primaryKey" json:"distribution_batch_id"`

	DistributionBatchDistributedBy int64          `gorm:"column:distribution_batch_distributed_by;not null;index" json:"distribution_batch_distributed_by"`
	DistributionBatchDate          datatypes.Date `gorm:"column:distribution_batch_date;type:date;not null;index" json:"distribution_batch_date"`
	DistributionBatchRandomize     bool           `gorm:"column:distribution_batch_randomize;not null" json:"distribution_batch_randomize"`

	DistributionBatchClientCount int               `gorm:"column:distribution_batch_client_count;not null" json:"distribution_batch_client_count"`
	DistributionBatchStaffCount  int               `gorm:"column:distribution_batch_staff_count;not null" json:"distribution_batch_staff_count"`
	DistributionBatchClientIDs   dbtypes.Int64List `gorm:"column:distribution_batch_client_ids" json:"distribution_batch_client_ids"`
	DistributionBatchStaffIDs    dbtypes.Int64List `gorm:"column:distribution_batch_staff_ids" json:"distribution_batch_staff_ids"`

	// [{"staff_id":1,"count":4}, ...] in staff order
	DistributionBatchPerStaffCounts datatypes.JSON `gorm:"column:distribution_batch_per_staff_counts" json:"distribution_batch_per_staff_counts"`

	DistributionBatchCreatedAt time.Time `gorm:"column:distribution_batch_created_at;autoCreateTime;index" json:"distribution_batch_created_at"`
}

func (DistributionBatchModel) TableName() string { return "distribution_batches" }

func (b *DistributionBatchModel) BeforeCreate(tx *gorm.DB) error {
	if b.DistributionBatchID == uuid.Nil {
		b.DistributionBatchID = uuid.New()
	}
	return nil
}

// ClientAssignmentModel attributes one client to one staff member within a batch.
type ClientAssignmentModel struct {
	ClientAssignmentID int64 `gorm:"column:client_assignment_id;primaryKey;autoIncrement" json:"client_assignment_id"`

	ClientAssignmentBatchID  uuid.UUID `gorm:"column:client_assignment_batch_id;type:uuid;not null;index" json:"client_assignment_batch_id"`
	ClientAssignmentClientID int64     `gorm:"column:client_assignment_client_id;not null;index" json:"client_assignment_client_id"`
	ClientAssignmentStaffID  int64     `gorm:"column:client_assignment_staff_id;not null;index:idx_client_assignments_staff_date,priority:1" json:"client_assignment_staff_id"`

	ClientAssignmentDistributionDate datatypes.Date `gorm:"column:client_assignment_distribution_date;type:date;not null;index:idx_client_assignments_staff_date,priority:2" json:"client_assignment_distribution_date"`

	// index of the client in the assignment order of its batch
	ClientAssignmentPosition int `gorm:"column:client_assignment_position;not null" json:"client_assignment_position"`

	ClientAssignmentCreatedAt time.Time `gorm:"column:client_assignment_created_at;autoCreateTime" json:"client_assignment_created_at"`
}

func (ClientAssignmentModel) TableName() string { return "client_assignments" }
