package dto

import (
	"testing"
	"time"

	"leadcrm_backend/internals/features/distributions/distributions/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestFromBatchPerStaffCounts(t *testing.T) {
	b := model.DistributionBatchModel{
		DistributionBatchID:             uuid.New(),
		DistributionBatchDate:           datatypes.Date(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)),
		DistributionBatchPerStaffCounts: datatypes.JSON(`[{"staff_id":4,"name":"Alice","count":2},{"staff_id":9,"count":1}]`),
	}
	got := FromBatch(b)
	if got.DistributionDate != "2026-03-10" {
		t.Fatalf("date = %s", got.DistributionDate)
	}
	if len(got.PerStaffCounts) != 2 || got.PerStaffCounts[0].StaffID != 4 || got.PerStaffCounts[0].Count != 2 {
		t.Fatalf("counts = %+v", got.PerStaffCounts)
	}
}

func TestFromBatchCorruptSnapshot(t *testing.T) {
	b := model.DistributionBatchModel{
		DistributionBatchID:             uuid.New(),
		DistributionBatchClientCount:    3,
		DistributionBatchPerStaffCounts: datatypes.JSON(`{"staff_id":`),
	}
	got := FromBatch(b)
	if got.PerStaffCounts != nil {
		t.Fatalf("corrupt snapshot decoded to %+v", got.PerStaffCounts)
	}
	if got.ClientCount != 3 {
		t.Fatalf("the rest of the batch should survive, got %+v", got)
	}
}
