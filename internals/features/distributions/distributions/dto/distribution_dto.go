package dto

import (
	"encoding/json"
	"log"
	"time"

	"leadcrm_backend/internals/features/distributions/distributions/model"
	"leadcrm_backend/internals/features/distributions/distributions/service"
	"leadcrm_backend/internals/helpers/dbtime"

	"github.com/google/uuid"
)

// DistributeRequest: emptiness and a missing date are checked by the engine so they
// surface as 400 with the engine's message, not as a 422.
type DistributeRequest struct {
	ClientIDs        []int64 `json:"client_ids" validate:"omitempty,dive,gt=0"`
	StaffIDs         []int64 `json:"staff_ids" validate:"omitempty,dive,gt=0"`
	DistributionDate string  `json:"distribution_date" validate:"omitempty,datetime=2006-01-02"`
	Randomize        bool    `json:"randomize"`
}

type DistributeResponse struct {
	BatchID          uuid.UUID            `json:"batch_id"`
	DistributionDate string               `json:"distribution_date"`
	Randomize        bool                 `json:"randomize"`
	AssignedCount    int                  `json:"assigned_count"`
	PerStaffCounts   []service.StaffCount `json:"per_staff_counts"`
	Assignments      []service.Assignment `json:"assignments"`
}

func FromResult(r *service.Result, date string, randomize bool) DistributeResponse {
	return DistributeResponse{
		BatchID:          r.BatchID,
		DistributionDate: date,
		Randomize:        randomize,
		AssignedCount:    r.AssignedCount,
		PerStaffCounts:   r.PerStaff,
		Assignments:      r.Assignments,
	}
}

type BatchResponse struct {
	BatchID          uuid.UUID            `json:"batch_id"`
	DistributedBy    int64                `json:"distributed_by"`
	DistributionDate string               `json:"distribution_date"`
	Randomize        bool                 `json:"randomize"`
	ClientCount      int                  `json:"client_count"`
	StaffCount       int                  `json:"staff_count"`
	PerStaffCounts   []service.StaffCount `json:"per_staff_counts"`
	CreatedAt        time.Time            `json:"created_at"`
}

type AssignmentResponse struct {
	ClientID int64 `json:"client_id"`
	StaffID  int64 `json:"staff_id"`
	Position int   `json:"position"`
}

type BatchDetailResponse struct {
	BatchResponse
	ClientIDs   []int64              `json:"client_ids"`
	StaffIDs    []int64              `json:"staff_ids"`
	Assignments []AssignmentResponse `json:"assignments"`
}

func FromBatch(m model.DistributionBatchModel) BatchResponse {
	var counts []service.StaffCount
	if len(m.DistributionBatchPerStaffCounts) > 0 {
		if err := json.Unmarshal(m.DistributionBatchPerStaffCounts, &counts); err != nil {
			log.Printf("[WARN] batch %s: unreadable per-staff counts: %v", m.DistributionBatchID, err)
			counts = nil
		}
	}
	return BatchResponse{
		BatchID:          m.DistributionBatchID,
		DistributedBy:    m.DistributionBatchDistributedBy,
		DistributionDate: dbtime.FormatDate(m.DistributionBatchDate),
		Randomize:        m.DistributionBatchRandomize,
		ClientCount:      m.DistributionBatchClientCount,
		StaffCount:       m.DistributionBatchStaffCount,
		PerStaffCounts:   counts,
		CreatedAt:        m.DistributionBatchCreatedAt,
	}
}

func FromBatches(rows []model.DistributionBatchModel) []BatchResponse {
	out := make([]BatchResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromBatch(r))
	}
	return out
}

func FromBatchDetail(m model.DistributionBatchModel, rows []model.ClientAssignmentModel) BatchDetailResponse {
	out := BatchDetailResponse{
		BatchResponse: FromBatch(m),
		ClientIDs:     []int64(m.DistributionBatchClientIDs),
		StaffIDs:      []int64(m.DistributionBatchStaffIDs),
		Assignments:   make([]AssignmentResponse, 0, len(rows)),
	}
	for _, r := range rows {
		out.Assignments = append(out.Assignments, AssignmentResponse{
			ClientID: r.ClientAssignmentClientID,
			StaffID:  r.ClientAssignmentStaffID,
			Position: r.ClientAssignmentPosition,
		})
	}
	return out
}
