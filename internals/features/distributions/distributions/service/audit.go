package service

import (
	"context"
	"errors"
	"fmt"

	"leadcrm_backend/internals/features/distributions/distributions/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListBatches pages through the audit log, newest first.
func (e *Engine) ListBatches(ctx context.Context, limit, offset int) ([]model.DistributionBatchModel, int64, error) {
	db := e.DB.WithContext(ctx)

	var total int64
	if err := db.Model(&model.DistributionBatchModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count batches: %w", err)
	}
	var rows []model.DistributionBatchModel
	if err := db.Order("distribution_batch_created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list batches: %w", err)
	}
	return rows, total, nil
}

// GetBatch returns the batch and its assignments in assignment order.
func (e *Engine) GetBatch(ctx context.Context, id uuid.UUID) (*model.DistributionBatchModel, []model.ClientAssignmentModel, error) {
	db := e.DB.WithContext(ctx)

	var batch model.DistributionBatchModel
	if err := db.First(&batch, "distribution_batch_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBatchNotFound
		}
		return nil, nil, fmt.Errorf("load batch: %w", err)
	}
	var rows []model.ClientAssignmentModel
	if err := db.Where("client_assignment_batch_id = ?", id).
		Order("client_assignment_position ASC").
		Find(&rows).Error; err != nil {
		return nil, nil, fmt.Errorf("load assignments: %w", err)
	}
	return &batch, rows, nil
}
