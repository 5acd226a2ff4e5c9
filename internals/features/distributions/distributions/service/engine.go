package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	attendanceService "leadcrm_backend/internals/features/attendance/attendance_records/service"
	clientModel "leadcrm_backend/internals/features/clients/clients/model"
	"leadcrm_backend/internals/features/distributions/distributions/model"
	staffService "leadcrm_backend/internals/features/staff/staffs/service"

	"leadcrm_backend/internals/helpers/dbtime"
	"leadcrm_backend/internals/helpers/dbtypes"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrEmptySelection        = errors.New("client and staff selections must not be empty")
	ErrMissingDate           = errors.New("distribution date is required")
	ErrUnknownStaff          = errors.New("unknown staff")
	ErrUnknownClient         = errors.New("unknown client")
	ErrClientAlreadyAssigned = errors.New("client already assigned")
	ErrStaffNotCheckedIn     = errors.New("staff not checked in")
	ErrBatchNotFound         = errors.New("distribution batch not found")
)

// SelectionError names the ids that made a batch fail. It unwraps to its Kind.
type SelectionError struct {
	Kind error
	IDs  []int64
}

func (e *SelectionError) Error() string { return fmt.Sprintf("%v: %v", e.Kind, e.IDs) }

func (e *SelectionError) Unwrap() error { return e.Kind }

func selectionErr(kind error, ids []int64) error {
	ids = slices.Clone(ids)
	slices.Sort(ids)
	return &SelectionError{Kind: kind, IDs: ids}
}

// OffendingIDs extracts the ids of a *SelectionError, nil otherwise.
func OffendingIDs(err error) []int64 {
	var se *SelectionError
	if errors.As(err, &se) {
		return se.IDs
	}
	return nil
}

const inChunk = 500

type Request struct {
	ClientIDs        []int64
	StaffIDs         []int64
	DistributionDate datatypes.Date
	Randomize        bool
	DistributedBy    int64
}

type StaffCount struct {
	StaffID   int64  `json:"staff_id"`
	StaffName string `json:"name,omitempty"`
	Count     int    `json:"count"`
}

type Result struct {
	BatchID       uuid.UUID    `json:"batch_id"`
	AssignedCount int          `json:"assigned_count"`
	PerStaff      []StaffCount `json:"per_staff_counts"`
	Assignments   []Assignment `json:"assignments"`
}

// Engine assigns a batch of unassigned clients to staff, all or nothing.
type Engine struct {
	DB      *gorm.DB
	Shuffle ShuffleFunc

	// reject staff without an open attendance session; off by default because
	// a manager may deliberately hand leads to someone off duty
	RequireCheckedIn bool

	Clock dbtime.Clock
	Loc   *time.Location
}

func NewEngine(db *gorm.DB, requireCheckedIn bool, clock dbtime.Clock, loc *time.Location) *Engine {
	if clock == nil {
		clock = dbtime.SystemClock{}
	}
	return &Engine{DB: db, RequireCheckedIn: requireCheckedIn, Clock: clock, Loc: loc}
}

type clientOwnerRow struct {
	ClientID      int64
	ClientOwnerID *int64
}

// Distribute validates the selection server-side and applies it in one transaction.
// Resubmitting a successful batch fails with ErrClientAlreadyAssigned.
func (e *Engine) Distribute(ctx context.Context, req Request) (*Result, error) {
	clientIDs := Dedupe(req.ClientIDs)
	staffIDs := Dedupe(req.StaffIDs)
	if len(clientIDs) == 0 || len(staffIDs) == 0 {
		return nil, ErrEmptySelection
	}
	if time.Time(req.DistributionDate).IsZero() {
		return nil, ErrMissingDate
	}

	var result *Result
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		staff, err := staffService.FindAssignable(tx, staffIDs)
		if err != nil {
			return err
		}
		if missing := missingIDs(staffIDs, func(id int64) bool { _, ok := staff[id]; return ok }); len(missing) > 0 {
			return selectionErr(ErrUnknownStaff, missing)
		}

		rows, err := lockClients(tx, clientIDs)
		if err != nil {
			return err
		}
		found := make(map[int64]bool, len(rows))
		var assigned []int64
		for _, r := range rows {
			found[r.ClientID] = true
			if r.ClientOwnerID != nil {
				assigned = append(assigned, r.ClientID)
			}
		}
		if missing := missingIDs(clientIDs, func(id int64) bool { return found[id] }); len(missing) > 0 {
			return selectionErr(ErrUnknownClient, missing)
		}
		if len(assigned) > 0 {
			return selectionErr(ErrClientAlreadyAssigned, assigned)
		}

		if e.RequireCheckedIn {
			today := dbtime.DateOf(e.Clock.Now(), e.Loc)
			open, err := attendanceService.CheckedInSet(tx, staffIDs, today)
			if err != nil {
				return err
			}
			if off := missingIDs(staffIDs, func(id int64) bool { return open[id] }); len(off) > 0 {
				return selectionErr(ErrStaffNotCheckedIn, off)
			}
		}

		plan := Plan(clientIDs, staffIDs, req.Randomize, e.Shuffle)
		if err := applyPlan(tx, plan, staffIDs, req.DistributionDate); err != nil {
			return err
		}

		perStaff := CountPerStaff(plan, staffIDs)
		for i := range perStaff {
			perStaff[i].StaffName = staff[perStaff[i].StaffID].StaffName
		}
		batchID, err := writeAudit(tx, req, plan, clientIDs, staffIDs, perStaff)
		if err != nil {
			return err
		}

		result = &Result{
			BatchID:       batchID,
			AssignedCount: len(plan),
			PerStaff:      perStaff,
			Assignments:   plan,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[INFO] distribution batch=%s by=%d clients=%d staff=%d randomize=%v date=%s",
		result.BatchID, req.DistributedBy, result.AssignedCount, len(staffIDs), req.Randomize,
		dbtime.FormatDate(req.DistributionDate))
	return result, nil
}

// lockClients reads owners with FOR UPDATE in ascending id order so overlapping
// batches always lock rows in the same sequence.
func lockClients(tx *gorm.DB, clientIDs []int64) ([]clientOwnerRow, error) {
	sorted := slices.Clone(clientIDs)
	slices.Sort(sorted)

	var out []clientOwnerRow
	for start := 0; start < len(sorted); start += inChunk {
		end := min(start+inChunk, len(sorted))
		var rows []clientOwnerRow
		if err := tx.Model(&clientModel.ClientModel{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("client_id, client_owner_id").
			Where("client_id IN ?", sorted[start:end]).
			Order("client_id ASC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("lock clients: %w", err)
		}
		out = append(out, rows...)
	}
	return out, nil
}

// applyPlan writes owners with a guarded update; a short row count means another
// batch got there first and the whole transaction is abandoned.
func applyPlan(tx *gorm.DB, plan []Assignment, staffIDs []int64, date datatypes.Date) error {
	for i, ids := range groupByStaff(plan, staffIDs) {
		sid := staffIDs[i]
		for start := 0; start < len(ids); start += inChunk {
			end := min(start+inChunk, len(ids))
			chunk := ids[start:end]
			res := tx.Model(&clientModel.ClientModel{}).
				Where("client_id IN ? AND client_owner_id IS NULL", chunk).
				Updates(map[string]any{
					"client_owner_id":          sid,
					"client_is_distributed":    true,
					"client_distribution_date": date,
				})
			if res.Error != nil {
				return fmt.Errorf("assign clients: %w", res.Error)
			}
			if int(res.RowsAffected) == len(chunk) {
				continue
			}
			var taken []int64
			if err := tx.Model(&clientModel.ClientModel{}).
				Where("client_id IN ? AND client_owner_id IS NOT NULL AND client_owner_id <> ?", chunk, sid).
				Pluck("client_id", &taken).Error; err != nil {
				return fmt.Errorf("reload conflicting clients: %w", err)
			}
			if len(taken) == 0 {
				taken = chunk
			}
			return selectionErr(ErrClientAlreadyAssigned, taken)
		}
	}
	return nil
}

func writeAudit(tx *gorm.DB, req Request, plan []Assignment, clientIDs, staffIDs []int64, perStaff []StaffCount) (uuid.UUID, error) {
	counts, err := json.Marshal(perStaff)
	if err != nil {
		return uuid.Nil, err
	}
	batch := model.DistributionBatchModel{
		DistributionBatchDistributedBy:  req.DistributedBy,
		DistributionBatchDate:           req.DistributionDate,
		DistributionBatchRandomize:      req.Randomize,
		DistributionBatchClientCount:    len(clientIDs),
		DistributionBatchStaffCount:     len(staffIDs),
		DistributionBatchClientIDs:      dbtypes.Int64List(clientIDs),
		DistributionBatchStaffIDs:       dbtypes.Int64List(staffIDs),
		DistributionBatchPerStaffCounts: datatypes.JSON(counts),
	}
	if err := tx.Create(&batch).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create batch: %w", err)
	}

	rows := make([]model.ClientAssignmentModel, 0, len(plan))
	for _, a := range plan {
		rows = append(rows, model.ClientAssignmentModel{
			ClientAssignmentBatchID:          batch.DistributionBatchID,
			ClientAssignmentClientID:         a.ClientID,
			ClientAssignmentStaffID:          a.StaffID,
			ClientAssignmentDistributionDate: req.DistributionDate,
			ClientAssignmentPosition:         a.Position,
		})
	}
	if err := tx.CreateInBatches(&rows, inChunk).Error; err != nil {
		return uuid.Nil, fmt.Errorf("create assignments: %w", err)
	}
	return batch.DistributionBatchID, nil
}

func missingIDs(ids []int64, present func(int64) bool) []int64 {
	var out []int64
	for _, id := range ids {
		if !present(id) {
			out = append(out, id)
		}
	}
	return out
}
