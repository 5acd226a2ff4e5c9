package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"leadcrm_backend/internals/features/attendance/attendance_records/model"
	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	helper "leadcrm_backend/internals/helpers"
	"leadcrm_backend/internals/helpers/dbtime"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrAlreadyCheckedIn        = errors.New("already checked in today")
	ErrNotCheckedIn            = errors.New("not checked in today")
	ErrAlreadyCheckedOut       = errors.New("already checked out today")
	ErrCheckOutNotAfterCheckIn = errors.New("check-out time must be after check-in time")
	ErrUnknownStaff            = errors.New("staff not found or inactive")
	ErrInvalidMonth            = errors.New("invalid month, expected YYYY-MM")
)

const inChunk = 500

// Tracker owns the per-day check-in/check-out state machine.
type Tracker struct {
	DB    *gorm.DB
	Clock dbtime.Clock
	Loc   *time.Location
}

func NewTracker(db *gorm.DB, clock dbtime.Clock, loc *time.Location) *Tracker {
	if clock == nil {
		clock = dbtime.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{DB: db, Clock: clock, Loc: loc}
}

// Today is the work date in the server timezone.
func (t *Tracker) Today() datatypes.Date {
	return dbtime.DateOf(t.Clock.Now(), t.Loc)
}

// stored timestamps are compared after a round trip; postgres keeps microseconds
func (t *Tracker) now() time.Time {
	return t.Clock.Now().UTC().Truncate(time.Microsecond)
}

// CheckIn opens today's session. A second check-in on the same day is rejected even after check-out.
func (t *Tracker) CheckIn(ctx context.Context, staffID int64, memo string) (*model.AttendanceRecordModel, error) {
	now := t.now()
	day := dbtime.DateOf(now, t.Loc)

	var rec model.AttendanceRecordModel
	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the staff row is the per-staff mutex for attendance writes
		var staff staffModel.StaffModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("staff_id = ? AND staff_is_active = ?", staffID, true).
			First(&staff).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownStaff
			}
			return fmt.Errorf("lock staff: %w", err)
		}

		var existing int64
		if err := tx.Model(&model.AttendanceRecordModel{}).
			Where("attendance_staff_id = ? AND attendance_work_date = ?", staffID, day).
			Count(&existing).Error; err != nil {
			return fmt.Errorf("count attendance: %w", err)
		}
		if existing > 0 {
			return ErrAlreadyCheckedIn
		}

		rec = model.AttendanceRecordModel{
			AttendanceStaffID:     staffID,
			AttendanceWorkDate:    day,
			AttendanceCheckInTime: &now,
			AttendanceMemo:        memo,
		}
		if err := tx.Create(&rec).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return ErrAlreadyCheckedIn
			}
			return fmt.Errorf("create attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] attendance check-in staff_id=%d work_date=%s at=%s",
		staffID, dbtime.FormatDate(day), now.Format(time.RFC3339))
	return &rec, nil
}

// CheckOut closes today's open session exactly once.
func (t *Tracker) CheckOut(ctx context.Context, staffID int64) (*model.AttendanceRecordModel, error) {
	now := t.now()
	day := dbtime.DateOf(now, t.Loc)

	var rec model.AttendanceRecordModel
	err := t.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("attendance_staff_id = ? AND attendance_work_date = ?", staffID, day).
			First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotCheckedIn
			}
			return fmt.Errorf("load attendance: %w", err)
		}
		if rec.AttendanceCheckInTime == nil {
			return ErrNotCheckedIn
		}
		if rec.AttendanceCheckOutTime != nil {
			return ErrAlreadyCheckedOut
		}
		if !now.After(*rec.AttendanceCheckInTime) {
			return ErrCheckOutNotAfterCheckIn
		}

		res := tx.Model(&rec).
			Where("attendance_check_out_time IS NULL").
			Update("attendance_check_out_time", now)
		if res.Error != nil {
			return fmt.Errorf("update attendance: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyCheckedOut
		}
		rec.AttendanceCheckOutTime = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] attendance check-out staff_id=%d work_date=%s at=%s",
		staffID, dbtime.FormatDate(day), now.Format(time.RFC3339))
	return &rec, nil
}

// TodayRecord returns nil when the staff member has not checked in today.
func (t *Tracker) TodayRecord(ctx context.Context, staffID int64) (*model.AttendanceRecordModel, error) {
	var rec model.AttendanceRecordModel
	err := t.DB.WithContext(ctx).
		Where("attendance_staff_id = ? AND attendance_work_date = ?", staffID, t.Today()).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	return &rec, nil
}

// IsCheckedIn is true only for an open session on onDate, not "checked in at some point".
func (t *Tracker) IsCheckedIn(ctx context.Context, staffID int64, onDate datatypes.Date) (bool, error) {
	set, err := CheckedInSet(t.DB.WithContext(ctx), []int64{staffID}, onDate)
	if err != nil {
		return false, err
	}
	return set[staffID], nil
}

// MonthlyRecords lists a month of records, newest first; staffID 0 means everyone.
func (t *Tracker) MonthlyRecords(ctx context.Context, staffID int64, yearMonth string) ([]model.AttendanceRecordModel, error) {
	from, to, err := dbtime.MonthRange(yearMonth, t.Clock.Now(), t.Loc)
	if err != nil {
		return nil, ErrInvalidMonth
	}

	q := t.DB.WithContext(ctx).
		Preload("Staff").
		Where("attendance_work_date >= ? AND attendance_work_date < ?", from, to)
	if staffID > 0 {
		q = q.Where("attendance_staff_id = ?", staffID)
	}

	var rows []model.AttendanceRecordModel
	if err := q.
		Order("attendance_work_date DESC").
		Order("attendance_check_in_time DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// CheckedInSet marks which of staffIDs have an open session on day. db may be a transaction.
func CheckedInSet(db *gorm.DB, staffIDs []int64, day datatypes.Date) (map[int64]bool, error) {
	out := make(map[int64]bool, len(staffIDs))
	for start := 0; start < len(staffIDs); start += inChunk {
		end := min(start+inChunk, len(staffIDs))
		var ids []int64
		if err := db.Model(&model.AttendanceRecordModel{}).
			Where("attendance_staff_id IN ?", staffIDs[start:end]).
			Where("attendance_work_date = ?", day).
			Where("attendance_check_in_time IS NOT NULL AND attendance_check_out_time IS NULL").
			Pluck("attendance_staff_id", &ids).Error; err != nil {
			return nil, fmt.Errorf("load open sessions: %w", err)
		}
		for _, id := range ids {
			out[id] = true
		}
	}
	return out, nil
}
