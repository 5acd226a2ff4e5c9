package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	attendanceService "leadcrm_backend/internals/features/attendance/attendance_records/service"
	"leadcrm_backend/internals/features/staff/staffs/model"

	"leadcrm_backend/internals/constants"
	helper "leadcrm_backend/internals/helpers"
	"leadcrm_backend/internals/helpers/dbtime"

	"gorm.io/gorm"
)

var (
	ErrStaffNotFound   = errors.New("staff not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrInvalidRole     = errors.New("invalid role")
	ErrSelfDeactivate  = errors.New("you cannot deactivate your own account")
	ErrEmptyStaffField = errors.New("username and name are required")
)

// inChunk keeps IN (...) lists under every driver's bound-parameter limit.
const inChunk = 500

// EligibleStaff is the read model the distribution screen filters on.
type EligibleStaff struct {
	StaffID   int64  `json:"staff_id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	CheckedIn bool   `json:"checked_in"`
}

type Directory struct {
	DB    *gorm.DB
	Clock dbtime.Clock
	Loc   *time.Location
}

func NewDirectory(db *gorm.DB, clock dbtime.Clock, loc *time.Location) *Directory {
	if clock == nil {
		clock = dbtime.SystemClock{}
	}
	return &Directory{DB: db, Clock: clock, Loc: loc}
}

// ListEligible returns active staff (role staff) with today's open-session flag,
// checked-in first, then by name.
func (d *Directory) ListEligible(ctx context.Context, search string, onlyCheckedIn bool) ([]EligibleStaff, error) {
	q := d.DB.WithContext(ctx).
		Model(&model.StaffModel{}).
		Where("staff_role = ? AND staff_is_active = ?", constants.RoleStaff, true)
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(staff_username) LIKE ? OR LOWER(staff_name) LIKE ?", like, like)
	}

	var rows []model.StaffModel
	if err := q.Order("staff_name ASC").Order("staff_id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.StaffID)
	}
	today := dbtime.DateOf(d.Clock.Now(), d.Loc)
	open, err := attendanceService.CheckedInSet(d.DB.WithContext(ctx), ids, today)
	if err != nil {
		return nil, err
	}

	out := make([]EligibleStaff, 0, len(rows))
	for _, r := range rows {
		in := open[r.StaffID]
		if onlyCheckedIn && !in {
			continue
		}
		out = append(out, EligibleStaff{
			StaffID:   r.StaffID,
			Username:  r.StaffUsername,
			Name:      r.StaffName,
			CheckedIn: in,
		})
	}
	// stable: keeps the name order inside each group
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CheckedIn && !out[j].CheckedIn
	})
	return out, nil
}

// GetByID returns any staff row, active or not.
func (d *Directory) GetByID(ctx context.Context, staffID int64) (*model.StaffModel, error) {
	var m model.StaffModel
	err := d.DB.WithContext(ctx).First(&m, "staff_id = ?", staffID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load staff: %w", err)
	}
	return &m, nil
}

// Create registers an active staff or admin account.
func (d *Directory) Create(ctx context.Context, username, name, role string) (*model.StaffModel, error) {
	username, name = strings.TrimSpace(username), strings.TrimSpace(name)
	if username == "" || name == "" {
		return nil, ErrEmptyStaffField
	}
	if !constants.IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	m := model.StaffModel{
		StaffUsername: username,
		StaffName:     name,
		StaffRole:     role,
		StaffIsActive: true,
	}
	if err := d.DB.WithContext(ctx).Create(&m).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create staff: %w", err)
	}
	log.Printf("[INFO] staff created staff_id=%d username=%s role=%s", m.StaffID, m.StaffUsername, m.StaffRole)
	return &m, nil
}

// UpdateInput: nil fields are left unchanged.
type UpdateInput struct {
	Name   *string
	Role   *string
	Active *bool
}

// Update edits name, role or the active flag. Deactivated staff keep their clients but can
// no longer sign in or receive new ones.
func (d *Directory) Update(ctx context.Context, staffID, callerID int64, in UpdateInput) (*model.StaffModel, error) {
	changes := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, ErrEmptyStaffField
		}
		changes["staff_name"] = name
	}
	if in.Role != nil {
		if !constants.IsValidRole(*in.Role) {
			return nil, ErrInvalidRole
		}
		changes["staff_role"] = *in.Role
	}
	if in.Active != nil {
		if !*in.Active && staffID == callerID {
			return nil, ErrSelfDeactivate
		}
		changes["staff_is_active"] = *in.Active
	}

	var m model.StaffModel
	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "staff_id = ?", staffID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStaffNotFound
			}
			return fmt.Errorf("load staff: %w", err)
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&m).Updates(changes).Error; err != nil {
			return fmt.Errorf("update staff: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] staff updated staff_id=%d by=%d fields=%d", staffID, callerID, len(changes))
	return &m, nil
}

// FindAssignable loads the rows among ids that may own clients (active, role staff).
// db may be a transaction.
func FindAssignable(db *gorm.DB, ids []int64) (map[int64]model.StaffModel, error) {
	out := make(map[int64]model.StaffModel, len(ids))
	for start := 0; start < len(ids); start += inChunk {
		end := min(start+inChunk, len(ids))
		var rows []model.StaffModel
		if err := db.
			Where("staff_id IN ?", ids[start:end]).
			Where("staff_role = ? AND staff_is_active = ?", constants.RoleStaff, true).
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load staff: %w", err)
		}
		for _, r := range rows {
			out[r.StaffID] = r
		}
	}
	return out, nil
}
