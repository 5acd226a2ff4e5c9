package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"leadcrm_backend/internals/features/clients/clients/model"

	"leadcrm_backend/internals/constants"
	helper "leadcrm_backend/internals/helpers"
	"leadcrm_backend/internals/helpers/dbtime"

	"golang.org/x/text/unicode/norm"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrClientNotFound = errors.New("client not found")
	ErrNotOwner       = errors.New("client is not assigned to you")
	ErrInvalidStatus  = errors.New("invalid client status")
)

// sort_by → column
var sortColumns = map[string]string{
	"created_at":        "client_created_at",
	"client_id":         "client_id",
	"name":              "client_name",
	"status":            "client_status",
	"distribution_date": "client_distribution_date",
}

// ListQuery is passed through from the UI untouched; it never mutates anything.
type ListQuery struct {
	Distributed *bool
	Search      string
	OwnerID     int64
	StartDate   *datatypes.Date
	EndDate     *datatypes.Date
	Paging      helper.Params
}

// cleanText trims and composes (NFC) free text so equal names compare and search equal.
func cleanText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

type CreateInput struct {
	Name    string
	Contact string
	Address string
	Note    string
}

type Pool struct {
	DB  *gorm.DB
	Loc *time.Location
}

func NewPool(db *gorm.DB, loc *time.Location) *Pool {
	if loc == nil {
		loc = time.Local
	}
	return &Pool{DB: db, Loc: loc}
}

func (p *Pool) List(ctx context.Context, q ListQuery) ([]model.ClientModel, int64, error) {
	base := func() *gorm.DB {
		tx := p.DB.WithContext(ctx).Model(&model.ClientModel{})
		if q.Distributed != nil {
			tx = tx.Where("client_is_distributed = ?", *q.Distributed)
		}
		if q.OwnerID > 0 {
			tx = tx.Where("client_owner_id = ?", q.OwnerID)
		}
		if s := cleanText(q.Search); s != "" {
			like := "%" + strings.ToLower(s) + "%"
			tx = tx.Where("LOWER(client_name) LIKE ? OR LOWER(client_contact) LIKE ?", like, like)
		}
		if q.StartDate != nil {
			tx = tx.Where("client_created_at >= ?", dbtime.StartOfDay(*q.StartDate, p.Loc))
		}
		if q.EndDate != nil {
			next := datatypes.Date(time.Time(*q.EndDate).AddDate(0, 0, 1))
			tx = tx.Where("client_created_at < ?", dbtime.StartOfDay(next, p.Loc))
		}
		return tx
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count clients: %w", err)
	}

	order, err := q.Paging.SafeOrderClause(sortColumns, "created_at")
	if err != nil {
		return nil, 0, err
	}
	var rows []model.ClientModel
	if err := base().
		Preload("Owner").
		Order(order).
		Order("client_id ASC").
		Limit(q.Paging.Limit()).
		Offset(q.Paging.Offset()).
		Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list clients: %w", err)
	}
	return rows, total, nil
}

func (p *Pool) Get(ctx context.Context, clientID int64) (*model.ClientModel, error) {
	var m model.ClientModel
	err := p.DB.WithContext(ctx).Preload("Owner").First(&m, "client_id = ?", clientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	return &m, nil
}

// Create registers an unassigned lead.
func (p *Pool) Create(ctx context.Context, in CreateInput) (*model.ClientModel, error) {
	m := model.ClientModel{
		ClientName:    cleanText(in.Name),
		ClientContact: cleanText(in.Contact),
		ClientAddress: cleanText(in.Address),
		ClientNote:    in.Note,
		ClientStatus:  constants.ClientStatusPending,
	}
	if err := p.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return &m, nil
}

// UpdateStatus records a call outcome. Only the owner (or an admin) may do it, and
// assignment fields are left alone.
func (p *Pool) UpdateStatus(ctx context.Context, clientID, callerID int64, isAdmin bool, status string) (*model.ClientModel, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !constants.IsValidClientStatus(status) {
		return nil, ErrInvalidStatus
	}

	var m model.ClientModel
	err := p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&m, "client_id = ?", clientID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClientNotFound
			}
			return fmt.Errorf("load client: %w", err)
		}
		if !isAdmin && (m.ClientOwnerID == nil || *m.ClientOwnerID != callerID) {
			return ErrNotOwner
		}
		if err := tx.Model(&m).Update("client_status", status).Error; err != nil {
			return fmt.Errorf("update client status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] client status client_id=%d by=%d status=%s", clientID, callerID, status)
	return &m, nil
}
