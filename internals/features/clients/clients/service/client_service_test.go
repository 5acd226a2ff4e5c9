package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"leadcrm_backend/internals/features/clients/clients/model"
	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	"leadcrm_backend/internals/constants"
	database "leadcrm_backend/internals/databases"
	helper "leadcrm_backend/internals/helpers"
	"leadcrm_backend/internals/helpers/dbtime"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLiteMemory(name)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })
	return db
}

func paging(perPage int) helper.Params {
	return helper.Params{Page: 1, PerPage: perPage}
}

func TestListFilters(t *testing.T) {
	db := newTestDB(t)
	pool := NewPool(db, time.UTC)
	ctx := context.Background()

	owner := staffModel.StaffModel{StaffUsername: "o", StaffName: "Owner", StaffRole: constants.RoleStaff, StaffIsActive: true}
	if err := db.Create(&owner).Error; err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := dbtime.DateOf(base, time.UTC)
	for i := 0; i < 6; i++ {
		c := model.ClientModel{
			ClientName:      fmt.Sprintf("Client %d", i),
			ClientContact:   fmt.Sprintf("0812%04d", i),
			ClientStatus:    constants.ClientStatusPending,
			ClientCreatedAt: base.AddDate(0, 0, i),
		}
		if i%2 == 0 {
			c.ClientOwnerID = &owner.StaffID
			c.ClientIsDistributed = true
			c.ClientDistributionDate = &d
		}
		if err := db.Create(&c).Error; err != nil {
			t.Fatal(err)
		}
	}

	no, yes := false, true
	rows, total, err := pool.List(ctx, ListQuery{Distributed: &no, Paging: paging(50)})
	if err != nil || total != 3 || len(rows) != 3 {
		t.Fatalf("undistributed = %d/%d, %v", len(rows), total, err)
	}
	for _, r := range rows {
		if r.ClientOwnerID != nil {
			t.Fatalf("assigned client %d in unassigned list", r.ClientID)
		}
	}

	rows, total, err = pool.List(ctx, ListQuery{Distributed: &yes, OwnerID: owner.StaffID, Paging: paging(2)})
	if err != nil || total != 3 || len(rows) != 2 {
		t.Fatalf("owner page = %d/%d, %v", len(rows), total, err)
	}
	if rows[0].Owner == nil || rows[0].Owner.StaffName != "Owner" {
		t.Fatalf("owner not preloaded")
	}

	start, end := dbtime.DateOf(base.AddDate(0, 0, 1), time.UTC), dbtime.DateOf(base.AddDate(0, 0, 3), time.UTC)
	rows, total, err = pool.List(ctx, ListQuery{StartDate: &start, EndDate: &end, Paging: paging(50)})
	if err != nil || total != 3 {
		t.Fatalf("date range total = %d, %v", total, err)
	}

	rows, _, err = pool.List(ctx, ListQuery{Search: "client 4", Paging: paging(50)})
	if err != nil || len(rows) != 1 || rows[0].ClientName != "Client 4" {
		t.Fatalf("search = %+v, %v", rows, err)
	}

	p := paging(50)
	p.SortBy, p.SortOrder = "client_id", "asc"
	rows, _, err = pool.List(ctx, ListQuery{Paging: p})
	if err != nil || rows[0].ClientID > rows[len(rows)-1].ClientID {
		t.Fatalf("sort asc failed: %v", err)
	}
}

func TestCreateIsUnassigned(t *testing.T) {
	db := newTestDB(t)
	pool := NewPool(db, time.UTC)

	m, err := pool.Create(context.Background(), CreateInput{Name: "  Rina ", Contact: "0813"})
	if err != nil {
		t.Fatal(err)
	}
	if m.ClientName != "Rina" || m.ClientStatus != constants.ClientStatusPending || m.ClientOwnerID != nil || m.ClientIsDistributed {
		t.Fatalf("created = %+v", m)
	}
}

func TestUpdateStatus(t *testing.T) {
	db := newTestDB(t)
	pool := NewPool(db, time.UTC)
	ctx := context.Background()

	owner := staffModel.StaffModel{StaffUsername: "o", StaffName: "O", StaffRole: constants.RoleStaff, StaffIsActive: true}
	other := staffModel.StaffModel{StaffUsername: "x", StaffName: "X", StaffRole: constants.RoleStaff, StaffIsActive: true}
	db.Create(&owner)
	db.Create(&other)

	d := dbtime.DateOf(time.Now(), time.UTC)
	c := model.ClientModel{ClientName: "c", ClientContact: "1", ClientStatus: constants.ClientStatusPending,
		ClientOwnerID: &owner.StaffID, ClientIsDistributed: true, ClientDistributionDate: &d}
	if err := db.Create(&c).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := pool.UpdateStatus(ctx, c.ClientID, other.StaffID, false, "FAIL"); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("non-owner err = %v", err)
	}
	if _, err := pool.UpdateStatus(ctx, c.ClientID, owner.StaffID, false, "WON"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("bad status err = %v", err)
	}
	if _, err := pool.UpdateStatus(ctx, 9999, owner.StaffID, false, "FAIL"); !errors.Is(err, ErrClientNotFound) {
		t.Fatalf("missing client err = %v", err)
	}

	m, err := pool.UpdateStatus(ctx, c.ClientID, owner.StaffID, false, "success_1")
	if err != nil {
		t.Fatal(err)
	}
	if m.ClientStatus != constants.ClientStatusSuccess1 {
		t.Fatalf("status = %s", m.ClientStatus)
	}

	got, err := pool.Get(ctx, c.ClientID)
	if err != nil {
		t.Fatal(err)
	}
	if got.ClientOwnerID == nil || *got.ClientOwnerID != owner.StaffID || !got.ClientIsDistributed || got.ClientDistributionDate == nil {
		t.Fatalf("assignment fields touched: %+v", got)
	}

	if _, err := pool.UpdateStatus(ctx, c.ClientID, other.StaffID, true, "ABSENT"); err != nil {
		t.Fatalf("admin override: %v", err)
	}
}

func TestSearchMatchesComposedForms(t *testing.T) {
	db := newTestDB(t)
	pool := NewPool(db, time.UTC)
	ctx := context.Background()

	// "e" followed by a combining acute accent
	if _, err := pool.Create(ctx, CreateInput{Name: "René Putra", Contact: "0814"}); err != nil {
		t.Fatal(err)
	}
	rows, total, err := pool.List(ctx, ListQuery{Search: "rené", Paging: paging(10)})
	if err != nil || total != 1 || len(rows) != 1 {
		t.Fatalf("composed search = %d/%d, %v", len(rows), total, err)
	}
	if rows[0].ClientName != "René Putra" {
		t.Fatalf("stored name not composed: %q", rows[0].ClientName)
	}
}
