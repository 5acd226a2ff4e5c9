package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	attendanceModel "leadcrm_backend/internals/features/attendance/attendance_records/model"
	clientModel "leadcrm_backend/internals/features/clients/clients/model"
	"leadcrm_backend/internals/features/distributions/distributions/model"
	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	"leadcrm_backend/internals/constants"
	database "leadcrm_backend/internals/databases"
	"leadcrm_backend/internals/helpers/dbtime"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

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

func newTestEngine(db *gorm.DB) *Engine {
	return NewEngine(db, false, &dbtime.FixedClock{T: testNow}, time.UTC)
}

func addStaff(t *testing.T, db *gorm.DB, username, role string, active bool) int64 {
	t.Helper()
	s := staffModel.StaffModel{StaffUsername: username, StaffName: strings.ToUpper(username), StaffRole: role, StaffIsActive: active}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create staff: %v", err)
	}
	return s.StaffID
}

func addClients(t *testing.T, db *gorm.DB, n int) []int64 {
	t.Helper()
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		c := clientModel.ClientModel{
			ClientName:    fmt.Sprintf("client %d", i),
			ClientContact: fmt.Sprintf("08%08d", i),
			ClientStatus:  constants.ClientStatusPending,
		}
		if err := db.Create(&c).Error; err != nil {
			t.Fatalf("create client: %v", err)
		}
		ids = append(ids, c.ClientID)
	}
	return ids
}

func loadClients(t *testing.T, db *gorm.DB) map[int64]clientModel.ClientModel {
	t.Helper()
	var rows []clientModel.ClientModel
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("load clients: %v", err)
	}
	out := make(map[int64]clientModel.ClientModel, len(rows))
	for _, r := range rows {
		out[r.ClientID] = r
	}
	return out
}

func mustDate(t *testing.T, s string) datatypes.Date {
	t.Helper()
	d, err := dbtime.ParseDate(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestDistributeAssignsBatchOnly(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	admin := addStaff(t, db, "admin", constants.RoleAdmin, true)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	b := addStaff(t, db, "b", constants.RoleStaff, true)
	c := addStaff(t, db, "c", constants.RoleStaff, true)
	ids := addClients(t, db, 12)
	batch, outside := ids[:10], ids[10:]
	date := mustDate(t, "2026-03-10")

	res, err := e.Distribute(context.Background(), Request{
		ClientIDs:        batch,
		StaffIDs:         []int64{a, b, c},
		DistributionDate: date,
		DistributedBy:    admin,
	})
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if res.AssignedCount != 10 {
		t.Fatalf("AssignedCount = %d", res.AssignedCount)
	}
	wantCounts := map[int64]int{a: 4, b: 3, c: 3}
	for _, pc := range res.PerStaff {
		if pc.Count != wantCounts[pc.StaffID] {
			t.Errorf("staff %d count %d, want %d", pc.StaffID, pc.Count, wantCounts[pc.StaffID])
		}
		if pc.StaffName == "" {
			t.Errorf("staff %d has no name in summary", pc.StaffID)
		}
	}

	rows := loadClients(t, db)
	staffSet := map[int64]bool{a: true, b: true, c: true}
	for _, id := range batch {
		r := rows[id]
		if r.ClientOwnerID == nil || !staffSet[*r.ClientOwnerID] {
			t.Fatalf("client %d owner = %v", id, r.ClientOwnerID)
		}
		if !r.ClientIsDistributed {
			t.Errorf("client %d not flagged distributed", id)
		}
		if r.ClientDistributionDate == nil || dbtime.FormatDate(*r.ClientDistributionDate) != "2026-03-10" {
			t.Errorf("client %d distribution date = %v", id, r.ClientDistributionDate)
		}
	}
	for _, id := range outside {
		r := rows[id]
		if r.ClientOwnerID != nil || r.ClientIsDistributed || r.ClientDistributionDate != nil {
			t.Errorf("client %d outside the batch was modified: %+v", id, r)
		}
	}

	// audit trail
	got, assignments, err := e.GetBatch(context.Background(), res.BatchID)
	if err != nil {
		t.Fatalf("GetBatch: %v", err)
	}
	if got.DistributionBatchDistributedBy != admin || got.DistributionBatchClientCount != 10 || got.DistributionBatchStaffCount != 3 {
		t.Errorf("batch = %+v", got)
	}
	if !slices.Equal([]int64(got.DistributionBatchStaffIDs), []int64{a, b, c}) {
		t.Errorf("staff ids = %v", got.DistributionBatchStaffIDs)
	}
	if len(assignments) != 10 {
		t.Fatalf("assignments = %d", len(assignments))
	}
	for i, as := range assignments {
		if as.ClientAssignmentPosition != i {
			t.Errorf("assignment %d position %d", i, as.ClientAssignmentPosition)
		}
		if owner := rows[as.ClientAssignmentClientID].ClientOwnerID; owner == nil || *owner != as.ClientAssignmentStaffID {
			t.Errorf("assignment %d disagrees with client owner", i)
		}
	}

	list, total, err := e.ListBatches(context.Background(), 10, 0)
	if err != nil || total != 1 || len(list) != 1 {
		t.Fatalf("ListBatches = %d rows, total %d, err %v", len(list), total, err)
	}
}

func TestDistributeResubmitFails(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	ids := addClients(t, db, 3)
	req := Request{ClientIDs: ids, StaffIDs: []int64{a}, DistributionDate: mustDate(t, "2026-03-10")}

	if _, err := e.Distribute(context.Background(), req); err != nil {
		t.Fatalf("first Distribute: %v", err)
	}
	_, err := e.Distribute(context.Background(), req)
	if !errors.Is(err, ErrClientAlreadyAssigned) {
		t.Fatalf("second Distribute err = %v, want ErrClientAlreadyAssigned", err)
	}
	if got := OffendingIDs(err); !slices.Equal(got, ids) {
		t.Fatalf("offending ids = %v, want %v", got, ids)
	}

	var batches int64
	db.Model(&model.DistributionBatchModel{}).Count(&batches)
	if batches != 1 {
		t.Fatalf("batches = %d, want 1", batches)
	}
}

func TestDistributeRejectsWholeBatchOnAssignedClient(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	b := addStaff(t, db, "b", constants.RoleStaff, true)
	ids := addClients(t, db, 4)
	date := mustDate(t, "2026-03-10")

	if _, err := e.Distribute(context.Background(), Request{ClientIDs: ids[:1], StaffIDs: []int64{a}, DistributionDate: date}); err != nil {
		t.Fatal(err)
	}

	_, err := e.Distribute(context.Background(), Request{ClientIDs: ids, StaffIDs: []int64{b}, DistributionDate: date})
	if !errors.Is(err, ErrClientAlreadyAssigned) {
		t.Fatalf("err = %v", err)
	}
	if got := OffendingIDs(err); !slices.Equal(got, ids[:1]) {
		t.Fatalf("offending = %v", got)
	}
	rows := loadClients(t, db)
	for _, id := range ids[1:] {
		if rows[id].ClientOwnerID != nil {
			t.Fatalf("client %d assigned by a failed batch", id)
		}
	}
	if owner := rows[ids[0]].ClientOwnerID; owner == nil || *owner != a {
		t.Fatalf("first owner changed: %v", owner)
	}
}

func TestDistributeValidation(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	inactive := addStaff(t, db, "gone", constants.RoleStaff, false)
	admin := addStaff(t, db, "boss", constants.RoleAdmin, true)
	ids := addClients(t, db, 2)
	date := mustDate(t, "2026-03-10")

	cases := []struct {
		name    string
		req     Request
		wantErr error
		wantIDs []int64
	}{
		{"no clients", Request{StaffIDs: []int64{a}, DistributionDate: date}, ErrEmptySelection, nil},
		{"no staff", Request{ClientIDs: ids, DistributionDate: date}, ErrEmptySelection, nil},
		{"no date", Request{ClientIDs: ids, StaffIDs: []int64{a}}, ErrMissingDate, nil},
		{"unknown staff", Request{ClientIDs: ids, StaffIDs: []int64{a, 999}, DistributionDate: date}, ErrUnknownStaff, []int64{999}},
		{"inactive staff", Request{ClientIDs: ids, StaffIDs: []int64{inactive}, DistributionDate: date}, ErrUnknownStaff, []int64{inactive}},
		{"admin is not a target", Request{ClientIDs: ids, StaffIDs: []int64{admin}, DistributionDate: date}, ErrUnknownStaff, []int64{admin}},
		{"unknown client", Request{ClientIDs: []int64{ids[0], 777, 555}, StaffIDs: []int64{a}, DistributionDate: date}, ErrUnknownClient, []int64{555, 777}},
		{"staff checked before clients", Request{ClientIDs: []int64{777}, StaffIDs: []int64{999}, DistributionDate: date}, ErrUnknownStaff, []int64{999}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Distribute(context.Background(), tc.req)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if got := OffendingIDs(err); !slices.Equal(got, tc.wantIDs) {
				t.Fatalf("ids = %v, want %v", got, tc.wantIDs)
			}
		})
	}

	for id, r := range loadClients(t, db) {
		if r.ClientOwnerID != nil {
			t.Fatalf("client %d mutated by a rejected batch", id)
		}
	}
}

func TestDistributeDedupesInput(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	b := addStaff(t, db, "b", constants.RoleStaff, true)
	ids := addClients(t, db, 3)

	res, err := e.Distribute(context.Background(), Request{
		ClientIDs:        []int64{ids[0], ids[1], ids[0], ids[2], ids[1]},
		StaffIDs:         []int64{a, b, a},
		DistributionDate: mustDate(t, "2026-03-10"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.AssignedCount != 3 || len(res.PerStaff) != 2 {
		t.Fatalf("result = %+v", res)
	}
}

func TestDistributeToleratesCheckedOutStaff(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	ids := addClients(t, db, 2)

	// no attendance row at all: the default policy still assigns
	if _, err := e.Distribute(context.Background(), Request{ClientIDs: ids, StaffIDs: []int64{a}, DistributionDate: mustDate(t, "2026-03-10")}); err != nil {
		t.Fatalf("Distribute: %v", err)
	}
}

func TestDistributeRequireCheckedInPolicy(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	e.RequireCheckedIn = true
	on := addStaff(t, db, "on", constants.RoleStaff, true)
	off := addStaff(t, db, "off", constants.RoleStaff, true)
	ids := addClients(t, db, 4)
	date := mustDate(t, "2026-03-10")

	in := testNow.Add(-time.Hour)
	out := testNow.Add(-30 * time.Minute)
	today := dbtime.DateOf(testNow, time.UTC)
	recs := []attendanceModel.AttendanceRecordModel{
		{AttendanceStaffID: on, AttendanceWorkDate: today, AttendanceCheckInTime: &in},
		{AttendanceStaffID: off, AttendanceWorkDate: today, AttendanceCheckInTime: &in, AttendanceCheckOutTime: &out},
	}
	if err := db.Create(&recs).Error; err != nil {
		t.Fatal(err)
	}

	_, err := e.Distribute(context.Background(), Request{ClientIDs: ids, StaffIDs: []int64{on, off}, DistributionDate: date})
	if !errors.Is(err, ErrStaffNotCheckedIn) {
		t.Fatalf("err = %v, want ErrStaffNotCheckedIn", err)
	}
	if got := OffendingIDs(err); !slices.Equal(got, []int64{off}) {
		t.Fatalf("ids = %v", got)
	}

	if _, err := e.Distribute(context.Background(), Request{ClientIDs: ids, StaffIDs: []int64{on}, DistributionDate: date}); err != nil {
		t.Fatalf("checked-in staff rejected: %v", err)
	}
}

func TestDistributeConcurrentOverlap(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	b := addStaff(t, db, "b", constants.RoleStaff, true)
	ids := addClients(t, db, 5)
	date := mustDate(t, "2026-03-10")

	// ids[2] is in both batches
	reqs := []Request{
		{ClientIDs: ids[:3], StaffIDs: []int64{a}, DistributionDate: date},
		{ClientIDs: ids[2:], StaffIDs: []int64{b}, DistributionDate: date},
	}
	errs := make([]error, len(reqs))
	var wg sync.WaitGroup
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.Distribute(context.Background(), reqs[i])
		}(i)
	}
	wg.Wait()

	var ok, conflict int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrClientAlreadyAssigned):
			conflict++
			if got := OffendingIDs(err); !slices.Equal(got, []int64{ids[2]}) {
				t.Errorf("offending = %v, want [%d]", got, ids[2])
			}
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflict != 1 {
		t.Fatalf("ok=%d conflict=%d, want exactly one of each", ok, conflict)
	}

	var assigned int64
	db.Model(&clientModel.ClientModel{}).Where("client_owner_id IS NOT NULL").Count(&assigned)
	if assigned != 3 {
		t.Fatalf("assigned = %d, want 3 (only the winning batch)", assigned)
	}
}

func TestApplyPlanReportsConcurrentTakers(t *testing.T) {
	db := newTestDB(t)
	a := addStaff(t, db, "a", constants.RoleStaff, true)
	b := addStaff(t, db, "b", constants.RoleStaff, true)
	ids := addClients(t, db, 3)
	date := mustDate(t, "2026-03-10")

	// simulate a row taken between the locked read and the write
	if err := db.Model(&clientModel.ClientModel{}).Where("client_id = ?", ids[1]).
		Updates(map[string]any{"client_owner_id": b, "client_is_distributed": true}).Error; err != nil {
		t.Fatal(err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		return applyPlan(tx, Plan(ids, []int64{a}, false, nil), []int64{a}, date)
	})
	if !errors.Is(err, ErrClientAlreadyAssigned) {
		t.Fatalf("err = %v", err)
	}
	if got := OffendingIDs(err); !slices.Equal(got, []int64{ids[1]}) {
		t.Fatalf("ids = %v", got)
	}
	for _, id := range []int64{ids[0], ids[2]} {
		if owner := loadClients(t, db)[id].ClientOwnerID; owner != nil {
			t.Fatalf("client %d kept a rolled back owner", id)
		}
	}
}

func TestGetBatchNotFound(t *testing.T) {
	db := newTestDB(t)
	e := newTestEngine(db)
	_, _, err := e.GetBatch(context.Background(), uuid.New())
	if !errors.Is(err, ErrBatchNotFound) {
		t.Fatalf("err = %v", err)
	}
}
