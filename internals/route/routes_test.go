package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	clientModel "leadcrm_backend/internals/features/clients/clients/model"
	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	"leadcrm_backend/internals/configs"
	"leadcrm_backend/internals/constants"
	database "leadcrm_backend/internals/databases"
	helperAuth "leadcrm_backend/internals/helpers/auth"
	"leadcrm_backend/internals/helpers/dbtime"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const testSecret = "routes-test-secret"

type harness struct {
	t       *testing.T
	app     *fiber.App
	db      *gorm.DB
	tokens  map[string]string
	staff   map[string]int64
	clients []int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.OpenSQLiteMemory(name)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close(db) })

	h := &harness{t: t, db: db, tokens: map[string]string{}, staff: map[string]int64{}}
	people := []staffModel.StaffModel{
		{StaffUsername: "admin", StaffName: "Admin", StaffRole: constants.RoleAdmin, StaffIsActive: true},
		{StaffUsername: "alice", StaffName: "Alice", StaffRole: constants.RoleStaff, StaffIsActive: true},
		{StaffUsername: "budi", StaffName: "Budi", StaffRole: constants.RoleStaff, StaffIsActive: true},
		{StaffUsername: "gone", StaffName: "Gone", StaffRole: constants.RoleStaff, StaffIsActive: false},
	}
	if err := db.Create(&people).Error; err != nil {
		t.Fatal(err)
	}
	for _, p := range people {
		tok, err := helperAuth.IssueAccessToken(testSecret, p.StaffID, p.StaffRole, p.StaffName, time.Hour, time.Now())
		if err != nil {
			t.Fatal(err)
		}
		h.tokens[p.StaffUsername] = tok
		h.staff[p.StaffUsername] = p.StaffID
	}

	for i := 0; i < 4; i++ {
		c := clientModel.ClientModel{ClientName: fmt.Sprintf("Lead %d", i), ClientContact: "0812", ClientStatus: constants.ClientStatusPending}
		if err := db.Create(&c).Error; err != nil {
			t.Fatal(err)
		}
		h.clients = append(h.clients, c.ClientID)
	}

	cfg := configs.Config{JWTSecret: testSecret, Timezone: "UTC"}
	h.app = fiber.New()
	SetupRoutes(h.app, db, cfg, &dbtime.FixedClock{T: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)})
	return h
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

func (h *harness) do(method, path, who string, body any) (int, envelope) {
	h.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			h.t.Fatal(err)
		}
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who != "" {
		req.Header.Set("Authorization", "Bearer "+h.tokens[who])
	}
	resp, err := h.app.Test(req, -1)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &env)
	return resp.StatusCode, env
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	if code, _ := h.do("GET", "/health", "", nil); code != http.StatusOK {
		t.Fatalf("health = %d", code)
	}
}

func TestAuthGuards(t *testing.T) {
	h := newHarness(t)

	if code, _ := h.do("GET", "/api/u/attendance/today", "", nil); code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", code)
	}
	h.tokens["forged"] = "not-a-jwt"
	if code, _ := h.do("GET", "/api/u/attendance/today", "forged", nil); code != http.StatusUnauthorized {
		t.Errorf("bad token = %d, want 401", code)
	}
	if code, _ := h.do("GET", "/api/u/attendance/today", "gone", nil); code != http.StatusForbidden {
		t.Errorf("inactive staff = %d, want 403", code)
	}
	if code, _ := h.do("GET", "/api/a/staff", "alice", nil); code != http.StatusForbidden {
		t.Errorf("staff on admin scope = %d, want 403", code)
	}
	if code, _ := h.do("GET", "/api/a/staff", "admin", nil); code != http.StatusOK {
		t.Errorf("admin on admin scope = %d, want 200", code)
	}
	if code, _ := h.do("GET", "/api/a/statistics", "budi", nil); code != http.StatusForbidden {
		t.Errorf("staff on statistics = %d, want 403", code)
	}
	code, env := h.do("GET", "/api/a/statistics", "admin", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), `"total_clients":4`) {
		t.Errorf("statistics = %d %s", code, env.Data)
	}
}

func TestAttendanceFlow(t *testing.T) {
	h := newHarness(t)

	code, env := h.do("GET", "/api/u/attendance/today", "alice", nil)
	if code != http.StatusOK || !strings.Contains(string(env.Data), "NOT_CHECKED_IN") {
		t.Fatalf("today before = %d %s", code, env.Data)
	}
	if code, _ := h.do("PUT", "/api/u/attendance/check-out", "alice", nil); code != http.StatusConflict {
		t.Fatalf("check-out before check-in = %d, want 409", code)
	}
	if code, _ := h.do("POST", "/api/u/attendance/check-in", "alice", map[string]string{"memo": "office"}); code != http.StatusCreated {
		t.Fatalf("check-in = %d", code)
	}
	if code, _ := h.do("POST", "/api/u/attendance/check-in", "alice", nil); code != http.StatusConflict {
		t.Fatalf("second check-in = %d, want 409", code)
	}

	var staff []struct {
		StaffID   int64 `json:"staff_id"`
		CheckedIn bool  `json:"checked_in"`
	}
	_, env = h.do("GET", "/api/a/staff?checked_in=true", "admin", nil)
	if err := json.Unmarshal(env.Data, &staff); err != nil {
		t.Fatal(err)
	}
	if len(staff) != 1 || staff[0].StaffID != h.staff["alice"] || !staff[0].CheckedIn {
		t.Fatalf("checked-in staff = %+v", staff)
	}
}

func TestDistributeFlow(t *testing.T) {
	h := newHarness(t)
	alice, budi := h.staff["alice"], h.staff["budi"]
	body := map[string]any{
		"client_ids":        h.clients,
		"staff_ids":         []int64{alice, budi},
		"distribution_date": "2026-03-10",
	}

	code, env := h.do("POST", "/api/a/distributions", "admin", body)
	if code != http.StatusCreated {
		t.Fatalf("distribute = %d %s", code, env.Message)
	}
	var res struct {
		BatchID        string `json:"batch_id"`
		AssignedCount  int    `json:"assigned_count"`
		PerStaffCounts []struct {
			StaffID int64 `json:"staff_id"`
			Count   int   `json:"count"`
		} `json:"per_staff_counts"`
	}
	if err := json.Unmarshal(env.Data, &res); err != nil {
		t.Fatal(err)
	}
	if res.AssignedCount != 4 || len(res.PerStaffCounts) != 2 || res.PerStaffCounts[0].Count != 2 || res.PerStaffCounts[1].Count != 2 {
		t.Fatalf("result = %+v", res)
	}

	code, env = h.do("POST", "/api/a/distributions", "admin", body)
	if code != http.StatusConflict {
		t.Fatalf("resubmit = %d, want 409", code)
	}
	var details struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.Unmarshal(env.Errors, &details); err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(details.IDs) != fmt.Sprint(h.clients) {
		t.Fatalf("conflict ids = %v, want %v", details.IDs, h.clients)
	}

	code, _ = h.do("POST", "/api/a/distributions", "admin", map[string]any{
		"client_ids": h.clients, "staff_ids": []int64{999}, "distribution_date": "2026-03-10",
	})
	if code != http.StatusBadRequest {
		t.Fatalf("unknown staff = %d, want 400", code)
	}
	if code, _ := h.do("POST", "/api/a/distributions", "admin", map[string]any{}); code != http.StatusBadRequest {
		t.Fatalf("empty selection = %d, want 400", code)
	}

	code, env = h.do("GET", "/api/a/distributions/"+res.BatchID, "admin", nil)
	if code != http.StatusOK {
		t.Fatalf("batch detail = %d", code)
	}

	var mine []struct {
		ClientID int64 `json:"client_id"`
	}
	_, env = h.do("GET", "/api/u/clients", "alice", nil)
	if err := json.Unmarshal(env.Data, &mine); err != nil {
		t.Fatal(err)
	}
	if len(mine) != 2 {
		t.Fatalf("alice sees %d clients, want 2", len(mine))
	}

	path := fmt.Sprintf("/api/u/clients/%d/status", mine[0].ClientID)
	if code, _ := h.do("PATCH", path, "budi", map[string]string{"status": "FAIL"}); code != http.StatusForbidden {
		t.Fatalf("other staff update = %d, want 403", code)
	}
	if code, _ := h.do("PATCH", path, "alice", map[string]string{"status": "NOPE"}); code != http.StatusUnprocessableEntity {
		t.Fatalf("invalid status = %d, want 422", code)
	}
	if code, _ := h.do("PATCH", path, "alice", map[string]string{"status": "success_1"}); code != http.StatusOK {
		t.Fatalf("owner update = %d", code)
	}
}

func TestStaffAdministration(t *testing.T) {
	h := newHarness(t)

	code, env := h.do("POST", "/api/a/staff", "admin", map[string]string{"username": "Eka", "name": "Eka", "role": "staff"})
	if code != http.StatusCreated {
		t.Fatalf("create = %d %s", code, env.Message)
	}
	var created struct {
		StaffID  int64  `json:"staff_id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatal(err)
	}
	if created.Username != "eka" {
		t.Fatalf("username = %q", created.Username)
	}
	if code, _ := h.do("POST", "/api/a/staff", "admin", map[string]string{"username": "eka", "name": "Again", "role": "staff"}); code != http.StatusConflict {
		t.Fatalf("duplicate = %d, want 409", code)
	}
	if code, _ := h.do("POST", "/api/a/staff", "alice", map[string]string{"username": "x", "name": "x", "role": "admin"}); code != http.StatusForbidden {
		t.Fatalf("staff creating staff = %d, want 403", code)
	}

	tok, err := helperAuth.IssueAccessToken(testSecret, created.StaffID, "staff", "Eka", time.Hour, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	h.tokens["eka"] = tok
	if code, _ := h.do("GET", "/api/u/attendance/today", "eka", nil); code != http.StatusOK {
		t.Fatalf("new staff today = %d", code)
	}

	path := fmt.Sprintf("/api/a/staff/%d", created.StaffID)
	if code, _ := h.do("PATCH", path, "admin", map[string]any{"is_active": false}); code != http.StatusOK {
		t.Fatalf("deactivate = %d", code)
	}
	if code, _ := h.do("GET", "/api/u/attendance/today", "eka", nil); code != http.StatusForbidden {
		t.Fatalf("deactivated staff = %d, want 403", code)
	}
	if code, _ := h.do("PATCH", fmt.Sprintf("/api/a/staff/%d", h.staff["admin"]), "admin", map[string]any{"is_active": false}); code != http.StatusBadRequest {
		t.Fatalf("self deactivate = %d, want 400", code)
	}
	if code, _ := h.do("GET", "/api/a/staff/9999", "admin", nil); code != http.StatusNotFound {
		t.Fatalf("missing staff = %d, want 404", code)
	}
}
