package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	clientModel "leadcrm_backend/internals/features/clients/clients/model"
	distributionModel "leadcrm_backend/internals/features/distributions/distributions/model"
	"leadcrm_backend/internals/features/rankings/rankings/model"
	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	"leadcrm_backend/internals/constants"
	"leadcrm_backend/internals/helpers/dbtime"

	"gorm.io/gorm"
)

var (
	ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")
	ErrInvalidRule  = errors.New("invalid incentive rule")
)

type RankEntry struct {
	Rank          int    `json:"rank"`
	StaffID       int64  `json:"staff_id"`
	Name          string `json:"name"`
	AssignedCount int64  `json:"assigned_count"`
	SuccessCount  int64  `json:"success_count"`
}

type BoardEntry struct {
	StaffID      int64  `json:"staff_id"`
	Name         string `json:"name"`
	SuccessCount int64  `json:"success_count"`
	RewardAmount int64  `json:"reward_amount"`
}

type Summary struct {
	StaffID     int64            `json:"staff_id"`
	Month       string           `json:"month"`
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"by_status"`
	Success     int64            `json:"success"`
	SuccessRate float64          `json:"success_rate"`
}

// Aggregator only reads clients and client_assignments; rules are its one writable table.
type Aggregator struct {
	DB    *gorm.DB
	Clock dbtime.Clock
	Loc   *time.Location
}

func NewAggregator(db *gorm.DB, clock dbtime.Clock, loc *time.Location) *Aggregator {
	if clock == nil {
		clock = dbtime.SystemClock{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{DB: db, Clock: clock, Loc: loc}
}

type countRow struct {
	StaffID int64
	N       int64
}

func toMap(rows []countRow) map[int64]int64 {
	out := make(map[int64]int64, len(rows))
	for _, r := range rows {
		out[r.StaffID] = r.N
	}
	return out
}

func (a *Aggregator) monthCounts(ctx context.Context, yearMonth string) (staff []staffModel.StaffModel, assigned, success map[int64]int64, err error) {
	from, to, err := dbtime.MonthRange(yearMonth, a.Clock.Now(), a.Loc)
	if err != nil {
		return nil, nil, nil, ErrInvalidMonth
	}
	start, end, err := dbtime.MonthBounds(yearMonth, a.Clock.Now(), a.Loc)
	if err != nil {
		return nil, nil, nil, ErrInvalidMonth
	}
	db := a.DB.WithContext(ctx)

	if err := db.Where("staff_role = ? AND staff_is_active = ?", constants.RoleStaff, true).
		Order("staff_id ASC").
		Find(&staff).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("list staff: %w", err)
	}

	var aRows []countRow
	if err := db.Model(&distributionModel.ClientAssignmentModel{}).
		Select("client_assignment_staff_id AS staff_id, COUNT(*) AS n").
		Where("client_assignment_distribution_date >= ? AND client_assignment_distribution_date < ?", from, to).
		Group("client_assignment_staff_id").
		Scan(&aRows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("count assignments: %w", err)
	}

	var sRows []countRow
	if err := db.Model(&clientModel.ClientModel{}).
		Select("client_owner_id AS staff_id, COUNT(*) AS n").
		Where("client_owner_id IS NOT NULL").
		Where("client_status IN ?", constants.SuccessStatuses).
		Where("client_updated_at >= ? AND client_updated_at < ?", start, end).
		Group("client_owner_id").
		Scan(&sRows).Error; err != nil {
		return nil, nil, nil, fmt.Errorf("count successes: %w", err)
	}
	return staff, toMap(aRows), toMap(sRows), nil
}

// Leaderboard ranks by success desc, assigned desc, staff id asc. limit <= 0 means everyone.
func (a *Aggregator) Leaderboard(ctx context.Context, yearMonth string, limit int) ([]RankEntry, error) {
	staff, assigned, success, err := a.monthCounts(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	out := make([]RankEntry, 0, len(staff))
	for _, s := range staff {
		out = append(out, RankEntry{
			StaffID:       s.StaffID,
			Name:          s.StaffName,
			AssignedCount: assigned[s.StaffID],
			SuccessCount:  success[s.StaffID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SuccessCount != out[j].SuccessCount {
			return out[i].SuccessCount > out[j].SuccessCount
		}
		if out[i].AssignedCount != out[j].AssignedCount {
			return out[i].AssignedCount > out[j].AssignedCount
		}
		return out[i].StaffID < out[j].StaffID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// IncentiveBoard applies the current rules to each staff member's monthly successes.
func (a *Aggregator) IncentiveBoard(ctx context.Context, yearMonth string) ([]BoardEntry, error) {
	staff, _, success, err := a.monthCounts(ctx, yearMonth)
	if err != nil {
		return nil, err
	}
	rules, err := a.ListRules(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]BoardEntry, 0, len(staff))
	for _, s := range staff {
		n := success[s.StaffID]
		out = append(out, BoardEntry{
			StaffID:      s.StaffID,
			Name:         s.StaffName,
			SuccessCount: n,
			RewardAmount: RewardFor(n, rules),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SuccessCount != out[j].SuccessCount {
			return out[i].SuccessCount > out[j].SuccessCount
		}
		return out[i].StaffID < out[j].StaffID
	})
	return out, nil
}

// MySummary counts the caller's clients created in the month, per status.
func (a *Aggregator) MySummary(ctx context.Context, staffID int64, yearMonth string) (*Summary, error) {
	start, end, err := dbtime.MonthBounds(yearMonth, a.Clock.Now(), a.Loc)
	if err != nil {
		return nil, ErrInvalidMonth
	}
	var rows []struct {
		Status string
		N      int64
	}
	if err := a.DB.WithContext(ctx).Model(&clientModel.ClientModel{}).
		Select("client_status AS status, COUNT(*) AS n").
		Where("client_owner_id = ?", staffID).
		Where("client_created_at >= ? AND client_created_at < ?", start, end).
		Group("client_status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("summarize clients: %w", err)
	}

	sum := &Summary{
		StaffID:  staffID,
		Month:    start.In(a.Loc).Format(dbtime.MonthLayout),
		ByStatus: make(map[string]int64, len(constants.ClientStatuses)),
	}
	for _, st := range constants.ClientStatuses {
		sum.ByStatus[st] = 0
	}
	for _, r := range rows {
		sum.ByStatus[r.Status] = r.N
		sum.Total += r.N
	}
	for _, st := range constants.SuccessStatuses {
		sum.Success += sum.ByStatus[st]
	}
	if sum.Total > 0 {
		sum.SuccessRate = float64(sum.Success) / float64(sum.Total)
	}
	return sum, nil
}

// ListRules orders by reward ascending, which is the order RewardFor expects.
func (a *Aggregator) ListRules(ctx context.Context) ([]model.IncentiveRuleModel, error) {
	var rules []model.IncentiveRuleModel
	if err := a.DB.WithContext(ctx).
		Order("incentive_rule_reward_amount ASC").
		Order("incentive_rule_id ASC").
		Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("list incentive rules: %w", err)
	}
	return rules, nil
}

// ReplaceRules swaps the whole rule set in one transaction.
func (a *Aggregator) ReplaceRules(ctx context.Context, rules []model.IncentiveRuleModel) ([]model.IncentiveRuleModel, error) {
	for _, r := range rules {
		if _, _, ok := ParseCaseCount(r.IncentiveRuleCaseCount); !ok || r.IncentiveRuleRewardAmount < 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRule, r.IncentiveRuleCaseCount)
		}
	}
	err := a.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.IncentiveRuleModel{}).Error; err != nil {
			return fmt.Errorf("clear incentive rules: %w", err)
		}
		if len(rules) == 0 {
			return nil
		}
		fresh := make([]model.IncentiveRuleModel, 0, len(rules))
		for _, r := range rules {
			fresh = append(fresh, model.IncentiveRuleModel{
				IncentiveRuleCaseCount:    strings.TrimSpace(r.IncentiveRuleCaseCount),
				IncentiveRuleRewardAmount: r.IncentiveRuleRewardAmount,
			})
		}
		if err := tx.Create(&fresh).Error; err != nil {
			return fmt.Errorf("create incentive rules: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] incentive rules replaced count=%d", len(rules))
	return a.ListRules(ctx)
}

// ParseCaseCount reads "n" (at least n) or "a~b" (a through b). hi is -1 for open-ended.
func ParseCaseCount(s string) (lo, hi int64, ok bool) {
	s = strings.TrimSpace(s)
	if a, b, found := strings.Cut(s, "~"); found {
		x, err1 := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		y, err2 := strconv.ParseInt(strings.TrimSpace(b), 10, 64)
		if err1 != nil || err2 != nil || x < 0 || y < x {
			return 0, 0, false
		}
		return x, y, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return n, -1, true
}

// RewardFor walks rules in the given order; the last matching rule wins, malformed ones are skipped.
func RewardFor(success int64, rules []model.IncentiveRuleModel) int64 {
	var reward int64
	for _, r := range rules {
		lo, hi, ok := ParseCaseCount(r.IncentiveRuleCaseCount)
		if !ok {
			continue
		}
		if success >= lo && (hi < 0 || success <= hi) {
			reward = r.IncentiveRuleRewardAmount
		}
	}
	return reward
}
