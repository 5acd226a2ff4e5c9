package service

import (
	"context"
	"fmt"
	"time"

	clientModel "leadcrm_backend/internals/features/clients/clients/model"

	"leadcrm_backend/internals/constants"
	"leadcrm_backend/internals/helpers/dbtime"

	"gorm.io/gorm"
)

const (
	trendMonths = 6
	topRegions  = 5
)

type StatsSummary struct {
	TotalClients      int64 `json:"total_clients"`
	UnassignedClients int64 `json:"unassigned_clients"`
	TotalContracts    int64 `json:"total_contracts"`
}

type MonthlyStats struct {
	Month      string `json:"month"`
	NewClients int64  `json:"new_clients"`
	Contracts  int64  `json:"contracts"`
}

type RegionCount struct {
	Address string `json:"address"`
	Count   int64  `json:"count"`
}

type MonthContracts struct {
	Month     string `json:"month"`
	Contracts int64  `json:"contracts"`
}

// Statistics is the admin dashboard: pool totals, this month, busiest addresses and the contract trend.
type Statistics struct {
	Summary       StatsSummary     `json:"summary"`
	Monthly       MonthlyStats     `json:"monthly_performance"`
	RegionTop5    []RegionCount    `json:"region_top5"`
	ContractTrend []MonthContracts `json:"monthly_contract_trend"`
}

// Statistics counts by client_created_at; a contract is a client currently in a SUCCESS status.
func (a *Aggregator) Statistics(ctx context.Context) (*Statistics, error) {
	db := a.DB.WithContext(ctx)
	clients := func() *gorm.DB { return db.Model(&clientModel.ClientModel{}) }
	contracts := func() *gorm.DB {
		return clients().Where("client_status IN ?", constants.SuccessStatuses)
	}

	var st Statistics
	if err := clients().Count(&st.Summary.TotalClients).Error; err != nil {
		return nil, fmt.Errorf("count clients: %w", err)
	}
	if err := clients().Where("client_is_distributed = ?", false).Count(&st.Summary.UnassignedClients).Error; err != nil {
		return nil, fmt.Errorf("count unassigned clients: %w", err)
	}
	if err := contracts().Count(&st.Summary.TotalContracts).Error; err != nil {
		return nil, fmt.Errorf("count contracts: %w", err)
	}

	if err := clients().
		Select("client_address AS address, COUNT(*) AS count").
		Group("client_address").
		Order("count DESC").
		Order("client_address ASC").
		Limit(topRegions).
		Scan(&st.RegionTop5).Error; err != nil {
		return nil, fmt.Errorf("count regions: %w", err)
	}
	if st.RegionTop5 == nil {
		st.RegionTop5 = []RegionCount{}
	}

	now := a.Clock.Now()
	current, _, _ := dbtime.MonthRange("", now, a.Loc)
	first := time.Time(current)

	st.ContractTrend = make([]MonthContracts, 0, trendMonths)
	for i := trendMonths - 1; i >= 0; i-- {
		ym := first.AddDate(0, -i, 0).Format(dbtime.MonthLayout)
		start, end, err := dbtime.MonthBounds(ym, now, a.Loc)
		if err != nil {
			return nil, err
		}
		var n int64
		if err := contracts().
			Where("client_created_at >= ? AND client_created_at < ?", start, end).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("count contracts %s: %w", ym, err)
		}
		st.ContractTrend = append(st.ContractTrend, MonthContracts{Month: ym, Contracts: n})
	}

	start, end, err := dbtime.MonthBounds("", now, a.Loc)
	if err != nil {
		return nil, err
	}
	st.Monthly.Month = first.Format(dbtime.MonthLayout)
	if err := clients().
		Where("client_created_at >= ? AND client_created_at < ?", start, end).
		Count(&st.Monthly.NewClients).Error; err != nil {
		return nil, fmt.Errorf("count new clients: %w", err)
	}
	st.Monthly.Contracts = st.ContractTrend[len(st.ContractTrend)-1].Contracts
	return &st, nil
}
