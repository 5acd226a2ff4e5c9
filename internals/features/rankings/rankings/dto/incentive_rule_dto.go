package dto

import (
	"strings"

	"leadcrm_backend/internals/features/rankings/rankings/model"
)

type IncentiveRuleItem struct {
	CaseCount    string `json:"case_count" validate:"required,max=50"`
	RewardAmount int64  `json:"reward_amount" validate:"gte=0"`
}

// ReplaceIncentiveRulesRequest replaces the whole rule set; an empty list clears it.
type ReplaceIncentiveRulesRequest struct {
	Rules []IncentiveRuleItem `json:"rules" validate:"dive"`
}

func (r ReplaceIncentiveRulesRequest) ToModels() []model.IncentiveRuleModel {
	out := make([]model.IncentiveRuleModel, 0, len(r.Rules))
	for _, it := range r.Rules {
		out = append(out, model.IncentiveRuleModel{
			IncentiveRuleCaseCount:    strings.TrimSpace(it.CaseCount),
			IncentiveRuleRewardAmount: it.RewardAmount,
		})
	}
	return out
}

type IncentiveRuleResponse struct {
	ID           int64  `json:"id"`
	CaseCount    string `json:"case_count"`
	RewardAmount int64  `json:"reward_amount"`
}

func FromModels(rows []model.IncentiveRuleModel) []IncentiveRuleResponse {
	out := make([]IncentiveRuleResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, IncentiveRuleResponse{
			ID:           r.IncentiveRuleID,
			CaseCount:    r.IncentiveRuleCaseCount,
			RewardAmount: r.IncentiveRuleRewardAmount,
		})
	}
	return out
}
