package model

import "time"

// IncentiveRuleModel: case_count is either a threshold ("5") or an inclusive range ("1~2").
type IncentiveRuleModel struct {
	IncentiveRuleID           int64     `gorm:"column:incentive_rule_id;primaryKey;autoIncrement" json:"incentive_rule_id"`
	IncentiveRuleCaseCount    string    `gorm:"column:incentive_rule_case_count;type:varchar(50);not null" json:"incentive_rule_case_count"`
	IncentiveRuleRewardAmount int64     `gorm:"column:incentive_rule_reward_amount;not null" json:"incentive_rule_reward_amount"`
	IncentiveRuleCreatedAt    time.Time `gorm:"column:incentive_rule_created_at;autoCreateTime" json:"incentive_rule_created_at"`
}

func (IncentiveRuleModel) TableName() string { return "incentive_rules" }
