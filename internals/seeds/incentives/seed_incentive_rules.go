package incentives

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"leadcrm_backend/internals/features/rankings/rankings/model"

	"gorm.io/gorm"
)

type IncentiveRuleSeed struct {
	CaseCount    string `json:"case_count"`
	RewardAmount int64  `json:"reward_amount"`
}

// SeedIncentiveRules only fills an empty table; configured rules are never overwritten.
func SeedIncentiveRules(db *gorm.DB, inputs []IncentiveRuleSeed) (int, error) {
	var count int64
	if err := db.Model(&model.IncentiveRuleModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count incentive rules: %w", err)
	}
	if count > 0 {
		log.Printf("ℹ️ %d incentive rules already configured, skipped", count)
		return 0, nil
	}
	rows := make([]model.IncentiveRuleModel, 0, len(inputs))
	for _, in := range inputs {
		rows = append(rows, model.IncentiveRuleModel{
			IncentiveRuleCaseCount:    in.CaseCount,
			IncentiveRuleRewardAmount: in.RewardAmount,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := db.Create(&rows).Error; err != nil {
		return 0, fmt.Errorf("insert incentive rules: %w", err)
	}
	log.Printf("✅ %d incentive rules inserted", len(rows))
	return len(rows), nil
}

func SeedIncentiveRulesFromJSON(db *gorm.DB, filePath string) (int, error) {
	log.Println("📥 Reading incentive rule seed:", filePath)
	file, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", filePath, err)
	}
	var inputs []IncentiveRuleSeed
	if err := json.Unmarshal(file, &inputs); err != nil {
		return 0, fmt.Errorf("decode %s: %w", filePath, err)
	}
	return SeedIncentiveRules(db, inputs)
}
