package seeds

import (
	"path/filepath"

	"leadcrm_backend/internals/seeds/clients"
	"leadcrm_backend/internals/seeds/incentives"
	"leadcrm_backend/internals/seeds/staffs"

	"gorm.io/gorm"
)

type Report struct {
	Staff          int
	Clients        int
	IncentiveRules int
}

// RunAllSeeds is safe to repeat. dir holds the JSON data files (default internals/seeds).
func RunAllSeeds(db *gorm.DB, dir string, demoClients int) (Report, error) {
	var rep Report
	var err error

	//* Staff
	if rep.Staff, err = staffs.SeedStaffsFromJSON(db, filepath.Join(dir, "staffs", "data_staffs.json")); err != nil {
		return rep, err
	}

	//* Clients
	if rep.Clients, err = clients.SeedDemoClients(db, demoClients); err != nil {
		return rep, err
	}

	//* Incentives
	if rep.IncentiveRules, err = incentives.SeedIncentiveRulesFromJSON(db, filepath.Join(dir, "incentives", "data_incentive_rules.json")); err != nil {
		return rep, err
	}
	return rep, nil
}
