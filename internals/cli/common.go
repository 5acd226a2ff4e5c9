package cli

import (
	"fmt"

	"github.com/fatih/color"
	"gorm.io/gorm"

	"leadcrm_backend/internals/configs"
	database "leadcrm_backend/internals/databases"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
)

// openDB loads config and connects; the caller closes the pool.
func openDB() (configs.Config, *gorm.DB, error) {
	configs.LoadEnv()
	cfg := configs.Load()
	db, err := database.ConnectDB(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to connect database: %w", err)
	}
	database.TunePool(db)
	return cfg, db, nil
}
