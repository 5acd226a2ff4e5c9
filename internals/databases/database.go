package database

import (
	"fmt"
	"log"
	"time"

	attendanceModel "leadcrm_backend/internals/features/attendance/attendance_records/model"
	clientModel "leadcrm_backend/internals/features/clients/clients/model"
	distributionModel "leadcrm_backend/internals/features/distributions/distributions/model"
	rankingModel "leadcrm_backend/internals/features/rankings/rankings/model"
	staffModel "leadcrm_backend/internals/features/staff/staffs/model"

	"leadcrm_backend/internals/configs"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Models in dependency order; staffs must exist before the tables referencing it.
var Models = []any{
	&staffModel.StaffModel{},
	&clientModel.ClientModel{},
	&attendanceModel.AttendanceRecordModel{},
	&distributionModel.DistributionBatchModel{},
	&distributionModel.ClientAssignmentModel{},
	&rankingModel.IncentiveRuleModel{},
}

func gormConfig(level gormLogger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger:         configs.NewGormLogger(level),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	}
}

// ConnectDB opens postgres (production) or sqlite (local) from cfg.
func ConnectDB(cfg configs.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		log.Printf("🔌 Connecting to sqlite at %s ...", cfg.SQLitePath)
		dialector = sqlite.Open(cfg.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000")
	default:
		log.Println("🔌 Connecting to PostgreSQL ...")
		dialector = postgres.New(postgres.Config{
			DSN:                  cfg.PostgresDSN(),
			PreferSimpleProtocol: true, // PgBouncer transaction pooling
		})
	}

	db, err := gorm.Open(dialector, gormConfig(gormLogger.Warn))
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}
	log.Println("✅ DB connected.")
	return db, nil
}

// OpenSQLiteMemory is a private in-memory database on a single connection, used by tests.
// One connection serialises transactions the way row locks do on postgres.
func OpenSQLiteMemory(name string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", name)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(gormLogger.Silent))
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func TunePool(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("[WARN] pool tune err: %v", err)
		return
	}
	if db.Dialector.Name() == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	for _, m := range Models {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	return nil
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func Close(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
