package database

import (
	"printfleet/internal/logger"
	"printfleet/internal/models"
)

// MigrateModels runs GORM AutoMigrate for all models
func (db *DB) MigrateModels() error {
	log := logger.New("database").Function("MigrateModels")
	log.Info("Starting database migration")

	modelsToMigrate := []interface{}{
		// Lookup tables
		&models.Client{},
		&models.Location{},
		&models.Department{},
		&models.PrinterModel{},
		&models.Part{},
		&models.Status{},
		&models.Priority{},
		&models.Signatory{},
		&models.User{},

		// Fleet registry
		&models.Printer{},

		// Maintenance records and children
		&models.MaintenanceRecord{},
		&models.ReplacedPart{},
		&models.RepairedPart{},
		&models.ColorRefill{},
		&models.Reset{},

		// Scheduling
		&models.Schedule{},
		&models.ScheduleDetail{},
	}

	for _, model := range modelsToMigrate {
		if err := db.SQL.AutoMigrate(model); err != nil {
			log.Error("Failed to migrate model", "model", model, "error", err)
			return err
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

// CreateIndexes creates additional indexes that GORM doesn't create automatically
func (db *DB) CreateIndexes() error {
	log := logger.New("database").Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	indexes := []string{
		// Same-day duplicate check scans maintain rows by printer and day
		"CREATE INDEX IF NOT EXISTS idx_maintain_printer_created ON maintain(printer_id, created_at DESC)",
		// Latest-maintenance join for the schedule datatable
		"CREATE INDEX IF NOT EXISTS idx_maintain_printer_id_desc ON maintain(printer_id, id DESC)",
		// Deletion guard probes details by schedule and maintained flag
		"CREATE INDEX IF NOT EXISTS idx_schedule_details_maintained ON schedule_details(schedule_id, is_maintained)",
	}

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
			// Continue with other indexes even if one fails
		}
	}

	log.Info("Additional database indexes created")
	return nil
}
