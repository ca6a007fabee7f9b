package initialize

import (
	"printfleet/config"
	. "printfleet/internal/models"

	logger "printfleet/internal/logger"
	"gorm.io/gorm"
)

// Reference data every environment needs regardless of seeding. Lookup rows
// are matched by name so reruns are safe.

func InitializeTables(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("InitializeTables")
	log.Info("Initializing essential production data")

	if err := initializeStatuses(db, log); err != nil {
		return log.Err("failed to initialize statuses", err)
	}

	if err := initializePriorities(db, log); err != nil {
		return log.Err("failed to initialize priorities", err)
	}

	if err := initializeParts(db, log); err != nil {
		return log.Err("failed to initialize parts", err)
	}

	log.Info("Table initialization complete")
	return nil
}

func initializeStatuses(db *gorm.DB, log logger.Logger) error {
	log.Info("Initializing status reference data")

	statuses := []Status{
		{Name: "Good Condition"},
		{Name: "Pulled Out"},
		{Name: "Replacement (Unit)"},
		{Name: "Replacement (Parts)"},
		{Name: "For Observation"},
	}

	for _, status := range statuses {
		var existing Status
		if err := db.First(&existing, "name = ?", status.Name).Error; err == nil {
			log.Debug("Status already exists", "name", status.Name)
			continue
		}
		log.Info("Initializing status", "name", status.Name)
		if err := db.Create(&status).Error; err != nil {
			return log.Err("failed to create status", err, "name", status.Name)
		}
	}

	log.Info("Status reference data initialized", "count", len(statuses))
	return nil
}

func initializePriorities(db *gorm.DB, log logger.Logger) error {
	log.Info("Initializing priority reference data")

	priorities := []Priority{
		{Name: "Low"},
		{Name: "Medium"},
		{Name: "High"},
		{Name: "Critical"},
	}

	for _, priority := range priorities {
		var existing Priority
		if err := db.First(&existing, "name = ?", priority.Name).Error; err == nil {
			log.Debug("Priority already exists", "name", priority.Name)
			continue
		}
		log.Info("Initializing priority", "name", priority.Name)
		if err := db.Create(&priority).Error; err != nil {
			return log.Err("failed to create priority", err, "name", priority.Name)
		}
	}

	log.Info("Priority reference data initialized", "count", len(priorities))
	return nil
}

func initializeParts(db *gorm.DB, log logger.Logger) error {
	log.Info("Initializing part reference data")

	parts := []Part{
		{Name: "Printhead"},
		{Name: "Ink Pad"},
		{Name: "Paper Feed Roller"},
		{Name: "Pickup Roller"},
		{Name: "Waste Ink Tank"},
		{Name: "Mainboard"},
		{Name: "Power Supply"},
		{Name: "Carriage Unit"},
		{Name: "Scanner Assembly"},
	}

	for _, part := range parts {
		var existing Part
		if err := db.First(&existing, "name = ?", part.Name).Error; err == nil {
			log.Debug("Part already exists", "name", part.Name)
			continue
		}
		log.Info("Initializing part", "name", part.Name)
		if err := db.Create(&part).Error; err != nil {
			return log.Err("failed to create part", err, "name", part.Name)
		}
	}

	log.Info("Part reference data initialized", "count", len(parts))
	return nil
}
