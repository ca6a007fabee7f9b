package seed

import (
	"time"

	"printfleet/config"
	"printfleet/internal/logger"
	. "printfleet/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

// Seed loads a development dataset of clients, locations, printers, and
// technicians. Production environments rely on initialize only.
func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	users := []User{
		{
			FirstName: "Ramon",
			LastName:  "Delgado",
			ContactNo: "09171234567",
			Email:     "ramon.delgado@example.com",
			Role:      stringPtr("admin"),
			IsActive:  true,
			SubjectID: "seed-subject-admin",
		},
		{
			FirstName: "Liza",
			LastName:  "Santos",
			ContactNo: "09179876543",
			Email:     "liza.santos@example.com",
			Role:      stringPtr("technician"),
			IsActive:  true,
			SubjectID: "seed-subject-tech-1",
		},
		{
			FirstName: "Marco",
			LastName:  "Reyes",
			ContactNo: "09175551234",
			Email:     "marco.reyes@example.com",
			Role:      stringPtr("technician"),
			IsActive:  true,
			SubjectID: "seed-subject-tech-2",
		},
	}

	for i := range users {
		var existing User
		if err := db.First(&existing, "subject_id = ?", users[i].SubjectID).Error; err == nil {
			users[i] = existing
			continue
		}
		log.Info("Seeding user", "email", users[i].Email)
		if err := db.Create(&users[i]).Error; err != nil {
			return log.Err("failed to create user", err, "email", users[i].Email)
		}
	}

	clients := []Client{
		{Name: "Northfield Medical Group"},
		{Name: "Cavendish Logistics"},
	}
	for i := range clients {
		if err := upsertByName(db, &clients[i], clients[i].Name); err != nil {
			return log.Err("failed to create client", err, "name", clients[i].Name)
		}
	}

	locations := []Location{
		{Name: "Main Hospital", ClientID: clients[0].ID},
		{Name: "Annex Clinic", ClientID: clients[0].ID},
		{Name: "Central Warehouse", ClientID: clients[1].ID},
	}
	for i := range locations {
		var existing Location
		err := db.First(&existing, "name = ? AND client_id = ?", locations[i].Name, locations[i].ClientID).Error
		if err == nil {
			locations[i] = existing
			continue
		}
		if err := db.Create(&locations[i]).Error; err != nil {
			return log.Err("failed to create location", err, "name", locations[i].Name)
		}
	}

	departments := []Department{
		{Name: "Billing"},
		{Name: "Pharmacy"},
		{Name: "Records"},
		{Name: "Dispatch"},
	}
	for i := range departments {
		if err := upsertByName(db, &departments[i], departments[i].Name); err != nil {
			return log.Err("failed to create department", err, "name", departments[i].Name)
		}
	}

	printerModels := []PrinterModel{
		{Name: "L3110"},
		{Name: "L5290"},
		{Name: "G3010"},
	}
	for i := range printerModels {
		if err := upsertByName(db, &printerModels[i], printerModels[i].Name); err != nil {
			return log.Err("failed to create printer model", err, "name", printerModels[i].Name)
		}
	}

	signatories := []Signatory{
		{FirstName: "Alma", LastName: "Ocampo", ClientID: intPtr(clients[0].ID)},
		{FirstName: "Dennis", LastName: "Uy", ClientID: intPtr(clients[1].ID)},
	}
	for i := range signatories {
		var existing Signatory
		err := db.First(&existing, "first_name = ? AND last_name = ?", signatories[i].FirstName, signatories[i].LastName).Error
		if err == nil {
			continue
		}
		if err := db.Create(&signatories[i]).Error; err != nil {
			return log.Err("failed to create signatory", err, "lastName", signatories[i].LastName)
		}
	}

	deployed := datatypes.Date(time.Now().UTC().AddDate(0, -6, 0))
	printers := []Printer{
		{
			SerialNo:       "X5K7-001842",
			ModelID:        printerModels[0].ID,
			ClientID:       clients[0].ID,
			LocationID:     locations[0].ID,
			DepartmentID:   departments[0].ID,
			DeploymentDate: &deployed,
		},
		{
			SerialNo:       "X5K7-001907",
			ModelID:        printerModels[1].ID,
			ClientID:       clients[0].ID,
			LocationID:     locations[0].ID,
			DepartmentID:   departments[1].ID,
			DeploymentDate: &deployed,
		},
		{
			SerialNo:       "X5K7-002215",
			ModelID:        printerModels[1].ID,
			ClientID:       clients[0].ID,
			LocationID:     locations[1].ID,
			DepartmentID:   departments[2].ID,
			DeploymentDate: &deployed,
		},
		{
			SerialNo:       "G301-000318",
			ModelID:        printerModels[2].ID,
			ClientID:       clients[1].ID,
			LocationID:     locations[2].ID,
			DepartmentID:   departments[3].ID,
			DeploymentDate: &deployed,
		},
	}
	for i := range printers {
		var existing Printer
		if err := db.First(&existing, "serial_no = ?", printers[i].SerialNo).Error; err == nil {
			continue
		}
		log.Info("Seeding printer", "serialNo", printers[i].SerialNo)
		if err := db.Create(&printers[i]).Error; err != nil {
			return log.Err("failed to create printer", err, "serialNo", printers[i].SerialNo)
		}
	}

	log.Info("Development data seeded")
	return nil
}

// upsertByName fills dest from an existing row with the same name, creating
// one when absent. dest must have a name column.
func upsertByName[T any](db *gorm.DB, dest *T, name string) error {
	var existing T
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		*dest = existing
		return nil
	}
	return db.Create(dest).Error
}
