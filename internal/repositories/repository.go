package repositories

import (
	"printfleet/internal/database"
)

type Repository struct {
	User     UserRepository
	Printer  PrinterRepository
	Schedule ScheduleRepository
	Maintain MaintainRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:     NewUserRepository(db), // user repo needs cache for subject lookups
		Printer:  NewPrinterRepository(db),
		Schedule: NewScheduleRepository(db),
		Maintain: NewMaintainRepository(db),
	}
}
