package controllers

import (
	"printfleet/config"
	"printfleet/internal/database"
	"printfleet/internal/events"
	"printfleet/internal/repositories"
	"printfleet/internal/services"

	maintainController "printfleet/internal/controllers/maintain"
	printerController "printfleet/internal/controllers/printer"
	scheduleController "printfleet/internal/controllers/schedule"
)

type Controllers struct {
	Schedule scheduleController.ScheduleControllerInterface
	Maintain maintainController.MaintainControllerInterface
	Printer  printerController.PrinterControllerInterface
}

func New(
	services services.Service,
	repos repositories.Repository,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) Controllers {
	return Controllers{
		Schedule: scheduleController.New(repos, services, config, db),
		Maintain: maintainController.New(repos, services, eventBus, config, db),
		Printer:  printerController.New(repos, services, config, db),
	}
}
