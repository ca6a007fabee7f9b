package app

import (
	"context"

	"printfleet/config"
	"printfleet/internal/controllers"
	"printfleet/internal/database"
	"printfleet/internal/events"
	"printfleet/internal/handlers/middleware"
	"printfleet/internal/jobs"
	"printfleet/internal/logger"
	"printfleet/internal/repositories"
	"printfleet/internal/services"
	"printfleet/internal/websockets"

	maintainController "printfleet/internal/controllers/maintain"
	printerController "printfleet/internal/controllers/printer"
	scheduleController "printfleet/internal/controllers/schedule"
)

type App struct {
	Database   database.DB
	Middleware middleware.Middleware
	Websocket  *websockets.Manager
	EventBus   *events.EventBus
	Config     config.Config

	// Services
	TransactionService *services.TransactionService
	IdentityService    *services.IdentityService
	SchedulerService   *services.SchedulerService
	ObjectStoreService *services.ObjectStoreService

	// Repositories
	Repos repositories.Repository

	// Controllers
	ScheduleController scheduleController.ScheduleControllerInterface
	MaintainController maintainController.MaintainControllerInterface
	PrinterController  printerController.PrinterControllerInterface
}

func New(ctx context.Context) (*App, error) {
	log := logger.New("app").Function("New")

	config, err := config.InitConfig()
	if err != nil {
		return &App{}, log.Err("failed to initialize config", err)
	}

	db, err := database.New(config)
	if err != nil {
		return &App{}, log.Err("failed to create database", err)
	}

	eventBus := events.New(db.Cache.Events, config)

	service, err := services.New(ctx, db, config)
	if err != nil {
		return &App{}, log.Err("failed to create services", err)
	}

	repos := repositories.New(db)

	websocket, err := websockets.New(eventBus)
	if err != nil {
		return &App{}, log.Err("failed to create websocket manager", err)
	}

	middleware := middleware.New(db, eventBus, config, repos)
	controllers := controllers.New(service, repos, eventBus, config, db)

	if config.SchedulerEnabled {
		overdueJob := jobs.NewOverdueScheduleJob(repos.Schedule, db, services.Daily)
		if err := service.Scheduler.AddJob(overdueJob); err != nil {
			return &App{}, log.Err("failed to register overdue schedule job", err)
		}
		log.Info("Registered overdue schedule job with scheduler")

		if err := service.Scheduler.Start(ctx); err != nil {
			return &App{}, log.Err("failed to start scheduler", err)
		}
	}

	app := &App{
		Database:           db,
		Config:             config,
		Middleware:         middleware,
		TransactionService: service.Transaction,
		IdentityService:    service.Identity,
		SchedulerService:   service.Scheduler,
		ObjectStoreService: service.ObjectStore,
		Repos:              repos,
		ScheduleController: controllers.Schedule,
		MaintainController: controllers.Maintain,
		PrinterController:  controllers.Printer,
		Websocket:          websocket,
		EventBus:           eventBus,
	}

	if err := app.validate(); err != nil {
		return &App{}, log.Err("failed to validate app", err)
	}

	return app, nil
}

func (a *App) validate() error {
	log := logger.New("app").Function("validate")
	if a.Database.SQL == nil {
		return log.ErrMsg("database is nil")
	}

	if a.Config == (config.Config{}) {
		return log.ErrMsg("config is nil")
	}

	nilChecks := []any{
		a.Websocket,
		a.EventBus,
		a.TransactionService,
		a.IdentityService,
		a.SchedulerService,
		a.ObjectStoreService,
		a.ScheduleController,
		a.MaintainController,
		a.PrinterController,
		a.Middleware,
		a.Repos.User,
		a.Repos.Printer,
		a.Repos.Schedule,
		a.Repos.Maintain,
	}

	for _, check := range nilChecks {
		if check == nil {
			return log.ErrMsg("nil check failed")
		}
	}

	return nil
}

func (a *App) Close() (err error) {
	if a.Websocket != nil {
		a.Websocket.Close()
	}

	if a.EventBus != nil {
		if closeErr := a.EventBus.Close(); closeErr != nil {
			err = closeErr
		}
	}

	if a.SchedulerService != nil {
		if closeErr := a.SchedulerService.Stop(context.Background()); closeErr != nil {
			err = closeErr
		}
	}

	if dbErr := a.Database.Close(); dbErr != nil {
		err = dbErr
	}

	return err
}
