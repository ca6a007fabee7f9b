package printerController

import (
	"context"
	"errors"
	"fmt"

	"printfleet/config"
	"printfleet/internal/database"
	"printfleet/internal/logger"
	. "printfleet/internal/models"
	"printfleet/internal/repositories"
	"printfleet/internal/services"

	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("missing required field")
	ErrNotFound   = errors.New("printer not found")
)

type PrinterControllerInterface interface {
	ListForSchedule(ctx context.Context, clientID, locationID, scheduleID int) ([]repositories.PrinterListRow, error)
	GetBySerial(ctx context.Context, serialNo string) (*Printer, error)
}

type PrinterController struct {
	printerRepo repositories.PrinterRepository
	db          database.DB
	Config      config.Config
	log         logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) PrinterControllerInterface {
	return &PrinterController{
		printerRepo: repos.Printer,
		db:          db,
		Config:      config,
		log:         logger.New("printerController"),
	}
}

// ListForSchedule returns the assignment datatable for one client/location,
// joined with each printer's latest maintenance record and its toggle state
// under the given schedule. A zero scheduleID is valid and means create
// mode, where no rows are toggled yet.
func (c *PrinterController) ListForSchedule(
	ctx context.Context,
	clientID, locationID, scheduleID int,
) ([]repositories.PrinterListRow, error) {
	log := c.log.TraceFromContext(ctx).Function("ListForSchedule")

	if clientID == 0 {
		return nil, fmt.Errorf("%w: clientId", ErrValidation)
	}
	if locationID == 0 {
		return nil, fmt.Errorf("%w: locationId", ErrValidation)
	}

	rows, err := c.printerRepo.ListForSchedule(ctx, c.db.SQL, clientID, locationID, scheduleID)
	if err != nil {
		return nil, log.Err("failed to list printers", err,
			"clientID", clientID, "locationID", locationID)
	}

	return rows, nil
}

func (c *PrinterController) GetBySerial(ctx context.Context, serialNo string) (*Printer, error) {
	log := c.log.TraceFromContext(ctx).Function("GetBySerial")

	if serialNo == "" {
		return nil, fmt.Errorf("%w: serialNo", ErrValidation)
	}

	printer, err := c.printerRepo.GetBySerial(ctx, c.db.SQL, serialNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to get printer", err, "serialNo", serialNo)
	}

	return printer, nil
}
