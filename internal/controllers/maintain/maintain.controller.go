package maintainController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"printfleet/config"
	"printfleet/internal/database"
	"printfleet/internal/events"
	"printfleet/internal/logger"
	. "printfleet/internal/models"
	"printfleet/internal/repositories"
	"printfleet/internal/services"

	"gorm.io/gorm"
)

var (
	ErrValidation           = errors.New("missing required field")
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateMaintenance = errors.New("printer already maintained today")
)

// CheckSerialResult is what a technician sees after scanning a QR code: the
// printer card and the signatories available at its client.
type CheckSerialResult struct {
	Printer     *repositories.MaintenanceCard `json:"printer"`
	Signatories []Signatory                   `json:"signatories"`
}

type ColorRefillRequest struct {
	Cyan    bool `json:"cyan"`
	Magenta bool `json:"magenta"`
	Yellow  bool `json:"yellow"`
	Black   bool `json:"black"`
}

type ResetRequest struct {
	Box     bool `json:"box"`
	Program bool `json:"program"`
}

type CreateRecordRequest struct {
	SerialNo        string  `json:"serialNo"`
	PrinterID       int     `json:"printerId"`
	ClientID        int     `json:"clientId"`
	LocationID      *int    `json:"locationId,omitempty"`
	DepartmentID    *int    `json:"departmentId,omitempty"`
	HeadClean       bool    `json:"headClean"`
	InkFlush        bool    `json:"inkFlush"`
	CleanPrinter    bool    `json:"cleanPrinter"`
	CleanWasteTank  bool    `json:"cleanWasteTank"`
	ReplaceUnit     bool    `json:"replaceUnit"`
	ReplaceSerialNo *string `json:"replaceSerialNo,omitempty"`
	StatusID        int     `json:"statusId"`
	Notes           *string `json:"notes,omitempty"`
	UserID          int     `json:"userId"`
	SignatoryID     int     `json:"signatoryId"`
	NozzlePath      *string `json:"nozzlePath,omitempty"`
	OriginMTID      *int    `json:"originMTId,omitempty"`

	// Optional sections. Absence means no child rows, not rows of nulls.
	ReplacedPartIDs []int               `json:"replacedPartIds,omitempty"`
	RepairedPartIDs []int               `json:"repairedPartIds,omitempty"`
	ColorRefill     *ColorRefillRequest `json:"colorRefill,omitempty"`
	Reset           *ResetRequest       `json:"reset,omitempty"`
}

// CompleteVisitRequest records a visit that satisfies a scheduled row: the
// maintenance record and the detail completion commit together.
type CompleteVisitRequest struct {
	CreateRecordRequest
	ScheduleDetailID int `json:"scheduleDetailId"`
}

type MaintainControllerInterface interface {
	CheckSerial(ctx context.Context, serialNo string) (*CheckSerialResult, error)
	CreateRecord(ctx context.Context, request *CreateRecordRequest) (int, error)
	CompleteVisit(ctx context.Context, request *CompleteVisitRequest) (int, error)
	MarkDetail(ctx context.Context, detailID int) error
	PatchSignPath(ctx context.Context, id int, signPath string) error
}

type MaintainController struct {
	maintainRepo       repositories.MaintainRepository
	printerRepo        repositories.PrinterRepository
	scheduleRepo       repositories.ScheduleRepository
	transactionService *services.TransactionService
	eventBus           *events.EventBus
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	eventBus *events.EventBus,
	config config.Config,
	db database.DB,
) MaintainControllerInterface {
	return &MaintainController{
		maintainRepo:       repos.Maintain,
		printerRepo:        repos.Printer,
		scheduleRepo:       repos.Schedule,
		transactionService: services.Transaction,
		eventBus:           eventBus,
		db:                 db,
		Config:             config,
		log:                logger.New("maintainController"),
	}
}

// CheckSerial resolves a scanned serial number to a printer card and the
// client's signatories, refusing printers already maintained today.
func (c *MaintainController) CheckSerial(
	ctx context.Context,
	serialNo string,
) (*CheckSerialResult, error) {
	log := c.log.TraceFromContext(ctx).Function("CheckSerial")

	if serialNo == "" {
		return nil, fmt.Errorf("%w: serialNo", ErrValidation)
	}

	card, err := c.printerRepo.CardBySerial(ctx, c.db.SQL, serialNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to look up printer", err, "serialNo", serialNo)
	}

	exists, err := c.maintainRepo.SameDayExists(ctx, c.db.SQL, serialNo, time.Now())
	if err != nil {
		return nil, log.Err("failed to check same-day maintenance", err, "serialNo", serialNo)
	}
	if exists {
		return nil, ErrDuplicateMaintenance
	}

	signatories, err := c.maintainRepo.SignatoriesForClient(ctx, c.db.SQL, card.ClientID)
	if err != nil {
		return nil, log.Err("failed to list signatories", err, "clientID", card.ClientID)
	}

	return &CheckSerialResult{Printer: card, Signatories: signatories}, nil
}

// CreateRecord writes one maintenance record and whichever child rows the
// form populated, all in one transaction. The same-day check runs inside the
// transaction against the server clock so the uniqueness rule cannot be
// backdated around.
func (c *MaintainController) CreateRecord(
	ctx context.Context,
	request *CreateRecordRequest,
) (int, error) {
	log := c.log.TraceFromContext(ctx).Function("CreateRecord")

	if err := validateCreateRecordRequest(request); err != nil {
		return 0, err
	}

	var recordID int
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		id, err := c.writeRecord(ctx, tx, request)
		if err != nil {
			return err
		}
		recordID = id
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateMaintenance) {
			return 0, ErrDuplicateMaintenance
		}
		return 0, log.Err("failed to create maintenance record", err, "printerID", request.PrinterID)
	}

	return recordID, nil
}

// CompleteVisit records a scheduled visit: the maintenance record insert and
// the schedule-detail completion are one transaction, so there is no window
// where a completed record exists without its detail row flipped.
func (c *MaintainController) CompleteVisit(
	ctx context.Context,
	request *CompleteVisitRequest,
) (int, error) {
	log := c.log.TraceFromContext(ctx).Function("CompleteVisit")

	if request.ScheduleDetailID == 0 {
		return 0, fmt.Errorf("%w: scheduleDetailId", ErrValidation)
	}
	if err := validateCreateRecordRequest(&request.CreateRecordRequest); err != nil {
		return 0, err
	}

	var recordID, scheduleID, total, done int
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		detail, err := c.scheduleRepo.GetDetailByID(ctx, tx, request.ScheduleDetailID)
		if err != nil {
			return err
		}

		if request.OriginMTID == nil {
			request.OriginMTID = detail.OriginMTID
		}

		id, err := c.writeRecord(ctx, tx, &request.CreateRecordRequest)
		if err != nil {
			return err
		}

		affected, err := c.scheduleRepo.MarkDetailMaintained(ctx, tx, detail.ID, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return gorm.ErrRecordNotFound
		}

		total, done, err = c.scheduleRepo.DetailProgress(ctx, tx, detail.ScheduleID)
		if err != nil {
			return err
		}

		recordID = id
		scheduleID = detail.ScheduleID
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		if errors.Is(err, ErrDuplicateMaintenance) {
			return 0, ErrDuplicateMaintenance
		}
		return 0, log.Err("failed to complete scheduled visit", err,
			"scheduleDetailID", request.ScheduleDetailID)
	}

	c.publishProgress(scheduleID, request.PrinterID, done, total)

	return recordID, nil
}

// MarkDetail flips one schedule-detail row to maintained. Used by flows
// where the maintenance record was written separately.
func (c *MaintainController) MarkDetail(ctx context.Context, detailID int) error {
	log := c.log.TraceFromContext(ctx).Function("MarkDetail")

	if detailID == 0 {
		return fmt.Errorf("%w: schedDetailsId", ErrValidation)
	}

	var scheduleID, printerID, total, done int
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		detail, err := c.scheduleRepo.GetDetailByID(ctx, tx, detailID)
		if err != nil {
			return err
		}

		affected, err := c.scheduleRepo.MarkDetailMaintained(ctx, tx, detailID, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return gorm.ErrRecordNotFound
		}

		total, done, err = c.scheduleRepo.DetailProgress(ctx, tx, detail.ScheduleID)
		if err != nil {
			return err
		}

		scheduleID = detail.ScheduleID
		printerID = detail.PrinterID
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return log.Err("failed to mark schedule detail", err, "detailID", detailID)
	}

	c.publishProgress(scheduleID, printerID, done, total)

	return nil
}

// PatchSignPath is the single permitted mutation of a maintenance record.
func (c *MaintainController) PatchSignPath(ctx context.Context, id int, signPath string) error {
	log := c.log.TraceFromContext(ctx).Function("PatchSignPath")

	if id == 0 || signPath == "" {
		return fmt.Errorf("%w: id, signPath", ErrValidation)
	}

	affected, err := c.maintainRepo.UpdateSignPath(ctx, c.db.SQL, id, signPath)
	if err != nil {
		return log.Err("failed to patch sign path", err, "mtID", id)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// writeRecord performs the same-day check, the record insert and the
// conditional child inserts. Must run inside a transaction.
func (c *MaintainController) writeRecord(
	ctx context.Context,
	tx *gorm.DB,
	request *CreateRecordRequest,
) (int, error) {
	exists, err := c.maintainRepo.SameDayExists(ctx, tx, request.SerialNo, time.Now())
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, ErrDuplicateMaintenance
	}

	record := &MaintenanceRecord{
		PrinterID:       request.PrinterID,
		ClientID:        request.ClientID,
		LocationID:      request.LocationID,
		DepartmentID:    request.DepartmentID,
		HeadClean:       request.HeadClean,
		InkFlush:        request.InkFlush,
		CleanPrinter:    request.CleanPrinter,
		CleanWasteTank:  request.CleanWasteTank,
		ReplaceUnit:     request.ReplaceUnit,
		ReplaceSerialNo: request.ReplaceSerialNo,
		StatusID:        request.StatusID,
		Notes:           request.Notes,
		UserID:          request.UserID,
		SignatoryID:     request.SignatoryID,
		NozzlePath:      request.NozzlePath,
		OriginMTID:      request.OriginMTID,
	}
	if err := c.maintainRepo.Create(ctx, tx, record); err != nil {
		return 0, err
	}

	if len(request.ReplacedPartIDs) > 0 {
		parts := make([]ReplacedPart, 0, len(request.ReplacedPartIDs))
		for _, partID := range request.ReplacedPartIDs {
			parts = append(parts, ReplacedPart{MTID: record.ID, PartID: partID})
		}
		if err := c.maintainRepo.CreateReplacedParts(ctx, tx, parts); err != nil {
			return 0, err
		}
	}

	if len(request.RepairedPartIDs) > 0 {
		parts := make([]RepairedPart, 0, len(request.RepairedPartIDs))
		for _, partID := range request.RepairedPartIDs {
			parts = append(parts, RepairedPart{MTID: record.ID, PartID: partID})
		}
		if err := c.maintainRepo.CreateRepairedParts(ctx, tx, parts); err != nil {
			return 0, err
		}
	}

	if request.ColorRefill != nil {
		refill := &ColorRefill{
			MTID:    record.ID,
			Cyan:    request.ColorRefill.Cyan,
			Magenta: request.ColorRefill.Magenta,
			Yellow:  request.ColorRefill.Yellow,
			Black:   request.ColorRefill.Black,
		}
		if err := c.maintainRepo.CreateColorRefill(ctx, tx, refill); err != nil {
			return 0, err
		}
	}

	if request.Reset != nil {
		reset := &Reset{
			MTID:    record.ID,
			Box:     request.Reset.Box,
			Program: request.Reset.Program,
		}
		if err := c.maintainRepo.CreateReset(ctx, tx, reset); err != nil {
			return 0, err
		}
	}

	return record.ID, nil
}

func (c *MaintainController) publishProgress(scheduleID, printerID, done, total int) {
	if c.eventBus == nil {
		return
	}
	if err := c.eventBus.PublishScheduleProgress(scheduleID, printerID, done, total); err != nil {
		c.log.Function("publishProgress").
			Warn("failed to publish schedule progress", "scheduleID", scheduleID, "error", err)
	}
}

func validateCreateRecordRequest(request *CreateRecordRequest) error {
	switch {
	case request.SerialNo == "":
		return fmt.Errorf("%w: serialNo", ErrValidation)
	case request.PrinterID == 0:
		return fmt.Errorf("%w: printerId", ErrValidation)
	case request.ClientID == 0:
		return fmt.Errorf("%w: clientId", ErrValidation)
	case request.StatusID == 0:
		return fmt.Errorf("%w: statusId", ErrValidation)
	case request.UserID == 0:
		return fmt.Errorf("%w: userId", ErrValidation)
	case request.SignatoryID == 0:
		return fmt.Errorf("%w: signatoryId", ErrValidation)
	}
	return nil
}
