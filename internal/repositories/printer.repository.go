package repositories

import (
	"context"
	"time"

	"printfleet/internal/database"
	"printfleet/internal/logger"
	. "printfleet/internal/models"

	"gorm.io/gorm"
)

const printerCacheTTL = 30 * time.Minute

// PrinterListRow is one row of the schedule assignment datatable. Printers
// without maintenance history carry nil record columns; printers outside the
// schedule carry nil detail columns and isToggled false.
type PrinterListRow struct {
	ID             int        `json:"id"`
	Department     string     `json:"department"`
	Model          string     `json:"model"`
	SerialNo       string     `json:"serialNo"`
	Status         *string    `json:"status,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
	LastMT         *time.Time `gorm:"column:last_mt"          json:"lastMt,omitempty"`
	MTID           *int       `gorm:"column:mt_id"            json:"mtId,omitempty"`
	SchedDetailsID *int       `gorm:"column:sched_details_id" json:"schedDetailsId,omitempty"`
	IsMaintained   bool       `json:"isMaintained"`
	MaintainedDate *time.Time `json:"maintainedDate,omitempty"`
	IsToggled      bool       `gorm:"column:is_toggled"       json:"isToggled"`
}

// MaintenanceCard identifies a printer scanned in the field, with the names a
// technician needs to confirm they are standing at the right unit.
type MaintenanceCard struct {
	PrinterID  int    `json:"printerId"`
	SerialNo   string `gorm:"column:serial_no" json:"serialNo"`
	Model      string `json:"model"`
	ClientID   int    `json:"clientId"`
	Client     string `json:"client"`
	Location   string `json:"location"`
	Department string `json:"department"`
}

type PrinterRepository interface {
	GetBySerial(ctx context.Context, tx *gorm.DB, serialNo string) (*Printer, error)
	CardBySerial(ctx context.Context, tx *gorm.DB, serialNo string) (*MaintenanceCard, error)
	ListForSchedule(
		ctx context.Context,
		tx *gorm.DB,
		clientID, locationID, scheduleID int,
	) ([]PrinterListRow, error)
}

type printerRepository struct {
	db  database.DB
	log logger.Logger
}

func NewPrinterRepository(db database.DB) PrinterRepository {
	return &printerRepository{
		db:  db,
		log: logger.New("printerRepository"),
	}
}

func printerCacheKey(serialNo string) string {
	return "printer:serial:" + serialNo
}

func (r *printerRepository) GetBySerial(
	ctx context.Context,
	tx *gorm.DB,
	serialNo string,
) (*Printer, error) {
	log := r.log.Function("GetBySerial")

	var printer Printer
	found, err := database.NewCacheBuilder(r.db.Cache.General, printerCacheKey(serialNo)).
		WithContext(ctx).
		Get(&printer)
	if err != nil {
		log.Warn("printer cache read failed", "serialNo", serialNo, "error", err)
	}
	if found {
		return &printer, nil
	}

	err = tx.WithContext(ctx).
		Preload("Model").
		Preload("Client").
		Preload("Location").
		Preload("Department").
		First(&printer, "serial_no = ?", serialNo).Error
	if err != nil {
		return nil, err
	}

	cacheErr := database.NewCacheBuilder(r.db.Cache.General, printerCacheKey(serialNo)).
		WithContext(ctx).
		WithStruct(printer).
		WithTTL(printerCacheTTL).
		Set()
	if cacheErr != nil {
		log.Warn("printer cache write failed", "serialNo", serialNo, "error", cacheErr)
	}

	return &printer, nil
}

func (r *printerRepository) CardBySerial(
	ctx context.Context,
	tx *gorm.DB,
	serialNo string,
) (*MaintenanceCard, error) {
	var card MaintenanceCard
	result := tx.WithContext(ctx).Table("printers").
		Select(`printers.id AS printer_id,
			printers.serial_no AS serial_no,
			models.name AS model,
			printers.client_id AS client_id,
			clients.name AS client,
			locations.name AS location,
			departments.name AS department`).
		Joins("INNER JOIN models ON models.id = printers.model_id").
		Joins("INNER JOIN clients ON clients.id = printers.client_id").
		Joins("INNER JOIN locations ON locations.id = printers.location_id").
		Joins("INNER JOIN departments ON departments.id = printers.department_id").
		Where("printers.serial_no = ?", serialNo).
		Limit(1).
		Scan(&card)
	if result.Error != nil {
		return nil, r.log.Function("CardBySerial").
			Err("failed to load printer card", result.Error, "serialNo", serialNo)
	}
	if result.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}

	return &card, nil
}

// ListForSchedule builds the assignment datatable for one client/location
// pair. Each printer is joined against its most recent maintenance record and
// against the detail row of the given schedule, if any. A scheduleID of zero
// matches no details, which is the create-mode shape of the table.
func (r *printerRepository) ListForSchedule(
	ctx context.Context,
	tx *gorm.DB,
	clientID, locationID, scheduleID int,
) ([]PrinterListRow, error) {
	var rows []PrinterListRow
	err := tx.WithContext(ctx).Table("printers").
		Select(`printers.id AS id,
			departments.name AS department,
			models.name AS model,
			printers.serial_no AS serial_no,
			statuses.name AS status,
			mt.notes AS notes,
			mt.created_at AS last_mt,
			mt.id AS mt_id,
			sd.id AS sched_details_id,
			COALESCE(sd.is_maintained, false) AS is_maintained,
			sd.maintained_date AS maintained_date,
			sd.id IS NOT NULL AS is_toggled`).
		Joins("INNER JOIN departments ON departments.id = printers.department_id").
		Joins("INNER JOIN models ON models.id = printers.model_id").
		Joins(`LEFT JOIN maintain mt ON mt.printer_id = printers.id
			AND mt.id = (SELECT MAX(m2.id) FROM maintain m2 WHERE m2.printer_id = printers.id)`).
		Joins("LEFT JOIN statuses ON statuses.id = mt.status_id").
		Joins("LEFT JOIN schedule_details sd ON sd.printer_id = printers.id AND sd.schedule_id = ?",
			scheduleID).
		Where("printers.client_id = ? AND printers.location_id = ?", clientID, locationID).
		Order("printers.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, r.log.Function("ListForSchedule").
			Err("failed to list printers for schedule", err,
				"clientID", clientID, "locationID", locationID, "scheduleID", scheduleID)
	}

	return rows, nil
}
