package repositories

import (
	"context"
	"time"

	"printfleet/internal/database"
	"printfleet/internal/logger"
	. "printfleet/internal/models"

	"gorm.io/gorm"
)

type MaintainRepository interface {
	SameDayExists(ctx context.Context, tx *gorm.DB, serialNo string, day time.Time) (bool, error)
	Create(ctx context.Context, tx *gorm.DB, record *MaintenanceRecord) error
	CreateReplacedParts(ctx context.Context, tx *gorm.DB, parts []ReplacedPart) error
	CreateRepairedParts(ctx context.Context, tx *gorm.DB, parts []RepairedPart) error
	CreateColorRefill(ctx context.Context, tx *gorm.DB, refill *ColorRefill) error
	CreateReset(ctx context.Context, tx *gorm.DB, reset *Reset) error
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*MaintenanceRecord, error)
	UpdateSignPath(ctx context.Context, tx *gorm.DB, id int, signPath string) (int64, error)
	SignatoriesForClient(ctx context.Context, tx *gorm.DB, clientID int) ([]Signatory, error)
}

type maintainRepository struct {
	db  database.DB
	log logger.Logger
}

func NewMaintainRepository(db database.DB) MaintainRepository {
	return &maintainRepository{
		db:  db,
		log: logger.New("maintainRepository"),
	}
}

// SameDayExists reports whether a maintenance record already exists for the
// printer with the given serial number on the calendar day containing day.
func (r *maintainRepository) SameDayExists(
	ctx context.Context,
	tx *gorm.DB,
	serialNo string,
	day time.Time,
) (bool, error) {
	log := r.log.Function("SameDayExists")

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var count int64
	err := tx.WithContext(ctx).Model(&MaintenanceRecord{}).
		Joins("INNER JOIN printers ON printers.id = maintain.printer_id").
		Where("printers.serial_no = ? AND maintain.created_at >= ? AND maintain.created_at < ?",
			serialNo, dayStart, dayEnd).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, log.Err("failed to check same-day maintenance", err, "serialNo", serialNo)
	}

	return count > 0, nil
}

func (r *maintainRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	record *MaintenanceRecord,
) error {
	if err := tx.WithContext(ctx).Create(record).Error; err != nil {
		return r.log.Function("Create").
			Err("failed to create maintenance record", err, "printerID", record.PrinterID)
	}
	return nil
}

func (r *maintainRepository) CreateReplacedParts(
	ctx context.Context,
	tx *gorm.DB,
	parts []ReplacedPart,
) error {
	if len(parts) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Create(&parts).Error; err != nil {
		return r.log.Function("CreateReplacedParts").
			Err("failed to create replaced parts", err, "count", len(parts))
	}
	return nil
}

func (r *maintainRepository) CreateRepairedParts(
	ctx context.Context,
	tx *gorm.DB,
	parts []RepairedPart,
) error {
	if len(parts) == 0 {
		return nil
	}
	if err := tx.WithContext(ctx).Create(&parts).Error; err != nil {
		return r.log.Function("CreateRepairedParts").
			Err("failed to create repaired parts", err, "count", len(parts))
	}
	return nil
}

func (r *maintainRepository) CreateColorRefill(
	ctx context.Context,
	tx *gorm.DB,
	refill *ColorRefill,
) error {
	if err := tx.WithContext(ctx).Create(refill).Error; err != nil {
		return r.log.Function("CreateColorRefill").
			Err("failed to create color refill", err, "mtID", refill.MTID)
	}
	return nil
}

func (r *maintainRepository) CreateReset(
	ctx context.Context,
	tx *gorm.DB,
	reset *Reset,
) error {
	if err := tx.WithContext(ctx).Create(reset).Error; err != nil {
		return r.log.Function("CreateReset").
			Err("failed to create reset row", err, "mtID", reset.MTID)
	}
	return nil
}

func (r *maintainRepository) GetByID(
	ctx context.Context,
	tx *gorm.DB,
	id int,
) (*MaintenanceRecord, error) {
	var record MaintenanceRecord
	if err := tx.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// UpdateSignPath patches the signature path in after the asynchronous upload
// completes. This is the only permitted mutation of a maintenance record.
func (r *maintainRepository) UpdateSignPath(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	signPath string,
) (int64, error) {
	result := tx.WithContext(ctx).Model(&MaintenanceRecord{}).
		Where("id = ?", id).
		Update("sign_path", signPath)
	if result.Error != nil {
		return 0, r.log.Function("UpdateSignPath").
			Err("failed to update sign path", result.Error, "mtID", id)
	}

	return result.RowsAffected, nil
}

func (r *maintainRepository) SignatoriesForClient(
	ctx context.Context,
	tx *gorm.DB,
	clientID int,
) ([]Signatory, error) {
	var signatories []Signatory
	err := tx.WithContext(ctx).
		Where("client_id = ?", clientID).
		Find(&signatories).Error
	if err != nil {
		return nil, r.log.Function("SignatoriesForClient").
			Err("failed to list signatories", err, "clientID", clientID)
	}

	return signatories, nil
}
