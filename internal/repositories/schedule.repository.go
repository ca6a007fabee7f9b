package repositories

import (
	"context"
	"time"

	"printfleet/internal/database"
	"printfleet/internal/logger"
	. "printfleet/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScheduleListRow is the joined projection served to the schedule page.
type ScheduleListRow struct {
	ID          int       `json:"id"`
	Technician  string    `json:"technician"`
	ClientID    int       `json:"clientId"`
	Client      string    `json:"client"`
	LocationID  int       `json:"locationId"`
	Location    string    `json:"location"`
	PriorityID  int       `json:"priorityId"`
	Priority    string    `json:"priority"`
	Notes       *string   `json:"notes"`
	MaintainAll bool      `json:"maintainAll"`
	ScheduledAt time.Time `json:"scheduledAt"`
}

// TrackerRow aggregates completion progress for one schedule.
type TrackerRow struct {
	ID          int       `json:"id"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Notes       *string   `json:"notes"`
	Client      string    `json:"client"`
	Location    string    `json:"location"`
	Technician  string    `json:"technician"`
	Priority    string    `json:"priority"`
	Total       int       `json:"total"`
	Done        int       `json:"done"`
	Open        int       `json:"open"`
	Percent     int       `json:"percent"`
}

// ScheduleDetailRow is one printer row under a schedule, for the tracker
// detail view.
type ScheduleDetailRow struct {
	ID             int        `json:"id"`
	PrinterID      int        `json:"printerId"`
	SerialNo       string     `json:"serialNo"`
	IsMaintained   bool       `json:"isMaintained"`
	MaintainedDate *time.Time `json:"maintainedDate"`
	MTID           *int       `json:"mtId"`
	StatusID       *int       `json:"statusId"`
}

type ScheduleRepository interface {
	InsertIgnoreConflict(ctx context.Context, tx *gorm.DB, schedule *Schedule) (bool, error)
	FindByTuple(ctx context.Context, tx *gorm.DB, technicianID, clientID, locationID int, scheduledAt datatypes.Date) (*Schedule, error)
	GetByID(ctx context.Context, tx *gorm.DB, id int) (*Schedule, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id int, updates map[string]any) error
	AddDetails(ctx context.Context, tx *gorm.DB, details []ScheduleDetail) error
	RemoveDetails(ctx context.Context, tx *gorm.DB, scheduleID int, printerIDs []int) error
	HasMaintainedDetails(ctx context.Context, tx *gorm.DB, scheduleID int) (bool, error)
	DeleteWithDetails(ctx context.Context, tx *gorm.DB, scheduleID int) error
	MarkDetailMaintained(ctx context.Context, tx *gorm.DB, detailID int, when time.Time) (int64, error)
	FindDetail(ctx context.Context, tx *gorm.DB, scheduleID, printerID int) (*ScheduleDetail, error)
	GetDetailByID(ctx context.Context, tx *gorm.DB, detailID int) (*ScheduleDetail, error)
	DetailProgress(ctx context.Context, tx *gorm.DB, scheduleID int) (total, done int, err error)
	ListForSchedulePage(ctx context.Context, tx *gorm.DB, technicianID int, scheduledAt datatypes.Date) ([]ScheduleListRow, error)
	ListForDashboard(ctx context.Context, tx *gorm.DB, technicianID int, scheduledAt *datatypes.Date) ([]Schedule, error)
	TrackerRows(ctx context.Context, tx *gorm.DB) ([]TrackerRow, error)
	DetailRows(ctx context.Context, tx *gorm.DB, scheduleID int) ([]ScheduleDetailRow, error)
	ListOverdue(ctx context.Context, tx *gorm.DB, before datatypes.Date) ([]TrackerRow, error)
}

type scheduleRepository struct {
	db  database.DB
	log logger.Logger
}

func NewScheduleRepository(db database.DB) ScheduleRepository {
	return &scheduleRepository{
		db:  db,
		log: logger.New("scheduleRepository"),
	}
}

// InsertIgnoreConflict inserts a schedule, ignoring the unique-tuple
// conflict. The bool reports whether a row was actually created.
func (r *scheduleRepository) InsertIgnoreConflict(
	ctx context.Context,
	tx *gorm.DB,
	schedule *Schedule,
) (bool, error) {
	log := r.log.Function("InsertIgnoreConflict")

	result := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "technician_id"},
			{Name: "client_id"},
			{Name: "location_id"},
			{Name: "scheduled_at"},
		},
		DoNothing: true,
	}).Create(schedule)
	if result.Error != nil {
		return false, log.Err("failed to insert schedule", result.Error)
	}

	return result.RowsAffected > 0, nil
}

func (r *scheduleRepository) FindByTuple(
	ctx context.Context,
	tx *gorm.DB,
	technicianID, clientID, locationID int,
	scheduledAt datatypes.Date,
) (*Schedule, error) {
	log := r.log.Function("FindByTuple")

	var schedule Schedule
	err := tx.WithContext(ctx).
		Where("technician_id = ? AND client_id = ? AND location_id = ? AND scheduled_at = ?",
			technicianID, clientID, locationID, scheduledAt).
		First(&schedule).Error
	if err != nil {
		return nil, log.Err("failed to find schedule by tuple", err,
			"technicianID", technicianID, "clientID", clientID, "locationID", locationID)
	}

	return &schedule, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, tx *gorm.DB, id int) (*Schedule, error) {
	var schedule Schedule
	if err := tx.WithContext(ctx).First(&schedule, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) UpdateFields(
	ctx context.Context,
	tx *gorm.DB,
	id int,
	updates map[string]any,
) error {
	log := r.log.Function("UpdateFields")

	result := tx.WithContext(ctx).Model(&Schedule{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return log.Err("failed to update schedule", result.Error, "scheduleID", id)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *scheduleRepository) AddDetails(
	ctx context.Context,
	tx *gorm.DB,
	details []ScheduleDetail,
) error {
	if len(details) == 0 {
		return nil
	}

	if err := tx.WithContext(ctx).Create(&details).Error; err != nil {
		return r.log.Function("AddDetails").
			Err("failed to insert schedule details", err, "count", len(details))
	}

	return nil
}

// RemoveDetails deletes the junction rows for the given printers. Rows
// already marked maintained are excluded in the WHERE clause, so a completed
// row can never be removed even if a stale client includes it.
func (r *scheduleRepository) RemoveDetails(
	ctx context.Context,
	tx *gorm.DB,
	scheduleID int,
	printerIDs []int,
) error {
	if len(printerIDs) == 0 {
		return nil
	}

	err := tx.WithContext(ctx).
		Where("schedule_id = ? AND printer_id IN ? AND is_maintained = ?", scheduleID, printerIDs, false).
		Delete(&ScheduleDetail{}).Error
	if err != nil {
		return r.log.Function("RemoveDetails").
			Err("failed to delete schedule details", err, "scheduleID", scheduleID)
	}

	return nil
}

func (r *scheduleRepository) HasMaintainedDetails(
	ctx context.Context,
	tx *gorm.DB,
	scheduleID int,
) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&ScheduleDetail{}).
		Where("schedule_id = ? AND is_maintained = ?", scheduleID, true).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, r.log.Function("HasMaintainedDetails").
			Err("failed to check maintained details", err, "scheduleID", scheduleID)
	}

	return count > 0, nil
}

// DeleteWithDetails removes the junction rows first, then the schedule row,
// to respect the foreign key. The caller is responsible for the completed-
// work precondition and for running this inside a transaction.
func (r *scheduleRepository) DeleteWithDetails(
	ctx context.Context,
	tx *gorm.DB,
	scheduleID int,
) error {
	log := r.log.Function("DeleteWithDetails")

	if err := tx.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Delete(&ScheduleDetail{}).Error; err != nil {
		return log.Err("failed to delete schedule details", err, "scheduleID", scheduleID)
	}

	if err := tx.WithContext(ctx).Delete(&Schedule{}, "id = ?", scheduleID).Error; err != nil {
		return log.Err("failed to delete schedule", err, "scheduleID", scheduleID)
	}

	return nil
}

func (r *scheduleRepository) MarkDetailMaintained(
	ctx context.Context,
	tx *gorm.DB,
	detailID int,
	when time.Time,
) (int64, error) {
	result := tx.WithContext(ctx).Model(&ScheduleDetail{}).
		Where("id = ?", detailID).
		Updates(map[string]any{
			"is_maintained":   true,
			"maintained_date": when,
		})
	if result.Error != nil {
		return 0, r.log.Function("MarkDetailMaintained").
			Err("failed to mark schedule detail maintained", result.Error, "detailID", detailID)
	}

	return result.RowsAffected, nil
}

func (r *scheduleRepository) FindDetail(
	ctx context.Context,
	tx *gorm.DB,
	scheduleID, printerID int,
) (*ScheduleDetail, error) {
	var detail ScheduleDetail
	err := tx.WithContext(ctx).
		Where("schedule_id = ? AND printer_id = ?", scheduleID, printerID).
		First(&detail).Error
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

func (r *scheduleRepository) GetDetailByID(
	ctx context.Context,
	tx *gorm.DB,
	detailID int,
) (*ScheduleDetail, error) {
	var detail ScheduleDetail
	if err := tx.WithContext(ctx).First(&detail, "id = ?", detailID).Error; err != nil {
		return nil, err
	}
	return &detail, nil
}

// DetailProgress counts a schedule's detail rows and how many are already
// maintained, for progress events and the tracker.
func (r *scheduleRepository) DetailProgress(
	ctx context.Context,
	tx *gorm.DB,
	scheduleID int,
) (total, done int, err error) {
	var totalCount, doneCount int64

	err = tx.WithContext(ctx).Model(&ScheduleDetail{}).
		Where("schedule_id = ?", scheduleID).
		Count(&totalCount).Error
	if err != nil {
		return 0, 0, r.log.Function("DetailProgress").
			Err("failed to count schedule details", err, "scheduleID", scheduleID)
	}

	err = tx.WithContext(ctx).Model(&ScheduleDetail{}).
		Where("schedule_id = ? AND is_maintained = ?", scheduleID, true).
		Count(&doneCount).Error
	if err != nil {
		return 0, 0, r.log.Function("DetailProgress").
			Err("failed to count maintained details", err, "scheduleID", scheduleID)
	}

	return int(totalCount), int(doneCount), nil
}

func (r *scheduleRepository) ListForSchedulePage(
	ctx context.Context,
	tx *gorm.DB,
	technicianID int,
	scheduledAt datatypes.Date,
) ([]ScheduleListRow, error) {
	log := r.log.Function("ListForSchedulePage")

	var rows []ScheduleListRow
	err := tx.WithContext(ctx).
		Table("schedules").
		Select(`schedules.id,
			users.first_name || ' ' || users.last_name AS technician,
			clients.id AS client_id, clients.name AS client,
			locations.id AS location_id, locations.name AS location,
			priorities.id AS priority_id, priorities.name AS priority,
			schedules.notes, schedules.maintain_all, schedules.scheduled_at`).
		Joins("INNER JOIN users ON users.id = schedules.technician_id").
		Joins("INNER JOIN clients ON clients.id = schedules.client_id").
		Joins("INNER JOIN locations ON locations.id = schedules.location_id").
		Joins("INNER JOIN priorities ON priorities.id = schedules.priority_id").
		Where("schedules.technician_id = ? AND schedules.scheduled_at = ?", technicianID, scheduledAt).
		Order("priorities.id DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, log.Err("failed to list schedules", err, "technicianID", technicianID)
	}

	return rows, nil
}

func (r *scheduleRepository) ListForDashboard(
	ctx context.Context,
	tx *gorm.DB,
	technicianID int,
	scheduledAt *datatypes.Date,
) ([]Schedule, error) {
	log := r.log.Function("ListForDashboard")

	query := tx.WithContext(ctx).
		Preload("Technician").
		Preload("Client").
		Preload("Location").
		Preload("Priority").
		Preload("Details").
		Preload("Details.Printer").
		Preload("Details.Printer.Model").
		Preload("Details.Printer.Department").
		Preload("Details.OriginRecord").
		Preload("Details.OriginRecord.Status")

	if technicianID != 0 {
		query = query.Where("technician_id = ?", technicianID)
	}
	if scheduledAt != nil {
		query = query.Where("scheduled_at = ?", *scheduledAt)
	}

	var schedules []Schedule
	if err := query.Find(&schedules).Error; err != nil {
		return nil, log.Err("failed to list schedules for dashboard", err)
	}

	return schedules, nil
}

func (r *scheduleRepository) TrackerRows(ctx context.Context, tx *gorm.DB) ([]TrackerRow, error) {
	log := r.log.Function("TrackerRows")

	var rows []TrackerRow
	err := tx.WithContext(ctx).
		Table("schedules").
		Select(`schedules.id,
			schedules.scheduled_at, schedules.notes,
			clients.name AS client, locations.name AS location,
			users.first_name || ' ' || users.last_name AS technician,
			priorities.name AS priority,
			COALESCE(COUNT(schedule_details.id), 0) AS total,
			COALESCE(SUM(CASE WHEN schedule_details.is_maintained THEN 1 ELSE 0 END), 0) AS done`).
		Joins("LEFT JOIN schedule_details ON schedule_details.schedule_id = schedules.id").
		Joins("INNER JOIN clients ON clients.id = schedules.client_id").
		Joins("INNER JOIN locations ON locations.id = schedules.location_id").
		Joins("INNER JOIN users ON users.id = schedules.technician_id").
		Joins("INNER JOIN priorities ON priorities.id = schedules.priority_id").
		Group("schedules.id, schedules.scheduled_at, schedules.notes, clients.name, locations.name, users.first_name, users.last_name, priorities.name").
		Order("MAX(schedules.scheduled_at) DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, log.Err("failed to aggregate tracker rows", err)
	}

	for i := range rows {
		rows[i].Open = rows[i].Total - rows[i].Done
		if rows[i].Open < 0 {
			rows[i].Open = 0
		}
		if rows[i].Total > 0 {
			rows[i].Percent = int(float64(rows[i].Done)/float64(rows[i].Total)*100 + 0.5)
		}
	}

	return rows, nil
}

func (r *scheduleRepository) DetailRows(
	ctx context.Context,
	tx *gorm.DB,
	scheduleID int,
) ([]ScheduleDetailRow, error) {
	log := r.log.Function("DetailRows")

	var rows []ScheduleDetailRow
	err := tx.WithContext(ctx).
		Table("schedule_details").
		Select(`schedule_details.id, schedule_details.printer_id,
			printers.serial_no,
			schedule_details.is_maintained, schedule_details.maintained_date,
			schedule_details.origin_mt_id AS mt_id,
			maintain.status_id`).
		Joins("INNER JOIN printers ON printers.id = schedule_details.printer_id").
		Joins("LEFT JOIN maintain ON maintain.id = schedule_details.origin_mt_id").
		Where("schedule_details.schedule_id = ?", scheduleID).
		Order("printers.serial_no").
		Scan(&rows).Error
	if err != nil {
		return nil, log.Err("failed to list schedule detail rows", err, "scheduleID", scheduleID)
	}

	return rows, nil
}

// ListOverdue returns tracker rows for schedules dated before the given day
// that still have open detail rows.
func (r *scheduleRepository) ListOverdue(
	ctx context.Context,
	tx *gorm.DB,
	before datatypes.Date,
) ([]TrackerRow, error) {
	rows, err := r.TrackerRows(ctx, tx)
	if err != nil {
		return nil, err
	}

	cutoff := time.Time(before)
	overdue := make([]TrackerRow, 0, len(rows))
	for _, row := range rows {
		if row.Open > 0 && row.ScheduledAt.Before(cutoff) {
			overdue = append(overdue, row)
		}
	}

	return overdue, nil
}
