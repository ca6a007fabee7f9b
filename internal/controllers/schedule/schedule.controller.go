package scheduleController

import (
	"context"
	"errors"
	"fmt"
	"time"

	"printfleet/config"
	"printfleet/internal/database"
	"printfleet/internal/logger"
	. "printfleet/internal/models"
	"printfleet/internal/repositories"
	"printfleet/internal/services"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActionAddSchedule selects the create path; any other action value means
// update.
const ActionAddSchedule = "Add Schedule"

var (
	ErrValidation    = errors.New("missing required field")
	ErrNotFound      = errors.New("schedule not found")
	ErrStaleSchedule = errors.New("schedule date is in the past")
	ErrCompletedWork = errors.New("schedule has completed maintenance work")
)

type ReconcileRequest struct {
	TechnicianID int     `json:"technicianId"`
	ClientID     int     `json:"clientId"`
	LocationID   int     `json:"locationId"`
	PriorityID   int     `json:"priority"`
	Notes        *string `json:"notes,omitempty"`
	MaintainAll  bool    `json:"maintainAll"`
	ScheduleDate string  `json:"scheduleDate"`
	CurrentDate  string  `json:"currentDate,omitempty"`
	ScheduleID   *int    `json:"scheduleId,omitempty"`
	Actions      string  `json:"actions"`

	// Deltas computed by the caller, or the raw assignment table for
	// server-side diffing when the deltas are absent.
	Added    []Delta             `json:"added"`
	Removed  []Delta             `json:"removed"`
	Original []PrinterAssignment `json:"original,omitempty"`
	Current  []PrinterAssignment `json:"current,omitempty"`
	Edits    map[int]ToggleEdit  `json:"edits,omitempty"`
}

// ReconcileOutcome reports the written or pre-existing schedule. Duplicate
// is a distinguishable outcome rather than an error so callers can offer the
// existing schedule instead of failing.
type ReconcileOutcome struct {
	ScheduleID int       `json:"scheduleId"`
	Duplicate  bool      `json:"duplicate"`
	Existing   *Schedule `json:"existing,omitempty"`
}

type ScheduleControllerInterface interface {
	Reconcile(ctx context.Context, request *ReconcileRequest) (*ReconcileOutcome, error)
	Delete(ctx context.Context, scheduleID int) error
	ListForSchedulePage(ctx context.Context, technicianID int, scheduledAt datatypes.Date) ([]repositories.ScheduleListRow, error)
	ListForDashboard(ctx context.Context, technicianID int, scheduledAt *datatypes.Date) ([]Schedule, error)
	Tracker(ctx context.Context) ([]repositories.TrackerRow, error)
	Details(ctx context.Context, scheduleID int) ([]repositories.ScheduleDetailRow, error)
}

type ScheduleController struct {
	scheduleRepo       repositories.ScheduleRepository
	transactionService *services.TransactionService
	db                 database.DB
	Config             config.Config
	log                logger.Logger
}

func New(
	repos repositories.Repository,
	services services.Service,
	config config.Config,
	db database.DB,
) ScheduleControllerInterface {
	return &ScheduleController{
		scheduleRepo:       repos.Schedule,
		transactionService: services.Transaction,
		db:                 db,
		Config:             config,
		log:                logger.New("scheduleController"),
	}
}

// Reconcile applies one schedule edit: the create path inserts a new
// schedule, the update path rewrites the schedule row and applies the
// added/removed deltas to its detail rows. The whole sequence runs in one
// transaction so a failure partway through leaves nothing orphaned.
func (c *ScheduleController) Reconcile(
	ctx context.Context,
	request *ReconcileRequest,
) (*ReconcileOutcome, error) {
	log := c.log.TraceFromContext(ctx).Function("Reconcile")

	if err := validateReconcileRequest(request); err != nil {
		return nil, err
	}

	scheduledAt, err := parseScheduleDate(request.ScheduleDate)
	if err != nil {
		return nil, fmt.Errorf("%w: scheduleDate", ErrValidation)
	}

	// The guard compares against the caller's current date so a client
	// west of UTC can still schedule for its own today. Falls back to the
	// server clock when the caller sends none.
	baseline := today()
	if request.CurrentDate != "" {
		currentDate, err := parseScheduleDate(request.CurrentDate)
		if err != nil {
			return nil, fmt.Errorf("%w: currentDate", ErrValidation)
		}
		baseline = time.Time(currentDate)
	}
	if time.Time(scheduledAt).Before(baseline) {
		return nil, ErrStaleSchedule
	}

	added, removed := request.Added, request.Removed
	if len(added) == 0 && len(removed) == 0 && request.Current != nil {
		added, removed = DiffAssignments(request.Original, request.Current, request.Edits)
	}

	if request.Actions == ActionAddSchedule {
		return c.create(ctx, request, scheduledAt, added)
	}
	if request.ScheduleID == nil || *request.ScheduleID == 0 {
		return nil, log.ErrMsg("update action without a schedule id")
	}

	return c.update(ctx, request, added, removed)
}

func (c *ScheduleController) create(
	ctx context.Context,
	request *ReconcileRequest,
	scheduledAt datatypes.Date,
	added []Delta,
) (*ReconcileOutcome, error) {
	log := c.log.TraceFromContext(ctx).Function("create")

	var outcome ReconcileOutcome
	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		schedule := &Schedule{
			TechnicianID: request.TechnicianID,
			ClientID:     request.ClientID,
			LocationID:   request.LocationID,
			PriorityID:   request.PriorityID,
			Notes:        request.Notes,
			MaintainAll:  request.MaintainAll,
			ScheduledAt:  scheduledAt,
		}

		created, err := c.scheduleRepo.InsertIgnoreConflict(ctx, tx, schedule)
		if err != nil {
			return err
		}

		if !created {
			existing, err := c.scheduleRepo.FindByTuple(ctx, tx,
				request.TechnicianID, request.ClientID, request.LocationID, scheduledAt)
			if err != nil {
				return err
			}
			outcome = ReconcileOutcome{
				ScheduleID: existing.ID,
				Duplicate:  true,
				Existing:   existing,
			}
			return nil
		}

		if err := c.scheduleRepo.AddDetails(ctx, tx, detailsFromDeltas(schedule.ID, added)); err != nil {
			return err
		}

		outcome = ReconcileOutcome{ScheduleID: schedule.ID}
		return nil
	})
	if err != nil {
		return nil, log.Err("failed to create schedule", err)
	}

	return &outcome, nil
}

func (c *ScheduleController) update(
	ctx context.Context,
	request *ReconcileRequest,
	added, removed []Delta,
) (*ReconcileOutcome, error) {
	log := c.log.TraceFromContext(ctx).Function("update")
	scheduleID := *request.ScheduleID

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		err := c.scheduleRepo.UpdateFields(ctx, tx, scheduleID, map[string]any{
			"priority_id":  request.PriorityID,
			"notes":        request.Notes,
			"maintain_all": request.MaintainAll,
		})
		if err != nil {
			return err
		}

		if err := c.scheduleRepo.AddDetails(ctx, tx, detailsFromDeltas(scheduleID, added)); err != nil {
			return err
		}

		printerIDs := make([]int, 0, len(removed))
		for _, delta := range removed {
			printerIDs = append(printerIDs, delta.PrinterID)
		}

		return c.scheduleRepo.RemoveDetails(ctx, tx, scheduleID, printerIDs)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to update schedule", err, "scheduleID", scheduleID)
	}

	return &ReconcileOutcome{ScheduleID: scheduleID}, nil
}

// Delete removes a schedule and its detail rows, unless any detail row is
// already maintained. Schedules are append-only once work is done.
func (c *ScheduleController) Delete(ctx context.Context, scheduleID int) error {
	log := c.log.TraceFromContext(ctx).Function("Delete")

	if scheduleID == 0 {
		return fmt.Errorf("%w: scheduleId", ErrValidation)
	}

	err := c.transactionService.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		if _, err := c.scheduleRepo.GetByID(ctx, tx, scheduleID); err != nil {
			return err
		}

		maintained, err := c.scheduleRepo.HasMaintainedDetails(ctx, tx, scheduleID)
		if err != nil {
			return err
		}
		if maintained {
			return ErrCompletedWork
		}

		return c.scheduleRepo.DeleteWithDetails(ctx, tx, scheduleID)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if errors.Is(err, ErrCompletedWork) {
			return ErrCompletedWork
		}
		return log.Err("failed to delete schedule", err, "scheduleID", scheduleID)
	}

	return nil
}

func (c *ScheduleController) ListForSchedulePage(
	ctx context.Context,
	technicianID int,
	scheduledAt datatypes.Date,
) ([]repositories.ScheduleListRow, error) {
	log := c.log.TraceFromContext(ctx).Function("ListForSchedulePage")

	rows, err := c.scheduleRepo.ListForSchedulePage(ctx, c.db.SQL, technicianID, scheduledAt)
	if err != nil {
		return nil, log.Err("failed to list schedules", err, "technicianID", technicianID)
	}

	return rows, nil
}

func (c *ScheduleController) ListForDashboard(
	ctx context.Context,
	technicianID int,
	scheduledAt *datatypes.Date,
) ([]Schedule, error) {
	log := c.log.TraceFromContext(ctx).Function("ListForDashboard")

	schedules, err := c.scheduleRepo.ListForDashboard(ctx, c.db.SQL, technicianID, scheduledAt)
	if err != nil {
		return nil, log.Err("failed to list dashboard schedules", err)
	}

	return schedules, nil
}

func (c *ScheduleController) Tracker(ctx context.Context) ([]repositories.TrackerRow, error) {
	log := c.log.TraceFromContext(ctx).Function("Tracker")

	rows, err := c.scheduleRepo.TrackerRows(ctx, c.db.SQL)
	if err != nil {
		return nil, log.Err("failed to build tracker rows", err)
	}

	return rows, nil
}

func (c *ScheduleController) Details(
	ctx context.Context,
	scheduleID int,
) ([]repositories.ScheduleDetailRow, error) {
	log := c.log.TraceFromContext(ctx).Function("Details")

	if scheduleID == 0 {
		return nil, fmt.Errorf("%w: scheduleId", ErrValidation)
	}

	rows, err := c.scheduleRepo.DetailRows(ctx, c.db.SQL, scheduleID)
	if err != nil {
		return nil, log.Err("failed to list schedule details", err, "scheduleID", scheduleID)
	}

	return rows, nil
}

func validateReconcileRequest(request *ReconcileRequest) error {
	switch {
	case request.TechnicianID == 0:
		return fmt.Errorf("%w: technicianId", ErrValidation)
	case request.ClientID == 0:
		return fmt.Errorf("%w: clientId", ErrValidation)
	case request.LocationID == 0:
		return fmt.Errorf("%w: locationId", ErrValidation)
	case request.PriorityID == 0:
		return fmt.Errorf("%w: priority", ErrValidation)
	case request.ScheduleDate == "":
		return fmt.Errorf("%w: scheduleDate", ErrValidation)
	}
	return nil
}

func parseScheduleDate(value string) (datatypes.Date, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(parsed), nil
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func detailsFromDeltas(scheduleID int, deltas []Delta) []ScheduleDetail {
	details := make([]ScheduleDetail, 0, len(deltas))
	for _, delta := range deltas {
		details = append(details, ScheduleDetail{
			ScheduleID: scheduleID,
			PrinterID:  delta.PrinterID,
			OriginMTID: delta.MTID,
		})
	}
	return details
}
