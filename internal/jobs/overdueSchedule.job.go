package jobs

import (
	"context"
	"time"

	"printfleet/internal/database"
	"printfleet/internal/logger"
	"printfleet/internal/repositories"
	"printfleet/internal/services"

	"gorm.io/datatypes"
)

// OverdueScheduleJob sweeps for schedules past their date that still have
// open detail rows and reports them, so dispatchers see slipped visits
// without opening the tracker.
type OverdueScheduleJob struct {
	scheduleRepo repositories.ScheduleRepository
	db           database.DB
	log          logger.Logger
	schedule     services.Schedule
}

func NewOverdueScheduleJob(
	scheduleRepo repositories.ScheduleRepository,
	db database.DB,
	schedule services.Schedule,
) *OverdueScheduleJob {
	log := logger.New("overdueScheduleJob")
	log.Info("Creating new overdue schedule job", "schedule", schedule)

	return &OverdueScheduleJob{
		scheduleRepo: scheduleRepo,
		db:           db,
		log:          log,
		schedule:     schedule,
	}
}

func (j *OverdueScheduleJob) Name() string {
	return "OverdueScheduleSweep"
}

func (j *OverdueScheduleJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	now := time.Now().UTC()
	today := datatypes.Date(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC))

	overdue, err := j.scheduleRepo.ListOverdue(ctx, j.db.SQL, today)
	if err != nil {
		return log.Err("overdue schedule sweep failed", err)
	}

	if len(overdue) == 0 {
		log.Info("No overdue schedules")
		return nil
	}

	for _, row := range overdue {
		log.Warn("Schedule overdue",
			"scheduleID", row.ID,
			"scheduledAt", row.ScheduledAt,
			"client", row.Client,
			"location", row.Location,
			"technician", row.Technician,
			"open", row.Open,
			"total", row.Total,
		)
	}

	log.Info("Overdue schedule sweep completed", "overdueCount", len(overdue))
	return nil
}

func (j *OverdueScheduleJob) Schedule() services.Schedule {
	return j.schedule
}
