package handlers

import (
	"errors"
	"time"

	"printfleet/internal/app"
	scheduleController "printfleet/internal/controllers/schedule"
	"printfleet/internal/logger"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

type ScheduleHandler struct {
	Handler
	scheduleController scheduleController.ScheduleControllerInterface
}

func NewScheduleHandler(app app.App, router fiber.Router) *ScheduleHandler {
	log := logger.New("handlers").File("schedule_handler")
	return &ScheduleHandler{
		scheduleController: app.ScheduleController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ScheduleHandler) Register() {
	h.router.Post("/schedule", h.reconcile)
	h.router.Get("/schedule", h.list)
	h.router.Delete("/schedule", h.delete)

	schedules := h.router.Group("/schedules")
	schedules.Get("/tracker", h.tracker)
	schedules.Get("/:id/details", h.details)
}

func (h *ScheduleHandler) reconcile(c *fiber.Ctx) error {
	log := h.log.Function("reconcile")

	var request scheduleController.ReconcileRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	outcome, err := h.scheduleController.Reconcile(c.UserContext(), &request)
	if err != nil {
		switch {
		case errors.Is(err, scheduleController.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, scheduleController.ErrStaleSchedule):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Cannot create a schedule dated in the past",
			})
		case errors.Is(err, scheduleController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Schedule not found",
			})
		default:
			log.Er("failed to reconcile schedule", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
	}

	if outcome.Duplicate {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":    "duplicate",
			"existing": outcome.Existing,
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Schedule saved",
		"scheduleId": outcome.ScheduleID,
	})
}

func (h *ScheduleHandler) list(c *fiber.Ctx) error {
	log := h.log.Function("list")

	technicianID := c.QueryInt("technicianId")
	scheduledAtParam := c.Query("scheduledAt")

	if c.Query("pageSource") == "schedule" {
		if technicianID == 0 || scheduledAtParam == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "technicianId and scheduledAt are required",
			})
		}

		scheduledAt, err := parseDateParam(scheduledAtParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid scheduledAt date",
			})
		}

		rows, err := h.scheduleController.ListForSchedulePage(c.UserContext(), technicianID, scheduledAt)
		if err != nil {
			log.Er("failed to list schedules", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}

		if len(rows) == 0 {
			return c.JSON(fiber.Map{"message": "No schedules"})
		}
		return c.JSON(rows)
	}

	var scheduledAt *datatypes.Date
	if scheduledAtParam != "" {
		parsed, err := parseDateParam(scheduledAtParam)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid scheduledAt date",
			})
		}
		scheduledAt = &parsed
	}

	schedules, err := h.scheduleController.ListForDashboard(c.UserContext(), technicianID, scheduledAt)
	if err != nil {
		log.Er("failed to list dashboard schedules", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong, please try again later",
		})
	}

	return c.JSON(schedules)
}

func (h *ScheduleHandler) delete(c *fiber.Ctx) error {
	log := h.log.Function("delete")

	scheduleID := c.QueryInt("scheduleId")

	err := h.scheduleController.Delete(c.UserContext(), scheduleID)
	if err != nil {
		switch {
		case errors.Is(err, scheduleController.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "A valid scheduleId is required",
			})
		case errors.Is(err, scheduleController.ErrCompletedWork):
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Cannot delete, maintenance work already completed",
			})
		case errors.Is(err, scheduleController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Schedule not found",
			})
		default:
			log.Er("failed to delete schedule", err, "scheduleID", scheduleID)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "Schedule deleted"})
}

func (h *ScheduleHandler) tracker(c *fiber.Ctx) error {
	log := h.log.Function("tracker")

	rows, err := h.scheduleController.Tracker(c.UserContext())
	if err != nil {
		log.Er("failed to build tracker", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong, please try again later",
		})
	}

	return c.JSON(rows)
}

func (h *ScheduleHandler) details(c *fiber.Ctx) error {
	log := h.log.Function("details")

	scheduleID, err := c.ParamsInt("id")
	if err != nil || scheduleID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "A valid schedule id is required",
		})
	}

	rows, err := h.scheduleController.Details(c.UserContext(), scheduleID)
	if err != nil {
		log.Er("failed to list schedule details", err, "scheduleID", scheduleID)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong, please try again later",
		})
	}

	return c.JSON(rows)
}

func parseDateParam(value string) (datatypes.Date, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(parsed), nil
}
