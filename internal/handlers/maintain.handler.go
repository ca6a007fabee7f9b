package handlers

import (
	"errors"

	"printfleet/internal/app"
	maintainController "printfleet/internal/controllers/maintain"
	"printfleet/internal/logger"

	"github.com/gofiber/fiber/v2"
)

type MaintainHandler struct {
	Handler
	maintainController maintainController.MaintainControllerInterface
}

func NewMaintainHandler(app app.App, router fiber.Router) *MaintainHandler {
	log := logger.New("handlers").File("maintain_handler")
	return &MaintainHandler{
		maintainController: app.MaintainController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *MaintainHandler) Register() {
	h.router.Get("/maintain", h.checkSerial)
	h.router.Post("/maintain", h.create)
	h.router.Patch("/maintain", h.patchSignPath)
	h.router.Post("/maintain/complete", h.completeVisit)
	h.router.Post("/sched-details", h.markDetail)
}

func (h *MaintainHandler) checkSerial(c *fiber.Ctx) error {
	log := h.log.Function("checkSerial")

	serialNo := c.Query("serialNo")

	result, err := h.maintainController.CheckSerial(c.UserContext(), serialNo)
	if err != nil {
		switch {
		case errors.Is(err, maintainController.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "serialNo is required",
			})
		case errors.Is(err, maintainController.ErrDuplicateMaintenance):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Duplicate",
			})
		case errors.Is(err, maintainController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Printer not found",
			})
		default:
			log.Er("failed to check serial", err, "serialNo", serialNo)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
	}

	return c.JSON(result)
}

func (h *MaintainHandler) create(c *fiber.Ctx) error {
	log := h.log.Function("create")

	var request maintainController.CreateRecordRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	id, err := h.maintainController.CreateRecord(c.UserContext(), &request)
	if err != nil {
		switch {
		case errors.Is(err, maintainController.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, maintainController.ErrDuplicateMaintenance):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Duplicate",
			})
		default:
			log.Er("failed to create maintenance record", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
	}

	return c.JSON(fiber.Map{"id": id})
}

func (h *MaintainHandler) patchSignPath(c *fiber.Ctx) error {
	log := h.log.Function("patchSignPath")

	var request struct {
		ID       int    `json:"id"`
		SignPath string `json:"signPath"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := h.maintainController.PatchSignPath(c.UserContext(), request.ID, request.SignPath)
	if err != nil {
		switch {
		case errors.Is(err, maintainController.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "id and signPath are required",
			})
		case errors.Is(err, maintainController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Maintenance record not found",
			})
		default:
			log.Er("failed to patch sign path", err, "id", request.ID)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
	}

	return c.JSON(fiber.Map{
		"message": "Signature saved",
		"id":      request.ID,
	})
}

func (h *MaintainHandler) completeVisit(c *fiber.Ctx) error {
	log := h.log.Function("completeVisit")

	var request maintainController.CompleteVisitRequest
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	id, err := h.maintainController.CompleteVisit(c.UserContext(), &request)
	if err != nil {
		switch {
		case errors.Is(err, maintainController.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, maintainController.ErrDuplicateMaintenance):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Duplicate",
			})
		case errors.Is(err, maintainController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Schedule detail not found",
			})
		default:
			log.Er("failed to complete visit", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
	}

	return c.JSON(fiber.Map{"id": id})
}

func (h *MaintainHandler) markDetail(c *fiber.Ctx) error {
	log := h.log.Function("markDetail")

	var request struct {
		SchedDetailsID int `json:"schedDetailsId"`
	}
	if err := c.BodyParser(&request); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := h.maintainController.MarkDetail(c.UserContext(), request.SchedDetailsID)
	if err != nil {
		switch {
		case errors.Is(err, maintainController.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "schedDetailsId is required",
			})
		case errors.Is(err, maintainController.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Schedule detail not found",
			})
		default:
			log.Er("failed to mark schedule detail", err, "id", request.SchedDetailsID)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
	}

	return c.JSON(fiber.Map{"message": "Schedule detail updated"})
}
