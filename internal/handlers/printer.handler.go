package handlers

import (
	"errors"

	"printfleet/internal/app"
	printerController "printfleet/internal/controllers/printer"
	"printfleet/internal/logger"
	"printfleet/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

type PrinterHandler struct {
	Handler
	printerController printerController.PrinterControllerInterface
}

func NewPrinterHandler(app app.App, router fiber.Router) *PrinterHandler {
	log := logger.New("handlers").File("printer_handler")
	return &PrinterHandler{
		printerController: app.PrinterController,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *PrinterHandler) Register() {
	h.router.Get("/printers", h.list)
}

func (h *PrinterHandler) list(c *fiber.Ctx) error {
	log := h.log.Function("list")

	if serialNo := c.Query("serialNo"); serialNo != "" {
		printer, err := h.printerController.GetBySerial(c.UserContext(), serialNo)
		if err != nil {
			if errors.Is(err, printerController.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Printer not found",
				})
			}
			log.Er("failed to get printer", err, "serialNo", serialNo)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Something went wrong, please try again later",
			})
		}
		return c.JSON(printer)
	}

	clientID := c.QueryInt("clientId")
	locationID := c.QueryInt("locationId")
	scheduleID := c.QueryInt("scheduleId")

	// All-zero ids are the "nothing selected yet" sentinel from the
	// schedule form. Nothing to list.
	if clientID == 0 && locationID == 0 && scheduleID == 0 {
		return c.SendStatus(fiber.StatusOK)
	}

	rows, err := h.printerController.ListForSchedule(c.UserContext(), clientID, locationID, scheduleID)
	if err != nil {
		if errors.Is(err, printerController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "clientId and locationId are required",
			})
		}
		log.Er("failed to list printers", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong, please try again later",
		})
	}

	if rows == nil {
		rows = []repositories.PrinterListRow{}
	}

	return c.JSON(rows)
}
