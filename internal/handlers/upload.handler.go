package handlers

import (
	"printfleet/internal/app"
	"printfleet/internal/logger"
	"printfleet/internal/services"

	"github.com/gofiber/fiber/v2"
)

type UploadHandler struct {
	Handler
	objectStoreService *services.ObjectStoreService
}

func NewUploadHandler(app app.App, router fiber.Router) *UploadHandler {
	log := logger.New("handlers").File("upload_handler")
	return &UploadHandler{
		objectStoreService: app.ObjectStoreService,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *UploadHandler) Register() {
	h.router.Get("/uploads/sign-url", h.signURL)
}

// signURL hands the client a presigned PUT URL so signature and nozzle
// check images go straight to the bucket.
func (h *UploadHandler) signURL(c *fiber.Ctx) error {
	log := h.log.Function("signURL")

	key := c.Query("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "key is required",
		})
	}

	contentType := c.Query("contentType")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if !h.objectStoreService.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Uploads are not configured",
		})
	}

	url, err := h.objectStoreService.SignUploadURL(c.UserContext(), key, contentType)
	if err != nil {
		log.Er("failed to presign upload url", err, "key", key)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Something went wrong, please try again later",
		})
	}

	return c.JSON(fiber.Map{"url": url})
}
