package courseController

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"lms/apperr"
	"lms/middleware"
	courseService "lms/services/course"
	"lms/storage"
	"lms/utils"
)

// Handler exposes the course service over HTTP. Validated input is read from
// c.Locals under the keys set by the courseValidator handlers.
type Handler struct {
	svc *courseService.Service
}

func New(svc *courseService.Service) *Handler {
	return &Handler{svc: svc}
}

func paramID(c *fiber.Ctx) uint {
	id, _ := c.Locals("id").(uint)
	return id
}

func paged(c *fiber.Ctx, message, key string, items interface{}, pg utils.Pagination) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		key:          items,
		"pagination": pg,
	})
}

// formFile opens the multipart field "file".
func formFile(c *fiber.Ctx) (io.ReadCloser, storage.Metadata, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, storage.Metadata{}, apperr.Validation("File is required")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, storage.Metadata{}, apperr.Internal(err, "Failed to read uploaded file")
	}
	return f, storage.Metadata{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}
