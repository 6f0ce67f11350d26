package courseController

import (
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	courseService "lms/services/course"
)

func (h *Handler) CreateWebinar(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCreateWebinar").(*courseService.CreateWebinarInput)

	webinar, err := h.svc.CreateWebinar(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Webinar created successfully.", webinar)
}

func (h *Handler) UpdateWebinar(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUpdateWebinar").(*courseService.UpdateWebinarInput)

	webinar, err := h.svc.UpdateWebinar(c.UserContext(), middleware.Auth(c), paramID(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinar updated successfully.", webinar)
}

func (h *Handler) GetWebinar(c *fiber.Ctx) error {
	webinar, err := h.svc.GetWebinar(c.UserContext(), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinar details.", webinar)
}

func (h *Handler) ListWebinars(c *fiber.Ctx) error {
	filter := c.Locals("validatedWebinarFilter").(*courseService.WebinarFilter)

	webinars, pg, err := h.svc.ListWebinars(c.UserContext(), *filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return paged(c, "Webinar list.", "webinars", webinars, pg)
}

func (h *Handler) DeleteWebinar(c *fiber.Ctx) error {
	if err := h.svc.DeleteWebinar(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Webinar deleted successfully.", nil)
}

func (h *Handler) UploadWebinarThumbnail(c *fiber.Ctx) error {
	f, meta, err := formFile(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	defer f.Close()

	webinar, err := h.svc.UploadWebinarThumbnail(c.UserContext(), middleware.Auth(c), paramID(c), f, meta)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully.", webinar)
}
