package courseController

import (
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	courseService "lms/services/course"
	"lms/validators"
)

// Enroll enrolls the caller in the course in :id.
func (h *Handler) Enroll(c *fiber.Ctx) error {
	enrollment, err := h.svc.Enroll(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully.", enrollment)
}

func (h *Handler) MyEnrollments(c *fiber.Ctx) error {
	page := c.Locals("validatedPage").(*validators.PageQuery)

	enrollments, pg, err := h.svc.MyEnrollments(c.UserContext(), middleware.Auth(c), page.Page, page.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return paged(c, "Enrolled courses.", "enrollments", enrollments, pg)
}

func (h *Handler) CreateReview(c *fiber.Ctx) error {
	reqData := c.Locals("validatedReview").(*courseService.ReviewInput)

	review, err := h.svc.CreateReview(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review added successfully.", review)
}

// ListReviews lists the reviews of the course in :id.
func (h *Handler) ListReviews(c *fiber.Ctx) error {
	page := c.Locals("validatedPage").(*validators.PageQuery)

	summary, pg, err := h.svc.ListReviews(c.UserContext(), paramID(c), page.Page, page.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review list.", fiber.Map{
		"reviews":       summary.Reviews,
		"averageRating": summary.AverageRating,
		"pagination":    pg,
	})
}

func (h *Handler) DeleteReview(c *fiber.Ctx) error {
	if err := h.svc.DeleteReview(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review deleted successfully.", nil)
}

func (h *Handler) IssueCertificate(c *fiber.Ctx) error {
	reqData := c.Locals("validatedIssueCertificate").(*courseService.IssueCertificateInput)

	cert, err := h.svc.IssueCertificate(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate issued successfully.", cert)
}

func (h *Handler) MyCertificates(c *fiber.Ctx) error {
	certs, err := h.svc.MyCertificates(c.UserContext(), middleware.Auth(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates.", certs)
}
