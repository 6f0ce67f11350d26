package courseValidator

import (
	"github.com/gofiber/fiber/v2"

	courseService "lms/services/course"
	"lms/validators"
)

func Review() fiber.Handler {
	return validators.Body[courseService.ReviewInput]("validatedReview")
}

func IssueCertificate() fiber.Handler {
	return validators.Body[courseService.IssueCertificateInput]("validatedIssueCertificate")
}

func CreateWebinar() fiber.Handler {
	return validators.Body[courseService.CreateWebinarInput]("validatedCreateWebinar")
}

func UpdateWebinar() fiber.Handler {
	return validators.Body[courseService.UpdateWebinarInput]("validatedUpdateWebinar")
}

func WebinarFilter() fiber.Handler {
	return validators.Query[courseService.WebinarFilter]("validatedWebinarFilter")
}
