package courseValidator

import (
	"github.com/gofiber/fiber/v2"

	courseService "lms/services/course"
	"lms/validators"
)

// ID validates the :id route parameter of a resource named label.
func ID(label string) fiber.Handler {
	return validators.ParamID("id", "id", label)
}

func CreateCourse() fiber.Handler {
	return validators.Body[courseService.CreateCourseInput]("validatedCreateCourse")
}

func UpdateCourse() fiber.Handler {
	return validators.Body[courseService.UpdateCourseInput]("validatedUpdateCourse")
}

func CourseFilter() fiber.Handler {
	return validators.Query[courseService.CourseFilter]("validatedCourseFilter")
}

func CreateModule() fiber.Handler {
	return validators.Body[courseService.CreateModuleInput]("validatedCreateModule")
}

func UpdateModule() fiber.Handler {
	return validators.Body[courseService.UpdateModuleInput]("validatedUpdateModule")
}

func CreateLesson() fiber.Handler {
	return validators.Body[courseService.CreateLessonInput]("validatedCreateLesson")
}

func UpdateLesson() fiber.Handler {
	return validators.Body[courseService.UpdateLessonInput]("validatedUpdateLesson")
}

func Comment() fiber.Handler {
	return validators.Body[courseService.CommentInput]("validatedComment")
}

func Page() fiber.Handler {
	return validators.Query[validators.PageQuery]("validatedPage")
}
