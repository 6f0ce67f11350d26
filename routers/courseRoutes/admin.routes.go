package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"
)

// SetupAdminCourseRoutes registers the authoring routes. Every route requires
// an admin token.
func SetupAdminCourseRoutes(api fiber.Router, h *controllers.Handler) {
	admin := []fiber.Handler{middleware.JWTMiddleware, middleware.RequireAdmin}
	chain := func(handlers ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), handlers...)
	}

	quizGroup := api.Group("/quiz")
	quizGroup.Get("/admin", chain(validators.QuizFilter(), h.ListQuizzesAdmin)...)
	quizGroup.Get("/admin/:id", chain(validators.ID("Quiz"), h.GetQuizAdmin)...)
	quizGroup.Post("/question", chain(validators.AddQuestion(), h.AddQuestion)...)
	quizGroup.Put("/question/:id", chain(validators.ID("Question"), validators.UpdateQuestion(), h.UpdateQuestion)...)
	quizGroup.Delete("/question/:id", chain(validators.ID("Question"), h.DeleteQuestion)...)
	quizGroup.Post("/", chain(validators.CreateQuiz(), h.CreateQuiz)...)
	quizGroup.Put("/:id", chain(validators.ID("Quiz"), validators.UpdateQuiz(), h.UpdateQuiz)...)
	quizGroup.Delete("/:id", chain(validators.ID("Quiz"), h.DeleteQuiz)...)

	courseGroup := api.Group("/course")
	courseGroup.Post("/", chain(validators.CreateCourse(), h.CreateCourse)...)
	courseGroup.Put("/:id", chain(validators.ID("Course"), validators.UpdateCourse(), h.UpdateCourse)...)
	courseGroup.Delete("/:id", chain(validators.ID("Course"), h.DeleteCourse)...)
	courseGroup.Post("/:id/publish", chain(validators.ID("Course"), h.PublishCourse)...)
	courseGroup.Post("/:id/unpublish", chain(validators.ID("Course"), h.UnpublishCourse)...)
	courseGroup.Post("/:id/thumbnail", chain(validators.ID("Course"), h.UploadCourseThumbnail)...)

	moduleGroup := api.Group("/module")
	moduleGroup.Post("/", chain(validators.CreateModule(), h.CreateModule)...)
	moduleGroup.Put("/:id", chain(validators.ID("Module"), validators.UpdateModule(), h.UpdateModule)...)
	moduleGroup.Delete("/:id", chain(validators.ID("Module"), h.DeleteModule)...)

	lessonGroup := api.Group("/lesson")
	lessonGroup.Post("/", chain(validators.CreateLesson(), h.CreateLesson)...)
	lessonGroup.Put("/:id", chain(validators.ID("Lesson"), validators.UpdateLesson(), h.UpdateLesson)...)
	lessonGroup.Delete("/:id", chain(validators.ID("Lesson"), h.DeleteLesson)...)
	lessonGroup.Post("/:id/files", chain(validators.ID("Lesson"), h.UploadLessonFile)...)
	lessonGroup.Delete("/:id/files/:fileId", chain(validators.ID("Lesson"), h.DeleteLessonFile)...)

	api.Post("/certificate", chain(validators.IssueCertificate(), h.IssueCertificate)...)

	webinarGroup := api.Group("/webinar")
	webinarGroup.Post("/", chain(validators.CreateWebinar(), h.CreateWebinar)...)
	webinarGroup.Put("/:id", chain(validators.ID("Webinar"), validators.UpdateWebinar(), h.UpdateWebinar)...)
	webinarGroup.Delete("/:id", chain(validators.ID("Webinar"), h.DeleteWebinar)...)
	webinarGroup.Post("/:id/thumbnail", chain(validators.ID("Webinar"), h.UploadWebinarThumbnail)...)
}
