package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"
)

// SetupCourseRoutes registers the learner-facing routes. Admin routes must be
// registered first so that static segments win over :id.
func SetupCourseRoutes(api fiber.Router, h *controllers.Handler) {
	quizGroup := api.Group("/quiz", middleware.JWTMiddleware)
	quizGroup.Get("/", validators.QuizFilter(), h.ListQuizzes)
	quizGroup.Post("/submit", validators.SubmitQuiz(), h.SubmitQuiz)
	quizGroup.Get("/:id", validators.ID("Quiz"), h.GetQuiz)
	quizGroup.Get("/:id/attempts", validators.ID("Quiz"), h.MyAttempts)

	courseGroup := api.Group("/course", middleware.JWTMiddleware)
	courseGroup.Get("/", validators.CourseFilter(), h.ListCourses)
	courseGroup.Get("/enrolled", validators.Page(), h.MyEnrollments)
	courseGroup.Get("/:id", validators.ID("Course"), h.GetCourse)
	courseGroup.Get("/:id/modules", validators.ID("Course"), h.ListModules)
	courseGroup.Post("/:id/enroll", validators.ID("Course"), h.Enroll)
	courseGroup.Get("/:id/reviews", validators.ID("Course"), validators.Page(), h.ListReviews)

	moduleGroup := api.Group("/module", middleware.JWTMiddleware)
	moduleGroup.Get("/:id", validators.ID("Module"), h.GetModule)
	moduleGroup.Get("/:id/lessons", validators.ID("Module"), h.ListLessons)

	lessonGroup := api.Group("/lesson", middleware.JWTMiddleware)
	lessonGroup.Get("/:id", validators.ID("Lesson"), h.GetLesson)
	lessonGroup.Post("/:id/watched", validators.ID("Lesson"), h.MarkLessonWatched)
	lessonGroup.Get("/:id/comments", validators.ID("Lesson"), validators.Page(), h.ListComments)
	lessonGroup.Post("/:id/comments", validators.ID("Lesson"), validators.Comment(), h.AddComment)

	api.Delete("/comment/:id", middleware.JWTMiddleware, validators.ID("Comment"), h.DeleteComment)

	reviewGroup := api.Group("/review", middleware.JWTMiddleware)
	reviewGroup.Post("/", validators.Review(), h.CreateReview)
	reviewGroup.Delete("/:id", validators.ID("Review"), h.DeleteReview)

	api.Get("/certificate", middleware.JWTMiddleware, h.MyCertificates)

	webinarGroup := api.Group("/webinar", middleware.JWTMiddleware)
	webinarGroup.Get("/", validators.WebinarFilter(), h.ListWebinars)
	webinarGroup.Get("/:id", validators.ID("Webinar"), h.GetWebinar)
}
