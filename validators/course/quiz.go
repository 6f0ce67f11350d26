package courseValidator

import (
	"github.com/gofiber/fiber/v2"

	courseService "lms/services/course"
	"lms/validators"
)

func CreateQuiz() fiber.Handler {
	return validators.Body[courseService.CreateQuizInput]("validatedCreateQuiz")
}

func UpdateQuiz() fiber.Handler {
	return validators.Body[courseService.UpdateQuizInput]("validatedUpdateQuiz")
}

func AddQuestion() fiber.Handler {
	return validators.Body[courseService.AddQuestionInput]("validatedAddQuestion")
}

func UpdateQuestion() fiber.Handler {
	return validators.Body[courseService.UpdateQuestionInput]("validatedUpdateQuestion")
}

func QuizFilter() fiber.Handler {
	return validators.Query[courseService.QuizFilter]("validatedQuizFilter")
}

// SubmitQuiz checks the shape of a submission. Whether the answers cover the
// quiz is decided by the service.
func SubmitQuiz() fiber.Handler {
	return validators.Body[courseService.SubmitQuizInput]("validatedSubmitQuiz")
}
