package courseController

import (
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	courseService "lms/services/course"
)

func (h *Handler) CreateQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCreateQuiz").(*courseService.CreateQuizInput)

	quiz, err := h.svc.CreateQuiz(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully.", quiz)
}

func (h *Handler) UpdateQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUpdateQuiz").(*courseService.UpdateQuizInput)

	quiz, err := h.svc.UpdateQuiz(c.UserContext(), middleware.Auth(c), paramID(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully.", quiz)
}

func (h *Handler) DeleteQuiz(c *fiber.Ctx) error {
	if err := h.svc.DeleteQuiz(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz deleted successfully.", nil)
}

func (h *Handler) AddQuestion(c *fiber.Ctx) error {
	reqData := c.Locals("validatedAddQuestion").(*courseService.AddQuestionInput)

	question, err := h.svc.AddQuestion(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question added successfully.", question)
}

func (h *Handler) UpdateQuestion(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUpdateQuestion").(*courseService.UpdateQuestionInput)

	question, err := h.svc.UpdateQuestion(c.UserContext(), middleware.Auth(c), paramID(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully.", question)
}

func (h *Handler) DeleteQuestion(c *fiber.Ctx) error {
	if err := h.svc.DeleteQuestion(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully.", nil)
}

func (h *Handler) GetQuizAdmin(c *fiber.Ctx) error {
	quiz, err := h.svc.GetQuizAdmin(c.UserContext(), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz details.", quiz)
}

func (h *Handler) ListQuizzesAdmin(c *fiber.Ctx) error {
	filter := c.Locals("validatedQuizFilter").(*courseService.QuizFilter)

	quizzes, pg, err := h.svc.ListQuizzesAdmin(c.UserContext(), *filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return paged(c, "Quiz list.", "quizzes", quizzes, pg)
}

func (h *Handler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.svc.GetQuizUser(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz details.", quiz)
}

func (h *Handler) ListQuizzes(c *fiber.Ctx) error {
	filter := c.Locals("validatedQuizFilter").(*courseService.QuizFilter)

	quizzes, pg, err := h.svc.ListQuizzesUser(c.UserContext(), middleware.Auth(c), *filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return paged(c, "Quiz list.", "quizzes", quizzes, pg)
}

func (h *Handler) SubmitQuiz(c *fiber.Ctx) error {
	reqData := c.Locals("validatedSubmitQuiz").(*courseService.SubmitQuizInput)

	result, err := h.svc.SubmitQuizAnswers(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted successfully.", result)
}

func (h *Handler) MyAttempts(c *fiber.Ctx) error {
	attempts, err := h.svc.ListMyAttempts(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz attempts.", attempts)
}
