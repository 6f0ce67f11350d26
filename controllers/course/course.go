package courseController

import (
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	courseService "lms/services/course"
	"lms/validators"
)

func (h *Handler) CreateCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCreateCourse").(*courseService.CreateCourseInput)

	course, err := h.svc.CreateCourse(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully.", course)
}

func (h *Handler) UpdateCourse(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUpdateCourse").(*courseService.UpdateCourseInput)

	course, err := h.svc.UpdateCourse(c.UserContext(), middleware.Auth(c), paramID(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully.", course)
}

func (h *Handler) PublishCourse(c *fiber.Ctx) error {
	return h.setPublished(c, true, "Course published successfully.")
}

func (h *Handler) UnpublishCourse(c *fiber.Ctx) error {
	return h.setPublished(c, false, "Course unpublished successfully.")
}

func (h *Handler) setPublished(c *fiber.Ctx, publish bool, message string) error {
	course, err := h.svc.PublishCourse(c.UserContext(), middleware.Auth(c), paramID(c), publish)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

func (h *Handler) DeleteCourse(c *fiber.Ctx) error {
	if err := h.svc.DeleteCourse(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully.", nil)
}

func (h *Handler) GetCourse(c *fiber.Ctx) error {
	course, err := h.svc.GetCourse(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details.", course)
}

func (h *Handler) ListCourses(c *fiber.Ctx) error {
	filter := c.Locals("validatedCourseFilter").(*courseService.CourseFilter)

	courses, pg, err := h.svc.ListCourses(c.UserContext(), middleware.Auth(c), *filter)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return paged(c, "Course list.", "courses", courses, pg)
}

func (h *Handler) UploadCourseThumbnail(c *fiber.Ctx) error {
	f, meta, err := formFile(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	defer f.Close()

	course, err := h.svc.UploadCourseThumbnail(c.UserContext(), middleware.Auth(c), paramID(c), f, meta)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully.", course)
}

func (h *Handler) CreateModule(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCreateModule").(*courseService.CreateModuleInput)

	module, err := h.svc.CreateModule(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully.", module)
}

func (h *Handler) UpdateModule(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUpdateModule").(*courseService.UpdateModuleInput)

	module, err := h.svc.UpdateModule(c.UserContext(), middleware.Auth(c), paramID(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully.", module)
}

func (h *Handler) DeleteModule(c *fiber.Ctx) error {
	if err := h.svc.DeleteModule(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully.", nil)
}

func (h *Handler) GetModule(c *fiber.Ctx) error {
	module, err := h.svc.GetModule(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module details.", module)
}

// ListModules lists the modules of the course in :id.
func (h *Handler) ListModules(c *fiber.Ctx) error {
	modules, err := h.svc.ListModules(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module list.", modules)
}

func (h *Handler) CreateLesson(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCreateLesson").(*courseService.CreateLessonInput)

	lesson, err := h.svc.CreateLesson(c.UserContext(), middleware.Auth(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully.", lesson)
}

func (h *Handler) UpdateLesson(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUpdateLesson").(*courseService.UpdateLessonInput)

	lesson, err := h.svc.UpdateLesson(c.UserContext(), middleware.Auth(c), paramID(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully.", lesson)
}

func (h *Handler) DeleteLesson(c *fiber.Ctx) error {
	if err := h.svc.DeleteLesson(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully.", nil)
}

func (h *Handler) GetLesson(c *fiber.Ctx) error {
	lesson, err := h.svc.GetLesson(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson details.", lesson)
}

// ListLessons lists the lessons of the module in :id.
func (h *Handler) ListLessons(c *fiber.Ctx) error {
	lessons, err := h.svc.ListLessons(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson list.", lessons)
}

func (h *Handler) MarkLessonWatched(c *fiber.Ctx) error {
	watched, err := h.svc.MarkLessonWatched(c.UserContext(), middleware.Auth(c), paramID(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked as watched.", watched)
}

func (h *Handler) UploadLessonFile(c *fiber.Ctx) error {
	f, meta, err := formFile(c)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	defer f.Close()

	file, err := h.svc.UploadLessonFile(c.UserContext(), middleware.Auth(c), paramID(c), f, meta)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "File uploaded successfully.", file)
}

func (h *Handler) DeleteLessonFile(c *fiber.Ctx) error {
	fileID, err := validators.ParseID(c, "fileId", "File")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, err.Error(), nil)
	}
	if err := h.svc.DeleteLessonFile(c.UserContext(), middleware.Auth(c), paramID(c), fileID); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "File deleted successfully.", nil)
}

func (h *Handler) AddComment(c *fiber.Ctx) error {
	reqData := c.Locals("validatedComment").(*courseService.CommentInput)

	comment, err := h.svc.AddComment(c.UserContext(), middleware.Auth(c), paramID(c), *reqData)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Comment added successfully.", comment)
}

func (h *Handler) ListComments(c *fiber.Ctx) error {
	page := c.Locals("validatedPage").(*validators.PageQuery)
	comments, pg, err := h.svc.ListComments(c.UserContext(), middleware.Auth(c), paramID(c), page.Page, page.Limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return paged(c, "Comment list.", "comments", comments, pg)
}

func (h *Handler) DeleteComment(c *fiber.Ctx) error {
	if err := h.svc.DeleteComment(c.UserContext(), middleware.Auth(c), paramID(c)); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Comment deleted successfully.", nil)
}
