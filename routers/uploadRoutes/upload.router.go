package uploadRoutes

import (
	"path/filepath"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	"lms/storage"
)

// SetupUploadRoutes serves objects of the local store behind the signed URLs
// it hands out.
func SetupUploadRoutes(app *fiber.App, local *storage.LocalStorage) {
	app.Get("/uploads/:key", func(c *fiber.Ctx) error {
		key := c.Params("key")
		if !local.Verify(key, c.Query("expires"), c.Query("signature")) {
			return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid or expired link!", nil)
		}
		return c.SendFile(filepath.Join(local.Dir(), key))
	})
}
