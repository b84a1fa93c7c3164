package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// HandleCheckHealth is a simple health check for monitoring / frontend
func HandleCheckHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
