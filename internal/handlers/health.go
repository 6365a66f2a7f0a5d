package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/omnilaze/internal/config"
)

// HealthHandler reports liveness and the running environment.
type HealthHandler struct {
	cfg *config.Config
	now func() time.Time
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg, now: time.Now}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":           "healthy",
		"message":          "API is running",
		"environment":      h.cfg.Environment,
		"development_mode": h.cfg.DevelopmentMode,
		"timestamp":        h.now().UTC().Format(time.RFC3339),
	})
}
