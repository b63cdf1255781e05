package controller

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	startedAt time.Time
}

func NewHealthController() IHealthController {
	return &healthController{startedAt: time.Now()}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"status": "ok",
		"uptime": time.Since(c.startedAt).Round(time.Second).String(),
	})
}
