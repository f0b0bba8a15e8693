package handlers

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
)

//go:embed static/index.html
var dashboardPage []byte

// Dashboard serves the single-page dashboard; the page pulls its data from /api/*
// GET /
func Dashboard(c *fiber.Ctx) error {
	c.Type("html", "utf-8")
	return c.Send(dashboardPage)
}
