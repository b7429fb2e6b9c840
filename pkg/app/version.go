package app

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// VERSION is MAJOR.MINOR.PATCH+BUILD, the build is the release date (YYYYMMDD).
// MINOR changes with the web api or the configuration file, PATCH with trigger timing
// fixes which keep both.
const (
	VERSION = "1.0.10+20261001"
	MODULE  = "triggertest"
)

// HandleVersion is the get application version web handler.
func (app *App) HandleVersion() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request version")

		return ctx.JSON(fiber.Map{
			"version":     VERSION,
			"description": MODULE,
			"about":       Version(),
		})
	}
}

// Version is the get application version as string.
func Version() string {
	return strings.TrimSpace(MODULE + " V" + strings.Split(VERSION, "+")[0])
}
