package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature API and collected into the fx
// "routes" group for registration at startup.
type Route interface {
	Setup(app *fiber.App)
}
