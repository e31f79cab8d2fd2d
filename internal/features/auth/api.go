package auth

import (
	"go-helpdesk/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type Api struct {
	controller *Controller
}

func NewApi(controller *Controller) api.Route {
	return &Api{
		controller: controller,
	}
}

// Setup registers the token endpoint without the auth middleware; callers
// need it to obtain a token in the first place.
func (h *Api) Setup(app *fiber.App) {
	app.Post("/api/auth/dev-token", h.controller.DevToken)
}
