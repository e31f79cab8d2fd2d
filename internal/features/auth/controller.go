package auth

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-helpdesk/internal/config"
	"go-helpdesk/pkg/utils"
)

type DevTokenRequest struct {
	UserID      string   `json:"user_id"`
	WorkspaceID string   `json:"workspace_id"`
	Roles       []string `json:"roles"`
}

type Controller struct {
	Config *config.Config
}

func NewController(config *config.Config) *Controller {
	return &Controller{
		Config: config,
	}
}

// DevToken godoc
// @Summary Issue a signed JWT for local development and testing
// @Tags auth
// @Accept json
// @Produce json
// @Router /api/auth/dev-token [post]
func (ctrl *Controller) DevToken(c *fiber.Ctx) error {
	// never an auth bypass outside development
	if ctrl.Config.Environment == "production" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}

	var req DevTokenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	userID := primitive.NewObjectID()
	if req.UserID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid user_id"})
		}
		userID = parsed
	}

	token, err := utils.GenerateToken(userID, req.WorkspaceID, req.Roles)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"token":   token,
		"user_id": userID.Hex(),
	})
}
