package rule

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"go-helpdesk/internal/common/models"
)

type Controller struct {
	Service Service
}

func NewController(service Service) *Controller {
	return &Controller{
		Service: service,
	}
}

func (ctrl *Controller) statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidRule):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrRuleNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// CreateRule godoc
// @Summary Create automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Router /api/automation/rules [post]
func (ctrl *Controller) CreateRule(c *fiber.Ctx) error {
	var rule models.Rule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.CreateRule(c.UserContext(), &rule); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

// GetRule godoc
// @Summary Get automation rule by ID
// @Tags automation
// @Produce json
// @Router /api/automation/rules/{id} [get]
func (ctrl *Controller) GetRule(c *fiber.Ctx) error {
	rule, err := ctrl.Service.GetRule(c.UserContext(), c.Query("workspace_id"), c.Params("id"))
	if err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	if rule == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Rule not found"})
	}
	return c.JSON(rule)
}

// ListRules godoc
// @Summary List automation rules for a workspace
// @Tags automation
// @Produce json
// @Router /api/automation/rules [get]
func (ctrl *Controller) ListRules(c *fiber.Ctx) error {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "workspace_id is required"})
	}
	enabledOnly := c.QueryBool("enabled_only")

	rules, err := ctrl.Service.ListRules(c.UserContext(), workspaceID, enabledOnly)
	if err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rules)
}

// UpdateRule godoc
// @Summary Update automation rule
// @Tags automation
// @Accept json
// @Produce json
// @Router /api/automation/rules/{id} [put]
func (ctrl *Controller) UpdateRule(c *fiber.Ctx) error {
	var rule models.Rule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.UpdateRule(c.UserContext(), &rule); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(rule)
}

// ToggleRule godoc
// @Summary Enable or disable a rule without editing its body
// @Tags automation
// @Accept json
// @Router /api/automation/rules/{id}/toggle [patch]
func (ctrl *Controller) ToggleRule(c *fiber.Ctx) error {
	var body struct {
		WorkspaceID string `json:"workspace_id"`
		Enabled     bool   `json:"enabled"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := ctrl.Service.ToggleRule(c.UserContext(), body.WorkspaceID, c.Params("id"), body.Enabled); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DuplicateRule godoc
// @Summary Duplicate a rule under a new identity in the same workspace
// @Tags automation
// @Produce json
// @Router /api/automation/rules/{id}/duplicate [post]
func (ctrl *Controller) DuplicateRule(c *fiber.Ctx) error {
	dup, err := ctrl.Service.DuplicateRule(c.UserContext(), c.Query("workspace_id"), c.Params("id"))
	if err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dup)
}

// DeleteRule godoc
// @Summary Delete automation rule
// @Tags automation
// @Router /api/automation/rules/{id} [delete]
func (ctrl *Controller) DeleteRule(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteRule(c.UserContext(), c.Query("workspace_id"), c.Params("id")); err != nil {
		return c.Status(ctrl.statusFor(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetCatalogs godoc
// @Summary List the trigger and action catalogs the rule editor renders
// @Tags automation
// @Produce json
// @Router /api/automation/catalog [get]
func (ctrl *Controller) GetCatalogs(c *fiber.Ctx) error {
	triggers, actions := ctrl.Service.Catalogs()
	return c.JSON(fiber.Map{
		"triggers": triggers,
		"actions":  actions,
	})
}
