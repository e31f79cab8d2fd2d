package activity

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	Service Service
	Hub     *Hub
}

func NewController(service Service, hub *Hub) *Controller {
	return &Controller{
		Service: service,
		Hub:     hub,
	}
}

func (ctrl *Controller) filterFromQuery(c *fiber.Ctx) Filter {
	return Filter{
		WorkspaceID: c.Query("workspace_id"),
		TicketID:    c.Query("ticket_id"),
		RuleID:      c.Query("rule_id"),
		FiredOnly:   c.QueryBool("fired_only"),
		FailedOnly:  c.QueryBool("failed_only"),
		Limit:       int64(c.QueryInt("limit")),
	}
}

// List godoc
// @Summary List rule execution reports
// @Tags activity
// @Produce json
// @Router /api/activity [get]
func (ctrl *Controller) List(c *fiber.Ctx) error {
	reports, err := ctrl.Service.List(c.UserContext(), ctrl.filterFromQuery(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(reports)
}

// Export godoc
// @Summary Export rule execution reports as an Excel workbook
// @Tags activity
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Router /api/activity/export [get]
func (ctrl *Controller) Export(c *fiber.Ctx) error {
	data, filename, err := ctrl.Service.ExportToExcel(c.UserContext(), ctrl.filterFromQuery(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// HandleWebSocket streams execution reports to the client as they happen.
// Inbound frames are ignored; the connection closes when the client goes away.
func (ctrl *Controller) HandleWebSocket(c *websocket.Conn) {
	ctrl.Hub.Register(c)
	defer func() {
		ctrl.Hub.Unregister(c)
		c.Close()
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
