package controller

import (
	"phone-order-be/internal/constant"
	"phone-order-be/internal/dto"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/pkg/serverutils"
	"phone-order-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Turn(ctx *fiber.Ctx) error
}

type agentController struct {
	agent  service.IOrderAgentService
	logger logger.ILogger
}

func NewAgentController(agent service.IOrderAgentService, log logger.ILogger) IAgentController {
	return &agentController{agent: agent, logger: log}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	r.Post("/agent/turn", c.Turn)
}

// Turn is the JSON form of the voice webhook, for transports other than
// Twilio.
func (c *agentController) Turn(ctx *fiber.Ctx) error {
	var req dto.TurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.agent.HandleTurn(ctx.UserContext(), req)
	if err != nil {
		c.logger.Warn("AgentController", "Turn failed, asking caller to repeat", map[string]interface{}{"call_id": req.CallID, "error": err.Error()})
		res = &dto.TurnResponse{Reply: constant.FallbackUtterance, ContinueListening: true}
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn handled", res))
}
