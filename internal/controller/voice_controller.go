package controller

import (
	"strings"

	"phone-order-be/internal/constant"
	"phone-order-be/internal/dto"
	"phone-order-be/internal/pkg/logger"
	"phone-order-be/internal/pkg/serverutils"
	"phone-order-be/internal/service"
	"phone-order-be/pkg/twiml"

	"github.com/gofiber/fiber/v2"
)

// IdempotencyHeader carries Twilio's per-delivery token.
const IdempotencyHeader = "I-Twilio-Idempotency-Token"

type IVoiceController interface {
	RegisterRoutes(r fiber.Router)
	Webhook(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Audio(ctx *fiber.Ctx) error
}

type voiceController struct {
	agent  service.IOrderAgentService
	speech service.ISpeechService
	action string
	guard  []fiber.Handler
	logger logger.ILogger
}

// NewVoiceController serves the Twilio webhooks. guard runs before each
// webhook (signature validation); audio fetches are not guarded.
func NewVoiceController(agent service.IOrderAgentService, speech service.ISpeechService, baseURL string, log logger.ILogger, guard ...fiber.Handler) IVoiceController {
	return &voiceController{
		agent:  agent,
		speech: speech,
		action: strings.TrimRight(baseURL, "/") + "/api/voice",
		guard:  guard,
		logger: log,
	}
}

func (c *voiceController) RegisterRoutes(r fiber.Router) {
	r.Get("/voice/audio/:id", c.Audio)
	r.Post("/voice", c.guarded(c.Webhook)...)
	r.Post("/voice/status", c.guarded(c.Status)...)
}

func (c *voiceController) guarded(h fiber.Handler) []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(c.guard)+1)
	return append(append(handlers, c.guard...), h)
}

// Webhook answers one speech result with TwiML. Failed turns are answered
// with the fallback utterance and the call keeps listening.
func (c *voiceController) Webhook(ctx *fiber.Ctx) error {
	var req dto.VoiceWebhookRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.agent.HandleTurn(ctx.UserContext(), dto.TurnRequest{
		CallID:      req.CallSid,
		Utterance:   req.SpeechResult,
		DeliveryKey: ctx.Get(IdempotencyHeader),
		TextReplay:  true,
	})

	var doc twiml.Response
	switch {
	case err != nil:
		c.logger.Warn("VoiceController", "Turn failed, asking caller to repeat", map[string]interface{}{"call_id": req.CallSid, "error": err.Error()})
		doc = twiml.Listen(c.speech.Prompt(ctx.UserContext(), constant.FallbackUtterance), c.action)
	case res.ContinueListening:
		doc = twiml.Listen(c.speech.Prompt(ctx.UserContext(), res.Reply), c.action)
	default:
		doc = twiml.Goodbye(c.speech.Prompt(ctx.UserContext(), res.Reply))
	}

	body, err := doc.Marshal()
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, twiml.ContentType)
	return ctx.Send(body)
}

func (c *voiceController) Status(ctx *fiber.Ctx) error {
	var req dto.CallStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	if constant.TerminalCallStatuses[req.CallStatus] {
		if err := c.agent.EndCall(ctx.UserContext(), req.CallSid); err != nil {
			c.logger.Warn("VoiceController", "Failed to discard call session", map[string]interface{}{"call_id": req.CallSid, "error": err.Error()})
		}
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *voiceController) Audio(ctx *fiber.Ctx) error {
	clip, ok := c.speech.Clip(ctx.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Audio not found")
	}
	ctx.Set(fiber.HeaderContentType, "audio/mpeg")
	return ctx.Send(clip)
}
