package controller

import (
	"errors"

	"phone-order-be/internal/dto"
	"phone-order-be/internal/pkg/serverutils"
	"phone-order-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IOrderController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateStatus(ctx *fiber.Ctx) error
}

type orderController struct {
	service service.IOrderService
	auth    fiber.Handler
}

func NewOrderController(service service.IOrderService, auth fiber.Handler) IOrderController {
	return &orderController{service: service, auth: auth}
}

func (c *orderController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/orders")
	h.Use(c.auth)
	h.Get("", c.GetAll)
	h.Get(":id", c.Show)
	h.Patch(":id/status", c.UpdateStatus)
}

func (c *orderController) GetAll(ctx *fiber.Ctx) error {
	var req dto.ListOrdersRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all orders", res))
}

func (c *orderController) Show(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid order id")
	}

	res, err := c.service.Get(ctx.UserContext(), id)
	if err != nil {
		return orderError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show order", res))
}

func (c *orderController) UpdateStatus(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid order id")
	}

	var req dto.UpdateOrderStatusRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid JSON body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	res, err := c.service.UpdateStatus(ctx.UserContext(), id, req.Status)
	if err != nil {
		return orderError(err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update order status", res))
}

func orderError(err error) error {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrInvalidTransition):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	}
	return err
}
