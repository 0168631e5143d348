package controller

import (
	"errors"

	"aided-be/internal/constant"
	"aided-be/internal/dto"
	"aided-be/internal/pkg/serverutils"
	"aided-be/internal/service"
	"aided-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	SendChat(ctx *fiber.Ctx) error
	SendChoice(ctx *fiber.Ctx) error
	SelectPolicy(ctx *fiber.Ctx) error
	GlossaryClick(ctx *fiber.Ctx) error
	Reset(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Post("/", c.CreateSession)
	h.Post("/:id/chat", c.SendChat)
	h.Post("/:id/choice", c.SendChoice)
	h.Post("/:id/policy", c.SelectPolicy)
	h.Post("/:id/glossary", c.GlossaryClick)
	h.Post("/:id/reset", c.Reset)
	h.Get("/:id/messages", c.GetMessages)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	res, err := c.service.CreateSession(ctx.Context(), &req)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *chatController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	res, err := c.service.SendChat(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Reply", res))
}

func (c *chatController) SendChoice(ctx *fiber.Ctx) error {
	var req dto.ChoiceRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	res, err := c.service.SendChoice(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Reply", res))
}

func (c *chatController) SelectPolicy(ctx *fiber.Ctx) error {
	var req dto.SelectPolicyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	res, err := c.service.SelectPolicy(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Policy selected", res))
}

func (c *chatController) GlossaryClick(ctx *fiber.Ctx) error {
	var req dto.GlossaryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}

	res, err := c.service.GlossaryClick(ctx.Context(), ctx.Params("id"), &req)
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Definition", res))
}

func (c *chatController) Reset(ctx *fiber.Ctx) error {
	res, err := c.service.Reset(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session reset", res))
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	res, err := c.service.GetTranscript(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return chatError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcript", res))
}

// chatError maps service errors to HTTP statuses and the advisory texts
// the client shows in the chat window.
func chatError(ctx *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrUnknownChoice),
		errors.Is(err, service.ErrUnknownPolicy),
		errors.Is(err, service.ErrUnknownTerm):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	case errors.Is(err, llm.ErrRateLimited):
		return ctx.Status(fiber.StatusTooManyRequests).JSON(serverutils.ErrorResponse(429, constant.AdvisoryRateLimited))
	case errors.Is(err, service.ErrUpstream):
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, constant.AdvisoryUnreachable))
	default:
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
}
