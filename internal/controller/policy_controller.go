package controller

import (
	"aided-be/internal/pkg/serverutils"
	"aided-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPolicyController interface {
	RegisterRoutes(r fiber.Router)
	GetPolicies(ctx *fiber.Ctx) error
	GetDocuments(ctx *fiber.Ctx) error
}

type policyController struct {
	service service.IPolicyService
}

func NewPolicyController(service service.IPolicyService) IPolicyController {
	return &policyController{service: service}
}

func (c *policyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/policies")
	h.Get("/", c.GetPolicies)
	h.Get("/:id/documents", c.GetDocuments)
}

func (c *policyController) GetPolicies(ctx *fiber.Ctx) error {
	res, err := c.service.GetPolicies(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Policies", res))
}

func (c *policyController) GetDocuments(ctx *fiber.Ctx) error {
	res, err := c.service.GetDocuments(ctx.Context(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Documents", res))
}
