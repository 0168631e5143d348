package controller

import (
	"aided-be/internal/dto"
	"aided-be/internal/pkg/serverutils"
	"aided-be/pkg/glossary"

	"github.com/gofiber/fiber/v2"
)

// The glossary is static, so this controller reads it directly without a
// service in between.
type IGlossaryController interface {
	RegisterRoutes(r fiber.Router)
	GetGlossary(ctx *fiber.Ctx) error
}

type glossaryController struct{}

func NewGlossaryController() IGlossaryController {
	return &glossaryController{}
}

func (c *glossaryController) RegisterRoutes(r fiber.Router) {
	r.Get("/glossary", c.GetGlossary)
}

func (c *glossaryController) GetGlossary(ctx *fiber.Ctx) error {
	all := glossary.All()
	out := make([]dto.GlossaryResponse, 0, len(all))
	for _, term := range glossary.Terms() {
		out = append(out, dto.GlossaryResponse{Term: term, Definition: all[term]})
	}
	return ctx.JSON(serverutils.SuccessResponse("Glossary", out))
}
