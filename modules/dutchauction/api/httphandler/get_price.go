package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getPriceRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
}

type getPriceResult struct {
	Configured bool   `json:"configured"`
	Price      string `json:"price"`
}

type getPriceResponse = HttpResponse[getPriceResult]

func (h *HttpHandler) GetPrice(ctx *fiber.Ctx) error {
	var req getPriceRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}

	info, err := h.engine.GetPriceInfo(ctx.UserContext(), projectKey(req.Registry, req.ProjectID))
	if err != nil {
		return errors.Wrap(publicIfKnown(err), "error during GetPriceInfo")
	}

	resp := getPriceResponse{
		Result: &getPriceResult{
			Configured: info.Configured,
			Price:      info.Price.String(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
