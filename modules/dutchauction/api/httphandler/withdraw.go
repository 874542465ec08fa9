package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type withdrawRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
}

type withdrawResult struct {
	ClearingPrice string `json:"clearingPrice"`
	Proceeds      string `json:"proceeds"`
}

type withdrawResponse = HttpResponse[withdrawResult]

func (h *HttpHandler) WithdrawRevenues(ctx *fiber.Ctx) error {
	var req withdrawRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}

	result, err := h.engine.WithdrawRevenues(ctx.UserContext(), projectKey(req.Registry, req.ProjectID))
	if err != nil {
		return errors.Wrap(publicIfKnown(err), "error during WithdrawRevenues")
	}

	resp := withdrawResponse{
		Result: &withdrawResult{
			ClearingPrice: result.ClearingPrice.String(),
			Proceeds:      result.Proceeds.String(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
