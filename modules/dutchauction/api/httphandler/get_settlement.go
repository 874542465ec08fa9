package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
)

type getSettlementRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
}

type getSettlementResult struct {
	LatestPurchasePrice      string `json:"latestPurchasePrice"`
	NumSettleableInvocations uint64 `json:"numSettleableInvocations"`
	RevenuesCollected        bool   `json:"revenuesCollected"`
	ClearingPrice            string `json:"clearingPrice"`
}

type getSettlementResponse = HttpResponse[getSettlementResult]

func (h *HttpHandler) GetSettlement(ctx *fiber.Ctx) error {
	var req getSettlementRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}

	settlement, err := h.engine.GetProjectSettlement(ctx.UserContext(), projectKey(req.Registry, req.ProjectID))
	if err != nil {
		return errors.Wrap(err, "error during GetProjectSettlement")
	}

	resp := getSettlementResponse{
		Result: &getSettlementResult{
			LatestPurchasePrice:      settlement.LatestPurchasePrice.String(),
			NumSettleableInvocations: settlement.NumSettleableInvocations,
			RevenuesCollected:        settlement.RevenuesCollected,
			ClearingPrice:            settlement.ClearingPrice.String(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
