package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/common/errs"
)

type getAuctionRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
}

type getAuctionResult struct {
	Registry           string `json:"registry"`
	ProjectID          uint64 `json:"projectId"`
	StartTime          int64  `json:"startTime"` // unix timestamp
	PriceDecayHalfLife int64  `json:"priceDecayHalfLifeSeconds"`
	StartPrice         string `json:"startPrice"`
	BasePrice          string `json:"basePrice"`
}

type getAuctionResponse = HttpResponse[getAuctionResult]

func (h *HttpHandler) GetAuction(ctx *fiber.Ctx) error {
	var req getAuctionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}

	project := projectKey(req.Registry, req.ProjectID)
	params, err := h.engine.GetAuctionParams(ctx.UserContext(), project)
	if err != nil {
		if errors.Is(err, errs.NotFound) {
			return errs.NewPublicError("auction not configured")
		}
		return errors.Wrap(err, "error during GetAuctionParams")
	}

	resp := getAuctionResponse{
		Result: &getAuctionResult{
			Registry:           project.Registry,
			ProjectID:          project.ProjectID,
			StartTime:          params.StartTime.Unix(),
			PriceDecayHalfLife: int64(params.PriceDecayHalfLife / time.Second),
			StartPrice:         params.StartPrice.String(),
			BasePrice:          params.BasePrice.String(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
