package httphandler

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/common/errs"
)

type setAuctionRequest struct {
	ProjectID          uint64 `params:"projectId"`
	Registry           string `query:"registry"`
	StartTime          int64  `json:"startTime"` // unix timestamp
	PriceDecayHalfLife int64  `json:"priceDecayHalfLifeSeconds"`
	StartPrice         string `json:"startPrice"`
	BasePrice          string `json:"basePrice"`
}

func (r *setAuctionRequest) Validate() error {
	var errList []error
	if r.StartTime <= 0 {
		errList = append(errList, errors.New("'startTime' is required"))
	}
	if r.PriceDecayHalfLife <= 0 {
		errList = append(errList, errors.New("'priceDecayHalfLifeSeconds' must be positive"))
	}
	if _, err := parseAmount(r.StartPrice); err != nil {
		errList = append(errList, errors.Wrap(err, "'startPrice'"))
	}
	if _, err := parseAmount(r.BasePrice); err != nil {
		errList = append(errList, errors.Wrap(err, "'basePrice'"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type setAuctionResult struct {
	Ok bool `json:"ok"`
}

type setAuctionResponse = HttpResponse[setAuctionResult]

func (h *HttpHandler) SetAuction(ctx *fiber.Ctx) error {
	var req setAuctionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	startPrice, _ := parseAmount(req.StartPrice)
	basePrice, _ := parseAmount(req.BasePrice)
	err := h.engine.SetAuctionDetails(
		ctx.UserContext(),
		projectKey(req.Registry, req.ProjectID),
		time.Unix(req.StartTime, 0).UTC(),
		time.Duration(req.PriceDecayHalfLife)*time.Second,
		startPrice,
		basePrice,
	)
	if err != nil {
		return errors.Wrap(publicIfKnown(err), "error during SetAuctionDetails")
	}

	resp := setAuctionResponse{Result: &setAuctionResult{Ok: true}}
	return errors.WithStack(ctx.JSON(resp))
}

type resetAuctionRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
}

func (h *HttpHandler) ResetAuction(ctx *fiber.Ctx) error {
	var req resetAuctionRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.engine.ResetAuctionDetails(ctx.UserContext(), projectKey(req.Registry, req.ProjectID)); err != nil {
		return errors.Wrap(publicIfKnown(err), "error during ResetAuctionDetails")
	}

	resp := setAuctionResponse{Result: &setAuctionResult{Ok: true}}
	return errors.WithStack(ctx.JSON(resp))
}
