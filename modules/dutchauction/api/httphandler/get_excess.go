package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/common/errs"
)

type getExcessRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
	Buyer     string `query:"buyer"`
}

func (r *getExcessRequest) Validate() error {
	var errList []error
	if r.Buyer == "" {
		errList = append(errList, errors.New("'buyer' is required"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type getExcessResult struct {
	Buyer  string `json:"buyer"`
	Excess string `json:"excess"`
}

type getExcessResponse = HttpResponse[getExcessResult]

func (h *HttpHandler) GetExcess(ctx *fiber.Ctx) error {
	var req getExcessRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	excess, err := h.engine.GetExcessSettlementFunds(ctx.UserContext(), projectKey(req.Registry, req.ProjectID), req.Buyer)
	if err != nil {
		return errors.Wrap(publicIfKnown(err), "error during GetExcessSettlementFunds")
	}

	resp := getExcessResponse{
		Result: &getExcessResult{
			Buyer:  req.Buyer,
			Excess: excess.String(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
