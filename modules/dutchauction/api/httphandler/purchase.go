package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/common/errs"
)

type purchaseRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
	Buyer     string `json:"buyer"`
	Recipient string `json:"recipient"` // defaults to buyer
	Payment   string `json:"payment"`
}

func (r *purchaseRequest) Validate() error {
	var errList []error
	if r.Buyer == "" {
		errList = append(errList, errors.New("'buyer' is required"))
	}
	if _, err := parseAmount(r.Payment); err != nil {
		errList = append(errList, errors.Wrap(err, "'payment'"))
	}
	if r.Recipient == "" {
		r.Recipient = r.Buyer
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type purchaseResult struct {
	TokenID      uint64 `json:"tokenId"`
	PricePaid    string `json:"pricePaid"`
	AmountPosted string `json:"amountPosted"`
}

type purchaseResponse = HttpResponse[purchaseResult]

func (h *HttpHandler) Purchase(ctx *fiber.Ctx) error {
	var req purchaseRequest
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

	payment, _ := parseAmount(req.Payment)
	result, err := h.engine.PurchaseTo(ctx.UserContext(), projectKey(req.Registry, req.ProjectID), req.Buyer, req.Recipient, payment)
	if err != nil {
		return errors.Wrap(publicIfKnown(err), "error during PurchaseTo")
	}

	resp := purchaseResponse{
		Result: &purchaseResult{
			TokenID:      result.TokenID,
			PricePaid:    result.PricePaid.String(),
			AmountPosted: result.AmountPosted.String(),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
