package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/common/errs"
	"github.com/mintfall/auction-engine/modules/dutchauction/internal/entity"
	"github.com/samber/lo"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

type getEventsRequest struct {
	ProjectID uint64 `params:"projectId"`
	Registry  string `query:"registry"`
	Limit     int32  `query:"limit"`
	Offset    int32  `query:"offset"`
}

func (r *getEventsRequest) Validate() error {
	var errList []error
	if r.Limit < 0 || r.Limit > maxEventLimit {
		errList = append(errList, errors.Errorf("'limit' must be in range [0, %d]", maxEventLimit))
	}
	if r.Offset < 0 {
		errList = append(errList, errors.New("'offset' must not be negative"))
	}
	if r.Limit == 0 {
		r.Limit = defaultEventLimit
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type purchaseEventResult struct {
	Buyer        string `json:"buyer"`
	Recipient    string `json:"recipient"`
	TokenID      uint64 `json:"tokenId"`
	PricePaid    string `json:"pricePaid"`
	AmountPosted string `json:"amountPosted"`
	Timestamp    int64  `json:"timestamp"` // unix timestamp
}

type getPurchaseEventsResult struct {
	Events []purchaseEventResult `json:"events"`
}

type getPurchaseEventsResponse = HttpResponse[getPurchaseEventsResult]

func (h *HttpHandler) GetPurchaseEvents(ctx *fiber.Ctx) error {
	var req getEventsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	events, err := h.engine.GetPurchaseEvents(ctx.UserContext(), projectKey(req.Registry, req.ProjectID), req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetPurchaseEvents")
	}

	resp := getPurchaseEventsResponse{
		Result: &getPurchaseEventsResult{
			Events: lo.Map(events, func(e *entity.PurchaseEvent, _ int) purchaseEventResult {
				return purchaseEventResult{
					Buyer:        e.Buyer,
					Recipient:    e.Recipient,
					TokenID:      e.TokenID,
					PricePaid:    e.PricePaid.String(),
					AmountPosted: e.AmountPosted.String(),
					Timestamp:    e.Timestamp.Unix(),
				}
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}

type settlementEventResult struct {
	Kind      string `json:"kind"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"` // unix timestamp
}

type getSettlementEventsResult struct {
	Events []settlementEventResult `json:"events"`
}

type getSettlementEventsResponse = HttpResponse[getSettlementEventsResult]

func (h *HttpHandler) GetSettlementEvents(ctx *fiber.Ctx) error {
	var req getEventsRequest
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := ctx.QueryParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	events, err := h.engine.GetSettlementEvents(ctx.UserContext(), projectKey(req.Registry, req.ProjectID), req.Limit, req.Offset)
	if err != nil {
		return errors.Wrap(err, "error during GetSettlementEvents")
	}

	resp := getSettlementEventsResponse{
		Result: &getSettlementEventsResult{
			Events: lo.Map(events, func(e *entity.SettlementEvent, _ int) settlementEventResult {
				return settlementEventResult{
					Kind:      string(e.Kind),
					Recipient: e.Recipient,
					Amount:    e.Amount.String(),
					Timestamp: e.Timestamp.Unix(),
				}
			}),
		},
	}
	return errors.WithStack(ctx.JSON(resp))
}
