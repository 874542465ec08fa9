package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/common/errs"
)

type reclaimRequest struct {
	Buyer      string   `json:"buyer"`
	Recipient  string   `json:"recipient"` // defaults to buyer
	Registries []string `json:"registries"`
	ProjectIDs []uint64 `json:"projectIds"`
}

func (r *reclaimRequest) Validate() error {
	var errList []error
	if r.Buyer == "" {
		errList = append(errList, errors.New("'buyer' is required"))
	}
	if len(r.ProjectIDs) == 0 {
		errList = append(errList, errors.New("'projectIds' must not be empty"))
	}
	if len(r.Registries) != 0 && len(r.Registries) != len(r.ProjectIDs) {
		errList = append(errList, errors.New("'registries' must be empty or match 'projectIds' in length"))
	}
	if r.Recipient == "" {
		r.Recipient = r.Buyer
	}
	if len(r.Registries) == 0 {
		r.Registries = make([]string, len(r.ProjectIDs))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type reclaimResult struct {
	Reclaimed string `json:"reclaimed"`
}

type reclaimResponse = HttpResponse[reclaimResult]

func (h *HttpHandler) ReclaimExcess(ctx *fiber.Ctx) error {
	var req reclaimRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}

	total, err := h.engine.ReclaimExcessAcrossRegistries(ctx.UserContext(), req.Buyer, req.Recipient, req.Registries, req.ProjectIDs)
	if err != nil {
		return errors.Wrap(publicIfKnown(err), "error during ReclaimExcessAcrossRegistries")
	}

	resp := reclaimResponse{Result: &reclaimResult{Reclaimed: total.String()}}
	return errors.WithStack(ctx.JSON(resp))
}
