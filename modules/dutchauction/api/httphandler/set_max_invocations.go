package httphandler

import (
	"github.com/cockroachdb/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/mintfall/auction-engine/common/errs"
)

type setMaxInvocationsRequest struct {
	ProjectID      uint64 `params:"projectId"`
	Registry       string `query:"registry"`
	MaxInvocations uint64 `json:"maxInvocations"`
}

func (r *setMaxInvocationsRequest) Validate() error {
	var errList []error
	if r.MaxInvocations == 0 {
		errList = append(errList, errors.New("'maxInvocations' must be positive"))
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type setMaxInvocationsResult struct {
	Ok bool `json:"ok"`
}

type setMaxInvocationsResponse = HttpResponse[setMaxInvocationsResult]

func (h *HttpHandler) SetMaxInvocations(ctx *fiber.Ctx) error {
	var req setMaxInvocationsRequest
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

	if err := h.engine.SetMaxInvocationsLimit(ctx.UserContext(), projectKey(req.Registry, req.ProjectID), req.MaxInvocations); err != nil {
		return errors.Wrap(publicIfKnown(err), "error during SetMaxInvocationsLimit")
	}

	resp := setMaxInvocationsResponse{Result: &setMaxInvocationsResult{Ok: true}}
	return errors.WithStack(ctx.JSON(resp))
}
