package httphandler

import (
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/mintforge/edition-engine/common"
	"github.com/mintforge/edition-engine/common/errs"
	"github.com/mintforge/edition-engine/modules/editions/editions"
	"github.com/gofiber/fiber/v2"
)

type burnRequest struct {
	callRequest
	Id string `params:"id"`
}

func (r *burnRequest) Validate() error {
	var errList []error
	id, err := url.QueryUnescape(r.Id)
	if err != nil {
		return errors.WithStack(err)
	}
	r.Id = id
	if _, err := editions.NewInstanceIDFromString(r.Id); err != nil {
		errList = append(errList, err)
	}
	return errs.WithPublicMessage(errors.Join(errList...), "validation error")
}

type burnResult struct {
	Id editions.InstanceID `json:"id"`
}

type burnResponse = common.HttpResponse[burnResult]

func (h *HttpHandler) Burn(ctx *fiber.Ctx) (err error) {
	var req burnRequest
	if err := parseBody(ctx, &req); err != nil {
		return err
	}
	if err := ctx.ParamsParser(&req); err != nil {
		return errors.WithStack(err)
	}
	if err := req.Validate(); err != nil {
		return errors.WithStack(err)
	}
	instanceId, err := editions.NewInstanceIDFromString(req.Id)
	if err != nil {
		return errors.WithStack(err)
	}
	call, err := h.parseCallContext(ctx, req.callRequest)
	if err != nil {
		return errors.WithStack(err)
	}

	if err := h.processor.Burn(ctx.UserContext(), call, instanceId); err != nil {
		return publicIfCallError(err)
	}

	result := burnResult{Id: instanceId}
	return errors.WithStack(ctx.JSON(burnResponse{
		Result: &result,
	}))
}
